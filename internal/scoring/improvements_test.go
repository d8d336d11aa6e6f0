package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-workers/internal/models"
)

func scenarioScore() *models.ProposalScore {
	return &models.ProposalScore{
		ID:           "score-1",
		ProposalID:   "prop-1",
		OverallScore: 69,
		Factors: []models.ScoreFactor{
			{FactorType: models.FactorCompleteness, FactorWeight: 0.30, RawScore: 90, WeightedScore: 27},
			{FactorType: models.FactorTechnicalDepth, FactorWeight: 0.30, RawScore: 40, WeightedScore: 12},
			{FactorType: models.FactorSectionLCompliance, FactorWeight: 0.20, RawScore: 80, WeightedScore: 16},
			{FactorType: models.FactorSectionMAlignment, FactorWeight: 0.20, RawScore: 70, WeightedScore: 14},
		},
	}
}

func TestRankImprovements_ScenarioTopGain(t *testing.T) {
	improvements := RankImprovements(scenarioScore())

	require.Len(t, improvements, 4)
	top := improvements[0]
	assert.Equal(t, 1, top.Priority)
	assert.Equal(t, models.FactorTechnicalDepth, top.Factor)
	assert.Equal(t, 18, top.PotentialGain) // round(60*0.30)
	assert.Equal(t, 40.0, top.CurrentScore)
}

func TestRankImprovements_FullOrdering(t *testing.T) {
	improvements := RankImprovements(scenarioScore())

	var order []models.FactorType
	var gains []int
	for _, imp := range improvements {
		order = append(order, imp.Factor)
		gains = append(gains, imp.PotentialGain)
	}

	// gains: technical_depth 18, section_m 6, section_l 4, completeness 3
	assert.Equal(t, []models.FactorType{
		models.FactorTechnicalDepth,
		models.FactorSectionMAlignment,
		models.FactorSectionLCompliance,
		models.FactorCompleteness,
	}, order)
	assert.Equal(t, []int{18, 6, 4, 3}, gains)
	for i, imp := range improvements {
		assert.Equal(t, i+1, imp.Priority)
	}
}

func TestRankImprovements_TieBreaksByWeightThenName(t *testing.T) {
	score := &models.ProposalScore{
		Factors: []models.ScoreFactor{
			// Both gain round(20*0.20)=4; equal weight, so name ascending.
			{FactorType: models.FactorSectionMAlignment, FactorWeight: 0.20, RawScore: 80},
			{FactorType: models.FactorSectionLCompliance, FactorWeight: 0.20, RawScore: 80},
			// Same gain, higher weight wins the tie.
			{FactorType: models.FactorCompleteness, FactorWeight: 0.40, RawScore: 90},
			{FactorType: models.FactorTechnicalDepth, FactorWeight: 0.20, RawScore: 80},
		},
	}

	improvements := RankImprovements(score)

	require.Len(t, improvements, 4)
	assert.Equal(t, models.FactorCompleteness, improvements[0].Factor)
	assert.Equal(t, models.FactorSectionLCompliance, improvements[1].Factor)
	assert.Equal(t, models.FactorSectionMAlignment, improvements[2].Factor)
	assert.Equal(t, models.FactorTechnicalDepth, improvements[3].Factor)
}

func TestRankImprovements_PerfectFactorExcluded(t *testing.T) {
	score := &models.ProposalScore{
		Factors: []models.ScoreFactor{
			{FactorType: models.FactorCompleteness, FactorWeight: 0.50, RawScore: 100},
			{FactorType: models.FactorTechnicalDepth, FactorWeight: 0.50, RawScore: 95},
		},
	}

	improvements := RankImprovements(score)

	require.Len(t, improvements, 1)
	assert.Equal(t, models.FactorTechnicalDepth, improvements[0].Factor)
}

func TestRankImprovements_LowScoreGainFloor(t *testing.T) {
	score := &models.ProposalScore{
		Factors: []models.ScoreFactor{
			// round((100-45)*0.005) would be 0; floor forces at least 1.
			{FactorType: models.FactorCompleteness, FactorWeight: 0.005, RawScore: 45},
		},
	}

	improvements := RankImprovements(score)

	require.Len(t, improvements, 1)
	assert.Equal(t, 1, improvements[0].PotentialGain)
}

func TestRankImprovements_BandedGuidance(t *testing.T) {
	low := RankImprovements(&models.ProposalScore{Factors: []models.ScoreFactor{
		{FactorType: models.FactorTechnicalDepth, FactorWeight: 0.30, RawScore: 20},
	}})
	high := RankImprovements(&models.ProposalScore{Factors: []models.ScoreFactor{
		{FactorType: models.FactorTechnicalDepth, FactorWeight: 0.30, RawScore: 92},
	}})

	assert.NotEqual(t, low[0].Action, high[0].Action)
	assert.NotEmpty(t, low[0].Details)
}

func TestRankImprovements_Deterministic(t *testing.T) {
	first := RankImprovements(scenarioScore())
	second := RankImprovements(scenarioScore())
	assert.Equal(t, first, second)
}
