package gonogo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/models"
)

func scoredProposal(overall int) *models.ProposalScore {
	return &models.ProposalScore{
		ID:              "score-1",
		ProposalID:      "prop-1",
		OverallScore:    overall,
		ConfidenceLevel: models.ConfidenceHigh,
		Factors: []models.ScoreFactor{
			{FactorType: models.FactorCompleteness, FactorWeight: 0.30, RawScore: 90, WeightedScore: 27},
			{FactorType: models.FactorTechnicalDepth, FactorWeight: 0.30, RawScore: 40, WeightedScore: 12},
			{FactorType: models.FactorSectionLCompliance, FactorWeight: 0.20, RawScore: 80, WeightedScore: 16},
			{FactorType: models.FactorSectionMAlignment, FactorWeight: 0.20, RawScore: 70, WeightedScore: 14},
		},
	}
}

func allReady() map[models.TeamType]*models.ReadinessIndicator {
	out := make(map[models.TeamType]*models.ReadinessIndicator)
	for _, team := range models.TeamOrder {
		out[team] = &models.ReadinessIndicator{
			ProposalID: "prop-1",
			TeamType:   team,
			Level:      models.ReadinessReady,
		}
	}
	return out
}

// ==========================
// Decision Table Tests
// ==========================

func TestSynthesize_HighScoreAllReady_Proceed(t *testing.T) {
	summary := Synthesize("prop-1", scoredProposal(85), allReady())

	assert.Equal(t, models.RecommendProceed, summary.Recommendation)
	assert.Equal(t, models.ReadinessReady, summary.ReadinessLevel)
	require.NotNil(t, summary.OverallScore)
	assert.Equal(t, 85, *summary.OverallScore)
}

func TestSynthesize_BlockersAlwaysNoGo(t *testing.T) {
	indicators := allReady()
	indicators[models.TeamRed] = &models.ReadinessIndicator{
		ProposalID: "prop-1",
		TeamType:   models.TeamRed,
		Level:      models.ReadinessNotReady,
		Blockers: []models.BlockerItem{
			{Category: "content", Description: "past performance missing"},
		},
	}

	// Even a 95 cannot outrun a blocker.
	summary := Synthesize("prop-1", scoredProposal(95), indicators)

	assert.Equal(t, models.RecommendNoGo, summary.Recommendation)
	assert.Contains(t, summary.NextSteps, "Address all blocking issues before proceeding")
}

func TestSynthesize_LowScoreNoGo(t *testing.T) {
	summary := Synthesize("prop-1", scoredProposal(42), allReady())

	assert.Equal(t, models.RecommendNoGo, summary.Recommendation)
}

func TestSynthesize_MiddleGroundIsCaution(t *testing.T) {
	tests := []struct {
		name       string
		overall    int
		indicators map[models.TeamType]*models.ReadinessIndicator
	}{
		{"good score but a gate needs work", 85, needsWork()},
		{"moderate score all ready", 65, allReady()},
		{"never checked readiness", 85, map[models.TeamType]*models.ReadinessIndicator{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Synthesize("prop-1", scoredProposal(tt.overall), tt.indicators)
			assert.Equal(t, models.RecommendWithCaution, summary.Recommendation)
		})
	}
}

func needsWork() map[models.TeamType]*models.ReadinessIndicator {
	indicators := allReady()
	indicators[models.TeamGold].Level = models.ReadinessNeedsWork
	indicators[models.TeamGold].Warnings = []models.WarningItem{
		{Category: "pricing", Description: "pricing volume incomplete", Recommendation: "Complete: Pricing volume complete"},
	}
	return indicators
}

func TestSynthesize_NeverScored(t *testing.T) {
	summary := Synthesize("prop-1", nil, map[models.TeamType]*models.ReadinessIndicator{})

	assert.Equal(t, models.RecommendNoGo, summary.Recommendation) // overall 0 < 50
	assert.Nil(t, summary.OverallScore)
	assert.Equal(t, models.ReadinessPending, summary.ReadinessLevel)
	assert.NotEmpty(t, summary.NextSteps)
}

// ==========================
// Assembly Tests
// ==========================

func TestSynthesize_StrengthsAndRisksCappedAtThree(t *testing.T) {
	summary := Synthesize("prop-1", scoredProposal(69), allReady())

	assert.LessOrEqual(t, len(summary.KeyStrengths), 3)
	assert.LessOrEqual(t, len(summary.KeyRisks), 3)
	require.NotEmpty(t, summary.KeyStrengths)
	assert.Contains(t, summary.KeyStrengths[0], "completeness")
	require.NotEmpty(t, summary.KeyRisks)
	assert.Contains(t, summary.KeyRisks[0], "technical depth")
}

func TestSynthesize_NextStepsDeduplicatedAndCapped(t *testing.T) {
	indicators := needsWork()
	// Duplicate warning text across two gates; only one step should survive.
	indicators[models.TeamRed].Level = models.ReadinessNeedsWork
	indicators[models.TeamRed].Warnings = []models.WarningItem{
		{Category: "pricing", Description: "dup", Recommendation: "Complete: Pricing volume complete"},
		{Category: "visuals", Description: "graphics", Recommendation: "Complete: Key graphics included"},
	}

	summary := Synthesize("prop-1", scoredProposal(69), indicators)

	assert.LessOrEqual(t, len(summary.NextSteps), 5)
	count := 0
	for _, step := range summary.NextSteps {
		if step == "Complete: Pricing volume complete" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSynthesize_NextStepsFollowGateOrder(t *testing.T) {
	indicators := map[models.TeamType]*models.ReadinessIndicator{
		models.TeamSubmission: {TeamType: models.TeamSubmission, Level: models.ReadinessNeedsWork,
			Warnings: []models.WarningItem{{Category: "final", Recommendation: "Complete: Final formatting pass"}}},
		models.TeamPink: {TeamType: models.TeamPink, Level: models.ReadinessNeedsWork,
			Warnings: []models.WarningItem{{Category: "outline", Recommendation: "Complete: Annotated outline"}}},
		models.TeamGold: {TeamType: models.TeamGold, Level: models.ReadinessNeedsWork,
			Warnings: []models.WarningItem{{Category: "pricing", Recommendation: "Complete: Pricing volume complete"}}},
	}

	want := []string{
		"Complete: Annotated outline",
		"Complete: Pricing volume complete",
		"Complete: Final formatting pass",
	}
	// Warning-derived steps come out in gate order no matter how the map
	// iterates, so repeated runs must agree.
	for i := 0; i < 10; i++ {
		summary := Synthesize("prop-1", nil, indicators)
		assert.Equal(t, want, summary.NextSteps)
	}
}

func TestSynthesize_ReadinessLevelIsMostAdvancedGate(t *testing.T) {
	indicators := map[models.TeamType]*models.ReadinessIndicator{
		models.TeamPink: {TeamType: models.TeamPink, Level: models.ReadinessReady},
		models.TeamRed:  {TeamType: models.TeamRed, Level: models.ReadinessNeedsWork},
	}

	summary := Synthesize("prop-1", scoredProposal(75), indicators)

	assert.Equal(t, models.ReadinessNeedsWork, summary.ReadinessLevel)
}

// ==========================
// Service Wrapper Tests
// ==========================

type stubScoreReader struct {
	score   *models.ProposalScore
	history []models.ProposalScore
}

func (s *stubScoreReader) GetLatest(_ context.Context, _ string) (*models.ProposalScore, error) {
	return s.score, nil
}

func (s *stubScoreReader) GetHistory(_ context.Context, _ string, _ int) ([]models.ProposalScore, models.ScoreTrend, error) {
	return s.history, models.Trend(s.history), nil
}

type stubReadinessReader struct {
	indicators map[models.TeamType]*models.ReadinessIndicator
}

func (s *stubReadinessReader) AllLatest(_ context.Context, _ string) (map[models.TeamType]*models.ReadinessIndicator, error) {
	return s.indicators, nil
}

func TestSynthesizer_Summarize(t *testing.T) {
	scores := &stubScoreReader{
		score: scoredProposal(85),
		history: []models.ProposalScore{
			{OverallScore: 85},
			{OverallScore: 70},
		},
	}
	synth := NewSynthesizer(scores, &stubReadinessReader{indicators: allReady()},
		logger.NewZapAdapter(zaptest.NewLogger(t)))

	summary, err := synth.Summarize(context.Background(), "prop-1")

	require.NoError(t, err)
	assert.Equal(t, models.RecommendProceed, summary.Recommendation)
	assert.Equal(t, models.TrendImproving, summary.Trend)
	assert.False(t, summary.GeneratedAt.IsZero())
}
