// internal/scoring/gonogo/synthesizer.go

// Package gonogo assembles the go/no-go decision package from the latest
// score and readiness verdicts. Everything here is derived on demand and
// never persisted.
package gonogo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/models"
	"proposal-workers/internal/scoring"
)

// ScoreReader supplies the latest snapshot and recent history.
type ScoreReader interface {
	GetLatest(ctx context.Context, proposalID string) (*models.ProposalScore, error)
	GetHistory(ctx context.Context, proposalID string, limit int) ([]models.ProposalScore, models.ScoreTrend, error)
}

// ReadinessReader supplies the latest indicator per gate.
type ReadinessReader interface {
	AllLatest(ctx context.Context, proposalID string) (map[models.TeamType]*models.ReadinessIndicator, error)
}

// Synthesizer builds go/no-go summaries.
type Synthesizer struct {
	scores    ScoreReader
	readiness ReadinessReader
	log       logger.Logger
	now       func() time.Time
}

func NewSynthesizer(scores ScoreReader, readiness ReadinessReader, log logger.Logger) *Synthesizer {
	return &Synthesizer{scores: scores, readiness: readiness, log: log, now: time.Now}
}

// Summarize reads current state and synthesizes the decision package.
func (s *Synthesizer) Summarize(ctx context.Context, proposalID string) (*models.GoNoGoSummary, error) {
	score, err := s.scores.GetLatest(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load latest score: %w", err)
	}
	indicators, err := s.readiness.AllLatest(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load readiness indicators: %w", err)
	}

	_, trend, err := s.scores.GetHistory(ctx, proposalID, 10)
	if err != nil {
		trend = models.TrendStable
	}

	summary := Synthesize(proposalID, score, indicators)
	summary.GeneratedAt = s.now().UTC()
	summary.Trend = trend

	s.log.Info("go/no-go summary generated", map[string]interface{}{
		"proposalId":     proposalID,
		"recommendation": string(summary.Recommendation),
	})
	return summary, nil
}

// Synthesize is the pure decision function. The recommendation table is
// evaluated in order, first match wins:
//  1. any readiness entry with blockers -> Do not proceed
//  2. overall >= 80 and no readiness below ready -> Proceed
//  3. overall < 50 -> Do not proceed
//  4. otherwise -> Proceed with caution
func Synthesize(proposalID string, score *models.ProposalScore, indicators map[models.TeamType]*models.ReadinessIndicator) *models.GoNoGoSummary {
	summary := &models.GoNoGoSummary{
		ProposalID:     proposalID,
		Trend:          models.TrendStable,
		ReadinessLevel: mostAdvancedLevel(indicators),
	}

	overall := 0
	if score != nil {
		summary.OverallScore = &score.OverallScore
		summary.Confidence = &score.ConfidenceLevel
		overall = score.OverallScore
	}

	hasBlockers := false
	anyBelowReady := len(indicators) == 0
	var warnings []models.WarningItem
	for _, team := range models.TeamOrder {
		ind, ok := indicators[team]
		if !ok {
			continue
		}
		if len(ind.Blockers) > 0 {
			hasBlockers = true
		}
		if ind.Level != models.ReadinessReady {
			anyBelowReady = true
		}
		warnings = append(warnings, ind.Warnings...)
	}

	switch {
	case hasBlockers:
		summary.Recommendation = models.RecommendNoGo
	case overall >= 80 && !anyBelowReady:
		summary.Recommendation = models.RecommendProceed
	case overall < 50:
		summary.Recommendation = models.RecommendNoGo
	default:
		summary.Recommendation = models.RecommendWithCaution
	}

	summary.KeyStrengths, summary.KeyRisks = strengthsAndRisks(score)
	summary.NextSteps = nextSteps(score, indicators, warnings, summary.Recommendation)
	return summary
}

// mostAdvancedLevel is the level of the furthest gate with a check on file,
// or pending when nothing was ever checked.
func mostAdvancedLevel(indicators map[models.TeamType]*models.ReadinessIndicator) models.ReadinessLevel {
	for i := len(models.TeamOrder) - 1; i >= 0; i-- {
		if ind, ok := indicators[models.TeamOrder[i]]; ok {
			return ind.Level
		}
	}
	return models.ReadinessPending
}

// strengthsAndRisks picks the top and bottom factors by weighted score,
// capped at 3 each.
func strengthsAndRisks(score *models.ProposalScore) (strengths, risks []string) {
	if score == nil {
		return nil, nil
	}

	sorted := make([]models.ScoreFactor, len(score.Factors))
	copy(sorted, score.Factors)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WeightedScore != sorted[j].WeightedScore {
			return sorted[i].WeightedScore > sorted[j].WeightedScore
		}
		return sorted[i].FactorType < sorted[j].FactorType
	})

	for i, f := range sorted {
		label := fmt.Sprintf("%s: %.0f/100", factorLabel(f.FactorType), f.RawScore)
		if i < 3 && f.RawScore >= 70 {
			strengths = append(strengths, "Strong "+label)
		}
		if i >= len(sorted)-3 && f.RawScore < 70 {
			risks = append(risks, "Weak "+label)
		}
	}
	return strengths, risks
}

// nextSteps merges the top improvement actions with outstanding readiness
// warnings, deduplicated by action text and capped at 5.
func nextSteps(score *models.ProposalScore, indicators map[models.TeamType]*models.ReadinessIndicator, warnings []models.WarningItem, rec models.GoNoGoRecommendation) []string {
	var steps []string
	seen := make(map[string]struct{})

	add := func(step string) {
		key := strings.ToLower(strings.TrimSpace(step))
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		steps = append(steps, step)
	}

	if score != nil {
		improvements := scoring.RankImprovements(score)
		for i, imp := range improvements {
			if i >= 3 {
				break
			}
			add(imp.Action)
		}
	}

	hasBlockers := false
	for _, ind := range indicators {
		if len(ind.Blockers) > 0 {
			hasBlockers = true
		}
	}
	if hasBlockers {
		add("Address all blocking issues before proceeding")
	}
	for _, w := range warnings {
		add(w.Recommendation)
	}

	if len(steps) == 0 {
		if rec == models.RecommendProceed {
			add("Submit proposal as planned")
		} else {
			add("Review detailed scoring report for improvements")
		}
	}

	if len(steps) > 5 {
		steps = steps[:5]
	}
	return steps
}

func factorLabel(ft models.FactorType) string {
	return strings.ReplaceAll(string(ft), "_", " ")
}
