// internal/models/score.go
package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// FactorType names one rubric dimension of the proposal score.
type FactorType string

const (
	FactorCompleteness       FactorType = "completeness"
	FactorTechnicalDepth     FactorType = "technical_depth"
	FactorSectionLCompliance FactorType = "section_l_compliance"
	FactorSectionMAlignment  FactorType = "section_m_alignment"
	FactorSOWCoverage        FactorType = "sow_coverage"
	FactorPPMapping          FactorType = "pp_mapping" // Past Performance mapping
)

// ConfidenceLevel reflects how much of the snapshot came from AI evidence.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// DefaultScoreWeights is the standard factor set. Weights sum to 1.0.
var DefaultScoreWeights = map[FactorType]float64{
	FactorCompleteness:       0.30, // Basic completeness
	FactorTechnicalDepth:     0.30, // Technical content quality
	FactorSectionLCompliance: 0.20, // Format/instruction compliance
	FactorSectionMAlignment:  0.20, // Evaluation criteria alignment
}

// SOWScoreWeights replaces Section M alignment with SOW coverage when the
// solicitation carries a Statement of Work.
var SOWScoreWeights = map[FactorType]float64{
	FactorCompleteness:       0.25,
	FactorTechnicalDepth:     0.25,
	FactorSectionLCompliance: 0.15,
	FactorSectionMAlignment:  0.15,
	FactorSOWCoverage:        0.20,
}

// PPScoreWeights adds past-performance mapping for solicitations that require it.
var PPScoreWeights = map[FactorType]float64{
	FactorCompleteness:       0.25,
	FactorTechnicalDepth:     0.25,
	FactorSectionLCompliance: 0.15,
	FactorSectionMAlignment:  0.15,
	FactorPPMapping:          0.20,
}

// ValidateWeights checks that an active factor set sums to 1.0 within 1e-6.
func ValidateWeights(weights map[FactorType]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("empty factor weight set")
	}
	var sum float64
	for ft, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("factor %s weight %v out of [0,1]", ft, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("factor weights sum to %v, want 1.0", sum)
	}
	return nil
}

// SortedFactorTypes returns the factor types of a weight set in a stable order.
func SortedFactorTypes(weights map[FactorType]float64) []FactorType {
	types := make([]FactorType, 0, len(weights))
	for ft := range weights {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Suggestion is one remediation action attached to a factor.
type Suggestion struct {
	Action   string `json:"action"`
	Details  string `json:"details"`
	Priority string `json:"priority"` // high, medium, low
}

// ScoreFactor is one evaluated rubric dimension. Immutable once attached to a
// ProposalScore.
type ScoreFactor struct {
	ID                     string       `json:"id"`
	FactorType             FactorType   `json:"factorType"`
	FactorWeight           float64      `json:"factorWeight"` // 0.0-1.0
	RawScore               float64      `json:"rawScore"`     // 0-100, one-decimal precision
	WeightedScore          float64      `json:"weightedScore"`
	EvidenceSummary        string       `json:"evidenceSummary"`
	ImprovementSuggestions []Suggestion `json:"improvementSuggestions"`
}

// ProposalScore is an immutable score snapshot. Recalculation creates a new
// snapshot; readers always want the one with the latest ScoreDate.
type ProposalScore struct {
	ID              string          `json:"id"`
	ProposalID      string          `json:"proposalId"`
	OrganizationID  string          `json:"organizationId"`
	ScoreDate       time.Time       `json:"scoreDate"`
	OverallScore    int             `json:"overallScore"` // 0-100
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	AIModelUsed     *string         `json:"aiModelUsed"` // nil when heuristics scored everything
	CreatedBy       string          `json:"createdBy"`
	Factors         []ScoreFactor   `json:"factors"`
}

// Factor returns the factor of the given type, or nil.
func (s *ProposalScore) Factor(ft FactorType) *ScoreFactor {
	for i := range s.Factors {
		if s.Factors[i].FactorType == ft {
			return &s.Factors[i]
		}
	}
	return nil
}

// ScoreImprovement is a derived, never-persisted improvement action ranked by
// recoverable score points.
type ScoreImprovement struct {
	Priority      int        `json:"priority"` // 1-based, lower = more urgent
	Factor        FactorType `json:"factor"`
	CurrentScore  float64    `json:"currentScore"`
	PotentialGain int        `json:"potentialGain"`
	Action        string     `json:"action"`
	Details       string     `json:"details"`
}

// ScoreTrend labels the direction of recent score history.
type ScoreTrend string

const (
	TrendImproving ScoreTrend = "improving"
	TrendDeclining ScoreTrend = "declining"
	TrendStable    ScoreTrend = "stable"
)

// Trend compares the two most recent snapshots with a ±5 dead band.
func Trend(history []ProposalScore) ScoreTrend {
	if len(history) < 2 {
		return TrendStable
	}
	recent := history[0].OverallScore
	previous := history[1].OverallScore
	switch {
	case recent > previous+5:
		return TrendImproving
	case recent < previous-5:
		return TrendDeclining
	default:
		return TrendStable
	}
}
