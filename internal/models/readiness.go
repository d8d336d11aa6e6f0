// internal/models/readiness.go
package models

import "time"

// TeamType is a color-team review gate in the proposal lifecycle. Gates are
// sequential: pink, then red, then gold, then submission.
type TeamType string

const (
	TeamPink       TeamType = "pink_team"
	TeamRed        TeamType = "red_team"
	TeamGold       TeamType = "gold_team"
	TeamSubmission TeamType = "submission"
)

// TeamOrder lists the gates in lifecycle order.
var TeamOrder = []TeamType{TeamPink, TeamRed, TeamGold, TeamSubmission}

// ValidTeamType reports whether t is a known review gate.
func ValidTeamType(t TeamType) bool {
	for _, known := range TeamOrder {
		if t == known {
			return true
		}
	}
	return false
}

// ReadinessLevel is the state of a proposal relative to one gate. pending
// means no check was ever run; the other three are re-enterable: a proposal
// can regress from ready just as it can improve from not_ready.
type ReadinessLevel string

const (
	ReadinessPending   ReadinessLevel = "pending"
	ReadinessReady     ReadinessLevel = "ready"
	ReadinessNeedsWork ReadinessLevel = "needs_work"
	ReadinessNotReady  ReadinessLevel = "not_ready"
)

// BlockerItem is a hard gating failure. Any blocker forces not_ready.
type BlockerItem struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Section     string `json:"section"`
}

// WarningItem is a soft shortfall: present but below target.
type WarningItem struct {
	Category       string `json:"category"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// ReadinessIndicator is one persisted readiness check. Checks append to
// history; readers take the latest per (proposal, team), which gives replace
// semantics while keeping the trail for trend views.
type ReadinessIndicator struct {
	ID             string         `json:"id"`
	ProposalID     string         `json:"proposalId"`
	TeamType       TeamType       `json:"teamType"`
	ReadinessScore int            `json:"readinessScore"` // 0-100
	Level          ReadinessLevel `json:"readinessLevel"`
	Blockers       []BlockerItem  `json:"blockers"`
	Warnings       []WarningItem  `json:"warnings"`
	CheckedAt      time.Time      `json:"checkedAt"`
	CheckedBy      string         `json:"checkedBy"`
}

// GoNoGoRecommendation is the headline verdict of a go/no-go summary.
type GoNoGoRecommendation string

const (
	RecommendProceed     GoNoGoRecommendation = "Proceed"
	RecommendWithCaution GoNoGoRecommendation = "Proceed with caution"
	RecommendNoGo        GoNoGoRecommendation = "Do not proceed"
)

// GoNoGoSummary is the assembled decision package. Derived on demand, never
// persisted. ReadinessLevel reflects the most advanced gate with a check on
// file.
type GoNoGoSummary struct {
	ProposalID     string               `json:"proposalId"`
	GeneratedAt    time.Time            `json:"generatedAt"`
	OverallScore   *int                 `json:"overallScore"` // nil when never scored
	Confidence     *ConfidenceLevel     `json:"confidenceLevel"`
	Trend          ScoreTrend           `json:"trend"`
	ReadinessLevel ReadinessLevel       `json:"readinessLevel"`
	Recommendation GoNoGoRecommendation `json:"recommendation"`
	KeyStrengths   []string             `json:"keyStrengths"` // capped at 3
	KeyRisks       []string             `json:"keyRisks"`     // capped at 3
	NextSteps      []string             `json:"nextSteps"`    // capped at 5
}
