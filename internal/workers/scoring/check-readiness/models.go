// internal/workers/scoring/check-readiness/models.go
package checkreadiness

import "proposal-workers/internal/models"

type Input struct {
	ProposalID   string `json:"proposalId"`
	TeamType     string `json:"teamType"`
	CheckedBy    string `json:"checkedBy"`
	ForceRecheck bool   `json:"forceRecheck"`
}

type Output struct {
	Indicator      *models.ReadinessIndicator `json:"readinessIndicator"`
	ReadinessLevel models.ReadinessLevel      `json:"readinessLevel"`
	ReadinessScore int                        `json:"readinessScore"`
	BlockerCount   int                        `json:"blockerCount"`
	WarningCount   int                        `json:"warningCount"`
}
