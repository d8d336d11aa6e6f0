// internal/workers/scoring/go-nogo-summary/models.go
package gonogosummary

import "proposal-workers/internal/models"

type Input struct {
	ProposalID string `json:"proposalId"`
}

type Output struct {
	Summary        *models.GoNoGoSummary       `json:"goNoGoSummary"`
	Recommendation models.GoNoGoRecommendation `json:"recommendation"`
	ReadinessLevel models.ReadinessLevel       `json:"readinessLevel"`
	HasScore       bool                        `json:"hasScore"`
}
