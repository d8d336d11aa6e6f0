// internal/workers/scoring/calculate-proposal-score/models.go
package calculateproposalscore

import "proposal-workers/internal/models"

type Input struct {
	ProposalID       string `json:"proposalId"`
	RequestedBy      string `json:"requestedBy"`
	ForceRecalculate bool   `json:"forceRecalculate"`
}

type Output struct {
	ProposalScore   *models.ProposalScore  `json:"proposalScore"`
	OverallScore    int                    `json:"overallScore"`
	ConfidenceLevel models.ConfidenceLevel `json:"confidenceLevel"`
	AIModelUsed     *string                `json:"aiModelUsed"`
}
