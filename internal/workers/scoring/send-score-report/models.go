// internal/workers/scoring/send-score-report/models.go
package sendscorereport

import "proposal-workers/internal/models"

type Input struct {
	ProposalID   string                `json:"proposalId"`
	ProposalName string                `json:"proposalName,omitempty"`
	Recipients   []string              `json:"recipients"`
	Summary      *models.GoNoGoSummary `json:"goNoGoSummary,omitempty"`
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

type Output struct {
	ReportID string   `json:"reportId"`
	Status   string   `json:"status"`
	Channels []string `json:"channels"`
	SentAt   string   `json:"sentAt"`
}
