// internal/workers/scoring/get-score-improvements/models.go
package getscoreimprovements

import "proposal-workers/internal/models"

type Input struct {
	ProposalID   string `json:"proposalId"`
	HistoryLimit int    `json:"historyLimit,omitempty"`
}

type Output struct {
	ProposalID      string                    `json:"proposalId"`
	OverallScore    int                       `json:"overallScore"`
	ConfidenceLevel models.ConfidenceLevel    `json:"confidenceLevel"`
	ScoreDate       string                    `json:"scoreDate"`
	Trend           models.ScoreTrend         `json:"trend"`
	Improvements    []models.ScoreImprovement `json:"improvements"`
}
