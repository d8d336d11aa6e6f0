// internal/workers/scoring/calculate-benchmark/models.go
package calculatebenchmark

import "proposal-workers/internal/models"

type Input struct {
	ProposalID string `json:"proposalId"`
}

type Output struct {
	Benchmark      *models.Benchmark `json:"benchmark"`
	OverallScore   int               `json:"overallScore"`
	OrgPercentile  *int              `json:"orgPercentile"`
	OrgAvgAtStage  *float64          `json:"orgAvgAtStage"`
	PopulationSize int               `json:"populationSize"`
	HasComparison  bool              `json:"hasComparison"`
}
