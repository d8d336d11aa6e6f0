// internal/models/benchmark.go
package models

import "time"

// Benchmark positions one proposal's latest score against its organizational
// peer population. One row per calculation request; history is kept for trend
// display. Percentile and average are nil when the population is too small to
// be meaningful.
type Benchmark struct {
	ID             string                 `json:"id"`
	ProposalID     string                 `json:"proposalId"`
	OrganizationID string                 `json:"organizationId"`
	BenchmarkDate  time.Time              `json:"benchmarkDate"`
	OverallScore   int                    `json:"overallScore"`
	FactorScores   map[FactorType]float64 `json:"factorScores"` // mirrored from the latest snapshot
	PopulationSize int                    `json:"populationSize"`
	OrgPercentile  *int                   `json:"orgPercentile"`  // 0-100
	OrgAvgAtStage  *float64               `json:"orgAvgAtStage"`
}
