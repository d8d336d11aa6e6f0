// internal/repository/benchmark_repository.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"proposal-workers/internal/models"
)

// BenchmarkRepository keeps every benchmark calculation as its own row so the
// UI can chart percentile movement over time.
type BenchmarkRepository struct {
	db *sql.DB
}

func NewBenchmarkRepository(db *sql.DB) *BenchmarkRepository {
	return &BenchmarkRepository{db: db}
}

// SaveBenchmark appends one benchmark row.
func (r *BenchmarkRepository) SaveBenchmark(ctx context.Context, b *models.Benchmark) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	factorScores, err := json.Marshal(b.FactorScores)
	if err != nil {
		return fmt.Errorf("marshal factor scores: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO proposal_benchmarks (id, proposal_id, organization_id,
		       benchmark_date, overall_score, factor_scores, population_size,
		       org_percentile, org_avg_at_stage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.ProposalID, b.OrganizationID, b.BenchmarkDate,
		b.OverallScore, factorScores, b.PopulationSize,
		b.OrgPercentile, b.OrgAvgAtStage,
	)
	if err != nil {
		return fmt.Errorf("insert benchmark: %w", err)
	}
	return nil
}

// BenchmarkHistory returns benchmark rows newest first.
func (r *BenchmarkRepository) BenchmarkHistory(ctx context.Context, proposalID string, limit int) ([]models.Benchmark, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, proposal_id, organization_id, benchmark_date, overall_score,
		       factor_scores, population_size, org_percentile, org_avg_at_stage
		FROM proposal_benchmarks
		WHERE proposal_id = $1
		ORDER BY benchmark_date DESC
		LIMIT $2`, proposalID, limit)
	if err != nil {
		return nil, fmt.Errorf("query benchmark history: %w", err)
	}
	defer rows.Close()

	var history []models.Benchmark
	for rows.Next() {
		var b models.Benchmark
		var factorScores []byte
		if err := rows.Scan(
			&b.ID, &b.ProposalID, &b.OrganizationID, &b.BenchmarkDate, &b.OverallScore,
			&factorScores, &b.PopulationSize, &b.OrgPercentile, &b.OrgAvgAtStage,
		); err != nil {
			return nil, fmt.Errorf("scan benchmark row: %w", err)
		}
		if len(factorScores) > 0 {
			if err := json.Unmarshal(factorScores, &b.FactorScores); err != nil {
				return nil, fmt.Errorf("unmarshal factor scores: %w", err)
			}
		}
		history = append(history, b)
	}
	return history, rows.Err()
}
