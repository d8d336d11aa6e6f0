// internal/repository/readiness_repository.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"proposal-workers/internal/models"
)

// ReadinessRepository persists readiness checks. Checks append to history;
// reads take the latest per (proposal, team), which gives replace semantics
// to callers while keeping the audit trail.
type ReadinessRepository struct {
	db *sql.DB
}

func NewReadinessRepository(db *sql.DB) *ReadinessRepository {
	return &ReadinessRepository{db: db}
}

// SaveIndicator appends one readiness check.
func (r *ReadinessRepository) SaveIndicator(ctx context.Context, ind *models.ReadinessIndicator) error {
	if ind.ID == "" {
		ind.ID = uuid.New().String()
	}
	blockers, err := json.Marshal(ind.Blockers)
	if err != nil {
		return fmt.Errorf("marshal blockers: %w", err)
	}
	warnings, err := json.Marshal(ind.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO readiness_indicators (id, proposal_id, team_type, checked_at,
		       readiness_level, readiness_score, blockers, warnings, checked_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ind.ID, ind.ProposalID, ind.TeamType, ind.CheckedAt,
		ind.Level, ind.ReadinessScore, blockers, warnings, ind.CheckedBy,
	)
	if err != nil {
		return fmt.Errorf("insert readiness indicator: %w", err)
	}
	return nil
}

// LatestIndicator returns the most recent check for one gate, or
// sql.ErrNoRows when the gate was never checked.
func (r *ReadinessRepository) LatestIndicator(ctx context.Context, proposalID string, team models.TeamType) (*models.ReadinessIndicator, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, proposal_id, team_type, checked_at, readiness_level, readiness_score,
		       blockers, warnings, checked_by
		FROM readiness_indicators
		WHERE proposal_id = $1 AND team_type = $2
		ORDER BY checked_at DESC
		LIMIT 1`, proposalID, team)
	return scanIndicator(row)
}

// LatestIndicators returns the most recent check of every gate that was ever
// checked for the proposal.
func (r *ReadinessRepository) LatestIndicators(ctx context.Context, proposalID string) (map[models.TeamType]*models.ReadinessIndicator, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (team_type) id, proposal_id, team_type, checked_at,
		       readiness_level, readiness_score, blockers, warnings, checked_by
		FROM readiness_indicators
		WHERE proposal_id = $1
		ORDER BY team_type, checked_at DESC`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("query readiness indicators: %w", err)
	}
	defer rows.Close()

	indicators := make(map[models.TeamType]*models.ReadinessIndicator)
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, err
		}
		indicators[ind.TeamType] = ind
	}
	return indicators, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIndicator(row rowScanner) (*models.ReadinessIndicator, error) {
	ind := &models.ReadinessIndicator{}
	var blockers, warnings []byte
	err := row.Scan(
		&ind.ID, &ind.ProposalID, &ind.TeamType, &ind.CheckedAt,
		&ind.Level, &ind.ReadinessScore, &blockers, &warnings, &ind.CheckedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(blockers) > 0 {
		if err := json.Unmarshal(blockers, &ind.Blockers); err != nil {
			return nil, fmt.Errorf("unmarshal blockers: %w", err)
		}
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &ind.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
	}
	return ind, nil
}
