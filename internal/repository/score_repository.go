// internal/repository/score_repository.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"proposal-workers/internal/models"
)

// ScoreRepository persists proposal score snapshots. Snapshots are
// append-only; a recalculation inserts a new row and never touches old ones.
type ScoreRepository struct {
	db *sql.DB
}

func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// SaveScore writes the snapshot and all its factors in one transaction.
// Assigns IDs when the caller left them empty.
func (r *ScoreRepository) SaveScore(ctx context.Context, score *models.ProposalScore) error {
	if score.ID == "" {
		score.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin score transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO proposal_scores (id, proposal_id, organization_id, score_date,
		       overall_score, confidence_level, ai_model_used, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		score.ID, score.ProposalID, score.OrganizationID, score.ScoreDate,
		score.OverallScore, score.ConfidenceLevel, score.AIModelUsed, score.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert proposal score: %w", err)
	}

	for i := range score.Factors {
		f := &score.Factors[i]
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		suggestions, err := json.Marshal(f.ImprovementSuggestions)
		if err != nil {
			return fmt.Errorf("marshal suggestions for %s: %w", f.FactorType, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO score_factors (id, score_id, factor_type, factor_weight,
			       raw_score, weighted_score, evidence_summary, improvement_suggestions)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			f.ID, score.ID, f.FactorType, f.FactorWeight,
			f.RawScore, f.WeightedScore, f.EvidenceSummary, suggestions,
		)
		if err != nil {
			return fmt.Errorf("insert score factor %s: %w", f.FactorType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score transaction: %w", err)
	}
	return nil
}

// LatestScore returns the most recent snapshot with its factors, or
// sql.ErrNoRows when the proposal was never scored.
func (r *ScoreRepository) LatestScore(ctx context.Context, proposalID string) (*models.ProposalScore, error) {
	score := &models.ProposalScore{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, proposal_id, organization_id, score_date, overall_score,
		       confidence_level, ai_model_used, created_by
		FROM proposal_scores
		WHERE proposal_id = $1
		ORDER BY score_date DESC
		LIMIT 1`, proposalID).Scan(
		&score.ID, &score.ProposalID, &score.OrganizationID, &score.ScoreDate,
		&score.OverallScore, &score.ConfidenceLevel, &score.AIModelUsed, &score.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	factors, err := r.loadFactors(ctx, score.ID)
	if err != nil {
		return nil, err
	}
	score.Factors = factors
	return score, nil
}

// ScoreHistory returns snapshots newest first, without factors. Used for
// trend analysis and benchmark history.
func (r *ScoreRepository) ScoreHistory(ctx context.Context, proposalID string, limit int) ([]models.ProposalScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, proposal_id, organization_id, score_date, overall_score,
		       confidence_level, ai_model_used, created_by
		FROM proposal_scores
		WHERE proposal_id = $1
		ORDER BY score_date DESC
		LIMIT $2`, proposalID, limit)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var history []models.ProposalScore
	for rows.Next() {
		var s models.ProposalScore
		if err := rows.Scan(
			&s.ID, &s.ProposalID, &s.OrganizationID, &s.ScoreDate, &s.OverallScore,
			&s.ConfidenceLevel, &s.AIModelUsed, &s.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan score history row: %w", err)
		}
		history = append(history, s)
	}
	return history, rows.Err()
}

// LatestScoresForOrg returns the latest overall score of every scored
// proposal in the organization whose lifecycle status is in statuses. This
// is the benchmark peer population: percentile rank only compares proposals
// at a status-equivalent stage.
func (r *ScoreRepository) LatestScoresForOrg(ctx context.Context, organizationID string, statuses []models.ProposalStatus) (map[string]int, error) {
	stages := make([]string, len(statuses))
	for i, s := range statuses {
		stages[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (s.proposal_id) s.proposal_id, s.overall_score
		FROM proposal_scores s
		JOIN proposals p ON p.id = s.proposal_id
		WHERE s.organization_id = $1 AND p.status = ANY($2)
		ORDER BY s.proposal_id, s.score_date DESC`, organizationID, pq.Array(stages))
	if err != nil {
		return nil, fmt.Errorf("query org scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var proposalID string
		var overall int
		if err := rows.Scan(&proposalID, &overall); err != nil {
			return nil, fmt.Errorf("scan org score row: %w", err)
		}
		scores[proposalID] = overall
	}
	return scores, rows.Err()
}

func (r *ScoreRepository) loadFactors(ctx context.Context, scoreID string) ([]models.ScoreFactor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, factor_type, factor_weight, raw_score, weighted_score,
		       evidence_summary, improvement_suggestions
		FROM score_factors
		WHERE score_id = $1
		ORDER BY factor_type`, scoreID)
	if err != nil {
		return nil, fmt.Errorf("query score factors: %w", err)
	}
	defer rows.Close()

	var factors []models.ScoreFactor
	for rows.Next() {
		var f models.ScoreFactor
		var suggestions []byte
		if err := rows.Scan(
			&f.ID, &f.FactorType, &f.FactorWeight, &f.RawScore, &f.WeightedScore,
			&f.EvidenceSummary, &suggestions,
		); err != nil {
			return nil, fmt.Errorf("scan score factor row: %w", err)
		}
		if len(suggestions) > 0 {
			if err := json.Unmarshal(suggestions, &f.ImprovementSuggestions); err != nil {
				return nil, fmt.Errorf("unmarshal suggestions: %w", err)
			}
		}
		factors = append(factors, f)
	}
	return factors, rows.Err()
}
