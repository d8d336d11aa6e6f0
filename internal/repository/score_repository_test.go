package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func sampleScore() *models.ProposalScore {
	model := "gpt-4o"
	return &models.ProposalScore{
		ID:              "score-1",
		ProposalID:      "prop-1",
		OrganizationID:  "org-1",
		ScoreDate:       time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
		OverallScore:    69,
		ConfidenceLevel: models.ConfidenceHigh,
		AIModelUsed:     &model,
		CreatedBy:       "user-1",
		Factors: []models.ScoreFactor{
			{
				ID:              "factor-1",
				FactorType:      models.FactorCompleteness,
				FactorWeight:    0.30,
				RawScore:        90,
				WeightedScore:   27,
				EvidenceSummary: "All required sections present",
				ImprovementSuggestions: []models.Suggestion{
					{Action: "Expand staffing plan", Details: "Add key personnel bios", Priority: "medium"},
				},
			},
		},
	}
}

// ==========================
// SaveScore Tests
// ==========================

func TestScoreRepository_SaveScore_CommitsScoreAndFactors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)
	score := sampleScore()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO proposal_scores").
		WithArgs(score.ID, score.ProposalID, score.OrganizationID, score.ScoreDate,
			score.OverallScore, score.ConfidenceLevel, score.AIModelUsed, score.CreatedBy).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO score_factors").
		WithArgs("factor-1", score.ID, models.FactorCompleteness, 0.30,
			90.0, 27.0, "All required sections present", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveScore(context.Background(), score)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepository_SaveScore_RollsBackOnFactorFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)
	score := sampleScore()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO proposal_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO score_factors").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.SaveScore(context.Background(), score)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert score factor")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepository_SaveScore_AssignsMissingIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)
	score := sampleScore()
	score.ID = ""
	score.Factors[0].ID = ""

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO proposal_scores").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO score_factors").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveScore(context.Background(), score)

	assert.NoError(t, err)
	assert.NotEmpty(t, score.ID)
	assert.NotEmpty(t, score.Factors[0].ID)
}

// ==========================
// LatestScore Tests
// ==========================

func TestScoreRepository_LatestScore_ReturnsScoreWithFactors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)
	scoreDate := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM proposal_scores").
		WithArgs("prop-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "proposal_id", "organization_id", "score_date", "overall_score",
			"confidence_level", "ai_model_used", "created_by",
		}).AddRow("score-1", "prop-1", "org-1", scoreDate, 69, "high", nil, "user-1"))
	mock.ExpectQuery("SELECT (.+) FROM score_factors").
		WithArgs("score-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "factor_type", "factor_weight", "raw_score", "weighted_score",
			"evidence_summary", "improvement_suggestions",
		}).
			AddRow("f-1", "completeness", 0.30, 90.0, 27.0, "strong", []byte(`[{"action":"a","details":"d","priority":"low"}]`)).
			AddRow("f-2", "technical_depth", 0.30, 40.0, 12.0, "thin", nil))

	score, err := repo.LatestScore(context.Background(), "prop-1")

	require.NoError(t, err)
	assert.Equal(t, 69, score.OverallScore)
	assert.Nil(t, score.AIModelUsed)
	require.Len(t, score.Factors, 2)
	assert.Len(t, score.Factors[0].ImprovementSuggestions, 1)
	assert.Empty(t, score.Factors[1].ImprovementSuggestions)
}

func TestScoreRepository_LatestScore_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM proposal_scores").
		WithArgs("prop-unknown").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LatestScore(context.Background(), "prop-unknown")

	assert.ErrorIs(t, err, sql.ErrNoRows)
}

// ==========================
// History and Population Tests
// ==========================

func TestScoreRepository_ScoreHistory_NewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM proposal_scores").
		WithArgs("prop-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "proposal_id", "organization_id", "score_date", "overall_score",
			"confidence_level", "ai_model_used", "created_by",
		}).
			AddRow("s-2", "prop-1", "org-1", time.Now(), 75, "high", nil, "user-1").
			AddRow("s-1", "prop-1", "org-1", time.Now().Add(-24*time.Hour), 60, "medium", nil, "user-1"))

	history, err := repo.ScoreHistory(context.Background(), "prop-1", 10)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 75, history[0].OverallScore)
	assert.Equal(t, models.TrendImproving, models.Trend(history))
}

func TestScoreRepository_LatestScoresForOrg(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)

	mock.ExpectQuery(`SELECT DISTINCT ON \(s\.proposal_id\)`).
		WithArgs("org-1", pq.Array([]string{"draft", "in_review", "submitted", "awarded", "lost"})).
		WillReturnRows(sqlmock.NewRows([]string{"proposal_id", "overall_score"}).
			AddRow("prop-1", 69).
			AddRow("prop-2", 82).
			AddRow("prop-3", 55))

	scores, err := repo.LatestScoresForOrg(context.Background(), "org-1",
		models.StatusesAtOrAfter(models.StatusDraft))

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"prop-1": 69, "prop-2": 82, "prop-3": 55}, scores)
}

func TestScoreRepository_LatestScoresForOrg_FiltersByStage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScoreRepository(db)

	// Only the requested stages reach the query, so a draft-stage peer can
	// never enter a submitted proposal's comparison population.
	mock.ExpectQuery(`JOIN proposals p ON p\.id = s\.proposal_id`).
		WithArgs("org-1", pq.Array([]string{"submitted", "awarded", "lost"})).
		WillReturnRows(sqlmock.NewRows([]string{"proposal_id", "overall_score"}).
			AddRow("prop-2", 82))

	scores, err := repo.LatestScoresForOrg(context.Background(), "org-1",
		models.StatusesAtOrAfter(models.StatusSubmitted))

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"prop-2": 82}, scores)
	require.NoError(t, mock.ExpectationsWereMet())
}
