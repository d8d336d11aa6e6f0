// internal/workers/scoring/calculate-proposal-score/handler_test.go
package calculateproposalscore

import (
	"context"
	"errors"
	"testing"
	"time"

	cerrors "proposal-workers/internal/common/errors"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/models"
	"proposal-workers/internal/scoring"
	"proposal-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockCalculator struct {
	score    *models.ProposalScore
	err      error
	lastOpts scoring.Options
	calls    int
}

func (m *mockCalculator) Calculate(_ context.Context, proposalID, requestedBy string, opts scoring.Options) (*models.ProposalScore, error) {
	m.calls++
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.score, nil
}

func testScore() *models.ProposalScore {
	model := "claude-sonnet-4"
	return &models.ProposalScore{
		ID:              "score-1",
		ProposalID:      "prop-1",
		OrganizationID:  "org-1",
		ScoreDate:       time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		OverallScore:    72,
		ConfidenceLevel: models.ConfidenceHigh,
		AIModelUsed:     &model,
		Factors: []models.ScoreFactor{
			{FactorType: models.FactorCompleteness, FactorWeight: 0.30, RawScore: 80, WeightedScore: 24},
		},
	}
}

func newTestHandler(t *testing.T, calc ScoreCalculator) *Handler {
	return NewHandler(LoadConfig(), calc, registry.Default(), logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func TestExecute_ReturnsScoreSnapshot(t *testing.T) {
	calc := &mockCalculator{score: testScore()}
	h := newTestHandler(t, calc)

	output, err := h.Execute(context.Background(), &Input{
		ProposalID:  "prop-1",
		RequestedBy: "user-9",
	})

	require.NoError(t, err)
	assert.Equal(t, 72, output.OverallScore)
	assert.Equal(t, models.ConfidenceHigh, output.ConfidenceLevel)
	require.NotNil(t, output.AIModelUsed)
	assert.Equal(t, "claude-sonnet-4", *output.AIModelUsed)
	require.NotNil(t, output.ProposalScore)
	assert.Len(t, output.ProposalScore.Factors, 1)
	assert.False(t, calc.lastOpts.Force)
	assert.False(t, calc.lastOpts.Wait, "worker must not queue behind an in-flight calculation")
}

func TestExecute_ForceFlagPropagates(t *testing.T) {
	calc := &mockCalculator{score: testScore()}
	h := newTestHandler(t, calc)

	_, err := h.Execute(context.Background(), &Input{ProposalID: "prop-1", ForceRecalculate: true})

	require.NoError(t, err)
	assert.True(t, calc.lastOpts.Force)
}

func TestExecute_ServiceErrorsPropagate(t *testing.T) {
	calc := &mockCalculator{err: scoring.ErrNoContent}
	h := newTestHandler(t, calc)

	_, err := h.Execute(context.Background(), &Input{ProposalID: "prop-1"})

	assert.ErrorIs(t, err, scoring.ErrNoContent)
}

func TestClassify_ErrorMapping(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCode      string
		wantRetryable bool
	}{
		{"no content", scoring.ErrNoContent, "NO_CONTENT", false},
		{"in flight", scoring.ErrCalculationInFlight, "SCORING_IN_PROGRESS", true},
		{"deadline", context.DeadlineExceeded, "TIMEOUT_ERROR", true},
		{"unknown", errors.New("pq: connection reset"), "QUERY_EXECUTION_FAILED", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := classify(tt.err, "prop-1")
			assert.Equal(t, tt.wantCode, string(stdErr.Code))
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
		})
	}
}

func TestClassify_InFlightAllowsOneRetry(t *testing.T) {
	bpmnErr := cerrors.ConvertToBPMNError(classify(scoring.ErrCalculationInFlight, "prop-1"))
	assert.Equal(t, "SCORING_IN_PROGRESS", bpmnErr.Code)
	assert.Equal(t, 1, bpmnErr.Retries)
}

func TestClassify_NoContentIsTerminal(t *testing.T) {
	bpmnErr := cerrors.ConvertToBPMNError(classify(scoring.ErrNoContent, "prop-1"))
	assert.Equal(t, "NO_CONTENT", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Contains(t, bpmnErr.Message, "no content")
}

func TestInputSchema_RejectsMissingProposalID(t *testing.T) {
	reg := registry.Default()
	assert.Error(t, reg.ValidateInput(TaskType, []byte(`{"requestedBy":"user-1"}`)))
	assert.NoError(t, reg.ValidateInput(TaskType, []byte(`{"proposalId":"prop-1"}`)))
}
