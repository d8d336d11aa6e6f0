// internal/workers/scoring/check-readiness/handler_test.go
package checkreadiness

import (
	"context"
	"testing"
	"time"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/models"
	"proposal-workers/internal/scoring/readiness"
	"proposal-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockChecker struct {
	indicator *models.ReadinessIndicator
	err       error
	lastTeam  models.TeamType
	lastForce bool
}

func (m *mockChecker) Check(_ context.Context, _ string, team models.TeamType, _ string, force bool) (*models.ReadinessIndicator, error) {
	m.lastTeam = team
	m.lastForce = force
	return m.indicator, m.err
}

func readyIndicator() *models.ReadinessIndicator {
	return &models.ReadinessIndicator{
		ID:             "ri-1",
		ProposalID:     "prop-1",
		TeamType:       models.TeamRed,
		ReadinessScore: 100,
		Level:          models.ReadinessReady,
		Blockers:       []models.BlockerItem{},
		Warnings:       []models.WarningItem{},
		CheckedAt:      time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		CheckedBy:      "user-3",
	}
}

func newTestHandler(t *testing.T, checker ReadinessChecker) *Handler {
	return NewHandler(LoadConfig(), checker, nil, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func TestExecute_ReadyVerdict(t *testing.T) {
	checker := &mockChecker{indicator: readyIndicator()}
	h := newTestHandler(t, checker)

	output, err := h.Execute(context.Background(), &Input{
		ProposalID: "prop-1",
		TeamType:   "red_team",
		CheckedBy:  "user-3",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ReadinessReady, output.ReadinessLevel)
	assert.Equal(t, 100, output.ReadinessScore)
	assert.Zero(t, output.BlockerCount)
	assert.Zero(t, output.WarningCount)
	assert.Equal(t, models.TeamRed, checker.lastTeam)
	assert.False(t, checker.lastForce)
}

func TestExecute_BlockedVerdictCountsItems(t *testing.T) {
	indicator := readyIndicator()
	indicator.Level = models.ReadinessNotReady
	indicator.ReadinessScore = 35
	indicator.Blockers = []models.BlockerItem{
		{Category: "content", Description: "Section missing or too thin", Section: "Technical Approach"},
	}
	indicator.Warnings = []models.WarningItem{
		{Category: "quality", Description: "Low overall score", Recommendation: "Revise weakest factors"},
	}
	h := newTestHandler(t, &mockChecker{indicator: indicator})

	output, err := h.Execute(context.Background(), &Input{ProposalID: "prop-1", TeamType: "gold_team"})

	require.NoError(t, err)
	assert.Equal(t, models.ReadinessNotReady, output.ReadinessLevel)
	assert.Equal(t, 1, output.BlockerCount)
	assert.Equal(t, 1, output.WarningCount)
	require.NotNil(t, output.Indicator)
	assert.Equal(t, "Technical Approach", output.Indicator.Blockers[0].Section)
}

func TestExecute_ForceRecheckPropagates(t *testing.T) {
	checker := &mockChecker{indicator: readyIndicator()}
	h := newTestHandler(t, checker)

	_, err := h.Execute(context.Background(), &Input{ProposalID: "prop-1", TeamType: "red_team", ForceRecheck: true})

	require.NoError(t, err)
	assert.True(t, checker.lastForce)
}

func TestExecute_InvalidTeamPropagates(t *testing.T) {
	h := newTestHandler(t, &mockChecker{err: readiness.ErrInvalidTeamType})

	_, err := h.Execute(context.Background(), &Input{ProposalID: "prop-1", TeamType: "blue_team"})

	assert.ErrorIs(t, err, readiness.ErrInvalidTeamType)
}

func TestInputSchema_EnforcesTeamEnum(t *testing.T) {
	reg := registry.Default()
	assert.NoError(t, reg.ValidateInput(TaskType, []byte(`{"proposalId":"p","teamType":"submission"}`)))
	assert.Error(t, reg.ValidateInput(TaskType, []byte(`{"proposalId":"p","teamType":"blue_team"}`)))
	assert.Error(t, reg.ValidateInput(TaskType, []byte(`{"proposalId":"p"}`)))
}
