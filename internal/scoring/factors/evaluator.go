// internal/scoring/factors/evaluator.go
package factors

import (
	"context"
	"errors"

	"proposal-workers/internal/models"
)

// Result is the outcome of evaluating one factor. ModelUsed is empty when the
// heuristic path scored it.
type Result struct {
	RawScore     float64
	Evidence     string
	Improvements []models.Suggestion
	ModelUsed    string
}

// Evaluator scores one factor from proposal content and organization context.
// Implementations are pure functions of their inputs and never persist.
type Evaluator interface {
	Evaluate(ctx context.Context, factor models.FactorType, content *models.ProposalContent, org *models.OrgProfile) (*Result, error)
}

// ErrAIUnparseable marks an AI response that could not be parsed into the
// expected score schema. The aggregator catches it and falls back to the
// heuristic path; it never reaches a caller.
var ErrAIUnparseable = errors.New("ai response could not be parsed into score schema")
