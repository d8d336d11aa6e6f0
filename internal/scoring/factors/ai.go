// internal/scoring/factors/ai.go
package factors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"proposal-workers/internal/common/genai"
	"proposal-workers/internal/common/logger"

	"proposal-workers/internal/models"
)

// AIEvaluator scores a factor by sending its rubric prompt to the
// text-generation service and parsing the strict JSON reply. Parse failures
// surface as ErrAIUnparseable so the aggregator can fall back.
type AIEvaluator struct {
	gen genai.Generator
	log logger.Logger
}

func NewAIEvaluator(gen genai.Generator, log logger.Logger) *AIEvaluator {
	return &AIEvaluator{gen: gen, log: log}
}

type aiScorePayload struct {
	Score        *float64            `json:"score"`
	Evidence     string              `json:"evidence"`
	Improvements []models.Suggestion `json:"improvements"`
}

func (e *AIEvaluator) Evaluate(ctx context.Context, factor models.FactorType, content *models.ProposalContent, org *models.OrgProfile) (*Result, error) {
	tpl, ok := TemplateFor(factor)
	if !ok {
		return nil, fmt.Errorf("no rubric template for factor %s", factor)
	}
	if !e.gen.Available() {
		return nil, genai.ErrUnavailable
	}

	text, err := e.gen.Generate(ctx, tpl.SystemPrompt, tpl.BuildUser(content, org))
	if err != nil {
		return nil, fmt.Errorf("generate %s score: %w", factor, err)
	}

	payload, err := parseScorePayload(text)
	if err != nil {
		e.log.Warn("ai score response unparseable", map[string]interface{}{
			"factorType": string(factor),
			"proposalId": content.ProposalID,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &Result{
		RawScore:     *payload.Score,
		Evidence:     payload.Evidence,
		Improvements: payload.Improvements,
		ModelUsed:    e.gen.Model(),
	}, nil
}

func parseScorePayload(text string) (*aiScorePayload, error) {
	cleaned := strings.TrimSpace(genai.StripCodeFence(text))

	var payload aiScorePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUnparseable, err)
	}
	if payload.Score == nil {
		return nil, fmt.Errorf("%w: missing score field", ErrAIUnparseable)
	}
	if *payload.Score < 0 || *payload.Score > 100 {
		return nil, fmt.Errorf("%w: score %v out of [0,100]", ErrAIUnparseable, *payload.Score)
	}
	return &payload, nil
}
