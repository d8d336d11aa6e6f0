// internal/workers/scoring/get-score-improvements/handler.go
package getscoreimprovements

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"proposal-workers/internal/common/errors"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/models"
	"proposal-workers/internal/scoring"
	"proposal-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "get-score-improvements"
)

// ScoreReader covers the read side of the scoring service.
type ScoreReader interface {
	GetLatest(ctx context.Context, proposalID string) (*models.ProposalScore, error)
	GetHistory(ctx context.Context, proposalID string, limit int) ([]models.ProposalScore, models.ScoreTrend, error)
}

type Handler struct {
	config   *Config
	scores   ScoreReader
	registry *registry.ActivityRegistry
	logger   logger.Logger
}

func NewHandler(config *Config, scores ScoreReader, reg *registry.ActivityRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		scores:   scores,
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if err := h.registry.ValidateInput(TaskType, []byte(job.Variables)); err != nil {
		bpmnErr := errors.ConvertToBPMNError(errors.NewSchemaValidationError(TaskType, err.Error()))
		h.failJob(client, job, bpmnErr.Code, bpmnErr.Message)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		var bpmnErr *errors.BPMNError
		if stdErr, ok := err.(*errors.StandardError); ok {
			bpmnErr = errors.ConvertToBPMNError(stdErr)
		} else {
			bpmnErr = errors.ConvertToBPMNError(errors.NewQueryExecutionFailedError("get improvements", err))
		}
		h.failJob(client, job, bpmnErr.Code, bpmnErr.Message)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	score, err := h.scores.GetLatest(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, errors.NewScoreNotFoundError(input.ProposalID)
	}

	limit := input.HistoryLimit
	if limit <= 0 {
		limit = h.config.HistoryLimit
	}
	trend := models.TrendStable
	if _, t, err := h.scores.GetHistory(ctx, input.ProposalID, limit); err == nil {
		trend = t
	} else {
		h.logger.Warn("score history unavailable, trend defaults to stable", map[string]interface{}{
			"proposalId": input.ProposalID,
			"error":      err.Error(),
		})
	}

	improvements := scoring.RankImprovements(score)
	if len(improvements) > h.config.MaxImprovements {
		improvements = improvements[:h.config.MaxImprovements]
	}

	h.logger.Info("improvements ranked", map[string]interface{}{
		"proposalId":   input.ProposalID,
		"overallScore": score.OverallScore,
		"count":        len(improvements),
	})

	return &Output{
		ProposalID:      input.ProposalID,
		OverallScore:    score.OverallScore,
		ConfidenceLevel: score.ConfidenceLevel,
		ScoreDate:       score.ScoreDate.UTC().Format(time.RFC3339),
		Trend:           trend,
		Improvements:    improvements,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}
