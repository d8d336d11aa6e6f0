// internal/workers/scoring/calculate-proposal-score/handler.go
package calculateproposalscore

import (
	"context"
	"encoding/json"
	goerrors "errors"
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
	TaskType = "calculate-proposal-score"
)

// ScoreCalculator is the slice of the scoring service this worker drives.
type ScoreCalculator interface {
	Calculate(ctx context.Context, proposalID, requestedBy string, opts scoring.Options) (*models.ProposalScore, error)
}

type Handler struct {
	config   *Config
	service  ScoreCalculator
	registry *registry.ActivityRegistry
	logger   logger.Logger
}

func NewHandler(config *Config, service ScoreCalculator, reg *registry.ActivityRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		service:  service,
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if err := h.registry.ValidateInput(TaskType, []byte(job.Variables)); err != nil {
		h.throwStandard(client, job, errors.NewSchemaValidationError(TaskType, err.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.throwStandard(client, job, classify(err, input.ProposalID))
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	score, err := h.service.Calculate(ctx, input.ProposalID, input.RequestedBy, scoring.Options{
		Force: input.ForceRecalculate,
		Wait:  false,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("proposal scored", map[string]interface{}{
		"proposalId":   input.ProposalID,
		"overallScore": score.OverallScore,
		"confidence":   score.ConfidenceLevel,
	})

	return &Output{
		ProposalScore:   score,
		OverallScore:    score.OverallScore,
		ConfidenceLevel: score.ConfidenceLevel,
		AIModelUsed:     score.AIModelUsed,
	}, nil
}

func classify(err error, proposalID string) *errors.StandardError {
	switch {
	case goerrors.Is(err, scoring.ErrNoContent):
		return errors.NewNoContentError(proposalID)
	case goerrors.Is(err, scoring.ErrCalculationInFlight):
		return errors.NewScoringInProgressError(proposalID)
	case goerrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("scoring", err)
	default:
		return errors.NewQueryExecutionFailedError("calculate score", err)
	}
}

func (h *Handler) throwStandard(client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	bpmnErr := errors.ConvertToBPMNError(stdErr)
	h.failJob(client, job, bpmnErr.Code, bpmnErr.Message, int32(bpmnErr.Retries))
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
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
