// internal/workers/scoring/check-readiness/handler.go
package checkreadiness

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"

	"proposal-workers/internal/common/errors"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/models"
	"proposal-workers/internal/scoring/readiness"
	"proposal-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-readiness"
)

// ReadinessChecker runs the color-team criteria for one proposal.
type ReadinessChecker interface {
	Check(ctx context.Context, proposalID string, team models.TeamType, checkedBy string, force bool) (*models.ReadinessIndicator, error)
}

type Handler struct {
	config   *Config
	checker  ReadinessChecker
	registry *registry.ActivityRegistry
	logger   logger.Logger
}

func NewHandler(config *Config, checker ReadinessChecker, reg *registry.ActivityRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		checker:  checker,
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
		var stdErr *errors.StandardError
		if goerrors.Is(err, readiness.ErrInvalidTeamType) {
			stdErr = errors.NewInvalidTeamTypeError(input.TeamType)
		} else {
			stdErr = errors.NewQueryExecutionFailedError("check readiness", err)
		}
		bpmnErr := errors.ConvertToBPMNError(stdErr)
		h.failJob(client, job, bpmnErr.Code, bpmnErr.Message)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	indicator, err := h.checker.Check(ctx, input.ProposalID, models.TeamType(input.TeamType), input.CheckedBy, input.ForceRecheck)
	if err != nil {
		return nil, err
	}

	h.logger.Info("readiness checked", map[string]interface{}{
		"proposalId":     input.ProposalID,
		"teamType":       input.TeamType,
		"readinessLevel": indicator.Level,
		"readinessScore": indicator.ReadinessScore,
		"blockers":       len(indicator.Blockers),
		"warnings":       len(indicator.Warnings),
	})

	return &Output{
		Indicator:      indicator,
		ReadinessLevel: indicator.Level,
		ReadinessScore: indicator.ReadinessScore,
		BlockerCount:   len(indicator.Blockers),
		WarningCount:   len(indicator.Warnings),
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
