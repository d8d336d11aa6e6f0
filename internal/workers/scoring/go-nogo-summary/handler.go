// internal/workers/scoring/go-nogo-summary/handler.go
package gonogosummary

import (
	"context"
	"encoding/json"
	"fmt"

	"proposal-workers/internal/common/errors"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/models"
	"proposal-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "go-nogo-summary"
)

// Summarizer produces the bid decision summary for a proposal.
type Summarizer interface {
	Summarize(ctx context.Context, proposalID string) (*models.GoNoGoSummary, error)
}

type Handler struct {
	config      *Config
	synthesizer Summarizer
	registry    *registry.ActivityRegistry
	logger      logger.Logger
}

func NewHandler(config *Config, synthesizer Summarizer, reg *registry.ActivityRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		synthesizer: synthesizer,
		registry:    reg,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		bpmnErr := errors.ConvertToBPMNError(errors.NewQueryExecutionFailedError("go/no-go summary", err))
		h.failJob(client, job, bpmnErr.Code, bpmnErr.Message)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	summary, err := h.synthesizer.Summarize(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("go/no-go summary generated", map[string]interface{}{
		"proposalId":     input.ProposalID,
		"recommendation": summary.Recommendation,
		"readinessLevel": summary.ReadinessLevel,
	})

	return &Output{
		Summary:        summary,
		Recommendation: summary.Recommendation,
		ReadinessLevel: summary.ReadinessLevel,
		HasScore:       summary.OverallScore != nil,
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
