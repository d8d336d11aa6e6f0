// internal/workers/scoring/send-score-report/handler.go
package sendscorereport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"proposal-workers/internal/common/errors"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/models"
	"proposal-workers/pkg/registry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclient "proposal-workers/internal/common/aws"
)

const (
	TaskType = "send-score-report"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Summarizer supplies the decision package when the job carries none.
type Summarizer interface {
	Summarize(ctx context.Context, proposalID string) (*models.GoNoGoSummary, error)
}

type Handler struct {
	config      *Config
	synthesizer Summarizer
	registry    *registry.ActivityRegistry
	logger      logger.Logger
	sesClient   SESService
	snsClient   SNSService
}

func NewHandler(config *Config, synthesizer Summarizer, reg *registry.ActivityRegistry, log logger.Logger) (*Handler, error) {
	ctx := context.Background()
	sesClient, err := awsclient.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	snsClient, err := awsclient.NewSNSClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &Handler{
		config:      config,
		synthesizer: synthesizer,
		registry:    reg,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient:   sesClient,
		snsClient:   snsClient,
	}, nil
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
		bpmnErr := errors.ConvertToBPMNError(errors.NewReportSendFailedError("email", err))
		h.failJob(client, job, bpmnErr.Code, bpmnErr.Message)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.config.EmailEnabled {
		return &Output{
			ReportID: uuid.New().String(),
			Status:   StatusDisabled,
			Channels: []string{},
			SentAt:   time.Now().UTC().Format(time.RFC3339),
		}, nil
	}

	summary := input.Summary
	if summary == nil {
		var err error
		summary, err = h.synthesizer.Summarize(ctx, input.ProposalID)
		if err != nil {
			return nil, fmt.Errorf("build summary: %w", err)
		}
	}

	subject, body := renderReport(input, summary)
	channels := []string{}

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: input.Recipients,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	channels = append(channels, "email")

	// A no-go verdict additionally raises an operational alert.
	if summary.Recommendation == models.RecommendNoGo && h.config.AlertTopicARN != "" {
		_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(h.config.AlertTopicARN),
			Subject:  aws.String(subject),
			Message:  aws.String(body),
		})
		if err != nil {
			h.logger.Warn("no-go alert publish failed", map[string]interface{}{
				"proposalId": input.ProposalID,
				"error":      err.Error(),
			})
		} else {
			channels = append(channels, "sns")
		}
	}

	h.logger.Info("score report sent", map[string]interface{}{
		"proposalId":     input.ProposalID,
		"recipients":     len(input.Recipients),
		"recommendation": summary.Recommendation,
		"channels":       channels,
	})

	return &Output{
		ReportID: uuid.New().String(),
		Status:   StatusSent,
		Channels: channels,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
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
