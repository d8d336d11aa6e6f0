// internal/workers/scoring/send-score-report/handler_test.go
package sendscorereport

import (
	"context"
	"errors"
	"testing"
	"time"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type mockSummarizer struct {
	summary *models.GoNoGoSummary
	err     error
	calls   int
}

func (m *mockSummarizer) Summarize(_ context.Context, _ string) (*models.GoNoGoSummary, error) {
	m.calls++
	return m.summary, m.err
}

func cautionSummary() *models.GoNoGoSummary {
	overall := 68
	confidence := models.ConfidenceMedium
	return &models.GoNoGoSummary{
		ProposalID:     "prop-1",
		GeneratedAt:    time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC),
		OverallScore:   &overall,
		Confidence:     &confidence,
		Trend:          models.TrendStable,
		ReadinessLevel: models.ReadinessNeedsWork,
		Recommendation: models.RecommendWithCaution,
		KeyStrengths:   []string{"Strong completeness: 90/100"},
		KeyRisks:       []string{"Weak technical depth: 40/100"},
		NextSteps:      []string{"Add specific methodologies"},
	}
}

func noGoSummary() *models.GoNoGoSummary {
	s := cautionSummary()
	s.Recommendation = models.RecommendNoGo
	s.ReadinessLevel = models.ReadinessNotReady
	return s
}

func newTestHandler(t *testing.T, synth Summarizer, sesMock SESService, snsMock SNSService) *Handler {
	cfg := LoadConfig()
	cfg.AlertTopicARN = "arn:aws:sns:us-east-1:123456789012:proposal-alerts"
	return &Handler{
		config:      cfg,
		synthesizer: synth,
		logger:      logger.NewZapAdapter(zaptest.NewLogger(t)),
		sesClient:   sesMock,
		snsClient:   snsMock,
	}
}

func TestExecute_SendsEmailReport(t *testing.T) {
	var captured *ses.SendEmailInput
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{}, nil
		},
	}
	snsMock := &MockSNSService{
		PublishFunc: func(_ context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			t.Fatal("SNS must not be called for a caution verdict")
			return nil, nil
		},
	}
	h := newTestHandler(t, nil, sesMock, snsMock)

	output, err := h.Execute(context.Background(), &Input{
		ProposalID:   "prop-1",
		ProposalName: "Radar Modernization",
		Recipients:   []string{"capture@acme.example"},
		Summary:      cautionSummary(),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{"email"}, output.Channels)
	assert.NotEmpty(t, output.ReportID)

	require.NotNil(t, captured)
	assert.Equal(t, []string{"capture@acme.example"}, captured.Destination.ToAddresses)
	assert.Contains(t, *captured.Message.Subject.Data, "Radar Modernization")
	assert.Contains(t, *captured.Message.Subject.Data, "Proceed with caution")
	body := *captured.Message.Body.Text.Data
	assert.Contains(t, body, "Overall score: 68/100")
	assert.Contains(t, body, "Weak technical depth: 40/100")
	assert.Contains(t, body, "Add specific methodologies")
}

func TestExecute_NoGoAlsoPublishesAlert(t *testing.T) {
	var published *sns.PublishInput
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
	snsMock := &MockSNSService{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			published = params
			return &sns.PublishOutput{}, nil
		},
	}
	h := newTestHandler(t, nil, sesMock, snsMock)

	output, err := h.Execute(context.Background(), &Input{
		ProposalID: "prop-1",
		Recipients: []string{"capture@acme.example"},
		Summary:    noGoSummary(),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"email", "sns"}, output.Channels)
	require.NotNil(t, published)
	assert.Contains(t, *published.Subject, "Do not proceed")
}

func TestExecute_AlertFailureDoesNotFailReport(t *testing.T) {
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
	snsMock := &MockSNSService{
		PublishFunc: func(_ context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("topic not found")
		},
	}
	h := newTestHandler(t, nil, sesMock, snsMock)

	output, err := h.Execute(context.Background(), &Input{
		ProposalID: "prop-1",
		Recipients: []string{"capture@acme.example"},
		Summary:    noGoSummary(),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{"email"}, output.Channels)
}

func TestExecute_BuildsSummaryWhenMissing(t *testing.T) {
	synth := &mockSummarizer{summary: cautionSummary()}
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
	h := newTestHandler(t, synth, sesMock, nil)

	output, err := h.Execute(context.Background(), &Input{
		ProposalID: "prop-1",
		Recipients: []string{"capture@acme.example"},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, 1, synth.calls)
}

func TestExecute_SummarizerFailurePropagates(t *testing.T) {
	synth := &mockSummarizer{err: errors.New("pq: connection refused")}
	h := newTestHandler(t, synth, nil, nil)

	_, err := h.Execute(context.Background(), &Input{
		ProposalID: "prop-1",
		Recipients: []string{"capture@acme.example"},
	})

	assert.Error(t, err)
}

func TestExecute_EmailFailurePropagates(t *testing.T) {
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected")
		},
	}
	h := newTestHandler(t, nil, sesMock, nil)

	_, err := h.Execute(context.Background(), &Input{
		ProposalID: "prop-1",
		Recipients: []string{"capture@acme.example"},
		Summary:    cautionSummary(),
	})

	assert.Error(t, err)
}

func TestExecute_DisabledChannelSkipsDelivery(t *testing.T) {
	h := newTestHandler(t, nil, nil, nil)
	h.config.EmailEnabled = false

	output, err := h.Execute(context.Background(), &Input{
		ProposalID: "prop-1",
		Recipients: []string{"capture@acme.example"},
		Summary:    cautionSummary(),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, output.Channels)
}

func TestRenderReport_NeverScored(t *testing.T) {
	summary := &models.GoNoGoSummary{
		ProposalID:     "prop-x",
		GeneratedAt:    time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC),
		Trend:          models.TrendStable,
		ReadinessLevel: models.ReadinessPending,
		Recommendation: models.RecommendNoGo,
	}

	subject, body := renderReport(&Input{ProposalID: "prop-x"}, summary)

	assert.Contains(t, subject, "prop-x")
	assert.Contains(t, body, "Overall score: not yet calculated")
	assert.Contains(t, body, "Readiness: pending")
	assert.NotContains(t, body, "Key strengths")
}
