// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Scoring engine and infrastructure error codes.
const (
	ErrCodeNoContent         ErrorCode = "NO_CONTENT"
	ErrCodeAIUnparseable     ErrorCode = "AI_UNPARSEABLE"
	ErrCodeEvaluationTimeout ErrorCode = "EVALUATION_TIMEOUT"
	ErrCodeScoringInProgress ErrorCode = "SCORING_IN_PROGRESS"
	ErrCodeInsufficientData  ErrorCode = "INSUFFICIENT_DATA"

	ErrCodeScoreNotFound     ErrorCode = "SCORE_NOT_FOUND"
	ErrCodeReadinessFailed   ErrorCode = "READINESS_CHECK_FAILED"
	ErrCodeInvalidTeamType   ErrorCode = "INVALID_TEAM_TYPE"
	ErrCodeInvalidFactorType ErrorCode = "INVALID_FACTOR_TYPE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeGenAITimeout       ErrorCode = "GENAI_TIMEOUT"
	ErrCodeGenAIUnavailable   ErrorCode = "GENAI_UNAVAILABLE"
	ErrCodeReportSendFailed   ErrorCode = "REPORT_SEND_FAILED"
	ErrCodeSchemaValidation   ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewNoContentError signals a proposal with nothing to evaluate. Callers should
// surface it as "add proposal content before scoring".
func NewNoContentError(proposalID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoContent,
		Message:   "Proposal has no content to score",
		Details:   fmt.Sprintf("proposalId: %s", proposalID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIUnparseableError is raised when the model response cannot be parsed into
// the expected score schema. The aggregator catches it and falls back.
func NewAIUnparseableError(factorType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIUnparseable,
		Message:   "AI response could not be parsed into a factor score",
		Details:   fmt.Sprintf("factorType: %s, error: %s", factorType, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluationTimeoutError is raised when a single factor evaluation exceeds
// its deadline. The aggregator catches it and falls back.
func NewEvaluationTimeoutError(factorType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluationTimeout,
		Message:   "Factor evaluation timed out",
		Details:   fmt.Sprintf("factorType: %s", factorType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringInProgressError signals that another calculation holds the
// per-proposal lock. Callers should surface it as "scoring already in
// progress, try again shortly".
func NewScoringInProgressError(proposalID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringInProgress,
		Message:   "A score calculation for this proposal is already running",
		Details:   fmt.Sprintf("proposalId: %s", proposalID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientDataError covers benchmark populations too small to rank against.
func NewInsufficientDataError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientData,
		Message:   "Not enough comparison data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoreNotFoundError is raised when an operation needs a prior score snapshot.
func NewScoreNotFoundError(proposalID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoreNotFound,
		Message:   "No score snapshot exists for proposal",
		Details:   fmt.Sprintf("proposalId: %s", proposalID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTeamTypeError creates a non-retryable validation error.
func NewInvalidTeamTypeError(teamType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTeamType,
		Message:   "Unsupported review team type",
		Details:   fmt.Sprintf("teamType: %s", teamType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAITimeoutError creates a retryable text-generation timeout error.
func NewGenAITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAITimeout,
		Message:   "Text generation API timeout",
		Details:   "Generation call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAIUnavailableError is raised when the model client is not configured.
func NewGenAIUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAIUnavailable,
		Message:   "Text generation API unavailable",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportSendFailedError creates a retryable notification delivery error.
func NewReportSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportSendFailed,
		Message:   "Score report delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaValidationError creates a non-retryable payload validation error.
func NewSchemaValidationError(taskType, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidation,
		Message:   "Job payload failed schema validation",
		Details:   fmt.Sprintf("taskType: %s, %s", taskType, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical by
// convention so process models can reference them directly).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeNoContent:                "NO_CONTENT",
	ErrCodeAIUnparseable:            "AI_UNPARSEABLE",
	ErrCodeEvaluationTimeout:        "EVALUATION_TIMEOUT",
	ErrCodeScoringInProgress:        "SCORING_IN_PROGRESS",
	ErrCodeInsufficientData:         "INSUFFICIENT_DATA",
	ErrCodeScoreNotFound:            "SCORE_NOT_FOUND",
	ErrCodeReadinessFailed:          "READINESS_CHECK_FAILED",
	ErrCodeInvalidTeamType:          "INVALID_TEAM_TYPE",
	ErrCodeInvalidFactorType:        "INVALID_FACTOR_TYPE",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeGenAITimeout:             "GENAI_TIMEOUT",
	ErrCodeGenAIUnavailable:         "GENAI_UNAVAILABLE",
	ErrCodeReportSendFailed:         "REPORT_SEND_FAILED",
	ErrCodeSchemaValidation:         "SCHEMA_VALIDATION_FAILED",
	ErrCodeInputParsingFailed:       "INPUT_PARSING_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeReportSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeEvaluationTimeout,
		ErrCodeGenAITimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeScoringInProgress:
		return 1 // One retry after the in-flight calculation settles

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "GENAI") || strings.Contains(codeStr, "AI_"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SCORING") || strings.Contains(codeStr, "SCORE"):
		return "SCORING"
	case strings.Contains(codeStr, "READINESS") || strings.Contains(codeStr, "TEAM"):
		return "READINESS"
	case strings.Contains(codeStr, "REPORT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
