// internal/common/errors/errors.go
// Package errors provides standardized error handling for flow orchestration.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Generation errors
	ErrCodeEmptyResponse   ErrorCode = "EMPTY_RESPONSE"
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
	ErrCodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"
	ErrCodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"

	// Input errors
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"

	// Gating errors
	ErrCodeQuotaExceeded     ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeDuplicateInFlight ErrorCode = "DUPLICATE_IN_FLIGHT"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	// Knowledge errors (recovered locally, never propagated to callers)
	ErrCodeRetrievalUnavailable ErrorCode = "RETRIEVAL_UNAVAILABLE"
	ErrCodeRetrievalTimeout     ErrorCode = "RETRIEVAL_TIMEOUT"
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
// 2. Error Constructors
// ==========================

// NewEmptyResponseError creates a retryable error for a model that returned nothing.
func NewEmptyResponseError(flow string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyResponse,
		Message:   "Model returned an empty response",
		Details:   fmt.Sprintf("flow: %s", flow),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaViolationError creates a non-retryable error for output that fails
// its declared schema. Violations carry field-level detail so callers can tell
// the user to rephrase rather than retry.
func NewSchemaViolationError(flow string, violations []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaViolation,
		Message:   "Model output failed schema validation",
		Details:   fmt.Sprintf("flow: %s, violations: %s", flow, strings.Join(violations, "; ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"violations": violations},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFailureError creates a retryable transport/provider error.
func NewUpstreamFailureError(flow string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFailure,
		Message:   "Model provider error",
		Details:   fmt.Sprintf("flow: %s, error: %s", flow, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError creates a retryable timeout error.
func NewUpstreamTimeoutError(flow string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Model provider timeout",
		Details:   fmt.Sprintf("flow: %s", flow),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputValidationFailedError creates a non-retryable input error.
func NewInputValidationFailedError(flow string, violations []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Request failed input schema validation",
		Details:   fmt.Sprintf("flow: %s, violations: %s", flow, strings.Join(violations, "; ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"violations": violations},
		Timestamp: time.Now().UTC(),
	}
}

// NewQuotaExceededError creates a non-retryable gating rejection. The request
// never reached the model; the caller should surface an upgrade prompt.
func NewQuotaExceededError(questionsUsed, maxFree int) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuotaExceeded,
		Message:   "Free question quota exhausted",
		Details:   fmt.Sprintf("questionsUsed: %d, maxFree: %d", questionsUsed, maxFree),
		Retryable: false,
		Metadata: map[string]interface{}{
			"questionsUsed": questionsUsed,
			"maxFree":       maxFree,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateInFlightError creates a non-retryable rejection for a submission
// that arrived while the same session's previous turn was still settling.
func NewDuplicateInFlightError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateInFlight,
		Message:   "A question for this session is already in flight",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session store error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store error during gating check",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetrievalUnavailableError creates a non-retryable (degrade to unaugmented)
// knowledge source error.
func NewRetrievalUnavailableError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalUnavailable,
		Message:   "Knowledge source unavailable",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetrievalTimeoutError creates a non-retryable (degrade to unaugmented)
// knowledge lookup timeout.
func NewRetrievalTimeoutError(source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalTimeout,
		Message:   "Knowledge lookup timeout",
		Details:   fmt.Sprintf("source: %s", source),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatus maps error codes to HTTP status codes so the UI can distinguish
// "try again" from "rephrase" from "upgrade".
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInputValidationFailed:
		return http.StatusBadRequest
	case ErrCodeQuotaExceeded, ErrCodeDuplicateInFlight:
		return http.StatusTooManyRequests
	case ErrCodeSchemaViolation:
		return http.StatusUnprocessableEntity
	case ErrCodeUpstreamFailure, ErrCodeEmptyResponse:
		return http.StatusBadGateway
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeSessionStoreFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamFailure, ErrCodeSessionStoreFailed:
		return 3

	case ErrCodeEmptyResponse, ErrCodeUpstreamTimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// CodeOf extracts the ErrorCode from an error, or empty string for plain errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "QUOTA") || strings.Contains(codeStr, "DUPLICATE"):
		return "GATING"
	case strings.Contains(codeStr, "RETRIEVAL"):
		return "KNOWLEDGE"
	case strings.Contains(codeStr, "UPSTREAM") || strings.Contains(codeStr, "EMPTY"):
		return "PROVIDER"
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	default:
		return "OTHER"
	}
}
