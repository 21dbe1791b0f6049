// Package errors provides the structured error type shared by the dialog
// hook and the recommendation worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeIntentNotSupported ErrorCode = "INTENT_NOT_SUPPORTED"
	ErrCodeFulfillmentFailed  ErrorCode = "FULFILLMENT_FAILED"
	ErrCodeHistoryLookup      ErrorCode = "HISTORY_LOOKUP_FAILED"
	ErrCodeHistoryUpsert      ErrorCode = "HISTORY_UPSERT_FAILED"

	ErrCodeMessageMalformed ErrorCode = "MESSAGE_MALFORMED"
	ErrCodeQueueSendFailed  ErrorCode = "QUEUE_SEND_FAILED"
	ErrCodeQueueReceive     ErrorCode = "QUEUE_RECEIVE_FAILED"
	ErrCodeQueueDelete      ErrorCode = "QUEUE_DELETE_FAILED"

	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout          ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeRecordLookupFailed     ErrorCode = "RECORD_LOOKUP_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewIntentNotSupportedError is fatal: the bot routed an intent nobody handles.
func NewIntentNotSupportedError(cause error) *StandardError {
	return newError(ErrCodeIntentNotSupported, "Intent not supported", cause, false)
}

// NewFulfillmentFailedError is recovered into a start-over reply by the dialog hook.
func NewFulfillmentFailedError(cause error) *StandardError {
	return newError(ErrCodeFulfillmentFailed, "Could not fulfill dining request", cause, false)
}

func NewHistoryLookupError(cause error) *StandardError {
	return newError(ErrCodeHistoryLookup, "History lookup failed", cause, true)
}

func NewHistoryUpsertError(cause error) *StandardError {
	return newError(ErrCodeHistoryUpsert, "History upsert failed", cause, true)
}

// NewMessageMalformedError marks a queue message that can never succeed.
func NewMessageMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageMalformed,
		Message:   "Queue message is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewQueueSendError(cause error) *StandardError {
	return newError(ErrCodeQueueSendFailed, "Enqueue failed", cause, true)
}

func NewQueueReceiveError(cause error) *StandardError {
	return newError(ErrCodeQueueReceive, "Queue receive failed", cause, true)
}

func NewQueueDeleteError(cause error) *StandardError {
	return newError(ErrCodeQueueDelete, "Queue acknowledge failed", cause, true)
}

func NewSearchQueryFailedError(cause error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search index query failed", cause, true)
}

func NewSearchTimeoutError(cause error) *StandardError {
	return newError(ErrCodeSearchTimeout, "Search index query timed out", cause, true)
}

func NewRecordLookupError(businessID string, cause error) *StandardError {
	return newError(ErrCodeRecordLookupFailed, "Record store lookup failed", cause, true).
		WithMetadata("businessId", businessID)
}

// NewNotificationSendError is never swallowed: redelivery of the queue
// message is what retries it.
func NewNotificationSendError(cause error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification send failed", cause, true)
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// IsRetryable reports whether err is worth redelivering. Unknown errors are
// treated as retryable so a message is never dropped by accident.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return err != nil
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "FULFILLMENT"):
		return "DIALOG"
	case strings.Contains(codeStr, "HISTORY") || strings.Contains(codeStr, "RECORD"):
		return "DATABASE"
	case strings.Contains(codeStr, "QUEUE") || strings.Contains(codeStr, "MESSAGE"):
		return "QUEUE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
