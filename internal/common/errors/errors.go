// Package errors provides standardized error handling for the triage service.
//
// The triage core itself recovers from bad input locally (unparsable values,
// unknown conversation ids, unmatched symptoms) and never returns these as
// errors. StandardError covers the service boundary and infrastructure init.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	ErrCodeRuleFileUnreadable ErrorCode = "RULE_FILE_UNREADABLE"
	ErrCodeRuleFileMalformed  ErrorCode = "RULE_FILE_MALFORMED"

	ErrCodeSessionStoreUnavailable ErrorCode = "SESSION_STORE_UNAVAILABLE"
	ErrCodeHistoryWriteFailed      ErrorCode = "HISTORY_WRITE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeRedisConnectionFailed    ErrorCode = "REDIS_CONNECTION_FAILED"
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

// NewInvalidRequestError reports a malformed or incomplete pipeline request.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid triage request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleFileUnreadableError reports a rule file that exists but cannot be read
// or decoded. This is the one fatal startup condition.
func NewRuleFileUnreadableError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleFileUnreadable,
		Message:   "Danger rule file is unreadable",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleFileMalformedError reports a rule file that decoded but failed schema
// validation. Callers degrade to an empty rule set.
func NewRuleFileMalformedError(path, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleFileMalformed,
		Message:   "Danger rule file failed schema validation",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreUnavailableError reports a failed slot merge or read.
func NewSessionStoreUnavailableError(conversationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreUnavailable,
		Message:   "Conversation state store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"conversationId": conversationID},
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryWriteFailedError reports a failed audit-log append. Non-fatal to
// the request; recorded for observability.
func NewHistoryWriteFailedError(conversationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryWriteFailed,
		Message:   "Failed to append conversation history",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"conversationId": conversationID},
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError reports a failed Postgres connection or ping.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRedisConnectionFailedError reports a failed Redis connection or ping.
func NewRedisConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRedisConnectionFailed,
		Message:   "Redis connection failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or empty if it is not a StandardError.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*StandardError); ok {
		return se.Code
	}
	return ""
}
