// Package errors provides the standardized error type shared by the registry
// service and its HTTP adapter.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeActivityNotFound    ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadyEnrolled     ErrorCode = "ALREADY_ENROLLED"
	ErrCodeParticipantNotFound ErrorCode = "PARTICIPANT_NOT_FOUND"
	ErrCodeCapacityExceeded    ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeInvalidParticipant  ErrorCode = "INVALID_PARTICIPANT"

	ErrCodeCatalogInvalid           ErrorCode = "CATALOG_INVALID"
	ErrCodeEventPublishFailed       ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error shape every layer converts to before it leaves
// the process. Message is safe to show to clients; Details is for logs.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches any StandardError with the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// HTTPStatus returns the response status the adapter should use.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// Sentinels for errors.Is comparisons.
var (
	ErrActivityNotFound    = &StandardError{Code: ErrCodeActivityNotFound}
	ErrAlreadyEnrolled     = &StandardError{Code: ErrCodeAlreadyEnrolled}
	ErrParticipantNotFound = &StandardError{Code: ErrCodeParticipantNotFound}
	ErrCapacityExceeded    = &StandardError{Code: ErrCodeCapacityExceeded}
	ErrInvalidParticipant  = &StandardError{Code: ErrCodeInvalidParticipant}
)

func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAlreadyEnrolledError(activity, participant string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyEnrolled,
		Message:   fmt.Sprintf("%s is already signed up", participant),
		Details:   fmt.Sprintf("activity: %s", activity),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewParticipantNotFoundError(activity, participant string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParticipantNotFound,
		Message:   "Participant not found",
		Details:   fmt.Sprintf("activity: %s, participant: %s", activity, participant),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCapacityExceededError(activity string, capacity int) *StandardError {
	return &StandardError{
		Code:      ErrCodeCapacityExceeded,
		Message:   "Activity is full",
		Details:   fmt.Sprintf("activity: %s, max_participants: %d", activity, capacity),
		Retryable: false,
		Metadata:  map[string]interface{}{"maxParticipants": capacity},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidParticipantError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParticipant,
		Message:   "email query parameter is required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidEmailError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParticipant,
		Message:   "Invalid email address",
		Details:   fmt.Sprintf("email: %q", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCatalogInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Activity catalog is invalid",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewEventPublishFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventPublishFailed,
		Message:   fmt.Sprintf("Publishing to sink '%s' failed", sink),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// HTTPStatus maps an error code onto its response status.
// Activity-missing and participant-missing share 404 and differ only by body.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeActivityNotFound, ErrCodeParticipantNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyEnrolled, ErrCodeCapacityExceeded:
		return http.StatusBadRequest
	case ErrCodeInvalidParticipant:
		return http.StatusUnprocessableEntity
	case ErrCodeDatabaseConnectionFailed, ErrCodeEventPublishFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeEventPublishFailed, ErrCodeDatabaseConnectionFailed:
		return true
	default:
		return false
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ACTIVITY") || strings.Contains(codeStr, "CAPACITY"):
		return "ACTIVITY"
	case strings.Contains(codeStr, "PARTICIPANT") || strings.Contains(codeStr, "ENROLLED"):
		return "ROSTER"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "EVENT"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
