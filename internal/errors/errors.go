package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// WithCause attaches the underlying error for unwrapping.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// NewValidationError covers malformed client input (webhook payloads, callbacks).
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid data format. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewStorageError covers snapshot read/write failures.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("Storage error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewDeliveryError covers outbound Telegram send failures.
func NewDeliveryError(cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     "Message delivery failed",
		UserMessage: "The service is temporarily unavailable",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewSchedulingError covers failures registering or cancelling delayed work.
func NewSchedulingError(msg string, cause error) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: "The reminder could not be scheduled",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewLookupError covers references to task/habit/event ids that do not exist.
// These are logged no-ops, never shown to the user.
func NewLookupError(msg string) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     msg,
		UserMessage: "",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
