// Package errors defines the application error taxonomy and Sentry reporting.
package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError is the structured error carried across the notification pipeline.
type AppError struct {
	Code      string
	Message   string
	Severity  Severity
	Retryable bool
	cause     error
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

// NewValidationError marks malformed input (bad task payloads, bad numbers).
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:      "E100",
		Message:   msg,
		Severity:  SeverityLow,
		Retryable: false,
	}
}

// NewDatabaseError wraps a persistence failure.
func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:      "E200",
		Message:   fmt.Sprintf("database error: %s", underlyingMsg),
		Severity:  SeverityHigh,
		Retryable: true,
		cause:     cause,
	}
}

// NewTransportError wraps a delivery transport failure (SMTP, SMS gateway).
func NewTransportError(transport string, cause error) *AppError {
	return &AppError{
		Code:      "E300",
		Message:   fmt.Sprintf("transport error: %s", transport),
		Severity:  SeverityMedium,
		Retryable: true,
		cause:     cause,
	}
}

// NewConfigError marks a channel or component that is not configured.
func NewConfigError(msg string) *AppError {
	return &AppError{
		Code:      "E400",
		Message:   msg,
		Severity:  SeverityMedium,
		Retryable: false,
	}
}
