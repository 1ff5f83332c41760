package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeIO            ErrorType = "IO_ERROR"
	ErrorTypeTranscription ErrorType = "TRANSCRIPTION_ERROR"
	ErrorTypeRateLimit     ErrorType = "RATE_LIMIT_ERROR"
)

// ErrNothingToDo is returned when enumeration found no audio files.
// It is a terminal condition, not a failure.
var ErrNothingToDo = errors.New("no audio files matched")

// AppError represents a structured error for the application
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode,omitempty"`
	ErrorCode  string    `json:"errorCode"`
	Recovery   string    `json:"recoverySuggestion,omitempty"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// IsRetryable reports whether another provider is worth trying for the same request.
// Only rate limits and 5xx responses from the remote API qualify.
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit:
		return true
	case ErrorTypeTranscription:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// As is a thin wrapper so callers don't need to import the stdlib errors package
// alongside this one.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// NewConfigurationError creates a fatal configuration error.
func NewConfigurationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:      ErrorTypeConfiguration,
		Message:   message,
		ErrorCode: errorCode,
		Recovery:  suggestion,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:      ErrorTypeValidation,
		Message:   message,
		ErrorCode: errorCode,
		Recovery:  suggestion,
	}
}

// NewIOError creates a local filesystem error scoped to one file.
func NewIOError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeIO,
		Message:   message,
		ErrorCode: errorCode,
		Recovery:  "Check that the path exists and is readable/writable.",
		Err:       err,
	}
}

// NewRateLimitError creates a new rate limit error (429)
func NewRateLimitError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		ErrorCode:  errorCode,
		Recovery:   "Lower --parallel or wait before running again.",
		Err:        err,
	}
}

// NewTranscriptionError creates a remote transcription error. statusCode is the
// HTTP status returned by the API, or 0 when no response was received.
func NewTranscriptionError(message string, errorCode string, statusCode int, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeTranscription,
		Message:    message,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Recovery:   "Check the API key, model name and network connectivity.",
		Err:        err,
	}
}
