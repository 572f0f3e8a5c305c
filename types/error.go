package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the simulator.
type ErrorCode string

// Configuration error codes
const (
	ErrUnsupportedBackend ErrorCode = "UNSUPPORTED_BACKEND"
	ErrInvalidPersona     ErrorCode = "INVALID_PERSONA"
	ErrInvalidConfig      ErrorCode = "INVALID_CONFIG"
)

// Session error codes
const (
	ErrAgentNotFound  ErrorCode = "AGENT_NOT_FOUND"
	ErrInvalidCommand ErrorCode = "INVALID_COMMAND"
)

// Generation error codes
const (
	ErrUpstreamError ErrorCode = "UPSTREAM_ERROR"
	ErrEmptyResponse ErrorCode = "EMPTY_RESPONSE"
	ErrRateLimited   ErrorCode = "RATE_LIMITED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Provider  string    `json:"provider,omitempty"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
// Nothing in the simulator retries; the flag is informational for callers.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// AsError unwraps err until it finds a *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether any *Error in err's chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// IsRecoverable reports whether the session loop may continue after err.
// Lookup misses and invalid commands are recoverable; everything else is fatal.
func IsRecoverable(err error) bool {
	switch GetErrorCode(err) {
	case ErrAgentNotFound, ErrInvalidCommand:
		return true
	default:
		return false
	}
}
