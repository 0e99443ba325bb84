package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies the failures surfaced by the fetch client
type ErrorType string

const (
	// ErrorTypeConfig marks malformed retry options, rejected before any attempt
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeRequestTimeout marks per-attempt cancellation and overall
	// budget exhaustion; both share this one identity
	ErrorTypeRequestTimeout ErrorType = "request-timeout"
	// ErrorTypeNetwork marks transport-level failures
	ErrorTypeNetwork ErrorType = "network"
)

// Error carries a machine-readable type, a human-readable message and,
// when the failure is tied to a request, the target URL
type Error struct {
	Type    ErrorType
	Message string
	URL     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// NewConfig creates a configuration error with the given field message
func NewConfig(message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Message: message,
	}
}

// NewRequestTimeout creates the unified timeout error for a URL
func NewRequestTimeout(url string) *Error {
	return &Error{
		Type:    ErrorTypeRequestTimeout,
		Message: fmt.Sprintf("network timeout at %s", url),
		URL:     url,
	}
}

// IsTimeout checks if an error is a request-timeout error
func IsTimeout(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == ErrorTypeRequestTimeout
	}
	return false
}

// IsConfig checks if an error is a configuration error
func IsConfig(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == ErrorTypeConfig
	}
	return false
}
