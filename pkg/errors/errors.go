package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeServerError  ErrorType = "server_error"
	ErrorTypePrecondition ErrorType = "precondition"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a typed failure with optional HTTP context
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.URL != "" {
		msg += " for " + e.URL
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// Precondition reports an input that makes the whole operation impossible.
func Precondition(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypePrecondition, Message: fmt.Sprintf(format, args...)}
}

// FromStatus maps an unsuccessful HTTP status to a typed error
func FromStatus(statusCode int, url string) *Error {
	e := &Error{Code: statusCode, URL: url, Message: fmt.Sprintf("unexpected status code: %d", statusCode)}
	switch {
	case statusCode == 404:
		e.Type = ErrorTypeNotFound
		e.Message = "resource not found"
	case statusCode == 429:
		e.Type = ErrorTypeRateLimit
		e.Message = "rate limit exceeded"
	case statusCode >= 500:
		e.Type = ErrorTypeServerError
		e.Message = "server error"
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsPrecondition reports whether err is a precondition failure
func IsPrecondition(err error) bool {
	return TypeOf(err) == ErrorTypePrecondition
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeNotFound, ErrorTypeParsing, ErrorTypePrecondition:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
