// Package errs defines the classified error used across providers and the
// manager. Every provider failure carries a code and a retryable flag; the
// manager's fallback chain keys off both.
package errs

import (
	"errors"
	"fmt"
)

// Code classifies a market-data failure.
type Code string

const (
	CodeRateLimited      Code = "rate_limited"
	CodeAuthFailed       Code = "auth_failed"
	CodeNotFound         Code = "not_found"
	CodeTimeout          Code = "timeout"
	CodeProviderError    Code = "provider_error"
	CodeValidationFailed Code = "validation_failed"
	CodeNoData           Code = "no_data"
)

// Error is a classified market-data error. Retryable means the caller may
// try the next provider in the chain; non-retryable aborts the chain.
type Error struct {
	Code      Code
	Retryable bool
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns a non-retryable classified error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with formatting.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Retryable returns a retryable classified error.
func Retryable(code Code, message string) *Error {
	return &Error{Code: code, Retryable: true, Message: message}
}

// Retryablef is Retryable with formatting.
func Retryablef(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Retryable: true, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without losing it.
func Wrap(code Code, retryable bool, err error, message string) *Error {
	return &Error{Code: code, Retryable: retryable, Message: message, Cause: err}
}

// As unwraps err into *Error if it is (or wraps) one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable reports whether err is a classified retryable error.
// Unclassified errors are never retryable.
func IsRetryable(err error) bool {
	if e, ok := As(err); ok {
		return e.Retryable
	}
	return false
}

// CodeOf returns the code of a classified error, or "" for anything else.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}
