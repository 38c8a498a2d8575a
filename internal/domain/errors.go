package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the search pipeline's outcome classes.
var (
	// ErrInvalidInput indicates the inbound query failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates the client exceeded its admission window.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstreamTimeout indicates the metadata service did not respond in time.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstreamFailure indicates a non-timeout transport or HTTP failure
	// from the metadata service.
	ErrUpstreamFailure = errors.New("upstream failure")
)

// ValidationError reports a client-side input fault. Message is safe to
// return to the client verbatim.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RateLimitError reports an admission rejection for a client key.
type RateLimitError struct {
	Key string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.Key)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// UpstreamError carries diagnostic detail about a failed upstream call.
// StatusCode and Message are for server-side logging only and must never
// be leaked to clients. Timeout errors unwrap to ErrUpstreamTimeout, all
// others to ErrUpstreamFailure.
type UpstreamError struct {
	Source     string
	StatusCode int
	Message    string
	Timeout    bool
	Cause      error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s request timed out: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s request failed (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap returns the sentinel matching the failure class.
func (e *UpstreamError) Unwrap() error {
	if e.Timeout {
		return ErrUpstreamTimeout
	}
	return ErrUpstreamFailure
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(key string) *RateLimitError {
	return &RateLimitError{Key: key}
}

// NewUpstreamTimeoutError creates an UpstreamError for the timeout class.
func NewUpstreamTimeoutError(source string, cause error) *UpstreamError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &UpstreamError{Source: source, Message: msg, Timeout: true, Cause: cause}
}

// NewUpstreamFailureError creates an UpstreamError for the non-timeout class.
func NewUpstreamFailureError(source string, statusCode int, message string, cause error) *UpstreamError {
	return &UpstreamError{Source: source, StatusCode: statusCode, Message: message, Cause: cause}
}
