package rest

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized is returned when the server rejects the bearer token (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when rate-limit retries are exhausted (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient is returned when transport-level retries are exhausted.
	ErrTransient = errors.New("transient network failure")

	// ErrInvalidPayload is returned when a response or stored payload is malformed.
	ErrInvalidPayload = errors.New("invalid payload")
)

// APIError is returned for any non-2xx response that is not retried.
// It carries the status code and, when the server supplied one, its message.
type APIError struct {
	// StatusCode is the HTTP status returned by the server.
	StatusCode int
	// Message is the server-supplied message, or empty if none was parseable.
	Message string
	// Attempts is the number of attempts issued before giving up.
	Attempts int
}

// Error returns a human-readable description of the API error.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// RateLimitedError is returned when the server keeps responding 429 until the
// retry budget is exhausted.
type RateLimitedError struct {
	// Attempts is the total number of attempts issued.
	Attempts int
	// RetryAfter is the last server-supplied retry hint, zero if none.
	RetryAfter time.Duration
}

// Error returns a human-readable description of the rate limiting.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts, try again later", e.Attempts)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrRateLimited).
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// UnauthorizedError is returned on HTTP 401. It is terminal: the call is not
// retried and the session is invalidated as a side effect.
type UnauthorizedError struct {
	// Message is the server-supplied message, if any.
	Message string
}

// Error returns a human-readable description of the authorization failure.
func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unauthorized: %s", e.Message)
	}
	return "unauthorized"
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrUnauthorized).
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// TransientError is returned when connection-level failures persist through
// the whole retry budget.
type TransientError struct {
	// Attempts is the total number of attempts issued.
	Attempts int
	// Cause is the final underlying transport error.
	Cause error
}

// Error returns a human-readable description of the transport failure.
func (e *TransientError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *TransientError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrTransient).
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// ValidationError is returned when a payload (response body or persisted
// session data) does not deserialize into the expected shape.
type ValidationError struct {
	// Message describes what was malformed.
	Message string
	// Cause is the underlying decode error, if any.
	Cause error
}

// Error returns a human-readable description of the malformed payload.
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying decode error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrInvalidPayload).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPayload
}
