package routeops

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/routeops/schema"
)

// Sentinel errors for client construction and dispatch.
var (
	// ErrEmptyBaseURL indicates a client was configured without a base URL.
	ErrEmptyBaseURL = errors.New("routeops: base URL is required")

	// ErrUnknownRoute indicates a call referenced a route name the client
	// was not constructed with.
	ErrUnknownRoute = errors.New("routeops: unknown route")

	// ErrNilRequest indicates a request interceptor returned nil.
	ErrNilRequest = errors.New("routeops: request interceptor returned nil request")
)

// NetworkError reports a transport-level failure: connection refused, DNS,
// broken pipe. Retried per the retry policy.
type NetworkError struct {
	// URL is the full request URL.
	URL string

	// Err is the underlying transport error.
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("routeops: request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response. Message is the best-effort parse
// of the JSON error body; when the body is not parseable it falls back to
// the status line.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the full status line, e.g. "404 Not Found".
	Status string

	// Body is the raw response body.
	Body []byte

	// Message is the extracted error message.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("routeops: %s: %s", e.Status, e.Message)
}

// Retryable reports whether the status is worth another attempt: request
// timeout, rate limiting, and server-side failures. Client errors are
// terminal.
func (e *StatusError) Retryable() bool {
	switch {
	case e.StatusCode == 408, e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// ParseError reports a response body that could not be decoded as JSON.
// Never retried.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("routeops: failed to parse response body: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a payload that decoded cleanly but does not match
// the declared schema. Never retried, never coerced.
type ValidationError struct {
	// Violations holds one entry per mismatched field.
	Violations []schema.Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "routeops: payload failed schema validation"
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "routeops: payload failed schema validation: " + strings.Join(msgs, "; ")
}
