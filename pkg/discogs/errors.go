package discogs

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents an error response from the Discogs API.
//
// The Error type carries the HTTP status code and the message the server
// returned in its JSON body. It implements error, and provides additional
// methods for retry logic.
type Error struct {
	StatusCode int        // HTTP status code
	Message    string     // Message from the response body, or the status text
	RateLimit  *RateLimit // Rate limit state reported with the error, nil if absent
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("discogs: error %d: %s", e.StatusCode, e.Message)
}

// Is checks if the target error is a Discogs error with the same status code.
//
// This allows errors.Is() to work with *Error types.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// Temporary returns true if the request may succeed when sent again later.
//
// Only 429 responses are retried by the client itself; 5xx responses are
// reported as temporary for callers that want to retry on their own.
func (e *Error) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RateLimited reports whether the server rejected the request for exceeding
// its rate limit.
func (e *Error) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// AuthError is returned before any network call when an operation needs a
// higher auth level than the client holds.
type AuthError struct {
	Required AuthLevel
	Have     AuthLevel
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("discogs: authentication level %d required (have %d)", e.Required, e.Have)
}

// Is makes errors.Is(err, ErrAuthRequired) match any *AuthError.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuthRequired
}

// RateLimitExceededError is returned when the local waiting stack is full.
// The request never reached the network.
type RateLimitExceededError struct {
	Status QueueStatus
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("discogs: too many requests: %d calls and %d queue slots remaining",
		e.Status.RemainingCalls, e.Status.RemainingStack)
}

// StatusCode returns 429, matching what the server would have answered.
func (e *RateLimitExceededError) StatusCode() int {
	return http.StatusTooManyRequests
}

// Is makes errors.Is(err, ErrRateLimitExceeded) match any *RateLimitExceededError.
func (e *RateLimitExceededError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// TransportError wraps a network-level failure. The request may or may not
// have reached the server; it is never retried by the client.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "discogs: http request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Predefined errors for common cases.
var (
	// ErrAuthRequired matches any *AuthError.
	ErrAuthRequired = errors.New("discogs: authentication required")

	// ErrRateLimitExceeded matches any *RateLimitExceededError.
	ErrRateLimitExceeded = errors.New("discogs: local rate limit exceeded")

	// ErrQueueCleared is returned when a queued request was abandoned by Queue.Clear.
	ErrQueueCleared = errors.New("discogs: request abandoned by queue clear")

	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = errors.New("discogs: invalid configuration")
)

// isRateLimited reports whether err is a 429 answered by the server.
//
// Local queue rejections are deliberately excluded: retrying them would only
// push more work onto a full stack.
func isRateLimited(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.RateLimited()
	}
	return false
}
