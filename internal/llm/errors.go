package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a client is built without a credential
	ErrMissingAPIKey = errors.New("LLM API key is required")
	// ErrEmptyCompletion is returned when the provider answered without any text
	ErrEmptyCompletion = errors.New("provider returned an empty completion")
	// ErrUpstreamUnavailable matches every *UpstreamError via errors.Is
	ErrUpstreamUnavailable = errors.New("completion provider unavailable")
)

// UpstreamError reports a completion call that failed after all attempts
type UpstreamError struct {
	Provider Provider
	Attempts int
	// StatusCode is the last HTTP status seen, 0 when the request never got a response
	StatusCode int
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s unavailable after %d attempt(s): HTTP %d: %v", e.Provider, e.Attempts, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s unavailable after %d attempt(s): %v", e.Provider, e.Attempts, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrUpstreamUnavailable) match
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// Timeout reports whether the last attempt ran out of time
func (e *UpstreamError) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Cause, &te) && te.Timeout()
}

// isRetryableStatus reports whether an HTTP status is worth another attempt
func isRetryableStatus(code int) bool {
	return code == 429 || code >= 500
}
