package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimitExceeded is returned (wrapped in *RateLimitError) when the provider
// keeps answering 429 after the retry budget is spent. Callers may retry later.
var ErrRateLimitExceeded = errors.New("sportsradar rate limit exceeded")

// RateLimitError carries the details of an exhausted retry budget
type RateLimitError struct {
	Endpoint   string
	Attempts   int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: %v after %d attempts (retry after %s)", e.Endpoint, ErrRateLimitExceeded, e.Attempts, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimitExceeded
}

// UpstreamError is any non-2xx, non-429 response. It is never retried here.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	StatusText string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: API returned status %d %s", e.Endpoint, e.StatusCode, e.StatusText)
}

// ParseError is a 2xx response whose body is not the expected JSON
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse response: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
