// Package ratelimit throttles outbound Sportradar calls to the provider's
// published rate, independently of the monthly quota.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound requests. Wait blocks until a slot is free or ctx is done.
type Limiter interface {
	Wait(ctx context.Context) error
	Reset()
	// Limit returns the configured calls per window
	Limit() (int, time.Duration)
}

// TokenBucket permits Limit calls per Window within one process.
// A fresh or reset bucket is full, so the first Limit calls never wait.
type TokenBucket struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	limiter *rate.Limiter
}

var _ Limiter = (*TokenBucket)(nil)

// NewTokenBucket creates a limiter of limit calls per window
func NewTokenBucket(limit int, window time.Duration) *TokenBucket {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}

	b := &TokenBucket{limit: limit, window: window}
	b.limiter = b.newLimiter()
	return b
}

func (b *TokenBucket) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(b.window/time.Duration(b.limit)), b.limit)
}

func (b *TokenBucket) current() *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limiter
}

// Wait blocks until a token is available
func (b *TokenBucket) Wait(ctx context.Context) error {
	return b.current().Wait(ctx)
}

// Reset refills the bucket. Callers blocked in Wait keep waiting on the old bucket.
func (b *TokenBucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limiter = b.newLimiter()
}

// Limit returns the configured calls per window
func (b *TokenBucket) Limit() (int, time.Duration) {
	return b.limit, b.window
}
