//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the shared limiter
// Run with: go test -v -tags=integration ./internal/ratelimit/...

func setupTestRedis(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	require.NoError(t, rdb.Ping(context.Background()).Err(), "Failed to connect to test redis")
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisWindow_ResetPermitsFullWindow(t *testing.T) {
	rdb := setupTestRedis(t)
	w := NewRedisWindow(rdb, "rl:test:"+t.Name(), 3, time.Hour)
	w.Reset()

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// Fourth call must wait for the next hour window
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, w.Wait(ctx))

	w.Reset()
	assert.NoError(t, w.Wait(context.Background()))
}
