//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the response cache
// Run with: go test -v -tags=integration ./internal/cache/...

func setupTestCache(t *testing.T) *RedisCache {
	c, err := NewRedisCache(Config{
		Host:      "localhost",
		Port:      "6379",
		DB:        15,
		KeyPrefix: "gridiron:test:",
	})
	require.NoError(t, err, "Failed to connect to test redis")
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_SetGet(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "schedule", []byte(`{"teams":["KC","BUF"]}`), time.Minute))

	val, ok, err := c.Get(ctx, "schedule")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"teams":["KC","BUF"]}`, string(val))

	require.NoError(t, c.Delete(ctx, "schedule"))
	_, ok, err = c.Get(ctx, "schedule")
	require.NoError(t, err)
	assert.False(t, ok, "deleted key should miss")
}

func TestRedisCache_Expiry(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("x"), 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(Config{Host: "127.0.0.1", Port: "1", DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}
