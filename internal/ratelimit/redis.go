package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisWindow is a fixed-window limiter shared by every process using the same
// Redis and key prefix. Redis failures fail open.
type RedisWindow struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

var _ Limiter = (*RedisWindow)(nil)

// NewRedisWindow creates a shared limiter of limit calls per window under prefix
func NewRedisWindow(rdb *redis.Client, prefix string, limit int, window time.Duration) *RedisWindow {
	if prefix == "" {
		prefix = "rl:sportsradar"
	}
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}

	return &RedisWindow{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Wait increments the current window's counter and sleeps into the next window when full
func (w *RedisWindow) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := w.now()
		start := now.Truncate(w.window)
		key := fmt.Sprintf("%s:%d", w.prefix, start.UnixMilli())

		// INCR and set expiry 2*window (safety)
		pipe := w.rdb.TxPipeline()
		cnt := pipe.Incr(ctx, key)
		pipe.PExpire(ctx, key, 2*w.window)
		if _, err := pipe.Exec(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
			return nil
		}

		if cnt.Val() <= int64(w.limit) {
			return nil
		}

		wait := start.Add(w.window).Sub(now)
		log.Debug().
			Str("key", key).
			Int64("count", cnt.Val()).
			Dur("wait", wait).
			Msg("Rate limit window full, waiting")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Reset deletes every window counter under the prefix
func (w *RedisWindow) Reset() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	iter := w.rdb.Scan(ctx, 0, w.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := w.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Warn().Err(err).Str("key", iter.Val()).Msg("Failed to reset rate limit window")
		}
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Str("prefix", w.prefix).Msg("Failed to scan rate limit windows")
	}
}

// Limit returns the configured calls per window
func (w *RedisWindow) Limit() (int, time.Duration) {
	return w.limit, w.window
}
