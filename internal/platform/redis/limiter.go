// Package redis provides a fixed-window request limiter backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrLimiterUnavailable wraps any Redis failure. Callers decide whether to
// fail open.
var ErrLimiterUnavailable = errors.New("rate limiter unavailable")

const keyPrefix = "cardhub:rl:"

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// FixedWindowLimiter allows up to limit hits per key in each window. The
// window starts at the first hit.
type FixedWindowLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

// NewClient connects to the Redis instance at cfg.URL and pings it.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewFixedWindowLimiter creates a limiter.
func NewFixedWindowLimiter(client redis.UniversalClient, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client, limit: limit, window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := keyPrefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %w", ErrLimiterUnavailable, err)
		}
	}

	d := Decision{Limit: l.limit, Remaining: l.limit - int(count)}
	if d.Remaining >= 0 {
		d.Allowed = true
		return d, nil
	}
	d.Remaining = 0

	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrLimiterUnavailable, err)
	}
	if ttl < 0 {
		// A key left without expiry by a failed Expire would block forever.
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %w", ErrLimiterUnavailable, err)
		}
		ttl = l.window
	}
	d.RetryAfter = ttl
	return d, nil
}
