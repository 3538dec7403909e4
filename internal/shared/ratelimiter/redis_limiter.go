package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares counters between processes through Redis.
// Redis errors fail open so an outage never blocks logins.
type RedisLimiter struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter constructs a Redis backed limiter.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix, timeout: 250 * time.Millisecond}
}

func (rl *RedisLimiter) key(identifier string) string {
	return rl.prefix + ":" + identifier
}

// Check implements Limiter with INCR and a PEXPIRE set on the first hit of a window.
func (rl *RedisLimiter) Check(ctx context.Context, identifier string, maxRequests int, window time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	key := rl.key(identifier)
	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		slog.Error("redis rate limiter error", "op", "incr", "error", err)
		return nil
	}
	if count == 1 {
		if err := rl.client.PExpire(ctx, key, window).Err(); err != nil {
			slog.Error("redis rate limiter error", "op", "pexpire", "error", err)
		}
	}
	if count > int64(maxRequests) {
		return ErrRateLimited
	}
	return nil
}
