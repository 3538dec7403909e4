// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	authadapters "kurukshetra_backend/internal/feature/auth/adapters"
	"kurukshetra_backend/internal/feature/auth/usecase"
	"kurukshetra_backend/internal/platform/config"
	"kurukshetra_backend/internal/platform/session"
	"kurukshetra_backend/internal/shared/ratelimiter"
)

// NewRegistrationSessionRepository creates a RegistrationSessionRepository implementation.
// If the redis store is selected and Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to process memory.
func NewRegistrationSessionRepository(store string, rdb *redis.Client) usecase.RegistrationSessionRepository {
	if store == config.StoreRedis {
		if rdb != nil {
			return session.NewRegistrationRedis(rdb, "registration")
		}
		slog.Warn("SESSION_STORE=redis but Redis is unavailable, using memory")
	}
	return authadapters.NewRegistrationMemory()
}

// NewRateLimiter creates the limiter for the selected store, with the same fallback rule.
func NewRateLimiter(store string, rdb *redis.Client) ratelimiter.Limiter {
	if store == config.StoreRedis {
		if rdb != nil {
			return ratelimiter.NewRedisLimiter(rdb, "ratelimit")
		}
		slog.Warn("RATE_LIMIT_STORE=redis but Redis is unavailable, using memory")
	}
	return ratelimiter.NewRateLimiter()
}
