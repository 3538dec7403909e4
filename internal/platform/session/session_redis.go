// Package session provides a Redis-backed registration session store shared across processes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/auth/usecase"
)

// RegistrationRedis implements usecase.RegistrationSessionRepository using Redis.
// Keys are written without a TTL, matching the in-process store.
type RegistrationRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.RegistrationSessionRepository = (*RegistrationRedis)(nil)

// NewRegistrationRedis creates a new RegistrationRedis instance.
func NewRegistrationRedis(client *redis.Client, prefix string) *RegistrationRedis {
	if prefix == "" {
		prefix = "registration"
	}
	return &RegistrationRedis{
		client: client,
		prefix: prefix,
	}
}

// sessionKey returns the Redis key for a session.
func (r *RegistrationRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Create persists a new session to Redis.
func (r *RegistrationRedis) Create(ctx context.Context, s *entity.RegistrationSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(s.ID), data, 0).Err()
}

// Get retrieves a session by its ID.
func (r *RegistrationRedis) Get(ctx context.Context, id string) (*entity.RegistrationSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrInvalidSession
		}
		return nil, err
	}

	var s entity.RegistrationSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Update overwrites an existing session. It fails with usecase.ErrInvalidSession when the key is gone.
func (r *RegistrationRedis) Update(ctx context.Context, s *entity.RegistrationSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ok, err := r.client.SetXX(ctx, r.sessionKey(s.ID), data, redis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return usecase.ErrInvalidSession
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *RegistrationRedis) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.sessionKey(id)).Err()
}
