// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/auth/usecase"
)

// UserStore is the store being decorated.
type UserStore interface {
	usecase.UserStore
	AddFlagToUser(ctx context.Context, id, slug string) error
	ActiveBackend() string
	Backends() []string
}

// CachingUserStore decorates a UserStore with Redis caching of FindUserByID.
// Entries are keyed by the active backend so a backend switch never serves the other store's view.
// Every mutation invalidates the user's entries for all backends.
type CachingUserStore struct {
	inner     UserStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingUserStore decorates a UserStore with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching.
func NewCachingUserStore(rdb *redis.Client, ttl time.Duration, inner UserStore, namespace string) *CachingUserStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserStore{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindUserByID retrieves a user, checking cache first then falling back to the store.
func (c *CachingUserStore) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindUserByID(ctx, id)
	}

	key := c.cacheKey(c.inner.ActiveBackend(), id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.User
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	out, err := c.inner.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingUserStore) CreateUser(ctx context.Context, in entity.NewUser) (*entity.User, error) {
	return c.inner.CreateUser(ctx, in)
}

func (c *CachingUserStore) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindUserByEmail(ctx, email)
}

func (c *CachingUserStore) FindUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	return c.inner.FindUserByUsername(ctx, username)
}

func (c *CachingUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	defer c.invalidate(ctx, id)
	return c.inner.UpdateLastLogin(ctx, id)
}

func (c *CachingUserStore) Logout(ctx context.Context, id string) error {
	defer c.invalidate(ctx, id)
	return c.inner.Logout(ctx, id)
}

func (c *CachingUserStore) AddFlagToUser(ctx context.Context, id, slug string) error {
	defer c.invalidate(ctx, id)
	return c.inner.AddFlagToUser(ctx, id, slug)
}

func (c *CachingUserStore) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	defer c.invalidate(ctx, id)
	return c.inner.UpdateProfile(ctx, id, upd)
}

func (c *CachingUserStore) ActiveBackend() string { return c.inner.ActiveBackend() }

func (c *CachingUserStore) Backends() []string { return c.inner.Backends() }

// invalidate drops the user's entries for every backend. Best effort: a failed delete only leaves a stale entry until ttl.
func (c *CachingUserStore) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	backends := c.inner.Backends()
	keys := make([]string, 0, len(backends))
	for _, b := range backends {
		keys = append(keys, c.cacheKey(b, id))
	}
	if len(keys) > 0 {
		_ = c.rdb.Del(ctx, keys...).Err()
	}
}

// cacheKey generates a cache key for a user on a backend.
func (c *CachingUserStore) cacheKey(backend, id string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(backend), safe(id))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
