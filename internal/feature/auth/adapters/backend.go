// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
)

// UserBackend is one of the two stores that hold identity records.
// Implementations translate driver errors into domain errors.
type UserBackend interface {
	// Name returns the backend selector value ("sqlite" or "mongo").
	Name() string
	// Create fails with domain.ErrUserAlreadyExists on a username or email collision.
	Create(ctx context.Context, u *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Logout(ctx context.Context, id string, at time.Time) error
	// AddFlag appends slug atomically and fails with domain.ErrFlagAlreadyFound when present.
	AddFlag(ctx context.Context, id, slug string) error
	UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate, at time.Time) error
	Ping(ctx context.Context) error
}
