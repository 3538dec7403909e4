package adapters

import (
	"context"
	"fmt"
	"time"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/domain/entity"
)

// unavailableBackend stands in for a store that could not be connected at startup.
// Every call fails with domain.ErrBackendUnavailable, so secondary writes surface as discrepancies.
type unavailableBackend struct {
	name  string
	cause error
}

var _ UserBackend = (*unavailableBackend)(nil)

// NewUnavailableBackend returns a backend named name whose every operation fails with cause.
func NewUnavailableBackend(name string, cause error) *unavailableBackend {
	return &unavailableBackend{name: name, cause: cause}
}

func (b *unavailableBackend) err() error {
	if b.cause == nil {
		return domain.ErrBackendUnavailable
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrBackendUnavailable, b.name, b.cause)
}

func (b *unavailableBackend) Name() string { return b.name }
func (b *unavailableBackend) Create(context.Context, *entity.User) error { return b.err() }
func (b *unavailableBackend) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, b.err()
}
func (b *unavailableBackend) FindByUsername(context.Context, string) (*entity.User, error) {
	return nil, b.err()
}
func (b *unavailableBackend) FindByID(context.Context, string) (*entity.User, error) {
	return nil, b.err()
}
func (b *unavailableBackend) UpdateLastLogin(context.Context, string, time.Time) error { return b.err() }
func (b *unavailableBackend) Logout(context.Context, string, time.Time) error { return b.err() }
func (b *unavailableBackend) AddFlag(context.Context, string, string) error { return b.err() }
func (b *unavailableBackend) UpdateProfile(context.Context, string, entity.ProfileUpdate, time.Time) error {
	return b.err()
}
func (b *unavailableBackend) Ping(context.Context) error { return b.err() }
