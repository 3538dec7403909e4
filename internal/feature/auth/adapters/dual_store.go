package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"
	"golang.org/x/crypto/bcrypt"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/auth/usecase"
	"kurukshetra_backend/internal/shared/keylock"
)

// passwordHashCost is deliberately the bcrypt minimum.
const passwordHashCost = bcrypt.MinCost

// DiscrepancyObserver is notified when a secondary write fails.
type DiscrepancyObserver interface {
	Discrepancy(operation, backend string)
}

// DualUserStore mirrors every identity mutation into two backends.
// The primary is authoritative and its failures propagate; the secondary is best-effort.
// Reads are served from the primary only.
type DualUserStore struct {
	sel     *BackendSelector
	audit   usecase.Auditor
	metrics DiscrepancyObserver
	locks   *keylock.Locker
	now     func() time.Time
}

var _ usecase.UserStore = (*DualUserStore)(nil)

// NewDualUserStore creates the store. audit and metrics may be nil.
func NewDualUserStore(sel *BackendSelector, audit usecase.Auditor, metrics DiscrepancyObserver) *DualUserStore {
	return &DualUserStore{
		sel:     sel,
		audit:   audit,
		metrics: metrics,
		locks:   keylock.New(),
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *DualUserStore) WithClock(now func() time.Time) *DualUserStore {
	s.now = now
	return s
}

// ActiveBackend returns the current primary backend name.
func (s *DualUserStore) ActiveBackend() string {
	return s.sel.Active()
}

// Backends returns the registered backend names.
func (s *DualUserStore) Backends() []string {
	return s.sel.Names()
}

// SwitchPrimary makes name the primary backend and records who did it.
func (s *DualUserStore) SwitchPrimary(ctx context.Context, name, actorID string) error {
	from := s.sel.Active()
	if err := s.sel.Set(name); err != nil {
		return err
	}
	slog.Info("active backend switched", "from", from, "to", name, "actor", actorID)
	if s.audit != nil {
		s.audit.Record(ctx, "backend_switched", actorID, map[string]any{"from": from, "to": name})
	}
	return nil
}

// discrepancy はセカンダリへの書き込み失敗を記録します。呼び出し元には失敗を返しません。
func (s *DualUserStore) discrepancy(ctx context.Context, op string, backend UserBackend, userID string, err error) {
	slog.Warn("dual-sync discrepancy", "operation", op, "backend", backend.Name(), "user_id", userID, "error", err)
	if s.metrics != nil {
		s.metrics.Discrepancy(op, backend.Name())
	}
	if s.audit != nil {
		s.audit.Record(ctx, "dual_sync_discrepancy", userID, map[string]any{
			"operation": op,
			"backend":   backend.Name(),
			"error":     err.Error(),
		})
	}
}

// lockIdentity serializes operations that claim the given email and username.
// Locks are always taken email first so two claims cannot deadlock.
func (s *DualUserStore) lockIdentity(email, username string) func() {
	var unlocks []func()
	if email != "" {
		unlocks = append(unlocks, s.locks.Lock("email:"+email))
	}
	if username != "" {
		unlocks = append(unlocks, s.locks.Lock("username:"+strings.ToLower(username)))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// taken reports whether email or username belongs to a user other than exceptID in backend b.
// Lookup failures other than not-found are returned as err.
func taken(ctx context.Context, b UserBackend, email, username, exceptID string) (bool, error) {
	if email != "" {
		u, err := b.FindByEmail(ctx, email)
		switch {
		case err == nil && u.ID != exceptID:
			return true, nil
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return false, err
		}
	}
	if username != "" {
		u, err := b.FindByUsername(ctx, username)
		switch {
		case err == nil && u.ID != exceptID:
			return true, nil
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return false, err
		}
	}
	return false, nil
}

// checkUnique は両方のバックエンドで一意性を確認します。
// プライマリの照会失敗は伝播し、セカンダリの照会失敗は不整合として記録したうえで無視します。
func (s *DualUserStore) checkUnique(ctx context.Context, primary, secondary UserBackend, op, email, username, exceptID string) error {
	dup, err := taken(ctx, primary, email, username, exceptID)
	if err != nil {
		return fmt.Errorf("%s: primary lookup: %w", op, err)
	}
	if dup {
		return domain.ErrUserAlreadyExists
	}

	dup, err = taken(ctx, secondary, email, username, exceptID)
	if err != nil {
		s.discrepancy(ctx, op+"_lookup", secondary, exceptID, err)
		return nil
	}
	if dup {
		return domain.ErrUserAlreadyExists
	}
	return nil
}

// CreateUser はユーザーを作成します。
//  1. 両方のバックエンドでユーザー名・メールアドレスの重複を確認
//  2. プライマリへ書き込み（失敗時はそのまま返す）
//  3. セカンダリへ書き込み（失敗時は不整合を記録して成功扱い）
func (s *DualUserStore) CreateUser(ctx context.Context, in entity.NewUser) (*entity.User, error) {
	email, username := entity.NormalizeEmail(in.Email), strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", usecase.ErrValidation)
	}

	unlock := s.lockIdentity(email, username)
	defer unlock()

	primary, secondary := s.sel.Pair()
	if err := s.checkUnique(ctx, primary, secondary, "create_user", email, username, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if !role.Valid() {
		role = entity.RoleUser
	}
	now := s.now()
	user := &entity.User{
		ID:           xid.New().String(),
		Username:     username,
		Email:        email,
		Password:     in.Password,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		FlagsFound:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := primary.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user on %s: %w", primary.Name(), err)
	}

	mirror := *user
	if err := secondary.Create(ctx, &mirror); err != nil {
		s.discrepancy(ctx, "create_user", secondary, user.ID, err)
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username, "primary", primary.Name())
	return user, nil
}

// FindUserByEmail reads from the primary backend.
func (s *DualUserStore) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	primary, _ := s.sel.Pair()
	return primary.FindByEmail(ctx, entity.NormalizeEmail(email))
}

// FindUserByUsername reads from the primary backend.
func (s *DualUserStore) FindUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	primary, _ := s.sel.Pair()
	return primary.FindByUsername(ctx, strings.TrimSpace(username))
}

// FindUserByID reads from the primary backend.
func (s *DualUserStore) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	primary, _ := s.sel.Pair()
	return primary.FindByID(ctx, id)
}

// mirror applies write to the primary and then, best-effort, to the secondary.
func (s *DualUserStore) mirror(ctx context.Context, op, userID string, write func(UserBackend) error, inSync func(error) bool) error {
	primary, secondary := s.sel.Pair()
	if err := write(primary); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUserAlreadyExists) || errors.Is(err, domain.ErrFlagAlreadyFound) {
			return err
		}
		return fmt.Errorf("%s on %s: %w", op, primary.Name(), err)
	}
	if err := write(secondary); err != nil && (inSync == nil || !inSync(err)) {
		s.discrepancy(ctx, op, secondary, userID, err)
	}
	return nil
}

// UpdateLastLogin records the login time in both backends.
func (s *DualUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	at := s.now()
	return s.mirror(ctx, "update_last_login", id, func(b UserBackend) error {
		return b.UpdateLastLogin(ctx, id, at)
	}, nil)
}

// Logout records the logout time in both backends.
func (s *DualUserStore) Logout(ctx context.Context, id string) error {
	at := s.now()
	return s.mirror(ctx, "logout", id, func(b UserBackend) error {
		return b.Logout(ctx, id, at)
	}, nil)
}

// AddFlagToUser appends slug to the user's flags.
// It fails with domain.ErrFlagAlreadyFound when the primary already has it.
// A secondary that already has the slug is considered in sync.
func (s *DualUserStore) AddFlagToUser(ctx context.Context, id, slug string) error {
	unlock := s.locks.Lock("user:" + id)
	defer unlock()

	return s.mirror(ctx, "add_flag", id, func(b UserBackend) error {
		return b.AddFlag(ctx, id, slug)
	}, func(err error) bool {
		return errors.Is(err, domain.ErrFlagAlreadyFound)
	})
}

// UpdateProfile applies upd to both backends and returns the primary's record.
func (s *DualUserStore) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	email, username := "", ""
	if upd.Email != nil {
		email = entity.NormalizeEmail(*upd.Email)
		upd.Email = &email
	}
	if upd.Username != nil {
		username = strings.TrimSpace(*upd.Username)
		upd.Username = &username
	}

	unlock := s.lockIdentity(email, username)
	defer unlock()

	if email != "" || username != "" {
		primary, secondary := s.sel.Pair()
		if err := s.checkUnique(ctx, primary, secondary, "update_profile", email, username, id); err != nil {
			return nil, err
		}
	}

	at := s.now()
	if err := s.mirror(ctx, "update_profile", id, func(b UserBackend) error {
		return b.UpdateProfile(ctx, id, upd, at)
	}, nil); err != nil {
		return nil, err
	}
	return s.FindUserByID(ctx, id)
}
