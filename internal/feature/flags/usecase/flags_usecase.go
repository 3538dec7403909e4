package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	authdomain "kurukshetra_backend/internal/feature/auth/domain"
	authentity "kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/flags/domain/entity"
	"kurukshetra_backend/internal/shared/keylock"
)

// UserLedger is the part of the credential store the flag ledger needs.
type UserLedger interface {
	FindUserByID(ctx context.Context, id string) (*authentity.User, error)
	// AddFlagToUser fails with authdomain.ErrFlagAlreadyFound when the slug is already recorded.
	AddFlagToUser(ctx context.Context, id, slug string) error
}

// Auditor は監査イベントを記録します。
type Auditor interface {
	Record(ctx context.Context, event, userID string, details map[string]any)
}

// AcceptObserver is notified of accepted flags.
type AcceptObserver interface {
	FlagAccepted(slug string)
}

// Award is the result of an accepted submission.
type Award struct {
	Slug   string
	Flag   string
	Points int
}

// ChallengeStatus is one catalog entry with the caller's progress.
type ChallengeStatus struct {
	Slug   string
	Title  string
	Points int
	Found  bool
}

// Progress summarizes a user's solved challenges.
type Progress struct {
	Challenges  []ChallengeStatus
	FoundCount  int
	TotalPoints int
}

// FlagsUsecase implements the flag ledger.
type FlagsUsecase struct {
	catalog *entity.Catalog
	users   UserLedger
	audit   Auditor
	metrics AcceptObserver
	locks   *keylock.Locker
}

// NewFlagsUsecase creates the ledger. audit and metrics may be nil.
func NewFlagsUsecase(catalog *entity.Catalog, users UserLedger, audit Auditor, metrics AcceptObserver) *FlagsUsecase {
	if catalog == nil {
		catalog = entity.DefaultCatalog()
	}
	return &FlagsUsecase{catalog: catalog, users: users, audit: audit, metrics: metrics, locks: keylock.New()}
}

func (u *FlagsUsecase) record(ctx context.Context, event, userID string, details map[string]any) {
	if u.audit != nil {
		u.audit.Record(ctx, event, userID, details)
	}
}

func (u *FlagsUsecase) reject(ctx context.Context, userID, slug string, err error) error {
	u.record(ctx, "flag_rejected", userID, map[string]any{"slug": slug, "reason": err.Error()})
	return err
}

// Submit はフラグを検証し、未取得であればユーザーに記録して100ポイントを付与します。
// 判定順は 未知のslug → フラグ不一致 → 取得済み です。
// 同一ユーザーの同時提出はユーザー単位でシリアライズされ、加点は1回だけです。
func (u *FlagsUsecase) Submit(ctx context.Context, userID, slug, flag string) (*Award, error) {
	slug = strings.TrimSpace(slug)
	def, ok := u.catalog.Lookup(slug)
	if !ok {
		return nil, u.reject(ctx, userID, slug, ErrUnknownSlug)
	}

	submitted := strings.TrimSpace(flag)
	if submitted != def.Secret {
		return nil, u.reject(ctx, userID, slug, ErrWrongFlag)
	}

	unlock := u.locks.Lock(userID)
	defer unlock()

	user, err := u.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasFlag(slug) {
		return nil, u.reject(ctx, userID, slug, ErrAlreadySubmitted)
	}

	if err := u.users.AddFlagToUser(ctx, userID, slug); err != nil {
		if errors.Is(err, authdomain.ErrFlagAlreadyFound) {
			return nil, u.reject(ctx, userID, slug, ErrAlreadySubmitted)
		}
		return nil, fmt.Errorf("record flag: %w", err)
	}

	if u.metrics != nil {
		u.metrics.FlagAccepted(slug)
	}
	slog.Info("flag accepted", "user_id", userID, "slug", slug)
	u.record(ctx, "flag_accepted", userID, map[string]any{"slug": slug, "points": def.Points})
	return &Award{Slug: slug, Flag: submitted, Points: def.Points}, nil
}

// Progress returns the catalog annotated with the user's solved challenges.
func (u *FlagsUsecase) Progress(ctx context.Context, userID string) (*Progress, error) {
	user, err := u.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Progress{}
	for _, f := range u.catalog.List() {
		found := user.HasFlag(f.Slug)
		p.Challenges = append(p.Challenges, ChallengeStatus{Slug: f.Slug, Title: f.Title, Points: f.Points, Found: found})
		if found {
			p.FoundCount++
			p.TotalPoints += f.Points
		}
	}
	return p, nil
}

// Catalog lists every challenge without secrets.
func (u *FlagsUsecase) Catalog() []ChallengeStatus {
	flags := u.catalog.List()
	out := make([]ChallengeStatus, 0, len(flags))
	for _, f := range flags {
		out = append(out, ChallengeStatus{Slug: f.Slug, Title: f.Title, Points: f.Points})
	}
	return out
}
