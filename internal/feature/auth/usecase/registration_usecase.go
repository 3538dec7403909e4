package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/shared/keylock"
)

// RegistrationSessionRepository stores in-flight registration sessions.
// Get returns ErrInvalidSession when the session does not exist.
type RegistrationSessionRepository interface {
	Create(ctx context.Context, s *entity.RegistrationSession) error
	Get(ctx context.Context, id string) (*entity.RegistrationSession, error)
	Update(ctx context.Context, s *entity.RegistrationSession) error
	Delete(ctx context.Context, id string) error
}

// CommitInput is the step 3 request. Either SessionID or the full credential set is used.
type CommitInput struct {
	SessionID string
	Email     string
	Username  string
	Password  string
}

// CommitResult describes how step 3 created the user.
type CommitResult struct {
	User *entity.User
	// Bypass is true when a session was committed without reaching step 2.
	Bypass bool
	// Direct is true when the user was created without any session.
	Direct bool
}

// RegistrationUsecase は3ステップの登録ステートマシンを実装します。
type RegistrationUsecase struct {
	sessions RegistrationSessionRepository
	users    UserStore
	audit    Auditor
	locks    *keylock.Locker
	now      func() time.Time
	newID    func() string
}

// NewRegistrationUsecase はRegistrationUsecaseを生成します。
func NewRegistrationUsecase(sessions RegistrationSessionRepository, users UserStore, audit Auditor) *RegistrationUsecase {
	return &RegistrationUsecase{
		sessions: sessions,
		users:    users,
		audit:    audit,
		locks:    keylock.New(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

func (u *RegistrationUsecase) record(ctx context.Context, event, userID string, details map[string]any) {
	if u.audit != nil {
		u.audit.Record(ctx, event, userID, details)
	}
}

// StartStep1 は認証情報を受け取りセッションを作成します。既存ユーザーとの重複はコミット時に確認します。
func (u *RegistrationUsecase) StartStep1(ctx context.Context, email, username, password string) (string, error) {
	email, username = entity.NormalizeEmail(email), strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return "", fmt.Errorf("%w: email, username and password are required", ErrValidation)
	}

	s := &entity.RegistrationSession{
		ID:          u.newID(),
		CurrentStep: entity.StepCredentials,
		Step1:       entity.RegistrationStep1{Email: email, Username: username, Password: password},
		CreatedAt:   u.now(),
	}
	if err := u.sessions.Create(ctx, s); err != nil {
		return "", fmt.Errorf("create registration session: %w", err)
	}
	return s.ID, nil
}

// AdvanceStep2 はプロフィール情報を記録し、セッションをステップ2へ進めます。
func (u *RegistrationUsecase) AdvanceStep2(ctx context.Context, sessionID, firstName, lastName string, agreeToTerms bool) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	unlock := u.locks.Lock(sessionID)
	defer unlock()

	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return fmt.Errorf("%w: firstName and lastName are required", ErrValidation)
	}
	if !agreeToTerms {
		return fmt.Errorf("%w: terms must be accepted", ErrValidation)
	}

	s.Step2 = &entity.RegistrationStep2{FirstName: firstName, LastName: lastName, TermsAccepted: true}
	s.CurrentStep = entity.StepProfile
	return u.sessions.Update(ctx, s)
}

// CommitStep3 はユーザーを作成します。
// SessionID がなく認証情報が揃っている場合はセッションを使わずに直接作成します。
// SessionID がある場合はステップ2の到達有無にかかわらずステップ1のデータでコミットし、セッションを削除します。
func (u *RegistrationUsecase) CommitStep3(ctx context.Context, in CommitInput) (*CommitResult, error) {
	if in.SessionID == "" {
		return u.commitDirect(ctx, in)
	}

	unlock := u.locks.Lock(in.SessionID)
	defer unlock()

	s, err := u.sessions.Get(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	newUser := entity.NewUser{
		Username: s.Step1.Username,
		Email:    s.Step1.Email,
		Password: s.Step1.Password,
	}
	bypass := !s.ReachedProfile()
	if !bypass {
		newUser.FirstName = s.Step2.FirstName
		newUser.LastName = s.Step2.LastName
	}

	user, err := u.users.CreateUser(ctx, newUser)
	if err != nil {
		return nil, err
	}

	if err := u.sessions.Delete(ctx, s.ID); err != nil {
		return nil, fmt.Errorf("delete registration session: %w", err)
	}

	u.record(ctx, "registration_completed", user.ID, map[string]any{
		"sessionId": s.ID,
		"fromStep":  s.CurrentStep,
		"bypass":    bypass,
	})
	return &CommitResult{User: user, Bypass: bypass}, nil
}

func (u *RegistrationUsecase) commitDirect(ctx context.Context, in CommitInput) (*CommitResult, error) {
	email, username := entity.NormalizeEmail(in.Email), strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: sessionId or email, username and password are required", ErrValidation)
	}

	user, err := u.users.CreateUser(ctx, entity.NewUser{Username: username, Email: email, Password: in.Password})
	if err != nil {
		return nil, err
	}
	u.record(ctx, "registration_direct", user.ID, map[string]any{"username": user.Username})
	return &CommitResult{User: user, Bypass: true, Direct: true}, nil
}
