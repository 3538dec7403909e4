package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/domain/entity"
	jwtmw "kurukshetra_backend/internal/platform/jwt"
)

// fakeUserStore is an in-memory UserStore for usecase tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
	seq   int

	// CreateErr forces CreateUser to fail.
	CreateErr error
	// UpdateLastLoginErr forces UpdateLastLogin to fail.
	UpdateLastLoginErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*entity.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, in entity.NewUser) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	for _, u := range f.users {
		if u.Email == in.Email || u.Username == in.Username {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	f.seq++
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	u := &entity.User{
		ID:        fmt.Sprintf("u%d", f.seq),
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) find(match func(*entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserStore) FindUserByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Email == email })
}

func (f *fakeUserStore) FindUserByUsername(_ context.Context, username string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Username == username })
}

func (f *fakeUserStore) FindUserByID(_ context.Context, id string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.ID == id })
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateLastLoginErr != nil {
		return f.UpdateLastLoginErr
	}
	u, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (f *fakeUserStore) Logout(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	now := time.Now()
	u.LastLogoutAt = &now
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) put(u *entity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

// fakeTokens records the subjects it issued tokens for.
type fakeTokens struct {
	subjects []jwtmw.Subject
	err      error
}

func (f *fakeTokens) Issue(s jwtmw.Subject) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.subjects = append(f.subjects, s)
	return "token-" + s.ID, nil
}

type auditRecord struct {
	Event   string
	UserID  string
	Details map[string]any
}

// fakeAuditor captures recorded events.
type fakeAuditor struct {
	mu     sync.Mutex
	events []auditRecord
}

func (f *fakeAuditor) Record(_ context.Context, event, userID string, details map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, auditRecord{Event: event, UserID: userID, Details: details})
}

func (f *fakeAuditor) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Event)
	}
	return out
}

func (f *fakeAuditor) last() auditRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

// fakeSessions is an in-memory RegistrationSessionRepository.
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]entity.RegistrationSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]entity.RegistrationSession{}}
}

func (f *fakeSessions) Create(_ context.Context, s *entity.RegistrationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*entity.RegistrationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrInvalidSession
	}
	return &s, nil
}

func (f *fakeSessions) Update(_ context.Context, s *entity.RegistrationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.ID]; !ok {
		return ErrInvalidSession
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
