package adapters

import (
	"context"
	"sync"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/auth/usecase"
)

// registrationMemory はプロセス内に登録セッションを保持します。期限切れによる削除は行いません。
type registrationMemory struct {
	mu       sync.RWMutex
	sessions map[string]entity.RegistrationSession
}

var _ usecase.RegistrationSessionRepository = (*registrationMemory)(nil)

// NewRegistrationMemory creates an empty in-process session table.
func NewRegistrationMemory() *registrationMemory {
	return &registrationMemory{sessions: make(map[string]entity.RegistrationSession)}
}

func cloneSession(s *entity.RegistrationSession) entity.RegistrationSession {
	cp := *s
	if s.Step2 != nil {
		step2 := *s.Step2
		cp.Step2 = &step2
	}
	return cp
}

func (r *registrationMemory) Create(_ context.Context, s *entity.RegistrationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

// Get returns a copy of the session or usecase.ErrInvalidSession.
func (r *registrationMemory) Get(_ context.Context, id string) (*entity.RegistrationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, usecase.ErrInvalidSession
	}
	cp := cloneSession(&s)
	return &cp, nil
}

func (r *registrationMemory) Update(_ context.Context, s *entity.RegistrationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return usecase.ErrInvalidSession
	}
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *registrationMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (r *registrationMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
