package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurukshetra_backend/internal/feature/auth/domain"
)

func newRegistration(t *testing.T) (*RegistrationUsecase, *fakeSessions, *fakeUserStore, *fakeAuditor) {
	t.Helper()
	sessions, store, audit := newFakeSessions(), newFakeUserStore(), &fakeAuditor{}
	return NewRegistrationUsecase(sessions, store, audit), sessions, store, audit
}

// TestRegistration_FullFlow はステップ1→2→3でユーザーが作成され、セッションが削除されることを検証します。
func TestRegistration_FullFlow(t *testing.T) {
	ctx := context.Background()
	uc, sessions, _, audit := newRegistration(t)

	id, err := uc.StartStep1(ctx, "A@x.com", "alice", "p1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, uc.AdvanceStep2(ctx, id, "Alice", "Liddell", true))

	res, err := uc.CommitStep3(ctx, CommitInput{SessionID: id})
	require.NoError(t, err)
	assert.False(t, res.Bypass)
	assert.False(t, res.Direct)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.Equal(t, "Alice", res.User.FirstName)
	assert.Equal(t, "Liddell", res.User.LastName)
	assert.Zero(t, sessions.len())

	last := audit.last()
	assert.Equal(t, "registration_completed", last.Event)
	assert.Equal(t, false, last.Details["bypass"])
}

// TestRegistration_CommitFromStep1 はステップ2を経ずにコミットしてもユーザーが作成されることを検証します。
func TestRegistration_CommitFromStep1(t *testing.T) {
	ctx := context.Background()
	uc, _, _, audit := newRegistration(t)

	id, err := uc.StartStep1(ctx, "a@x.com", "alice", "p1")
	require.NoError(t, err)

	res, err := uc.CommitStep3(ctx, CommitInput{SessionID: id})
	require.NoError(t, err)
	assert.True(t, res.Bypass)
	assert.Equal(t, "alice", res.User.Username)
	assert.Empty(t, res.User.FirstName)
	assert.Equal(t, true, audit.last().Details["bypass"])

	// 削除済みセッションの再コミットは失敗する
	_, err = uc.CommitStep3(ctx, CommitInput{SessionID: id})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

// TestRegistration_Direct はセッションなしで認証情報だけでユーザーが作成され、セッションテーブルに触れないことを検証します。
func TestRegistration_Direct(t *testing.T) {
	ctx := context.Background()
	uc, sessions, _, audit := newRegistration(t)

	res, err := uc.CommitStep3(ctx, CommitInput{Email: "d@x.com", Username: "dave", Password: "p"})
	require.NoError(t, err)
	assert.True(t, res.Direct)
	assert.Equal(t, "dave", res.User.Username)
	assert.Zero(t, sessions.len())
	assert.Equal(t, []string{"registration_direct"}, audit.names())

	_, err = uc.CommitStep3(ctx, CommitInput{Email: "e@x.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegistration_Step1Validation(t *testing.T) {
	uc, sessions, _, _ := newRegistration(t)

	tests := []struct {
		name, email, username, password string
	}{
		{"missing email", "", "alice", "p"},
		{"missing username", "a@x.com", " ", "p"},
		{"missing password", "a@x.com", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.StartStep1(context.Background(), tt.email, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, sessions.len())
}

func TestRegistration_Step2(t *testing.T) {
	ctx := context.Background()
	uc, sessions, _, _ := newRegistration(t)

	assert.ErrorIs(t, uc.AdvanceStep2(ctx, "missing", "A", "B", true), ErrInvalidSession)
	assert.ErrorIs(t, uc.AdvanceStep2(ctx, "", "A", "B", true), ErrInvalidSession)

	id, err := uc.StartStep1(ctx, "a@x.com", "alice", "p1")
	require.NoError(t, err)

	assert.ErrorIs(t, uc.AdvanceStep2(ctx, id, "", "B", true), ErrValidation)
	assert.ErrorIs(t, uc.AdvanceStep2(ctx, id, "A", "B", false), ErrValidation)

	s, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentStep, "failed validation leaves the session at step 1")

	require.NoError(t, uc.AdvanceStep2(ctx, id, "A", "B", true))
	s, err = sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentStep)
}

// TestRegistration_ConflictKeepsSession は重複時にセッションが残ることを検証します。
func TestRegistration_ConflictKeepsSession(t *testing.T) {
	ctx := context.Background()
	uc, sessions, _, _ := newRegistration(t)

	_, err := uc.CommitStep3(ctx, CommitInput{Email: "a@x.com", Username: "alice", Password: "p"})
	require.NoError(t, err)

	id, err := uc.StartStep1(ctx, "a@x.com", "alice2", "p")
	require.NoError(t, err)
	_, err = uc.CommitStep3(ctx, CommitInput{SessionID: id})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	assert.Equal(t, 1, sessions.len())
}

// TestRegistration_ConcurrentCommit は同一セッションの同時コミットで1件だけ成功することを検証します。
func TestRegistration_ConcurrentCommit(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := newRegistration(t)

	id, err := uc.StartStep1(ctx, "a@x.com", "alice", "p1")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.CommitStep3(ctx, CommitInput{SessionID: id}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, success)
}
