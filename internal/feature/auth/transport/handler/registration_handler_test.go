package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/usecase"
)

// mockRegistration is a mock implementation of the RegistrationUsecase interface.
type mockRegistration struct {
	step1Func  func(ctx context.Context, email, username, password string) (string, error)
	step2Func  func(ctx context.Context, id, first, last string, agree bool) error
	commitFunc func(ctx context.Context, in usecase.CommitInput) (*usecase.CommitResult, error)
}

func (m *mockRegistration) StartStep1(ctx context.Context, email, username, password string) (string, error) {
	return m.step1Func(ctx, email, username, password)
}

func (m *mockRegistration) AdvanceStep2(ctx context.Context, id, first, last string, agree bool) error {
	return m.step2Func(ctx, id, first, last, agree)
}

func (m *mockRegistration) CommitStep3(ctx context.Context, in usecase.CommitInput) (*usecase.CommitResult, error) {
	return m.commitFunc(ctx, in)
}

func registrationRouter(m *mockRegistration) *gin.Engine {
	h := NewRegistrationHandler(m)
	r := gin.New()
	r.POST("/register/step1", h.Step1)
	r.POST("/register/step2", h.Step2)
	r.POST("/register/step3", h.Step3)
	return r
}

func TestRegistrationHandler_Step1(t *testing.T) {
	m := &mockRegistration{step1Func: func(_ context.Context, email, username, password string) (string, error) {
		if password == "" {
			return "", usecase.ErrValidation
		}
		return "sess-1", nil
	}}
	r := registrationRouter(m)

	w := doJSON(r, http.MethodPost, "/register/step1", gin.H{"email": "a@x.com", "username": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, gin.H{"sessionId": "sess-1", "nextStep": float64(2)}, decode(t, w))

	w = doJSON(r, http.MethodPost, "/register/step1", gin.H{"email": "a@x.com", "username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandler_Step2(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"advanced", nil, http.StatusOK},
		{"unknown session", usecase.ErrInvalidSession, http.StatusNotFound},
		{"terms not accepted", usecase.ErrValidation, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockRegistration{step2Func: func(_ context.Context, id, first, last string, agree bool) error {
				assert.Equal(t, "sess-1", id)
				assert.True(t, agree)
				return tt.err
			}}
			w := doJSON(registrationRouter(m), http.MethodPost, "/register/step2",
				gin.H{"sessionId": "sess-1", "firstName": "Alice", "lastName": "L", "agreeToTerms": true})
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.err == nil {
				assert.Equal(t, gin.H{"sessionId": "sess-1", "nextStep": float64(3)}, decode(t, w))
			}
		})
	}
}

func TestRegistrationHandler_Step3(t *testing.T) {
	t.Run("session path", func(t *testing.T) {
		m := &mockRegistration{commitFunc: func(_ context.Context, in usecase.CommitInput) (*usecase.CommitResult, error) {
			assert.Equal(t, "sess-1", in.SessionID)
			return &usecase.CommitResult{User: alice(), Bypass: true}, nil
		}}
		w := doJSON(registrationRouter(m), http.MethodPost, "/register/step3", gin.H{"sessionId": "sess-1"})
		require.Equal(t, http.StatusCreated, w.Code)
		user := decode(t, w)["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
		assert.Equal(t, []any{}, user["flagsFound"])
	})

	t.Run("direct path passes the credentials through", func(t *testing.T) {
		m := &mockRegistration{commitFunc: func(_ context.Context, in usecase.CommitInput) (*usecase.CommitResult, error) {
			assert.Empty(t, in.SessionID)
			assert.Equal(t, usecase.CommitInput{Email: "a@x.com", Username: "alice", Password: "p1"}, in)
			return &usecase.CommitResult{User: alice(), Bypass: true, Direct: true}, nil
		}}
		w := doJSON(registrationRouter(m), http.MethodPost, "/register/step3",
			gin.H{"email": "a@x.com", "username": "alice", "password": "p1"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("failures", func(t *testing.T) {
		for err, status := range map[error]int{
			usecase.ErrInvalidSession:   http.StatusNotFound,
			domain.ErrUserAlreadyExists: http.StatusConflict,
			usecase.ErrValidation:       http.StatusBadRequest,
		} {
			m := &mockRegistration{commitFunc: func(context.Context, usecase.CommitInput) (*usecase.CommitResult, error) {
				return nil, err
			}}
			w := doJSON(registrationRouter(m), http.MethodPost, "/register/step3", gin.H{"sessionId": "sess-1"})
			assert.Equal(t, status, w.Code, err.Error())
		}
	})
}
