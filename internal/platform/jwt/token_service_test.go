package jwtmw

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, now *time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)
	return svc.WithClock(func() time.Time { return *now })
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

// TestTokenService_RoundTrip は発行直後のトークンが同じ主体として検証されることを確認します。
func TestTokenService_RoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc := newTestService(t, &now)

	token, err := svc.Issue(Subject{ID: "u1", Email: "a@x.com", Username: "alice", Role: "user"})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

// TestTokenService_Expired は有効期限を過ぎるとErrTokenExpiredになることを確認します。
func TestTokenService_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc := newTestService(t, &now)

	token, err := svc.Issue(Subject{ID: "u1"})
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = svc.Verify(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Invalid(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, &now)

	valid, err := svc.Issue(Subject{ID: "u1"})
	require.NoError(t, err)

	other, err := NewTokenService("other-secret")
	require.NoError(t, err)
	foreign, err := other.Issue(Subject{ID: "u1"})
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  "u1",
		"iss": Issuer,
		"exp": now.Add(time.Hour).Unix(),
	})
	noneStr, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"iss": "someone-else",
		"exp": now.Add(time.Hour).Unix(),
	})
	wrongIssuerStr, err := wrongIssuer.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.token"},
		{"random string", "randomstring"},
		{"wrong secret", foreign},
		{"tampered payload", tampered},
		{"none algorithm", noneStr},
		{"wrong issuer", wrongIssuerStr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
