package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the fixed "iss" claim of every token.
	Issuer = "kurukshetra-training"
	// TokenTTL is the lifetime of an access token.
	TokenTTL = time.Hour
)

var (
	// ErrInvalidToken is returned for malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned once "exp" has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Subject is the identity a token is issued for.
type Subject struct {
	ID       string
	Email    string
	Username string
	Role     string
}

// Claims is the token payload.
type Claims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens with a single process-wide secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// WithClock replaces the time source used for both issuing and verifying.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue creates a signed token for subject; exp is always iat + 1h.
func (s *TokenService) Issue(subject Subject) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   subject.ID,
		Email:    subject.Email,
		Username: subject.Username,
		Role:     subject.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and returns its claims.
// It fails with ErrTokenExpired after exp and with ErrInvalidToken for anything else.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			// HMAC以外の署名方式は拒否
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
