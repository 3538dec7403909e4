package usecase

import (
	"golang.org/x/crypto/bcrypt"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
)

// PasswordVerifier はログイン時のパスワード照合方式を表します。
type PasswordVerifier interface {
	Verify(u *entity.User, password string) bool
}

// PlaintextVerifier は平文の完全一致で照合します。
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(u *entity.User, password string) bool {
	return u.Password != "" && u.Password == password
}

// BcryptVerifier はbcryptハッシュで照合します。ハッシュがないユーザーは常に不一致です。
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(u *entity.User, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// AnyVerifier succeeds when at least one of its verifiers does.
type AnyVerifier []PasswordVerifier

func (a AnyVerifier) Verify(u *entity.User, password string) bool {
	for _, v := range a {
		if v.Verify(u, password) {
			return true
		}
	}
	return false
}

// DefaultVerifier accepts either plaintext equality or a bcrypt match.
func DefaultVerifier() PasswordVerifier {
	return AnyVerifier{PlaintextVerifier{}, BcryptVerifier{}}
}
