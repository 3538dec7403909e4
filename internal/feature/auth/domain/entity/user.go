// Package entity defines the domain entities for the auth feature.
package entity

import (
	"slices"
	"strings"
	"time"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents a registered learner.
// The same record is mirrored into both backing stores under the same ID.
type User struct {
	// ID is an opaque unique identifier shared by both backends.
	ID string

	// Username is unique across the union of both backends.
	Username string

	// Email is unique across the union of both backends and stored lower-cased.
	Email string

	// Password is the clear-text password, kept for plaintext comparison at login.
	Password string

	// PasswordHash is a low-cost bcrypt hash of Password. It may be empty for legacy records.
	PasswordHash string

	Role      Role
	FirstName string
	LastName  string

	// FlagsFound is the set of challenge slugs the user has solved.
	FlagsFound []string

	LastLoginAt  *time.Time
	LastLogoutAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasFlag reports whether slug is already in FlagsFound.
func (u *User) HasFlag(slug string) bool {
	return slices.Contains(u.FlagsFound, slug)
}

// NewUser is the input of a user creation.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
}

// ProfileUpdate carries the optional fields of a profile update. Nil fields are left unchanged.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.Email == nil && p.FirstName == nil && p.LastName == nil
}

// NormalizeEmail は比較・保存用にメールアドレスを小文字化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
