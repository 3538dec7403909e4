package dto

import (
	"time"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
)

// UserResponse is the public view of a user. Password fields are never serialized.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FlagsFound  []string   `json:"flagsFound"`
	Role        string     `json:"role"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromUser converts an entity into its response form.
func FromUser(u *entity.User) UserResponse {
	flags := u.FlagsFound
	if flags == nil {
		flags = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FlagsFound:  flags,
		Role:        string(u.Role),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
