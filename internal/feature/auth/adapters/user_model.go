package adapters

import (
	"time"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
)

// userModel is the relational row for entity.User.
type userModel struct {
	ID           string `gorm:"primaryKey;size:32"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Password     string `gorm:"size:255"`
	PasswordHash string `gorm:"size:255"`
	Role         string `gorm:"size:16;not null;default:user"`
	FirstName    string `gorm:"size:128"`
	LastName     string `gorm:"size:128"`
	LastLoginAt  *time.Time
	LastLogoutAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Flags []userFlagModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (userModel) TableName() string { return "users" }

// userFlagModel stores one solved challenge. The unique index makes the append atomic.
type userFlagModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:32;not null;uniqueIndex:idx_user_flags_user_slug"`
	Slug      string `gorm:"size:64;not null;uniqueIndex:idx_user_flags_user_slug"`
	CreatedAt time.Time
}

func (userFlagModel) TableName() string { return "user_flags" }

// GormModels returns the models to migrate for the relational backend.
func GormModels() []any {
	return []any{&userModel{}, &userFlagModel{}}
}

func toUserModel(u *entity.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Password:     u.Password,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		LastLoginAt:  u.LastLoginAt,
		LastLogoutAt: u.LastLogoutAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *userModel) toEntity() *entity.User {
	flags := make([]string, 0, len(m.Flags))
	for _, f := range m.Flags {
		flags = append(flags, f.Slug)
	}
	return &entity.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		Password:     m.Password,
		PasswordHash: m.PasswordHash,
		Role:         entity.Role(m.Role),
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		FlagsFound:   flags,
		LastLoginAt:  m.LastLoginAt,
		LastLogoutAt: m.LastLogoutAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
