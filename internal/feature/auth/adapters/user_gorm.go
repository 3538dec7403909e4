package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/platform/config"
)

// userGorm はUserBackendのGORM実装です（sqlite、またはDSNがpostgresの場合はPostgreSQL）。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserBackendを実装していることをコンパイル時に検証します。
var _ UserBackend = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

func (r *userGorm) Name() string { return config.BackendSQLite }

// isUniqueViolation はsqlite/postgresの一意制約違反を判定します。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// PostgreSQLエラー23505: unique_violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *userGorm) withFlags(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Flags", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

// Create はユーザーをデータベースに追加します。
// ユーザー名またはメールアドレスが重複する場合、domain.ErrUserAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	m := toUserModel(u)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Flags").Create(m).Error; err != nil {
			return err
		}
		for _, slug := range u.FlagsFound {
			if err := tx.Create(&userFlagModel{UserID: m.ID, Slug: slug}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("gorm create user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *userGorm) findOne(ctx context.Context, column, value string) (*entity.User, error) {
	var m userModel
	if err := r.withFlags(ctx).Where(column+" = ?", value).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm find user by %s: %w", column, err)
	}
	return m.toEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", entity.NormalizeEmail(email))
}

// FindByUsername はユーザー名でユーザーを取得します。
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username", username)
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *userGorm) updateColumns(ctx context.Context, id string, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("gorm update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userGorm) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{"last_login_at": at, "updated_at": at})
}

func (r *userGorm) Logout(ctx context.Context, id string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{"last_logout_at": at, "updated_at": at})
}

// AddFlag はフラグを追加します。(user_id, slug) の一意インデックスにより同時追加でも1件だけ成功します。
func (r *userGorm) AddFlag(ctx context.Context, id, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("gorm count user: %w", err)
		}
		if count == 0 {
			return domain.ErrUserNotFound
		}
		if err := tx.Create(&userFlagModel{UserID: id, Slug: slug}).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrFlagAlreadyFound
			}
			return fmt.Errorf("gorm add flag: %w", err)
		}
		return tx.Model(&userModel{}).Where("id = ?", id).Update("updated_at", time.Now()).Error
	})
}

func (r *userGorm) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate, at time.Time) error {
	values := map[string]any{"updated_at": at}
	if upd.Username != nil {
		values["username"] = *upd.Username
	}
	if upd.Email != nil {
		values["email"] = entity.NormalizeEmail(*upd.Email)
	}
	if upd.FirstName != nil {
		values["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		values["last_name"] = *upd.LastName
	}
	return r.updateColumns(ctx, id, values)
}

func (r *userGorm) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
