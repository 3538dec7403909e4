package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/domain/entity"
	jwtmw "kurukshetra_backend/internal/platform/jwt"
)

// UserStore はユーザーの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserStore interface {
	// CreateUser は両方のバックエンドで一意性を確認してからユーザーを作成します。
	CreateUser(ctx context.Context, in entity.NewUser) (*entity.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entity.User, error)
	FindUserByUsername(ctx context.Context, username string) (*entity.User, error)
	FindUserByID(ctx context.Context, id string) (*entity.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	Logout(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error)
}

// TokenIssuer はJWTトークン発行のインターフェースを定義します。
type TokenIssuer interface {
	Issue(subject jwtmw.Subject) (string, error)
}

// Auditor は監査イベントを記録します。呼び出し側をブロックしてはいけません。
// userID が空の場合は匿名イベントとして扱われます。
type Auditor interface {
	Record(ctx context.Context, event, userID string, details map[string]any)
}

// LoginResult はログイン成功時の結果です。
type LoginResult struct {
	Token string
	User  *entity.User
}

// AuthUsecase は認証ビジネスロジックを実装します。
type AuthUsecase struct {
	users    UserStore
	tokens   TokenIssuer
	verifier PasswordVerifier
	audit    Auditor
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
// verifier が nil の場合は平文一致とbcrypt照合の両方を受け付けます。
func NewAuthUsecase(users UserStore, tokens TokenIssuer, verifier PasswordVerifier, audit Auditor) *AuthUsecase {
	if verifier == nil {
		verifier = DefaultVerifier()
	}
	return &AuthUsecase{users: users, tokens: tokens, verifier: verifier, audit: audit}
}

func (u *AuthUsecase) record(ctx context.Context, event, userID string, details map[string]any) {
	if u.audit != nil {
		u.audit.Record(ctx, event, userID, details)
	}
}

// Register は登録ステップを経由せずにユーザーを直接作成します。
func (u *AuthUsecase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	username, email = strings.TrimSpace(username), entity.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	user, err := u.users.CreateUser(ctx, entity.NewUser{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	u.record(ctx, "user_registered", user.ID, map[string]any{"username": user.Username, "path": "register"})
	return user, nil
}

// Login はユーザーを認証し、成功時にJWTトークンを返します。
// 平文一致またはハッシュ照合のどちらか一方が成功すれば認証成功です。
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := u.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.record(ctx, "login_failed", "", map[string]any{"email": email, "reason": "unknown_email"})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.verifier.Verify(user, password) {
		u.record(ctx, "login_failed", user.ID, map[string]any{"email": email, "reason": "bad_password"})
		return nil, ErrInvalidCredentials
	}

	if err := u.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	token, err := u.tokens.Issue(jwtmw.Subject{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// 最終ログイン時刻を反映した最新のレコードを返す
	if fresh, err := u.users.FindUserByID(ctx, user.ID); err == nil {
		user = fresh
	} else {
		slog.Warn("reload user after login failed", "user_id", user.ID, "error", err)
	}

	u.record(ctx, "login_success", user.ID, map[string]any{"email": email})
	return &LoginResult{Token: token, User: user}, nil
}

// Logout はログアウト時刻を記録します。発行済みトークンは有効期限まで有効なままです。
func (u *AuthUsecase) Logout(ctx context.Context, userID string) error {
	if err := u.users.Logout(ctx, userID); err != nil {
		return err
	}
	u.record(ctx, "logout", userID, nil)
	return nil
}

// Me returns the current user.
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*entity.User, error) {
	return u.users.FindUserByID(ctx, userID)
}

// UpdateProfile はプロフィールを部分更新します。
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID string, upd entity.ProfileUpdate) (*entity.User, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if upd.Username != nil {
		v := strings.TrimSpace(*upd.Username)
		if v == "" {
			return nil, fmt.Errorf("%w: username must not be empty", ErrValidation)
		}
		upd.Username = &v
	}
	if upd.Email != nil {
		v := entity.NormalizeEmail(*upd.Email)
		if v == "" {
			return nil, fmt.Errorf("%w: email must not be empty", ErrValidation)
		}
		upd.Email = &v
	}

	user, err := u.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	u.record(ctx, "profile_updated", userID, map[string]any{"fields": changedFields(upd)})
	return user, nil
}

func changedFields(upd entity.ProfileUpdate) []string {
	var fields []string
	if upd.Username != nil {
		fields = append(fields, "username")
	}
	if upd.Email != nil {
		fields = append(fields, "email")
	}
	if upd.FirstName != nil {
		fields = append(fields, "firstName")
	}
	if upd.LastName != nil {
		fields = append(fields, "lastName")
	}
	return fields
}
