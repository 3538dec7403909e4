// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/auth/transport/http/dto"
	"kurukshetra_backend/internal/feature/auth/usecase"
	httpx "kurukshetra_backend/internal/platform/http"
	jwtmw "kurukshetra_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, username, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Me(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, upd entity.ProfileUpdate) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はワンショットのユーザー登録APIエンドポイントを処理します。
// - 必須項目の欠落は400
// - ユーザー名・メールアドレスの重複は409
// - 成功時は201
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, "auth.register", err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.RegisterResp{ID: user.ID, Username: user.Username, Email: user.Email})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 成功時はトークンをレスポンスボディとauth-tokenクッキーの両方で返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, "auth.login", err)
		return
	}
	jwtmw.SetAuthCookie(c, res.Token)
	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginResp{Token: res.Token, User: dto.FromUser(res.User)})
}

// Logout records the logout and clears the cookie. The token itself stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.GetString(jwtmw.ContextUserID)); err != nil {
		writeError(c, "auth.logout", err)
		return
	}
	jwtmw.ClearAuthCookie(c)
	c.JSON(http.StatusOK, httpx.MessageResponse{Message: "logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), c.GetString(jwtmw.ContextUserID))
	if err != nil {
		writeError(c, "auth.me", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}

// UpdateProfile applies a partial profile update to the authenticated user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.ProfileReq
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), c.GetString(jwtmw.ContextUserID), req.ToEntity())
	if err != nil {
		writeError(c, "auth.update_profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}
