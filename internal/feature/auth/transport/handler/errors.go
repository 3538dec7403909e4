package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/usecase"
	httpx "kurukshetra_backend/internal/platform/http"
)

// writeError はユースケースのエラーをHTTPステータスに変換します。
// 想定外のエラーはログにのみ詳細を残し、汎用の500を返します。
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, domain.ErrUnknownBackend):
		httpx.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials):
		httpx.Fail(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, usecase.ErrInvalidSession):
		httpx.Fail(c, http.StatusNotFound, "invalid registration session")
	case errors.Is(err, domain.ErrUserNotFound):
		httpx.Fail(c, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrUserAlreadyExists):
		httpx.Fail(c, http.StatusConflict, "username or email already exists")
	default:
		httpx.Internal(c, op, err)
	}
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		httpx.Fail(c, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}
