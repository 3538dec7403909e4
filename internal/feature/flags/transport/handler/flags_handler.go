// Package handler はflagsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/flags/transport/http/dto"
	"kurukshetra_backend/internal/feature/flags/usecase"
	httpx "kurukshetra_backend/internal/platform/http"
	jwtmw "kurukshetra_backend/internal/platform/jwt"
)

// FlagsUsecase is the flag ledger as seen by the handler.
type FlagsUsecase interface {
	Submit(ctx context.Context, userID, slug, flag string) (*usecase.Award, error)
	Progress(ctx context.Context, userID string) (*usecase.Progress, error)
	Catalog() []usecase.ChallengeStatus
}

// FlagsHandler serves flag submission and progress.
type FlagsHandler struct {
	flags FlagsUsecase
}

// NewFlagsHandler はFlagsHandlerを生成します。
func NewFlagsHandler(flags FlagsUsecase) *FlagsHandler {
	return &FlagsHandler{flags: flags}
}

// Submit はフラグを検証し、正解なら100ポイントを付与します。
// - 未知のslug、不正解は400
// - 既に提出済みは409
func (h *FlagsHandler) Submit(c *gin.Context) {
	var req dto.SubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	userID := c.GetString(jwtmw.ContextUserID)
	award, err := h.flags.Submit(c.Request.Context(), userID, req.Slug, req.Flag)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.SubmitResp{Slug: award.Slug, Flag: award.Flag, Points: award.Points})
	case errors.Is(err, usecase.ErrUnknownSlug), errors.Is(err, usecase.ErrWrongFlag):
		httpx.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrAlreadySubmitted):
		httpx.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, authdomain.ErrUserNotFound):
		httpx.Fail(c, http.StatusNotFound, "user not found")
	default:
		httpx.Internal(c, "flags.submit", err)
	}
}

// Progress returns the catalog annotated with the caller's solved challenges.
func (h *FlagsHandler) Progress(c *gin.Context) {
	p, err := h.flags.Progress(c.Request.Context(), c.GetString(jwtmw.ContextUserID))
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			httpx.Fail(c, http.StatusNotFound, "user not found")
			return
		}
		httpx.Internal(c, "flags.progress", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProgress(p))
}

// Catalog lists every challenge without secrets.
func (h *FlagsHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"challenges": dto.FromCatalog(h.flags.Catalog())})
}
