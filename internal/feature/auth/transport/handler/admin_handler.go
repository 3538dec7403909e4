package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kurukshetra_backend/internal/feature/auth/transport/http/dto"
	jwtmw "kurukshetra_backend/internal/platform/jwt"
)

// BackendSwitcher exposes the primary backend selection.
type BackendSwitcher interface {
	ActiveBackend() string
	Backends() []string
	SwitchPrimary(ctx context.Context, name, actorID string) error
}

// AdminHandler serves operator actions on the credential store.
type AdminHandler struct {
	backends BackendSwitcher
}

// NewAdminHandler はAdminHandlerを生成します。
func NewAdminHandler(backends BackendSwitcher) *AdminHandler {
	return &AdminHandler{backends: backends}
}

// GetBackend returns the current primary.
func (h *AdminHandler) GetBackend(c *gin.Context) {
	c.JSON(http.StatusOK, dto.BackendResp{Active: h.backends.ActiveBackend(), Backends: h.backends.Backends()})
}

// SwitchBackend はプライマリのバックエンドを切り替えます。進行中のリクエストは切り替え前の値で完了します。
func (h *AdminHandler) SwitchBackend(c *gin.Context) {
	var req dto.BackendSwitchReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.backends.SwitchPrimary(c.Request.Context(), req.Backend, c.GetString(jwtmw.ContextUserID)); err != nil {
		writeError(c, "admin.switch_backend", err)
		return
	}
	h.GetBackend(c)
}
