// Package handler はauditフィーチャーの管理者向けHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kurukshetra_backend/internal/feature/audit/domain/entity"
	"kurukshetra_backend/internal/feature/audit/transport/http/dto"
	httpx "kurukshetra_backend/internal/platform/http"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// EventLister reads recent audit events.
type EventLister interface {
	List(ctx context.Context, limit int) ([]entity.Event, error)
}

// AuditHandler serves the audit listing.
type AuditHandler struct {
	events EventLister
}

// NewAuditHandler はAuditHandlerを生成します。
func NewAuditHandler(events EventLister) *AuditHandler {
	return &AuditHandler{events: events}
}

// List は直近の監査イベントを新しい順に返します。
// - limitクエリは1〜500、未指定時は50
// - 数値でないlimitは400
func (h *AuditHandler) List(c *gin.Context) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.Fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	events, err := h.events.List(c.Request.Context(), limit)
	if err != nil {
		httpx.Internal(c, "audit.list", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEvents(events))
}
