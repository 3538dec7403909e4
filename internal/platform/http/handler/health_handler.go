// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先1つの疎通確認です。
type Check func(ctx context.Context) error

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	activeBackend func() string
	checks        map[string]Check
	timeout       time.Duration
}

// NewHealthHandler はHealthHandlerを生成します。activeBackend と checks は nil でも構いません。
func NewHealthHandler(activeBackend func() string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{activeBackend: activeBackend, checks: checks, timeout: 2 * time.Second}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 依存先のいずれかが失敗した場合は status=degraded と 503 を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = "error"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	body := gin.H{"status": status}
	if len(results) > 0 {
		body["checks"] = results
	}
	if h.activeBackend != nil {
		body["activeBackend"] = h.activeBackend()
	}
	c.JSON(code, body)
}
