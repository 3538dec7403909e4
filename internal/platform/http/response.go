// Package http はハンドラー間で共有するHTTPレスポンスのヘルパーを提供します。
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse はすべてのエラーレスポンスの共通ボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// Fail はstatusとメッセージでリクエストを中断します。
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// Internal はバックエンド固有のエラー内容をログにのみ残し、汎用の500を返します。
func Internal(c *gin.Context, op string, err error) {
	slog.Error("request failed", "op", op, "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
	Fail(c, http.StatusInternalServerError, "internal server error")
}
