package ratelimiter

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyFunc derives the rate-limit identifier of a request. An empty key falls back to the client IP.
type KeyFunc func(c *gin.Context) string

// Observer is notified of rejected requests.
type Observer interface {
	RateLimited(route string)
}

// Middleware はルート単位のレート制限を行うGinミドルウェアを返します。
// 識別子は "<key>:<route>" の形式で、ルートごとに独立したウィンドウを持ちます。
func Middleware(l Limiter, route string, maxRequests int, window time.Duration, keyFn KeyFunc, obs Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFn != nil {
			key = keyFn(c)
		}
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		err := l.Check(c.Request.Context(), key+":"+route, maxRequests, window)
		if errors.Is(err, ErrRateLimited) {
			if obs != nil {
				obs.RateLimited(route)
			}
			slog.Warn("rate limit exceeded", "route", route, "key", key)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		if err != nil {
			slog.Error("rate limiter failed", "route", route, "error", err)
		}
		c.Next()
	}
}
