package jwtmw

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextClaims = "claims"

	// CookieName mirrors the bearer token for browser clients.
	CookieName = "auth-token"
)

// Verifier is satisfied by *TokenService.
type Verifier interface {
	Verify(tokenStr string) (*Claims, error)
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired(tokens Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization ヘッダー、なければ auth-token クッキーから取得
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		// 2. 署名と有効期限を検証
		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		// 3. クレームをコンテキストへ設定
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not in roles. Must run after AuthRequired.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, c.GetString(ContextRole)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// SetAuthCookie stores token in the http-only auth-token cookie for one hour.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(TokenTTL.Seconds()), "/", "", false, true)
}

// ClearAuthCookie expires the auth-token cookie.
func ClearAuthCookie(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		if tok := strings.TrimPrefix(auth, "Bearer "); tok != "" {
			return tok, true
		}
		return "", false
	}
	if auth != "" {
		return "", false
	}
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}
