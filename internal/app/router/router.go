// Package router はHTTPルーティングを組み立てます。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	audithandler "kurukshetra_backend/internal/feature/audit/transport/handler"
	"kurukshetra_backend/internal/feature/auth/domain/entity"
	authhandler "kurukshetra_backend/internal/feature/auth/transport/handler"
	flagshandler "kurukshetra_backend/internal/feature/flags/transport/handler"
	"kurukshetra_backend/internal/platform/http/handler"
	jwtmw "kurukshetra_backend/internal/platform/jwt"
	"kurukshetra_backend/internal/shared/ratelimiter"
)

// RateLimits configures the per-route limits. A zero max disables the limit.
type RateLimits struct {
	Login  int
	Flag   int
	Window time.Duration
}

// Deps holds everything NewRouter wires together.
type Deps struct {
	Auth         *authhandler.AuthHandler
	Registration *authhandler.RegistrationHandler
	Admin        *authhandler.AdminHandler
	Flags        *flagshandler.FlagsHandler
	Audit        *audithandler.AuditHandler
	Health       *handler.HealthHandler

	Tokens  jwtmw.Verifier
	Limiter ratelimiter.Limiter
	Limits  RateLimits
	// RateObserver may be nil.
	RateObserver ratelimiter.Observer

	// Metrics serves /metrics when non-nil.
	Metrics     http.Handler
	CORSOrigins []string
}

// userKey keys authenticated requests by user id.
func userKey(c *gin.Context) string {
	if id := c.GetString(jwtmw.ContextUserID); id != "" {
		return "user:" + id
	}
	return ""
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), gin.Logger())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health.Health)
	r.HEAD("/healthz", d.Health.Health)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	api := r.Group("/api")
	authRequired := jwtmw.AuthRequired(d.Tokens)

	a := api.Group("/auth")
	{
		// ワンショット登録
		a.POST("/register", d.Auth.Register)
		// 3ステップ登録
		a.POST("/register/step1", d.Registration.Step1)
		a.POST("/register/step2", d.Registration.Step2)
		a.POST("/register/step3", d.Registration.Step3)
		// ログイン（JWT 発行）。未認証なのでIPごとに制限する
		a.POST("/login",
			ratelimiter.Middleware(d.Limiter, "login", d.Limits.Login, d.Limits.Window, nil, d.RateObserver),
			d.Auth.Login)

		a.POST("/logout", authRequired, d.Auth.Logout)
		a.GET("/me", authRequired, d.Auth.Me)
		a.PUT("/profile", authRequired, d.Auth.UpdateProfile)
	}

	// 公開カタログ（シークレットは含まない）
	api.GET("/flags/catalog", d.Flags.Catalog)
	f := api.Group("/flags", authRequired)
	{
		f.GET("", d.Flags.Progress)
		// 認証済みなのでユーザーごとに制限する
		f.POST("/submit",
			ratelimiter.Middleware(d.Limiter, "flag_submit", d.Limits.Flag, d.Limits.Window, userKey, d.RateObserver),
			d.Flags.Submit)
	}

	admin := api.Group("/admin", authRequired, jwtmw.RequireRole(string(entity.RoleAdmin), string(entity.RoleSuperAdmin)))
	{
		admin.GET("/backend", d.Admin.GetBackend)
		admin.PUT("/backend", d.Admin.SwitchBackend)
		admin.GET("/audit", d.Audit.List)
	}

	return r
}
