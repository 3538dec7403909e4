package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisv9 "github.com/redis/go-redis/v9"

	"kurukshetra_backend/internal/app/di"
	"kurukshetra_backend/internal/app/router"
	auditadapters "kurukshetra_backend/internal/feature/audit/adapters"
	audithandler "kurukshetra_backend/internal/feature/audit/transport/handler"
	auditusecase "kurukshetra_backend/internal/feature/audit/usecase"
	authadapters "kurukshetra_backend/internal/feature/auth/adapters"
	authhandler "kurukshetra_backend/internal/feature/auth/transport/handler"
	authusecase "kurukshetra_backend/internal/feature/auth/usecase"
	flagsentity "kurukshetra_backend/internal/feature/flags/domain/entity"
	flagshandler "kurukshetra_backend/internal/feature/flags/transport/handler"
	flagsusecase "kurukshetra_backend/internal/feature/flags/usecase"
	"kurukshetra_backend/internal/platform/cache"
	"kurukshetra_backend/internal/platform/config"
	infradb "kurukshetra_backend/internal/platform/db"
	"kurukshetra_backend/internal/platform/http/handler"
	jwtmw "kurukshetra_backend/internal/platform/jwt"
	"kurukshetra_backend/internal/platform/logger"
	"kurukshetra_backend/internal/platform/metrics"
	infraredis "kurukshetra_backend/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg := config.LoadConfigFromEnv()
	slog.SetDefault(logger.New("kurukshetra", cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	models := append(authadapters.GormModels(), auditadapters.GormModels()...)
	db, err := infradb.OpenDB(cfg.SQLiteDSN, cfg.RunMigrations, models...)
	if err != nil {
		return err
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if addr := cfg.RedisAddr(); addr != "" {
		if tmp, err := infraredis.NewRedisClient(addr, cfg.RedisPassword); err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	// Audit
	recorder := auditusecase.NewRecorder(auditadapters.NewEventGorm(db), 0, m)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Close(flushCtx); err != nil {
			slog.Error("audit flush incomplete", "error", err)
		}
	}()

	// Repository
	relational, document, mongoClient := di.NewUserBackends(ctx, cfg, db, nil)
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}
	sel, err := authadapters.NewBackendSelector(cfg.ActiveBackend, relational, document)
	if err != nil {
		return err
	}
	store := authadapters.NewDualUserStore(sel, recorder, m)
	// プロフィール参照をRedisキャッシュでラップ
	cachedStore := cache.NewCachingUserStore(rdb, 5*time.Minute, store, "users")
	sessions := di.NewRegistrationSessionRepository(cfg.SessionStore, rdb)
	limiter := di.NewRateLimiter(cfg.RateLimitStore, rdb)

	tokens, err := jwtmw.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return err
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(cachedStore, tokens, nil, recorder)
	regUC := authusecase.NewRegistrationUsecase(sessions, cachedStore, recorder)
	flagsUC := flagsusecase.NewFlagsUsecase(flagsentity.DefaultCatalog(), cachedStore, recorder, m)

	// Handler
	checks := map[string]handler.Check{
		config.BackendSQLite: relational.Ping,
		config.BackendMongo:  document.Ping,
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Auth:         authhandler.NewAuthHandler(authUC),
		Registration: authhandler.NewRegistrationHandler(regUC),
		Admin:        authhandler.NewAdminHandler(store),
		Flags:        flagshandler.NewFlagsHandler(flagsUC),
		Audit:        audithandler.NewAuditHandler(recorder),
		Health:       handler.NewHealthHandler(store.ActiveBackend, checks),
		Tokens:       tokens,
		Limiter:      limiter,
		Limits:       router.RateLimits{Login: cfg.LoginRateLimit, Flag: cfg.FlagRateLimit, Window: cfg.RateLimitWindow},
		RateObserver: m,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSOrigins:  cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "active_backend", sel.Active())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
