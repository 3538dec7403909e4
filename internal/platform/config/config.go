// Package config loads process configuration for the training backend from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// BackendSQLite selects the relational store (sqlite file, or postgres when the DSN is a postgres URL).
	BackendSQLite = "sqlite"
	// BackendMongo selects the document store.
	BackendMongo = "mongo"

	// StoreMemory keeps process-local state.
	StoreMemory = "memory"
	// StoreRedis keeps state in Redis.
	StoreRedis = "redis"
)

// Config holds every setting consumed by cmd/server.
type Config struct {
	Port      string
	JWTSecret string

	// ActiveBackend is the initial primary backend; it can be switched at runtime by an admin.
	ActiveBackend string
	SQLiteDSN     string
	MongoURI      string
	MongoDB       string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	SessionStore   string
	RateLimitStore string

	LoginRateLimit  int
	FlagRateLimit   int
	RateLimitWindow time.Duration

	// CORSOrigins lists the browser origins allowed to send credentialed requests.
	CORSOrigins []string

	LogLevel      slog.Level
	RunMigrations bool
}

// LoadConfigFromEnv は環境変数から設定を読み込みます。未設定の項目には開発用のデフォルト値を使います。
func LoadConfigFromEnv() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ActiveBackend:   strings.ToLower(getEnv("ACTIVE_BACKEND", BackendSQLite)),
		SQLiteDSN:       getEnv("SQLITE_DSN", "data/kurukshetra.db"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "kurukshetra"),
		RedisHost:       os.Getenv("REDIS_HOST"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
		RateLimitStore:  strings.ToLower(getEnv("RATE_LIMIT_STORE", StoreMemory)),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		FlagRateLimit:   getEnvInt("FLAG_RATE_LIMIT", 30),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:        parseLevel(os.Getenv("LOG_LEVEL")),
		RunMigrations:   getEnv("RUN_MIGRATIONS", "true") == "true",
	}
}

// Validate checks the values that cannot fall back to a default.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.ActiveBackend {
	case BackendSQLite, BackendMongo:
	default:
		return fmt.Errorf("ACTIVE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendMongo, c.ActiveBackend)
	}
	for name, v := range map[string]string{"SESSION_STORE": c.SessionStore, "RATE_LIMIT_STORE": c.RateLimitStore} {
		if v != StoreMemory && v != StoreRedis {
			return fmt.Errorf("%s must be %q or %q, got %q", name, StoreMemory, StoreRedis, v)
		}
	}
	return nil
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
