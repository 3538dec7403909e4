// Package db はリレーショナルバックエンド（SQLite / PostgreSQL）へのGORM接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryInterval は接続リトライの待機時間です。
const retryInterval = 3 * time.Second

// Opener はDSNからGORM接続を開く関数です。テストで差し替え可能にするために分離しています。
type Opener func(dsn string) (*gorm.DB, error)

// IsPostgresDSN reports whether the DSN targets PostgreSQL rather than a sqlite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Dialector はDSNに応じてGORMのダイアレクタを選択します。
func Dialector(dsn string) gorm.Dialector {
	if IsPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// GormConfig returns the gorm settings shared by the server and adapter tests.
// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// DefaultOpener opens the DSN with GormConfig. sqlite gets a single connection so writers never see SQLITE_BUSY.
func DefaultOpener(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(Dialector(dsn), GormConfig())
	if err != nil {
		return nil, err
	}
	if !IsPostgresDSN(dsn) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// ConnectWithRetry はタイムアウトまでリトライしながらDBに接続します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB はDSNに接続し、必要であればマイグレーションを実行します。
// sqliteファイルの場合は親ディレクトリを作成します。
func OpenDB(dsn string, runMigrations bool, models ...any) (*gorm.DB, error) {
	if !IsPostgresDSN(dsn) && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := ConnectWithRetry(dsn, 60*time.Second, DefaultOpener)
	if err != nil {
		return nil, err
	}

	if runMigrations && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}
