// Package logger はアプリケーション全体で使う構造化ロガーを構築します。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog.Logger tagged with the service name.
func New(service string, level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stdout, service, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, service string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}
