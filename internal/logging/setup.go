// Package logging builds the service's slog logger and carries
// request-scoped loggers through contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type loggerKey struct{}

// ContextWithLogger attaches logger to a derived context. A nil context or
// logger is passed through untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached by ContextWithLogger, or nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel converts a level string to slog.Level. Unrecognized strings
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New builds the service logger emitting JSON records at or above level.
// When file is empty the logger writes to stdout; otherwise it writes to a
// size-rotated file and the returned closer must be closed on shutdown.
func New(level, file string) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if file == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
	}
	return slog.New(slog.NewJSONHandler(rotator, opts)), rotator
}
