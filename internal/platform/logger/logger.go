package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(novo(os.Stdout, slog.LevelInfo))
}

func novo(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func L() *slog.Logger {
	return defaultLogger.Load()
}

// Ou devolve l, ou o logger padrão quando l é nil.
func Ou(l *slog.Logger) *slog.Logger {
	if l == nil {
		return L()
	}
	return l
}

func SetLevel(level slog.Level) {
	defaultLogger.Store(novo(os.Stdout, level))
}

// ParseLevel aceita debug, info, warn e error; qualquer outro valor vira info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	L().Error(msg, args...)
	os.Exit(1)
}
