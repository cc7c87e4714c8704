package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// newLogger writes colored text in development and JSON everywhere else.
func newLogger(env, logLevel string) *slog.Logger {
	level := parseLogLevel(logLevel)

	if env == "development" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level: level,
		}))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
