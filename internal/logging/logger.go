package logging

import (
	"log/slog"
	"os"
)

// Logger is the application-wide structured logger instance.
var Logger *slog.Logger

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	// Parse log level
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// base returns the configured logger, or the process default before
// InitLogger has run (tests never call InitLogger).
func base() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}

// WithConn returns a logger with conn_id field.
func WithConn(connID string) *slog.Logger {
	return base().With("conn_id", connID)
}

// WithNickname returns a logger with nickname field.
func WithNickname(nickname string) *slog.Logger {
	return base().With("nickname", nickname)
}

// WithError returns a logger with error field.
func WithError(err error) *slog.Logger {
	return base().With("error", err)
}
