// Package logger sets up structured logging for the Lambda handlers. Output
// is JSON on stdout, which CloudWatch Logs ingests line by line.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger. Verbosity comes from LOG_LEVEL (debug, info,
// warn, error); anything unset or unknown means info.
func New() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))})
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
