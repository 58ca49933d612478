// Package logging provides structured logging configuration using log/slog.
//
// Import and export runs are tagged with a generated run id so every log
// entry belonging to one operation can be correlated.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// NewRunID generates an id for one import/export run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRun returns a logger that tags every entry with the run id and the
// tenant/company scope of the operation.
//
// Usage:
//
//	log := logging.WithRun(runID, tenant, company)
//	log.Info("import started", "file", path)
//	// ... later ...
//	log.Info("import finished", "created", n)
func WithRun(runID string, tenant, company int64) *slog.Logger {
	return slog.Default().With(
		"run_id", runID,
		"tenant", tenant,
		"company", company,
	)
}
