package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
// With enabled=false (LOGGING=0) all structured output is discarded, matching
// the original deployment switch.
func Init(enabled bool) {
	if !enabled {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}

	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithCycle returns a logger with the poll cycle's correlation ID attached.
// Use this for all logging within a cycle.
func WithCycle(cycleID string) *slog.Logger {
	return slog.With("cycle_id", cycleID)
}

// WithNote returns a logger scoped to a specific note within a cycle.
func WithNote(logger *slog.Logger, canvasID, noteID string) *slog.Logger {
	return logger.With(
		"canvas_id", canvasID,
		"note_id", noteID,
	)
}
