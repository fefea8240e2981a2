package vizcore

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/lock"
)

// Logger wraps slog.Logger with vizcore-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTag adds the execution domain to the logger.
func (l *Logger) WithTag(tag lock.Tag) *Logger {
	return &Logger{
		Logger: l.Logger.With("tag", tag.String()),
	}
}

// WithOperation adds an operation name to the logger.
func (l *Logger) WithOperation(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("operation", name),
	}
}

// LogProcess logs a vision operation.
func (l *Logger) LogProcess(ctx context.Context, name string, duration time.Duration, scratchPeak int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "operation failed",
			"operation", name,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "operation completed",
			"operation", name,
			"duration", duration,
			"scratch_peak", scratchPeak,
		)
	}
}

// LogSnapshot logs a debug-link frame snapshot.
func (l *Logger) LogSnapshot(ctx context.Context, seq uint32, rows int, bytes int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "snapshot failed",
			"sequence", seq,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "snapshot sent",
			"sequence", seq,
			"rows", rows,
			"bytes", bytes,
		)
	}
}

// LogLockTimeout logs a frame lock that could not be acquired in time.
func (l *Logger) LogLockTimeout(ctx context.Context, name string, holder lock.Tag, timeout time.Duration) {
	l.WarnContext(ctx, "frame lock timeout",
		"operation", name,
		"holder", holder.String(),
		"timeout", timeout,
	)
}

// LogArenaExhausted logs an operation that ran out of scratch memory.
func (l *Logger) LogArenaExhausted(ctx context.Context, name string, stats arena.Stats) {
	l.WarnContext(ctx, "scratch arena exhausted",
		"operation", name,
		"capacity", stats.Capacity,
		"peak", stats.Peak,
		"failures", stats.Failures,
	)
}
