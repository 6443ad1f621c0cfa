// Package obslog provides the engine's ambient logging and tracing,
// adapted from the teacher's common/logger (slog + tint for console,
// slog.JSONHandler for production) and common/telemetry (an OpenTelemetry
// tracer provider the teacher left as a TODO stub; this repo wires it up).
package obslog

import (
	"context"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger with the run/block contextual fields the
// executor attaches on every entry.
type Logger struct {
	*slog.Logger
}

// New builds a Logger. format is "json" for slog.JSONHandler (production)
// or anything else for tint's colorized console handler (development).
func New(level, format string) *Logger {
	logLevel := parseLevel(level)

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	default:
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.TimeOnly,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithWorkflow returns a logger annotated with the run's workflow id.
func (l *Logger) WithWorkflow(workflowID string) *Logger {
	return &Logger{Logger: l.With("workflow_id", workflowID)}
}

// WithBlock returns a logger annotated with a block id.
func (l *Logger) WithBlock(blockID string) *Logger {
	return &Logger{Logger: l.With("block_id", blockID)}
}

// WithContext returns a logger annotated with the trace id carried on ctx,
// if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if traceID := ctx.Value("trace_id"); traceID != nil {
		return &Logger{Logger: l.With("trace_id", traceID)}
	}
	return l
}

// Error logs msg at error level with a stack trace attached, so a failed
// block execution's log entry captures where in the engine it failed.
func (l *Logger) Error(msg string, args ...any) {
	args = append(args, "stack", string(debug.Stack()))
	l.Logger.Error(msg, args...)
}

func parseLevel(level string) slog.Level {
	switch level {
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
