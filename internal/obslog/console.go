package obslog

import "github.com/flowforge/workflowengine/internal/types"

// ConsoleSink adapts a Logger into a types.LogConsoleFunc that logs
// per-block execution events. It is installed with executor.WithLogConsole;
// an executor given no sink discards its events. Callers that want a
// different sink (the websocket hub in cmd/flowrunner, say) implement
// types.LogConsoleFunc directly instead of using this adapter.
type ConsoleSink struct {
	log *Logger
}

func NewConsoleSink(log *Logger) *ConsoleSink {
	return &ConsoleSink{log: log}
}

// Emit satisfies types.LogConsoleFunc.
func (s *ConsoleSink) Emit(event types.ConsoleEvent) {
	l := s.log.WithWorkflow(event.WorkflowID).WithBlock(event.Log.BlockID)
	attrs := []any{
		"block_type", event.Log.BlockType,
		"duration_ms", event.Log.DurationMs,
		"success", event.Log.Success,
	}
	if event.Log.Error != "" {
		attrs = append(attrs, "error", event.Log.Error)
		l.Error("block execution failed", attrs...)
		return
	}
	l.Info("block executed", attrs...)
}

// Func returns the types.LogConsoleFunc value for wiring into the executor.
func (s *ConsoleSink) Func() types.LogConsoleFunc {
	return s.Emit
}
