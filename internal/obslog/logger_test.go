package obslog

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowforge/workflowengine/internal/types"
)

func TestConsoleSink_EmitSuccessDoesNotPanic(t *testing.T) {
	log := New("debug", "json")
	sink := NewConsoleSink(log)

	assert.NotPanics(t, func() {
		sink.Emit(types.ConsoleEvent{
			WorkflowID: "run-1",
			Timestamp:  "2026-01-01T00:00:00Z",
			Log: types.BlockLog{
				BlockID:   "b1",
				BlockType: "function",
				Success:   true,
			},
		})
	})
}

func TestConsoleSink_EmitFailureDoesNotPanic(t *testing.T) {
	log := New("info", "text")
	sink := NewConsoleSink(log)

	assert.NotPanics(t, func() {
		sink.Emit(types.ConsoleEvent{
			WorkflowID: "run-1",
			Timestamp:  "2026-01-01T00:00:00Z",
			Log: types.BlockLog{
				BlockID:   "b2",
				BlockType: "api",
				Success:   false,
				Error:     "tool execution failed",
			},
		})
	})
}

func TestNew_DefaultsToInfoLevelOnUnknownString(t *testing.T) {
	log := New("not-a-level", "text")
	assert.Equal(t, slog.LevelInfo, parseLevel("not-a-level"))
	assert.NotNil(t, log.Logger)
}
