package executor

import "github.com/flowforge/workflowengine/internal/types"

// ExecutionMetadata is the wall-clock summary attached to a successful or
// failed ExecutionResult.
type ExecutionMetadata struct {
	DurationMs int64  `json:"durationMs"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// ExecutionResult is the value Execute returns, per spec.md §6.
type ExecutionResult struct {
	Success  bool               `json:"success"`
	Output   types.Output       `json:"output"`
	Error    string             `json:"error,omitempty"`
	Logs     []types.BlockLog   `json:"logs"`
	Metadata ExecutionMetadata  `json:"metadata"`
}
