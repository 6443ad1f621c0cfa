package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/workflowengine/internal/types"
)

func starterBlock(id string) types.Block {
	return types.Block{ID: id, Metadata: types.BlockMetadata{Type: types.StarterKind}}
}

func functionBlock(id, tool string) types.Block {
	return types.Block{ID: id, Metadata: types.BlockMetadata{Type: "function"}, Config: types.BlockConfig{Tool: tool}}
}

func TestExecute_LinearWorkflowSucceeds(t *testing.T) {
	wf := &types.SerializedWorkflow{
		Blocks: []types.Block{
			starterBlock("start"),
			functionBlock("double", "doubler"),
		},
		Connections: []types.Connection{
			{Source: "start", Target: "double"},
		},
	}

	toolExecute := func(_ context.Context, toolID string, inputs map[string]interface{}) (types.ToolResult, error) {
		require.Equal(t, "doubler", toolID)
		n, _ := inputs["n"].(float64)
		return types.ToolResult{Success: true, Output: map[string]interface{}{"n": n * 2}}, nil
	}
	wf.Blocks[1].Config.Params = map[string]interface{}{"n": 21.0}

	exec := New(wf, WithToolExecute(toolExecute))
	result := exec.Execute(context.Background(), "run-1")

	require.True(t, result.Success, "error: %s", result.Error)
	require.Len(t, result.Logs, 1)
	assert.Equal(t, "double", result.Logs[0].BlockID)
	assert.Equal(t, float64(42), result.Output.Response()["n"])
}

func TestExecute_DisabledStarterRejectedAsInvalid(t *testing.T) {
	disabled := false
	wf := &types.SerializedWorkflow{
		Blocks: []types.Block{
			{ID: "start", Metadata: types.BlockMetadata{Type: types.StarterKind}, Enabled: &disabled},
		},
	}

	exec := New(wf)
	result := exec.Execute(context.Background(), "run-1")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "WorkflowInvalid")
	assert.Empty(t, result.Logs)
}

func TestExecute_ToolFailurePropagatesAndStopsRun(t *testing.T) {
	wf := &types.SerializedWorkflow{
		Blocks: []types.Block{
			starterBlock("start"),
			functionBlock("boom", "broken"),
		},
		Connections: []types.Connection{
			{Source: "start", Target: "boom"},
		},
	}

	toolExecute := func(_ context.Context, toolID string, inputs map[string]interface{}) (types.ToolResult, error) {
		return types.ToolResult{Success: false, Error: "upstream rejected request"}, nil
	}

	exec := New(wf, WithToolExecute(toolExecute))
	result := exec.Execute(context.Background(), "run-1")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "ToolExecutionFailed")
	require.Len(t, result.Logs, 1)
	assert.False(t, result.Logs[0].Success)
}

func TestExecute_RouterPrunesUnselectedBranch(t *testing.T) {
	wf := &types.SerializedWorkflow{
		Blocks: []types.Block{
			starterBlock("start"),
			{ID: "route", Metadata: types.BlockMetadata{Type: "router"}},
			functionBlock("left", "leftTool"),
			functionBlock("right", "rightTool"),
		},
		Connections: []types.Connection{
			{Source: "start", Target: "route"},
			{Source: "route", Target: "left"},
			{Source: "route", Target: "right"},
		},
	}
	wf.Blocks[1].Config.Params = map[string]interface{}{"prompt": "pick a branch"}

	var calledTools []string
	providerRequest := func(_ context.Context, providerID string, payload map[string]interface{}) (types.ProviderResponse, error) {
		return types.ProviderResponse{Content: "left"}, nil
	}
	toolExecute := func(_ context.Context, toolID string, inputs map[string]interface{}) (types.ToolResult, error) {
		calledTools = append(calledTools, toolID)
		return types.ToolResult{Success: true, Output: map[string]interface{}{"ok": true}}, nil
	}

	exec := New(wf, WithProviderRequest(providerRequest), WithToolExecute(toolExecute))
	result := exec.Execute(context.Background(), "run-1")

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, []string{"leftTool"}, calledTools)
	require.Len(t, result.Logs, 2)
}
