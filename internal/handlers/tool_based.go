package handlers

import (
	"context"

	"github.com/flowforge/workflowengine/internal/types"
)

// runTool implements the shared body of the api/function/generic handlers
// (spec.md §4.4.5): look up the tool from block.config.tool, invoke the
// tool-execution collaborator with the resolved inputs, and wrap its
// output.
func runTool(ctx context.Context, toolExecute types.ToolExecuteFunc, block *types.Block, inputs map[string]interface{}) (interface{}, error) {
	toolID := block.Config.Tool
	if toolID == "" {
		return nil, types.NewError(types.ErrToolNotFound, "block %q has no configured tool", block.ID)
	}

	result, err := toolExecute(ctx, toolID, inputs)
	if err != nil {
		return nil, types.WrapError(types.ErrToolExecutionFailed, err, "tool %q invocation failed", toolID)
	}
	if !result.Success {
		return nil, types.NewError(types.ErrToolExecutionFailed, "tool %q failed: %s", toolID, result.Error)
	}

	return map[string]interface{}{"response": result.Output}, nil
}
