package handlers

import (
	"context"

	"github.com/flowforge/workflowengine/internal/types"
)

// FunctionHandler implements spec.md §4.4.5 for blocks of kind "function".
type FunctionHandler struct {
	toolExecute types.ToolExecuteFunc
}

func NewFunctionHandler(toolExecute types.ToolExecuteFunc) *FunctionHandler {
	return &FunctionHandler{toolExecute: toolExecute}
}

func (h *FunctionHandler) CanHandle(block *types.Block) bool {
	return block.Kind() == "function"
}

func (h *FunctionHandler) Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	return runTool(ctx, h.toolExecute, block, inputs)
}
