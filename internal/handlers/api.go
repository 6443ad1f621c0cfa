package handlers

import (
	"context"

	"github.com/flowforge/workflowengine/internal/types"
)

// APIHandler implements spec.md §4.4.5 for blocks of kind "api".
type APIHandler struct {
	toolExecute types.ToolExecuteFunc
}

func NewAPIHandler(toolExecute types.ToolExecuteFunc) *APIHandler {
	return &APIHandler{toolExecute: toolExecute}
}

func (h *APIHandler) CanHandle(block *types.Block) bool {
	return block.Kind() == "api"
}

func (h *APIHandler) Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	return runTool(ctx, h.toolExecute, block, inputs)
}
