package handlers

import (
	"context"

	"github.com/flowforge/workflowengine/internal/types"
)

// GenericHandler implements spec.md §4.4.5 for any block kind not claimed
// by an earlier handler. It always matches, and must be registered last.
type GenericHandler struct {
	toolExecute types.ToolExecuteFunc
}

func NewGenericHandler(toolExecute types.ToolExecuteFunc) *GenericHandler {
	return &GenericHandler{toolExecute: toolExecute}
}

func (h *GenericHandler) CanHandle(block *types.Block) bool {
	return true
}

func (h *GenericHandler) Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	return runTool(ctx, h.toolExecute, block, inputs)
}
