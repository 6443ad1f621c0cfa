// Package handlers implements the seven BlockHandler kinds of spec.md §4.4:
// agent, router, condition, evaluator, api, function, and the generic
// fallback. Each is grounded on the teacher's cmd/workflow-runner
// subpackages (condition.Evaluator, operators.ControlFlowRouter,
// resolver.Resolver), generalized from the teacher's fixed node-type set to
// the spec's handler contract and NormalizedBlockOutput shape.
package handlers

import (
	"context"

	"github.com/flowforge/workflowengine/internal/types"
)

// BlockHandler executes one block kind and returns its raw (pre-
// normalization) output.
type BlockHandler interface {
	CanHandle(block *types.Block) bool
	Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error)
}

// Dispatcher probes handlers in registration order; the first match wins.
// Construct it with NewDispatcher, which fixes the spec's required
// ordering and always appends the generic fallback last.
type Dispatcher struct {
	handlers []BlockHandler
}

// NewDispatcher builds the standard agent/router/condition/evaluator/api/
// function/generic ordering described in spec.md §4.4.
func NewDispatcher(collab Collaborators) *Dispatcher {
	return &Dispatcher{
		handlers: []BlockHandler{
			NewAgentHandler(collab.ProviderRequest, collab.GetTool),
			NewRouterHandler(collab.ProviderRequest),
			NewConditionHandler(),
			NewEvaluatorHandler(collab.ProviderRequest),
			NewAPIHandler(collab.ToolExecute),
			NewFunctionHandler(collab.ToolExecute),
			NewGenericHandler(collab.ToolExecute),
		},
	}
}

// Collaborators bundles the narrow function-typed external dependencies
// handlers are allowed to call; the core never imports a concrete
// collaborator implementation (see the Collaborator entry in SPEC_FULL.md's
// glossary).
type Collaborators struct {
	ProviderRequest types.ProviderRequestFunc
	GetTool         types.GetToolFunc
	ToolExecute     types.ToolExecuteFunc
}

// Dispatch runs block against the first matching handler.
func (d *Dispatcher) Dispatch(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	for _, h := range d.handlers {
		if h.CanHandle(block) {
			return h.Execute(ctx, block, inputs, execCtx)
		}
	}
	return nil, types.NewError(types.ErrNoHandlerForBlock, "no handler matched block kind %q", block.Kind())
}
