package executor

import "github.com/flowforge/workflowengine/internal/types"

// readyBlocks computes the next layer per spec.md §4.5.
func readyBlocks(ctx *types.ExecutionContext) []*types.Block {
	idx := ctx.Index

	var ready []*types.Block
	for i := range idx.Workflow.Blocks {
		b := &idx.Workflow.Blocks[i]

		if ctx.IsExecuted(b.ID) || !b.IsEnabled() {
			continue
		}
		if !ctx.IsInActivePath(b.ID) {
			continue
		}

		if idx.IsInAnyLoop(b.ID) {
			if hasExecutedIncoming(ctx, idx, b.ID) {
				ready = append(ready, b)
			}
			continue
		}

		if allDependenciesSatisfied(ctx, idx, b.ID) {
			ready = append(ready, b)
		}
	}
	return ready
}

func hasExecutedIncoming(ctx *types.ExecutionContext, idx *types.WorkflowIndex, blockID string) bool {
	for _, c := range idx.Incoming(blockID) {
		if ctx.IsExecuted(c.Source) {
			return true
		}
	}
	return false
}

func allDependenciesSatisfied(ctx *types.ExecutionContext, idx *types.WorkflowIndex, blockID string) bool {
	for _, c := range idx.Incoming(blockID) {
		if dependencySatisfied(ctx, idx, c) {
			continue
		}
		return false
	}
	return true
}

// dependencySatisfied implements one bullet of spec.md §4.5's "otherwise"
// branch: a dependency is ignored (treated as satisfied) whenever its
// source didn't actually commit to sending execution down this edge, and
// otherwise requires the source to have executed and, for a router/
// condition source, to have selected this edge.
func dependencySatisfied(ctx *types.ExecutionContext, idx *types.WorkflowIndex, c types.Connection) bool {
	source := idx.Block(c.Source)
	if source == nil {
		return true
	}

	switch source.Kind() {
	case "router":
		target, ok := ctx.RouterDecision(c.Source)
		if ok && target != c.Target {
			return true
		}
	case "condition":
		conditionID, ok := ctx.ConditionDecision(c.Source)
		edgeConditionID, isConditionEdge := c.ConditionID()
		if ok && isConditionEdge && edgeConditionID != conditionID {
			return true
		}
	}

	if !ctx.IsInActivePath(c.Source) {
		return true
	}

	return ctx.IsExecuted(c.Source)
}
