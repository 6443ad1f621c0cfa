// Package pathtracker maintains the ExecutionContext's active-execution-path
// set: which blocks are still reachable given the router/condition decisions
// made so far. It is the generalized, in-memory counterpart of the teacher's
// cmd/workflow-runner/coordinator absorber-node routing (node_router.go,
// control_flow.go) and operators.ControlFlowRouter.DetermineNextNodes, which
// choreograph which downstream nodes a branch/loop node wakes up.
package pathtracker

import "github.com/flowforge/workflowengine/internal/types"

// UpdateExecutionPaths activates blockID's selected successors and removes
// every other direct successor (plus, recursively, any now-orphaned
// downstream subgraph), per spec.md §4.2. It must be called once a block has
// finished executing and (for router and condition blocks) recorded its
// decision on ctx.
func UpdateExecutionPaths(ctx *types.ExecutionContext, blockID string) {
	idx := ctx.Index
	block := idx.Block(blockID)
	if block == nil {
		return
	}

	conns := idx.Outgoing(blockID)

	switch block.Kind() {
	case "router":
		target, ok := ctx.RouterDecision(blockID)
		for _, c := range conns {
			if ok && c.Target == target {
				ctx.AddToActivePath(c.Target)
			} else {
				removeAndPrune(ctx, idx, c.Target)
			}
		}

	case "condition":
		conditionID, ok := ctx.ConditionDecision(blockID)
		for _, c := range conns {
			edgeConditionID, isConditionEdge := c.ConditionID()
			if !isConditionEdge {
				// Not one of the condition's tagged branches; leave as-is.
				ctx.AddToActivePath(c.Target)
				continue
			}
			if ok && edgeConditionID == conditionID {
				ctx.AddToActivePath(c.Target)
			} else {
				removeAndPrune(ctx, idx, c.Target)
			}
		}

	default:
		for _, c := range conns {
			ctx.AddToActivePath(c.Target)
		}
	}
}

// removeAndPrune unconditionally drops blockID from the active path (it was
// a rejected direct successor) and recurses into its own successors to
// prune anything now orphaned.
func removeAndPrune(ctx *types.ExecutionContext, idx *types.WorkflowIndex, blockID string) {
	ctx.RemoveFromActivePath(blockID)
	for _, out := range idx.Outgoing(blockID) {
		pruneIfOrphaned(ctx, idx, out.Target)
	}
}

// pruneIfOrphaned removes blockID from the active path, and recurses into
// its successors, once none of its incoming edges originates from a block
// currently in the active path (spec.md §4.2's downstream pruning rule). It
// is a no-op if blockID was never activated, or some other incoming source
// is still active (a diamond rejoining downstream of two branches, one
// taken and one not).
func pruneIfOrphaned(ctx *types.ExecutionContext, idx *types.WorkflowIndex, blockID string) {
	if !ctx.IsInActivePath(blockID) {
		return
	}

	for _, inc := range idx.Incoming(blockID) {
		if ctx.IsInActivePath(inc.Source) {
			return
		}
	}

	ctx.RemoveFromActivePath(blockID)

	for _, out := range idx.Outgoing(blockID) {
		pruneIfOrphaned(ctx, idx, out.Target)
	}
}
