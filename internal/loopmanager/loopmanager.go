// Package loopmanager detects when a declared feedback loop has completed
// an iteration and resets the state of the blocks inside it so the
// scheduler re-enters them. It generalizes the teacher's
// cmd/workflow-runner/operators control-flow loop handling (which detects a
// selectedPath.blockId pointing back into the loop body) to the spec's
// declared-loop, pure-in-memory model.
package loopmanager

import "github.com/flowforge/workflowengine/internal/types"

// ProcessLoopIterations evaluates every declared loop once. It returns true
// iff at least one loop has reached its iteration cap, the executor's
// terminal-success signal.
func ProcessLoopIterations(ctx *types.ExecutionContext) bool {
	atCap := false

	for loopID, loop := range ctx.Workflow.Loops {
		if ctx.LoopIterations[loopID] >= loop.EffectiveMaxIterations() {
			atCap = true
			continue
		}

		if !shouldIterate(ctx, loop) {
			continue
		}

		ctx.LoopIterations[loopID]++

		for _, n := range loop.Nodes {
			ctx.UnmarkExecuted(n)
			ctx.AddToActivePath(n)
		}

		entry := entryNode(ctx.Index, loop)
		if entry != "" {
			ctx.AddToActivePath(entry)
		}
	}

	return atCap
}

// shouldIterate reports whether loop L has completed a pass (every node in
// L.Nodes has executed) and at least one condition block inside it selected
// a feedback edge: an edge back to a node that precedes the condition in
// L.Nodes's declared ordering.
func shouldIterate(ctx *types.ExecutionContext, loop types.Loop) bool {
	for _, n := range loop.Nodes {
		if !ctx.IsExecuted(n) {
			return false
		}
	}

	for _, n := range loop.Nodes {
		block := ctx.Index.Block(n)
		if block == nil || block.Kind() != "condition" {
			continue
		}

		conditionID, ok := ctx.ConditionDecision(n)
		if !ok {
			continue
		}

		for _, c := range ctx.Index.Outgoing(n) {
			edgeConditionID, isConditionEdge := c.ConditionID()
			if !isConditionEdge || edgeConditionID != conditionID {
				continue
			}
			if isFeedbackEdge(loop, n, c.Target) {
				return true
			}
		}
	}

	return false
}

// isFeedbackEdge reports whether target precedes source in loop.Nodes's
// declared ordering, i.e. the edge source->target closes a cycle within L.
func isFeedbackEdge(loop types.Loop, source, target string) bool {
	sourcePos := loop.Position(source)
	targetPos := loop.Position(target)
	if sourcePos < 0 || targetPos < 0 {
		return false
	}
	return targetPos < sourcePos
}

// entryNode computes the loop's re-entry point: the node in L.Nodes with
// the fewest incoming edges originating from another node in L.Nodes (i.e.
// internal/feedback edges), ties broken by earliest position in the
// declared Nodes ordering.
func entryNode(idx *types.WorkflowIndex, loop types.Loop) string {
	best := ""
	bestCount := -1

	for _, n := range loop.Nodes {
		count := 0
		for _, inc := range idx.Incoming(n) {
			if loop.Contains(inc.Source) {
				count++
			}
		}
		if bestCount == -1 || count < bestCount {
			best = n
			bestCount = count
		}
	}

	return best
}
