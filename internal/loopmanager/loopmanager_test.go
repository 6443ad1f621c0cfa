package loopmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/workflowengine/internal/types"
)

func buildLoopCtx(t *testing.T, loop types.Loop, blocks []types.Block, conns []types.Connection) *types.ExecutionContext {
	t.Helper()
	wf := &types.SerializedWorkflow{
		Blocks:      blocks,
		Connections: conns,
		Loops:       map[string]types.Loop{loop.ID: loop},
	}
	idx := types.BuildIndex(wf)
	return types.NewExecutionContext("wf-1", wf, idx, nil)
}

// A -> C (condition); C's feedback branch loops back to A.
func abLoopFixture() ([]types.Block, []types.Connection) {
	blocks := []types.Block{
		{ID: "A", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "C", Metadata: types.BlockMetadata{Type: "condition"}},
		{ID: "Done", Metadata: types.BlockMetadata{Type: "generic"}},
	}
	conns := []types.Connection{
		{Source: "A", Target: "C"},
		{Source: "C", Target: "A", SourceHandle: types.ConditionHandle("retry")},
		{Source: "C", Target: "Done", SourceHandle: types.ConditionHandle("exit")},
	}
	return blocks, conns
}

func TestProcessLoopIterations_IteratesAndResetsOnFeedbackEdge(t *testing.T) {
	loop := types.Loop{ID: "L1", Nodes: []string{"A", "C"}, MaxIterations: 3}
	blocks, conns := abLoopFixture()
	ctx := buildLoopCtx(t, loop, blocks, conns)

	ctx.MarkExecuted("A")
	ctx.MarkExecuted("C")
	ctx.SetConditionDecision("C", "retry")

	atCap := ProcessLoopIterations(ctx)

	require.False(t, atCap)
	assert.Equal(t, 1, ctx.LoopIterations["L1"])
	assert.False(t, ctx.IsExecuted("A"))
	assert.False(t, ctx.IsExecuted("C"))
	assert.True(t, ctx.IsInActivePath("A"))
	assert.True(t, ctx.IsInActivePath("C"))
}

func TestProcessLoopIterations_NoIterationWhenExitSelected(t *testing.T) {
	loop := types.Loop{ID: "L1", Nodes: []string{"A", "C"}, MaxIterations: 3}
	blocks, conns := abLoopFixture()
	ctx := buildLoopCtx(t, loop, blocks, conns)

	ctx.MarkExecuted("A")
	ctx.MarkExecuted("C")
	ctx.SetConditionDecision("C", "exit")

	atCap := ProcessLoopIterations(ctx)

	require.False(t, atCap)
	assert.Equal(t, 0, ctx.LoopIterations["L1"])
}

func TestProcessLoopIterations_NoIterationUntilAllNodesExecuted(t *testing.T) {
	loop := types.Loop{ID: "L1", Nodes: []string{"A", "C"}, MaxIterations: 3}
	blocks, conns := abLoopFixture()
	ctx := buildLoopCtx(t, loop, blocks, conns)

	ctx.MarkExecuted("A")
	// C has not executed yet.
	ctx.SetConditionDecision("C", "retry")

	atCap := ProcessLoopIterations(ctx)

	require.False(t, atCap)
	assert.Equal(t, 0, ctx.LoopIterations["L1"])
}

func TestProcessLoopIterations_HitsCapAfterMaxIterations(t *testing.T) {
	loop := types.Loop{ID: "L1", Nodes: []string{"A", "C"}, MaxIterations: 3}
	blocks, conns := abLoopFixture()
	ctx := buildLoopCtx(t, loop, blocks, conns)

	for i := 0; i < 3; i++ {
		ctx.MarkExecuted("A")
		ctx.MarkExecuted("C")
		ctx.SetConditionDecision("C", "retry")
		atCap := ProcessLoopIterations(ctx)
		require.False(t, atCap, "iteration %d should not be at cap yet", i+1)
	}
	assert.Equal(t, 3, ctx.LoopIterations["L1"])

	// A 4th completed pass: loopIterations[L1] (3) >= maxIterations (3), so
	// this call reports "at cap" without incrementing further.
	ctx.MarkExecuted("A")
	ctx.MarkExecuted("C")
	ctx.SetConditionDecision("C", "retry")
	atCap := ProcessLoopIterations(ctx)
	assert.True(t, atCap)
	assert.Equal(t, 3, ctx.LoopIterations["L1"])
}

func TestEntryNode_TwoCycleTieBreaksByDeclaredOrder(t *testing.T) {
	// A <-> C, both with exactly one internal incoming edge; A listed first.
	loop := types.Loop{ID: "L1", Nodes: []string{"A", "C"}}
	blocks := []types.Block{
		{ID: "A", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "C", Metadata: types.BlockMetadata{Type: "condition"}},
	}
	conns := []types.Connection{
		{Source: "A", Target: "C"},
		{Source: "C", Target: "A", SourceHandle: types.ConditionHandle("retry")},
	}
	wf := &types.SerializedWorkflow{Blocks: blocks, Connections: conns, Loops: map[string]types.Loop{"L1": loop}}
	idx := types.BuildIndex(wf)

	assert.Equal(t, "A", entryNode(idx, loop))
}

func TestEntryNode_PrefersSmallestInternalIncomingCount(t *testing.T) {
	// Entry has zero internal incoming edges (only fed from outside the loop).
	loop := types.Loop{ID: "L1", Nodes: []string{"Entry", "B", "C"}}
	blocks := []types.Block{
		{ID: "Start", Metadata: types.BlockMetadata{Type: "starter"}},
		{ID: "Entry", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "B", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "C", Metadata: types.BlockMetadata{Type: "condition"}},
	}
	conns := []types.Connection{
		{Source: "Start", Target: "Entry"},
		{Source: "Entry", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "C", Target: "B", SourceHandle: types.ConditionHandle("retry")},
	}
	wf := &types.SerializedWorkflow{Blocks: blocks, Connections: conns, Loops: map[string]types.Loop{"L1": loop}}
	idx := types.BuildIndex(wf)

	assert.Equal(t, "Entry", entryNode(idx, loop))
}

func TestProcessLoopIterations_DefaultMaxIterations(t *testing.T) {
	loop := types.Loop{ID: "L1", Nodes: []string{"A", "C"}} // MaxIterations unset
	blocks, conns := abLoopFixture()
	ctx := buildLoopCtx(t, loop, blocks, conns)

	assert.Equal(t, types.DefaultMaxIterations, loop.EffectiveMaxIterations())

	ctx.MarkExecuted("A")
	ctx.MarkExecuted("C")
	ctx.SetConditionDecision("C", "retry")
	atCap := ProcessLoopIterations(ctx)
	require.False(t, atCap)
	assert.Equal(t, 1, ctx.LoopIterations["L1"])
}
