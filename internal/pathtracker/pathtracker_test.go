package pathtracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowforge/workflowengine/internal/types"
)

func newCtx(blocks []types.Block, conns []types.Connection) *types.ExecutionContext {
	wf := &types.SerializedWorkflow{Blocks: blocks, Connections: conns}
	idx := types.BuildIndex(wf)
	return types.NewExecutionContext("wf-1", wf, idx, nil)
}

func TestUpdateExecutionPaths_RouterSelectsOneTarget(t *testing.T) {
	blocks := []types.Block{
		{ID: "R", Metadata: types.BlockMetadata{Type: "router"}},
		{ID: "A", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "B", Metadata: types.BlockMetadata{Type: "generic"}},
	}
	conns := []types.Connection{
		{Source: "R", Target: "A"},
		{Source: "R", Target: "B"},
	}
	ctx := newCtx(blocks, conns)
	ctx.AddToActivePath("R")
	ctx.SetRouterDecision("R", "A")

	UpdateExecutionPaths(ctx, "R")

	assert.True(t, ctx.IsInActivePath("A"))
	assert.False(t, ctx.IsInActivePath("B"))
}

func TestUpdateExecutionPaths_ConditionSelectsMatchingHandle(t *testing.T) {
	blocks := []types.Block{
		{ID: "C", Metadata: types.BlockMetadata{Type: "condition"}},
		{ID: "Yes", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "No", Metadata: types.BlockMetadata{Type: "generic"}},
	}
	conns := []types.Connection{
		{Source: "C", Target: "Yes", SourceHandle: types.ConditionHandle("cond-true")},
		{Source: "C", Target: "No", SourceHandle: types.ConditionHandle("cond-false")},
	}
	ctx := newCtx(blocks, conns)
	ctx.AddToActivePath("C")
	ctx.SetConditionDecision("C", "cond-true")

	UpdateExecutionPaths(ctx, "C")

	assert.True(t, ctx.IsInActivePath("Yes"))
	assert.False(t, ctx.IsInActivePath("No"))
}

func TestUpdateExecutionPaths_PlainBlockActivatesAllSuccessors(t *testing.T) {
	blocks := []types.Block{
		{ID: "A", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "B", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "C", Metadata: types.BlockMetadata{Type: "generic"}},
	}
	conns := []types.Connection{
		{Source: "A", Target: "B"},
		{Source: "A", Target: "C"},
	}
	ctx := newCtx(blocks, conns)
	ctx.AddToActivePath("A")

	UpdateExecutionPaths(ctx, "A")

	assert.True(t, ctx.IsInActivePath("B"))
	assert.True(t, ctx.IsInActivePath("C"))
}

func TestUpdateExecutionPaths_PruningCascadesDownstream(t *testing.T) {
	// R -> A (rejected) -> D; R -> B (selected)
	blocks := []types.Block{
		{ID: "R", Metadata: types.BlockMetadata{Type: "router"}},
		{ID: "A", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "B", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "D", Metadata: types.BlockMetadata{Type: "generic"}},
	}
	conns := []types.Connection{
		{Source: "R", Target: "A"},
		{Source: "R", Target: "B"},
		{Source: "A", Target: "D"},
	}
	ctx := newCtx(blocks, conns)
	ctx.AddToActivePath("R")
	ctx.AddToActivePath("A")
	ctx.AddToActivePath("D")
	ctx.SetRouterDecision("R", "B")

	UpdateExecutionPaths(ctx, "R")

	assert.False(t, ctx.IsInActivePath("A"))
	assert.False(t, ctx.IsInActivePath("D"))
	assert.True(t, ctx.IsInActivePath("B"))
}

func TestUpdateExecutionPaths_DiamondRejoinSurvivesPartialRejection(t *testing.T) {
	// R -> A (selected) -> D
	// R -> B (rejected)  -> D
	// D must remain active because A's edge still reaches it.
	blocks := []types.Block{
		{ID: "R", Metadata: types.BlockMetadata{Type: "router"}},
		{ID: "A", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "B", Metadata: types.BlockMetadata{Type: "generic"}},
		{ID: "D", Metadata: types.BlockMetadata{Type: "generic"}},
	}
	conns := []types.Connection{
		{Source: "R", Target: "A"},
		{Source: "R", Target: "B"},
		{Source: "A", Target: "D"},
		{Source: "B", Target: "D"},
	}
	ctx := newCtx(blocks, conns)
	ctx.AddToActivePath("R")
	ctx.AddToActivePath("D")
	ctx.SetRouterDecision("R", "A")

	UpdateExecutionPaths(ctx, "R")

	assert.True(t, ctx.IsInActivePath("A"))
	assert.False(t, ctx.IsInActivePath("B"))
	assert.True(t, ctx.IsInActivePath("D"), "D is still reachable through A's selected edge")
}
