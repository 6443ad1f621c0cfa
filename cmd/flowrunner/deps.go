package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/flowforge/workflowengine/internal/types"
)

// Dependencies bundles the executor collaborators this demo binary wires
// up. A real deployment would point GetTool/ToolExecute at something
// backed by collaborators/toolregistry and an actual tool-execution
// service. This binary's defaults are an in-memory "echo" tool and a stub
// provider that always replies "ok". In the bundled sample workflow the
// function blocks run against the echo tool; the router block gets the
// stub's "ok", which names none of its targets, so that block fails with
// InvalidRoutingDecision.
type Dependencies struct {
	ProviderRequest types.ProviderRequestFunc
	GetTool         types.GetToolFunc
	ToolExecute     types.ToolExecuteFunc
}

// inMemoryTool is a hand-registered function tool for the demo workflow.
type inMemoryTool struct {
	spec types.ToolSpec
	run  func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error)
}

func newDemoDependencies() *Dependencies {
	tools := map[string]inMemoryTool{
		"echo": {
			spec: types.ToolSpec{ID: "echo", Type: "json"},
			run: func(_ context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
				return inputs, nil
			},
		},
	}

	return &Dependencies{
		ProviderRequest: func(_ context.Context, _ string, _ map[string]interface{}) (types.ProviderResponse, error) {
			return types.ProviderResponse{Content: "ok"}, nil
		},
		GetTool: func(_ context.Context, toolID string) (*types.ToolSpec, bool) {
			t, ok := tools[toolID]
			if !ok {
				return nil, false
			}
			return &t.spec, true
		},
		ToolExecute: func(ctx context.Context, toolID string, inputs map[string]interface{}) (types.ToolResult, error) {
			t, ok := tools[toolID]
			if !ok {
				return types.ToolResult{Success: false, Error: "unknown tool " + toolID}, nil
			}
			out, err := t.run(ctx, inputs)
			if err != nil {
				return types.ToolResult{Success: false, Error: err.Error()}, nil
			}
			return types.ToolResult{Success: true, Output: out}, nil
		},
	}
}

func uuidString() string {
	return uuid.NewString()
}
