// Package toolregistry is a reference getToolById collaborator backed by
// Redis-held tool specs. The core executor never imports this package
// directly (spec.md §1 leaves tool registries as an external collaborator);
// it is wired in only by binaries such as cmd/flowrunner that want a real
// persistent registry instead of an in-memory map. Grounded in the
// teacher's common/redis.Client wrapper, generalized from its generic
// string GET/SET helpers to a JSON-encoded ToolSpec-by-id lookup.
package toolregistry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flowforge/workflowengine/internal/types"
)

// keyPrefix namespaces every tool spec key so the registry can share a
// Redis instance with other services.
const keyPrefix = "flowrunner:tool:"

// Registry looks up ToolSpecs stored as JSON values under
// "flowrunner:tool:<id>".
type Registry struct {
	client *redis.Client
}

// New wraps an existing *redis.Client. The caller owns the client's
// lifecycle (construction, auth, Close).
func New(client *redis.Client) *Registry {
	return &Registry{client: client}
}

// Put stores spec under its id, overwriting any existing entry.
func (r *Registry) Put(ctx context.Context, spec types.ToolSpec) error {
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshaling tool spec %q: %w", spec.ID, err)
	}
	if err := r.client.Set(ctx, keyPrefix+spec.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("storing tool spec %q: %w", spec.ID, err)
	}
	return nil
}

// GetTool satisfies types.GetToolFunc.
func (r *Registry) GetTool(ctx context.Context, toolID string) (*types.ToolSpec, bool) {
	data, err := r.client.Get(ctx, keyPrefix+toolID).Bytes()
	if err != nil {
		return nil, false
	}
	var spec types.ToolSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, false
	}
	return &spec, true
}
