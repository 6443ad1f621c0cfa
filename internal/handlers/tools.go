package handlers

import (
	"context"

	"github.com/flowforge/workflowengine/internal/types"
)

// buildToolSchemas implements spec.md §4.4.1's tool transformation: for each
// declared tool, look it up in the registry and build a parameters
// JSON-Schema-like object. Null/unknown entries are dropped silently.
func buildToolSchemas(ctx context.Context, rawTools interface{}, getTool types.GetToolFunc) []map[string]interface{} {
	names := toStringList(rawTools)
	if len(names) == 0 || getTool == nil {
		return nil
	}

	var out []map[string]interface{}
	for _, name := range names {
		spec, ok := getTool(ctx, name)
		if !ok || spec == nil {
			continue
		}

		properties := map[string]interface{}{}
		var required []string
		for _, p := range spec.Params {
			schemaType := p.Type
			if schemaType == "json" {
				schemaType = "object"
			}
			properties[p.Name] = map[string]interface{}{"type": schemaType}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		out = append(out, map[string]interface{}{
			"id":   spec.ID,
			"type": "function",
			"parameters": map[string]interface{}{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		})
	}
	return out
}

// toStringList coerces inputs.tools (a []interface{} of strings, a []string,
// or anything else) into a plain string slice, discarding non-string
// elements.
func toStringList(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
