// Package normalize coerces a handler's raw return value into the
// NormalizedBlockOutput shape every other subsystem (resolver, logging,
// console streaming) relies on: a mapping carrying a "response" key.
package normalize

import "github.com/flowforge/workflowengine/internal/types"

// primaryResponseKey maps a block kind to the response field a raw,
// non-mapping handler result is wrapped under, per spec.md §3/§4.6.
// Kinds absent here (and any kind not recognized) fall back to "result".
var primaryResponseKey = map[string]string{
	"function":  "result",
	"api":       "data",
	"agent":     "content",
	"router":    "content",
	"evaluator": "content",
}

// Normalize wraps raw into a types.Output per spec.md §4.6: a mapping
// already carrying "response" passes through untouched; any other mapping
// is wrapped as {"response": raw}; a non-mapping primitive is wrapped as
// {"response": {<kind's primary field>: raw}}.
func Normalize(kind string, raw interface{}) types.Output {
	switch v := raw.(type) {
	case types.Output:
		if _, ok := v["response"]; ok {
			return v
		}
		return types.Output{"response": map[string]interface{}(v)}

	case map[string]interface{}:
		if _, ok := v["response"]; ok {
			return types.Output(v)
		}
		return types.Output{"response": v}

	case nil:
		return types.EmptyOutput()

	default:
		key, ok := primaryResponseKey[kind]
		if !ok {
			key = "result"
		}
		return types.Output{"response": map[string]interface{}{key: raw}}
	}
}
