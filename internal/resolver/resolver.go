// Package resolver substitutes block references and environment variables
// into a block's parameter map just before it runs. It is the Go
// counterpart of the teacher's cmd/workflow-runner/resolver package, swapped
// from "$nodes.id.field" / CAS-backed lookups to the spec's "<ref>" /
// in-memory ExecutionContext lookups, and using gjson the same way the
// teacher does to walk a resolved JSON path.
package resolver

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/flowforge/workflowengine/internal/types"
)

var (
	blockRefPattern = regexp.MustCompile(`<([^<>]+)>`)
	envVarPattern   = regexp.MustCompile(`\{\{([^{}]+)\}\}`)
)

// Resolver has no state of its own; all the state it needs lives in the
// ExecutionContext passed to ResolveInputs.
type Resolver struct{}

// New creates a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// ResolveInputs transforms block.Config.Params into a fully resolved input
// mapping, per spec.md §4.1.
func (r *Resolver) ResolveInputs(block *types.Block, ctx *types.ExecutionContext) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(block.Config.Params))
	kind := block.Kind()

	for key, value := range block.Config.Params {
		v, err := r.resolveTopLevel(value, ctx, kind)
		if err != nil {
			var coreErr *types.CoreError
			if errors.As(err, &coreErr) {
				return nil, types.WrapError(coreErr.Kind, err, "resolving parameter %q: %s", key, coreErr.Message)
			}
			return nil, err
		}
		resolved[key] = v
	}

	return resolved, nil
}

// resolveTopLevel implements the dispatch described in spec.md §4.1: nulls
// pass through, strings get the full ref+env+JSON-parse treatment, maps
// recurse (each value again gets the full treatment), sequences map
// element-wise with only ref+env substitution applied to string elements,
// and other primitives pass through unchanged.
func (r *Resolver) resolveTopLevel(value interface{}, ctx *types.ExecutionContext, kind string) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return r.resolveStringFull(v, ctx, kind)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			rv, err := r.resolveTopLevel(val, ctx, kind)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, el := range v {
			if s, ok := el.(string); ok {
				rv, err := r.resolveStringPartial(s, ctx, kind)
				if err != nil {
					return nil, err
				}
				out[i] = rv
			} else {
				out[i] = el
			}
		}
		return out, nil
	default:
		return value, nil
	}
}

// resolveStringFull performs block-reference substitution, then
// environment-variable substitution, then an optional JSON reparse when the
// result begins with '{' or '['.
func (r *Resolver) resolveStringFull(s string, ctx *types.ExecutionContext, kind string) (interface{}, error) {
	withRefs, err := r.substituteBlockRefs(s, ctx, kind)
	if err != nil {
		return nil, err
	}
	withEnv, err := r.substituteEnvVars(withRefs, ctx)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(withEnv)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var parsed interface{}
		if jsonErr := json.Unmarshal([]byte(withEnv), &parsed); jsonErr == nil {
			return parsed, nil
		}
	}
	return withEnv, nil
}

// resolveStringPartial applies only the two substitution passes, used for
// string elements inside a sequence (spec.md §4.1's sequence rule omits the
// JSON reparse step).
func (r *Resolver) resolveStringPartial(s string, ctx *types.ExecutionContext, kind string) (string, error) {
	withRefs, err := r.substituteBlockRefs(s, ctx, kind)
	if err != nil {
		return "", err
	}
	return r.substituteEnvVars(withRefs, ctx)
}

// substituteBlockRefs replaces every "<reference>" occurrence in s, in a
// single left-to-right pass over non-overlapping matches.
func (r *Resolver) substituteBlockRefs(s string, ctx *types.ExecutionContext, kind string) (string, error) {
	matches := blockRefPattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		refStart, refEnd := m[2], m[3]

		b.WriteString(s[last:start])

		replacement, err := r.resolveBlockReference(s[refStart:refEnd], ctx, kind)
		if err != nil {
			return "", err
		}
		b.WriteString(replacement)

		last = end
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

// resolveBlockReference resolves one "head.part1.part2" reference body
// (without the surrounding angle brackets) to its substitution text.
func (r *Resolver) resolveBlockReference(ref string, ctx *types.ExecutionContext, kind string) (string, error) {
	parts := strings.Split(ref, ".")
	head := parts[0]
	pathParts := parts[1:]

	block, ok := ctx.Index.Resolve(head)
	if !ok {
		return "", types.NewError(types.ErrReferenceNotFound, "no block matches reference head %q", head)
	}
	if !block.IsEnabled() {
		return "", types.NewError(types.ErrDisabledDependency, "referenced block %q is disabled", block.ID)
	}
	if !ctx.IsInActivePath(block.ID) {
		return "", nil
	}

	state, hasState := ctx.BlockState(block.ID)
	if !hasState {
		if ctx.Index.IsInAnyLoop(block.ID) {
			return "", nil
		}
		return "", types.NewError(types.ErrUnresolvedReference, "referenced block %q has not executed and is not in a loop", block.ID)
	}

	value, err := walkPath(state.Output, pathParts)
	if err != nil {
		return "", types.WrapError(types.ErrInvalidReferencePath, err, "reference %q: %s", ref, err.Error())
	}

	return formatValue(value, kind == "condition"), nil
}

// walkPath descends a NormalizedBlockOutput through successive path parts,
// using gjson the way the teacher's resolver walks a marshaled node output.
func walkPath(output types.Output, parts []string) (interface{}, error) {
	if len(parts) == 0 {
		return map[string]interface{}(output), nil
	}

	data, err := json.Marshal(map[string]interface{}(output))
	if err != nil {
		return nil, err
	}

	path := strings.Join(parts, ".")
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return nil, errMissingPath{path: path}
	}
	return result.Value(), nil
}

type errMissingPath struct{ path string }

func (e errMissingPath) Error() string {
	return "missing path " + e.path
}

// substituteEnvVars replaces every "{{NAME}}" occurrence with
// environmentVariables[NAME], failing if any referenced name is absent.
func (r *Resolver) substituteEnvVars(s string, ctx *types.ExecutionContext) (string, error) {
	matches := envVarPattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		nameStart, nameEnd := m[2], m[3]
		name := strings.TrimSpace(s[nameStart:nameEnd])

		b.WriteString(s[last:start])

		val, ok := ctx.EnvironmentVariables[name]
		if !ok {
			return "", types.NewError(types.ErrEnvVarNotFound, "environment variable %q not found", name)
		}
		b.WriteString(val)

		last = end
	}
	b.WriteString(s[last:])
	return b.String(), nil
}
