// Package patch applies JSON-merge-patch overrides to a workflow's
// environment variables or initial block states, so a caller can re-run a
// workflow with a small delta instead of reconstructing the whole map.
// Grounded in the teacher's workflow-patch machinery
// (cmd/orchestrator/handlers/workflow_patch.go, common/validation/
// patch_validator.go, cmd/orchestrator/service/materializer.go), which
// applies a JSON-merge-patch to a stored workflow IR before a run starts.
package patch

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/flowforge/workflowengine/internal/types"
)

// ApplyEnvPatch merges patchDoc (a JSON-merge-patch document, RFC 7396)
// into base and returns the result. A nil or empty patchDoc returns base
// unchanged.
func ApplyEnvPatch(base map[string]string, patchDoc []byte) (map[string]string, error) {
	if len(patchDoc) == 0 {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, types.WrapError(types.ErrWorkflowInvalid, err, "marshaling environment variables for patching")
	}

	merged, err := jsonpatch.MergePatch(baseJSON, patchDoc)
	if err != nil {
		return nil, types.WrapError(types.ErrWorkflowInvalid, err, "applying environment variable patch")
	}

	var result map[string]string
	if err := json.Unmarshal(merged, &result); err != nil {
		return nil, types.WrapError(types.ErrWorkflowInvalid, err, "decoding patched environment variables")
	}
	return result, nil
}

// ApplyInitialStatePatch merges patchDoc into base, a mapping of block id to
// its pre-seeded NormalizedBlockOutput.
func ApplyInitialStatePatch(base map[string]types.Output, patchDoc []byte) (map[string]types.Output, error) {
	if len(patchDoc) == 0 {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, types.WrapError(types.ErrWorkflowInvalid, err, "marshaling initial block states for patching")
	}

	merged, err := jsonpatch.MergePatch(baseJSON, patchDoc)
	if err != nil {
		return nil, types.WrapError(types.ErrWorkflowInvalid, err, "applying initial block state patch")
	}

	var result map[string]types.Output
	if err := json.Unmarshal(merged, &result); err != nil {
		return nil, types.WrapError(types.ErrWorkflowInvalid, err, "decoding patched initial block states")
	}
	return result, nil
}
