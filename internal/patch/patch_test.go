package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/workflowengine/internal/types"
)

func TestApplyEnvPatch_MergesAndOverrides(t *testing.T) {
	base := map[string]string{"API_KEY": "old", "REGION": "us-east-1"}
	result, err := ApplyEnvPatch(base, []byte(`{"API_KEY":"new"}`))
	require.NoError(t, err)
	assert.Equal(t, "new", result["API_KEY"])
	assert.Equal(t, "us-east-1", result["REGION"])
}

func TestApplyEnvPatch_NilPatchReturnsBase(t *testing.T) {
	base := map[string]string{"A": "1"}
	result, err := ApplyEnvPatch(base, nil)
	require.NoError(t, err)
	assert.Equal(t, base, result)
}

func TestApplyEnvPatch_InvalidPatchFails(t *testing.T) {
	_, err := ApplyEnvPatch(map[string]string{"A": "1"}, []byte(`not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, &types.CoreError{Kind: types.ErrWorkflowInvalid})
}

func TestApplyInitialStatePatch_MergesBlockState(t *testing.T) {
	base := map[string]types.Output{
		"A": {"response": map[string]interface{}{"x": 1}},
	}
	patchDoc := []byte(`{"B":{"response":{"y":2}}}`)
	result, err := ApplyInitialStatePatch(base, patchDoc)
	require.NoError(t, err)
	assert.Equal(t, float64(1), result["A"].Response()["x"])
	assert.Equal(t, float64(2), result["B"].Response()["y"])
}
