package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowforge/workflowengine/internal/types"
)

func TestNormalize_PassthroughWhenResponsePresent(t *testing.T) {
	raw := map[string]interface{}{"response": map[string]interface{}{"content": "hi"}}
	out := Normalize("agent", raw)
	assert.Equal(t, "hi", out.Response()["content"])
}

func TestNormalize_WrapsBareMapping(t *testing.T) {
	raw := map[string]interface{}{"content": "hi", "model": "gpt"}
	out := Normalize("agent", raw)
	assert.Equal(t, "hi", out.Response()["content"])
	assert.Equal(t, "gpt", out.Response()["model"])
}

func TestNormalize_WrapsPrimitiveByKind(t *testing.T) {
	assert.Equal(t, "42", Normalize("function", "42").Response()["result"])
	assert.Equal(t, float64(3), Normalize("api", float64(3)).Response()["data"])
	assert.Equal(t, "done", Normalize("agent", "done").Response()["content"])
}

func TestNormalize_UnknownKindFallsBackToResult(t *testing.T) {
	out := Normalize("mystery", true)
	assert.Equal(t, true, out.Response()["result"])
}

func TestNormalize_NilRawYieldsEmptyResponse(t *testing.T) {
	out := Normalize("generic", nil)
	assert.Equal(t, map[string]interface{}{}, out.Response())
}

func TestNormalize_TypesOutputPassthrough(t *testing.T) {
	raw := types.Output{"response": map[string]interface{}{"data": 1}}
	out := Normalize("api", raw)
	assert.Equal(t, 1, out.Response()["data"])
}
