package handlers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/flowforge/workflowengine/internal/types"
)

// EvaluatorHandler implements spec.md §4.4.4: issues a provider request
// with a caller-supplied system prompt/response format plus a user message,
// then merges the parsed JSON response's top-level keys (lowercased) into
// the output alongside content/model/tokens.
type EvaluatorHandler struct {
	providerRequest types.ProviderRequestFunc
}

func NewEvaluatorHandler(providerRequest types.ProviderRequestFunc) *EvaluatorHandler {
	return &EvaluatorHandler{providerRequest: providerRequest}
}

func (h *EvaluatorHandler) CanHandle(block *types.Block) bool {
	return block.Kind() == "evaluator"
}

func (h *EvaluatorHandler) Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	spec, err := parseSystemPromptSpec(inputs["systemPrompt"])
	if err != nil {
		return nil, err
	}

	content, _ := inputs["content"].(string)
	model, _ := inputs["model"].(string)
	if model == "" {
		model = defaultAgentModel
	}

	payload := map[string]interface{}{
		"model":        model,
		"systemPrompt": spec.SystemPrompt,
		"content":      content,
	}
	if spec.ResponseFormat != nil {
		payload["responseFormat"] = spec.ResponseFormat
	}

	resp, err := h.providerRequest(ctx, model, payload)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{
		"content": resp.Content,
		"model":   resp.Model,
	}
	if resp.Tokens != nil {
		out["tokens"] = map[string]interface{}{
			"prompt":     resp.Tokens.Prompt,
			"completion": resp.Tokens.Completion,
			"total":      resp.Tokens.Total,
		}
	}

	var metrics map[string]interface{}
	if err := json.Unmarshal([]byte(resp.Content), &metrics); err == nil {
		for k, v := range metrics {
			out[strings.ToLower(k)] = v
		}
	}

	return out, nil
}

type systemPromptSpec struct {
	SystemPrompt   string
	ResponseFormat map[string]interface{}
}

// parseSystemPromptSpec accepts inputs.systemPrompt as either an
// already-decoded mapping or a JSON-encoded string, per spec.md §4.4.4.
func parseSystemPromptSpec(raw interface{}) (systemPromptSpec, error) {
	var m map[string]interface{}

	switch v := raw.(type) {
	case nil:
		return systemPromptSpec{}, types.NewError(types.ErrWorkflowInvalid, "inputs.systemPrompt is required")
	case string:
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return systemPromptSpec{}, types.WrapError(types.ErrInvalidResponseFormat, err, "inputs.systemPrompt is not valid JSON")
		}
	case map[string]interface{}:
		m = v
	default:
		return systemPromptSpec{}, types.NewError(types.ErrWorkflowInvalid, "inputs.systemPrompt must be a string or object, got %T", raw)
	}

	spec := systemPromptSpec{}
	spec.SystemPrompt, _ = m["systemPrompt"].(string)
	if rf, ok := m["responseFormat"].(map[string]interface{}); ok {
		spec.ResponseFormat = rf
	}
	return spec, nil
}
