package handlers

import (
	"context"
	"encoding/json"

	"github.com/flowforge/workflowengine/internal/types"
)

const defaultAgentModel = "gpt-4o"

// AgentHandler implements spec.md §4.4.1: an LLM call with optional tool
// definitions and an optional structured response format.
type AgentHandler struct {
	providerRequest types.ProviderRequestFunc
	getTool         types.GetToolFunc
}

func NewAgentHandler(providerRequest types.ProviderRequestFunc, getTool types.GetToolFunc) *AgentHandler {
	return &AgentHandler{providerRequest: providerRequest, getTool: getTool}
}

func (h *AgentHandler) CanHandle(block *types.Block) bool {
	return block.Kind() == "agent"
}

func (h *AgentHandler) Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	model, _ := inputs["model"].(string)
	if model == "" {
		model = defaultAgentModel
	}

	systemPrompt, _ := inputs["systemPrompt"].(string)

	userContext, err := stringifyContext(inputs["context"])
	if err != nil {
		return nil, err
	}

	responseFormat, err := parseResponseFormat(inputs["responseFormat"])
	if err != nil {
		return nil, err
	}

	tools := buildToolSchemas(ctx, inputs["tools"], h.getTool)

	payload := map[string]interface{}{
		"model":        model,
		"systemPrompt": systemPrompt,
		"context":      userContext,
		"temperature":  inputs["temperature"],
		"maxTokens":    inputs["maxTokens"],
		"apiKey":       inputs["apiKey"],
	}
	if len(tools) > 0 {
		payload["tools"] = tools
	}
	if responseFormat != nil {
		payload["responseFormat"] = responseFormat
	}

	resp, err := h.providerRequest(ctx, model, payload)
	if err != nil {
		return nil, err
	}

	if responseFormat != nil {
		var parsed map[string]interface{}
		if jsonErr := json.Unmarshal([]byte(resp.Content), &parsed); jsonErr != nil {
			return nil, types.WrapError(types.ErrInvalidResponseFormat, jsonErr, "provider response is not valid JSON for the requested response format")
		}
		return parsed, nil
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
	if len(resp.ToolCalls) > 0 {
		out["toolCalls"] = map[string]interface{}{
			"list":  resp.ToolCalls,
			"count": len(resp.ToolCalls),
		}
	}
	return out, nil
}

// stringifyContext passes strings through and JSON-stringifies anything
// else, per spec.md §4.4.1's "string or JSON-stringified" contract.
func stringifyContext(raw interface{}) (string, error) {
	if raw == nil {
		return "", nil
	}
	if s, ok := raw.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", types.WrapError(types.ErrInvalidResponseFormat, err, "inputs.context could not be JSON-stringified")
	}
	return string(b), nil
}

// parseResponseFormat returns nil when unset, and fails with
// InvalidResponseFormat on an unparseable string or an unexpected type.
func parseResponseFormat(raw interface{}) (map[string]interface{}, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return nil, types.WrapError(types.ErrInvalidResponseFormat, err, "inputs.responseFormat is not valid JSON")
		}
		return parsed, nil
	default:
		return nil, types.NewError(types.ErrInvalidResponseFormat, "inputs.responseFormat must be a string or object, got %T", raw)
	}
}
