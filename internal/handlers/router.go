package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowforge/workflowengine/internal/types"
)

// RouterHandler implements spec.md §4.4.2: asks a model to pick exactly one
// outgoing target, grounded on the teacher's
// operators.ControlFlowRouter.DetermineNextNodes branch-selection role,
// generalized from a fixed branch-config lookup to a free-text model vote
// over the block's live outgoing edges.
type RouterHandler struct {
	providerRequest types.ProviderRequestFunc
}

func NewRouterHandler(providerRequest types.ProviderRequestFunc) *RouterHandler {
	return &RouterHandler{providerRequest: providerRequest}
}

func (h *RouterHandler) CanHandle(block *types.Block) bool {
	return block.Kind() == "router"
}

type routerTarget struct {
	ID           string
	Type         string
	Title        string
	Description  string
	SubBlocks    interface{}
	CurrentState interface{}
}

func (h *RouterHandler) Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	targets := collectRouterTargets(execCtx, block.ID)

	prompt, _ := inputs["prompt"].(string)
	model, _ := inputs["model"].(string)
	if model == "" {
		model = defaultAgentModel
	}

	systemPrompt := buildRouterPrompt(prompt, targets)

	resp, err := h.providerRequest(ctx, model, map[string]interface{}{
		"model":        model,
		"systemPrompt": systemPrompt,
	})
	if err != nil {
		return nil, err
	}

	selection := strings.TrimSpace(resp.Content)
	var selected *routerTarget
	for i := range targets {
		if strings.EqualFold(strings.TrimSpace(targets[i].ID), selection) {
			selected = &targets[i]
			break
		}
	}
	if selected == nil {
		return nil, types.NewError(types.ErrInvalidRoutingDecision, "model selected %q, which is not one of the block's outgoing targets", selection)
	}

	execCtx.SetRouterDecision(block.ID, selected.ID)

	out := map[string]interface{}{
		"selectedPath": map[string]interface{}{
			"blockId":    selected.ID,
			"blockType":  selected.Type,
			"blockTitle": selected.Title,
		},
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
	return out, nil
}

// collectRouterTargets gathers the descriptor spec.md §4.4.2 requires for
// every outgoing edge of a router block.
func collectRouterTargets(execCtx *types.ExecutionContext, blockID string) []routerTarget {
	conns := execCtx.Index.Outgoing(blockID)
	targets := make([]routerTarget, 0, len(conns))
	for _, c := range conns {
		b := execCtx.Index.Block(c.Target)
		if b == nil {
			continue
		}
		var currentState interface{}
		if st, ok := execCtx.BlockState(c.Target); ok {
			currentState = st.Output
		}
		targets = append(targets, routerTarget{
			ID:           b.ID,
			Type:         b.Kind(),
			Title:        b.Metadata.Name,
			CurrentState: currentState,
		})
	}
	return targets
}

// buildRouterPrompt is the "Router prompt" pure function of the glossary:
// (userPrompt, targets) -> a system prompt instructing the model to reply
// with exactly one target id.
func buildRouterPrompt(userPrompt string, targets []routerTarget) string {
	var b strings.Builder
	b.WriteString(userPrompt)
	b.WriteString("\n\nChoose exactly one of the following destinations and reply with only its id:\n")
	for _, t := range targets {
		title := t.Title
		if title == "" {
			title = t.ID
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", t.ID, t.Type, title)
	}
	return b.String()
}
