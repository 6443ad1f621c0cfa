package handlers

import (
	"context"
	"encoding/json"

	"github.com/flowforge/workflowengine/internal/types"
)

// Condition is one branch of a condition block's inputs.conditions list.
type Condition struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// ConditionHandler implements spec.md §4.4.3: evaluates a list of boolean
// expressions against the single upstream block's output, in declaration
// order, and picks the first branch both satisfied and wired to an
// outgoing edge. Grounded in the teacher's condition.Evaluator
// (cmd/workflow-runner/condition/evaluator.go), generalized from its fixed
// {output, ctx} CEL schema to the spec's dynamic, source-output-derived
// evaluation mapping.
type ConditionHandler struct {
	expr *exprEvaluator
}

func NewConditionHandler() *ConditionHandler {
	return &ConditionHandler{expr: newExprEvaluator()}
}

func (h *ConditionHandler) CanHandle(block *types.Block) bool {
	return block.Kind() == "condition"
}

func (h *ConditionHandler) Execute(ctx context.Context, block *types.Block, inputs map[string]interface{}, execCtx *types.ExecutionContext) (interface{}, error) {
	conditions, err := parseConditions(inputs["conditions"])
	if err != nil {
		return nil, err
	}

	_, sourceBlock, sourceOutput, err := h.resolveSource(block, execCtx)
	if err != nil {
		return nil, err
	}

	vars := buildEvaluationMapping(sourceBlock, sourceOutput)

	outgoing := execCtx.Index.Outgoing(block.ID)
	edgeExists := func(conditionID string) bool {
		for _, c := range outgoing {
			if cid, ok := c.ConditionID(); ok && cid == conditionID {
				return true
			}
		}
		return false
	}

	var lastErr error
	for _, cond := range conditions {
		switch cond.Title {
		case "if", "else if":
			matched, evalErr := h.expr.Eval(cond.Value, vars)
			if evalErr != nil {
				lastErr = evalErr
				continue
			}
			if matched && edgeExists(cond.ID) {
				return h.selectCondition(block, execCtx, cond)
			}
		case "else":
			if edgeExists(cond.ID) {
				return h.selectCondition(block, execCtx, cond)
			}
		}
	}

	if lastErr != nil {
		return nil, types.WrapError(types.ErrConditionEvaluation, lastErr, "no condition matched and the last evaluation failed")
	}
	return nil, types.NewError(types.ErrNoConditionPath, "no condition on block %q selected an outgoing path", block.ID)
}

func (h *ConditionHandler) resolveSource(block *types.Block, execCtx *types.ExecutionContext) (string, *types.Block, types.Output, error) {
	incoming := execCtx.Index.Incoming(block.ID)
	if len(incoming) == 0 {
		return "", nil, nil, types.NewError(types.ErrMissingConditionSource, "condition block %q has no incoming connection", block.ID)
	}

	sourceID := incoming[0].Source
	sourceBlock := execCtx.Index.Block(sourceID)
	state, hasState := execCtx.BlockState(sourceID)
	if sourceBlock == nil || !hasState || !execCtx.IsExecuted(sourceID) {
		return "", nil, nil, types.NewError(types.ErrMissingConditionSource, "condition block %q's source %q has not executed", block.ID, sourceID)
	}
	return sourceID, sourceBlock, state.Output, nil
}

func (h *ConditionHandler) selectCondition(block *types.Block, execCtx *types.ExecutionContext, cond Condition) (interface{}, error) {
	execCtx.SetConditionDecision(block.ID, cond.ID)

	var target *types.Block
	for _, c := range execCtx.Index.Outgoing(block.ID) {
		if cid, ok := c.ConditionID(); ok && cid == cond.ID {
			target = execCtx.Index.Block(c.Target)
			break
		}
	}

	out := map[string]interface{}{
		"selectedConditionId": cond.ID,
		"conditionResult":     true,
	}
	if target != nil {
		out["selectedPath"] = map[string]interface{}{
			"blockId":    target.ID,
			"blockType":  target.Kind(),
			"blockTitle": target.Metadata.Name,
		}
	}
	return out, nil
}

// buildEvaluationMapping combines the source's response fields with a key
// equal to its normalized name bound to its entire output, per spec.md
// §4.4.3.
func buildEvaluationMapping(sourceBlock *types.Block, sourceOutput types.Output) map[string]interface{} {
	vars := make(map[string]interface{})
	for k, v := range sourceOutput.Response() {
		vars[k] = v
	}
	if sourceBlock.Metadata.Name != "" {
		vars[types.NormalizeName(sourceBlock.Metadata.Name)] = map[string]interface{}(sourceOutput)
	}
	return vars
}

// parseConditions accepts inputs.conditions as either an already-decoded
// slice or a JSON-encoded string.
func parseConditions(raw interface{}) ([]Condition, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		var conditions []Condition
		if err := json.Unmarshal([]byte(v), &conditions); err != nil {
			return nil, types.WrapError(types.ErrWorkflowInvalid, err, "inputs.conditions is not valid JSON")
		}
		return conditions, nil
	case []interface{}:
		conditions := make([]Condition, 0, len(v))
		for _, el := range v {
			m, ok := el.(map[string]interface{})
			if !ok {
				continue
			}
			conditions = append(conditions, Condition{
				ID:    stringField(m, "id"),
				Title: stringField(m, "title"),
				Value: stringField(m, "value"),
			})
		}
		return conditions, nil
	default:
		return nil, types.NewError(types.ErrWorkflowInvalid, "inputs.conditions must be an array or a JSON string, got %T", raw)
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
