package executor

import "github.com/flowforge/workflowengine/internal/types"

// validate runs the pre-execution checks of spec.md §4.5. Every failure
// raises WorkflowInvalid before any block runs.
func validate(wf *types.SerializedWorkflow, idx *types.WorkflowIndex) error {
	if err := validateStarter(wf, idx); err != nil {
		return err
	}
	if err := validateConnections(wf, idx); err != nil {
		return err
	}
	if err := validateLoops(wf, idx); err != nil {
		return err
	}
	return nil
}

func validateStarter(wf *types.SerializedWorkflow, idx *types.WorkflowIndex) error {
	var starters []string
	for i := range wf.Blocks {
		b := &wf.Blocks[i]
		if b.Kind() == types.StarterKind && b.IsEnabled() {
			starters = append(starters, b.ID)
		}
	}
	if len(starters) != 1 {
		return types.NewError(types.ErrWorkflowInvalid, "workflow must have exactly one enabled starter block, found %d", len(starters))
	}

	starterID := starters[0]
	if len(idx.Incoming(starterID)) != 0 {
		return types.NewError(types.ErrWorkflowInvalid, "starter block %q must have no incoming connections", starterID)
	}
	if len(idx.Outgoing(starterID)) == 0 {
		return types.NewError(types.ErrWorkflowInvalid, "starter block %q must have at least one outgoing connection", starterID)
	}
	return nil
}

func validateConnections(wf *types.SerializedWorkflow, idx *types.WorkflowIndex) error {
	for _, c := range wf.Connections {
		if idx.Block(c.Source) == nil {
			return types.NewError(types.ErrWorkflowInvalid, "connection references unknown source block %q", c.Source)
		}
		if idx.Block(c.Target) == nil {
			return types.NewError(types.ErrWorkflowInvalid, "connection references unknown target block %q", c.Target)
		}
	}
	return nil
}

func validateLoops(wf *types.SerializedWorkflow, idx *types.WorkflowIndex) error {
	for loopID, loop := range wf.Loops {
		if len(loop.Nodes) < 2 {
			return types.NewError(types.ErrWorkflowInvalid, "loop %q must declare at least two nodes", loopID)
		}
		if loop.MaxIterations < 0 {
			return types.NewError(types.ErrWorkflowInvalid, "loop %q must not declare a negative maxIterations", loopID)
		}
		for _, n := range loop.Nodes {
			if idx.Block(n) == nil {
				return types.NewError(types.ErrWorkflowInvalid, "loop %q references unknown block %q", loopID, n)
			}
		}
	}
	return nil
}
