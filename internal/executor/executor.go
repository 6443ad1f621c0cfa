// Package executor drives the layered scheduling loop of spec.md §4.5: it
// validates a workflow, seeds the initial ExecutionContext, and repeatedly
// computes and runs the next ready layer until none remains, a loop hits its
// iteration cap, the safety cap is reached, or the caller's deadline
// expires. It is the generalized, single-process counterpart of the
// teacher's cmd/workflow-runner/coordinator.Coordinator, which choreographs
// the same run/layer/node lifecycle across a Redis-backed worker fleet;
// here there is no network hop between steps, so the whole loop is one
// in-process function.
package executor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/flowforge/workflowengine/internal/handlers"
	"github.com/flowforge/workflowengine/internal/loopmanager"
	"github.com/flowforge/workflowengine/internal/normalize"
	"github.com/flowforge/workflowengine/internal/obslog"
	"github.com/flowforge/workflowengine/internal/pathtracker"
	"github.com/flowforge/workflowengine/internal/resolver"
	"github.com/flowforge/workflowengine/internal/types"
)

// maxLayerIterations is the hard safety cap of spec.md §5 against a
// malformed workflow producing an unbounded sequence of layers.
const maxLayerIterations = 100

// Executor runs one SerializedWorkflow to completion. Build one with New
// and call Execute; an Executor keeps no run state between Execute calls
// (each call builds a fresh ExecutionContext), so the same Executor can run
// a workflow repeatedly.
type Executor struct {
	workflow *types.SerializedWorkflow
	index    *types.WorkflowIndex

	initialBlockStates   map[string]types.Output
	environmentVariables map[string]string

	collab     handlers.Collaborators
	dispatcher *handlers.Dispatcher
	resolver   *resolver.Resolver

	logConsole types.LogConsoleFunc
	limiter    *rate.Limiter
}

// New builds an Executor for wf. Options install collaborators and tunables;
// anything left unset is inert (no provider/tool calls, no log sink).
func New(wf *types.SerializedWorkflow, opts ...Option) *Executor {
	e := &Executor{
		workflow:   wf,
		index:      types.BuildIndex(wf),
		resolver:   resolver.New(),
		logConsole: func(types.ConsoleEvent) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dispatcher = handlers.NewDispatcher(e.collab)
	return e
}

// Execute runs the workflow to completion or failure. ctx governs
// cancellation and deadline: on expiry the executor stops launching new
// layers, waits for the in-flight layer, and returns a Timeout error.
func (e *Executor) Execute(ctx context.Context, workflowID string) *ExecutionResult {
	runCtx, span := obslog.StartRun(ctx, workflowID)
	defer span.End()

	startTime := time.Now()
	execCtx, err := e.newExecutionContext(workflowID)
	if err != nil {
		return e.failureResult(err, nil, startTime)
	}

	if err := validate(e.workflow, e.index); err != nil {
		return e.failureResult(err, nil, startTime)
	}

	e.seedInitialState(execCtx)

	var finalOutput types.Output
	if st, ok := execCtx.BlockState(e.starterID()); ok {
		finalOutput = st.Output
	}

	for iteration := 0; iteration < maxLayerIterations; iteration++ {
		if runCtx.Err() != nil {
			err := types.NewError(types.ErrTimeout, "execution deadline exceeded after %d layers", iteration)
			return e.failureResult(err, execCtx, startTime)
		}

		layer := readyBlocks(execCtx)
		if len(layer) == 0 {
			break
		}

		layerCtx, layerSpan := obslog.StartLayer(runCtx, iteration, len(layer))
		out, err := e.runLayer(layerCtx, layer, execCtx)
		layerSpan.End()
		if err != nil {
			if runCtx.Err() != nil {
				err = types.WrapError(types.ErrTimeout, err, "execution deadline exceeded during layer %d", iteration)
			}
			return e.failureResult(err, execCtx, startTime)
		}
		if out != nil {
			finalOutput = out
		}

		for _, b := range layer {
			execCtx.MarkExecuted(b.ID)
			pathtracker.UpdateExecutionPaths(execCtx, b.ID)
		}

		if loopmanager.ProcessLoopIterations(execCtx) {
			break
		}
	}

	execCtx.Metadata.EndTime = time.Now().UTC().Format(time.RFC3339)
	return &ExecutionResult{
		Success: true,
		Output:  finalOutput,
		Logs:    execCtx.BlockLogs,
		Metadata: ExecutionMetadata{
			DurationMs: time.Since(startTime).Milliseconds(),
			StartTime:  execCtx.Metadata.StartTime,
			EndTime:    execCtx.Metadata.EndTime,
		},
	}
}

// runLayer executes every ready block concurrently, per spec.md §5: all
// blocks in a layer are independent and the executor waits for every one
// before computing the next layer.
func (e *Executor) runLayer(ctx context.Context, layer []*types.Block, execCtx *types.ExecutionContext) (types.Output, error) {
	g, gCtx := errgroup.WithContext(ctx)

	outputs := make([]types.Output, len(layer))
	for i, b := range layer {
		i, b := i, b
		g.Go(func() error {
			if e.limiter != nil {
				if err := e.limiter.Wait(gCtx); err != nil {
					return types.WrapError(types.ErrTimeout, err, "waiting for execution rate limiter")
				}
			}
			out, err := e.executeBlock(gCtx, b, execCtx)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var last types.Output
	for _, out := range outputs {
		if out != nil {
			last = out
		}
	}
	return last, nil
}

// executeBlock runs the per-block lifecycle of spec.md §4.5's "Per-block
// execution" subsection.
func (e *Executor) executeBlock(ctx context.Context, block *types.Block, execCtx *types.ExecutionContext) (types.Output, error) {
	blockCtx, span := obslog.StartBlock(ctx, block.ID, block.Kind())
	defer span.End()

	log := types.BlockLog{
		BlockID:   block.ID,
		BlockName: block.Metadata.Name,
		BlockType: block.Kind(),
		StartedAt: time.Now(),
	}

	finish := func(out types.Output, execErr error) (types.Output, error) {
		log.EndedAt = time.Now()
		log.DurationMs = log.EndedAt.Sub(log.StartedAt).Milliseconds()
		if execErr != nil {
			log.Success = false
			log.Error = execErr.Error()
		} else {
			log.Success = true
			log.Output = out
		}
		execCtx.AppendLog(log)
		e.logConsole(types.ConsoleEvent{
			WorkflowID: execCtx.WorkflowID,
			Timestamp:  log.EndedAt.UTC().Format(time.RFC3339Nano),
			Log:        log,
		})
		return out, execErr
	}

	if !block.IsEnabled() {
		return finish(nil, types.NewError(types.ErrDisabledBlockExecuted, "block %q is disabled", block.ID))
	}

	inputs, err := e.resolver.ResolveInputs(block, execCtx)
	if err != nil {
		return finish(nil, err)
	}

	raw, err := e.dispatcher.Dispatch(blockCtx, block, inputs, execCtx)
	if err != nil {
		return finish(nil, err)
	}

	out := normalize.Normalize(block.Kind(), raw)
	execCtx.SetBlockState(block.ID, &types.BlockState{
		Output:        out,
		Executed:      true,
		ExecutionTime: time.Since(log.StartedAt),
	})

	return finish(out, nil)
}

func (e *Executor) newExecutionContext(workflowID string) (*types.ExecutionContext, error) {
	execCtx := types.NewExecutionContext(workflowID, e.workflow, e.index, e.environmentVariables)
	execCtx.Metadata.StartTime = time.Now().UTC().Format(time.RFC3339)
	return execCtx, nil
}

func (e *Executor) starterID() string {
	b, ok := e.index.Starter()
	if !ok {
		return ""
	}
	return b.ID
}

// seedInitialState implements spec.md §4.5's "Initial context" subsection.
func (e *Executor) seedInitialState(execCtx *types.ExecutionContext) {
	for id, out := range e.initialBlockStates {
		execCtx.SetBlockState(id, &types.BlockState{Output: out, Executed: false})
	}

	starter, ok := e.index.Starter()
	if !ok {
		return
	}

	execCtx.SetBlockState(starter.ID, &types.BlockState{
		Output:        types.Output{"response": map[string]interface{}{"result": true}},
		Executed:      true,
		ExecutionTime: 0,
	})
	execCtx.MarkExecuted(starter.ID)

	for _, succ := range e.index.Successors(starter.ID) {
		execCtx.AddToActivePath(succ)
	}
}

func (e *Executor) failureResult(err error, execCtx *types.ExecutionContext, startTime time.Time) *ExecutionResult {
	var logs []types.BlockLog
	var finalOutput types.Output
	startISO := startTime.UTC().Format(time.RFC3339)
	if execCtx != nil {
		logs = execCtx.BlockLogs
		startISO = execCtx.Metadata.StartTime
	}

	endTime := time.Now()
	return &ExecutionResult{
		Success: false,
		Output:  finalOutput,
		Error:   err.Error(),
		Logs:    logs,
		Metadata: ExecutionMetadata{
			DurationMs: time.Since(startTime).Milliseconds(),
			StartTime:  startISO,
			EndTime:    endTime.UTC().Format(time.RFC3339),
		},
	}
}
