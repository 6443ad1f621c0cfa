package executor

import (
	"golang.org/x/time/rate"

	"github.com/flowforge/workflowengine/internal/types"
)

// Option configures an Executor at construction time. Following the
// teacher's functional-options convention (see cmd/workflow-runner/sdk.SDK's
// constructor), every collaborator and tunable is optional and defaults to
// a safe, inert value so Executor works out of the box against a workflow
// that never calls a provider or tool.
type Option func(*Executor)

// WithInitialBlockStates pre-seeds blockStates before the starter runs, per
// spec.md §4.5.
func WithInitialBlockStates(states map[string]types.Output) Option {
	return func(e *Executor) {
		e.initialBlockStates = states
	}
}

// WithEnvironmentVariables supplies the {{ENV}} substitution source.
func WithEnvironmentVariables(env map[string]string) Option {
	return func(e *Executor) {
		e.environmentVariables = env
	}
}

// WithProviderRequest installs the provider-request collaborator used by
// agent/router/evaluator handlers.
func WithProviderRequest(fn types.ProviderRequestFunc) Option {
	return func(e *Executor) {
		e.collab.ProviderRequest = fn
	}
}

// WithGetTool installs the tool-lookup collaborator.
func WithGetTool(fn types.GetToolFunc) Option {
	return func(e *Executor) {
		e.collab.GetTool = fn
	}
}

// WithToolExecute installs the tool-execution collaborator.
func WithToolExecute(fn types.ToolExecuteFunc) Option {
	return func(e *Executor) {
		e.collab.ToolExecute = fn
	}
}

// WithLogConsole installs the fire-and-forget execution event sink.
func WithLogConsole(fn types.LogConsoleFunc) Option {
	return func(e *Executor) {
		e.logConsole = fn
	}
}

// WithRateLimiter throttles block starts across the whole run: every block
// of every layer waits for a token from limiter before it executes. It
// limits the rate at which blocks start, not how many are in flight at
// once. A nil limiter (the default) applies no limit.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(e *Executor) {
		e.limiter = limiter
	}
}
