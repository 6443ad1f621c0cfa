package handlers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// exprEvaluator compiles and caches CEL programs for condition expressions,
// generalizing the teacher's condition.Evaluator (cmd/workflow-runner/
// condition/evaluator.go), which caches by expression text alone against a
// fixed {output, ctx} variable schema. Here the evaluation mapping's key
// set is workflow-defined (the source block's response fields plus its
// normalized name), so the cache key is the expression paired with the
// sorted set of variable names actually in scope for that evaluation.
type exprEvaluator struct {
	mu    sync.RWMutex
	cache map[string]cel.Program
}

func newExprEvaluator() *exprEvaluator {
	return &exprEvaluator{cache: make(map[string]cel.Program)}
}

// Eval compiles (or reuses a cached compile of) expr against a CEL
// environment declaring one cel.DynType variable per key of vars, then
// evaluates it and requires a boolean result.
func (e *exprEvaluator) Eval(expr string, vars map[string]interface{}) (bool, error) {
	key := cacheKey(expr, vars)

	e.mu.RLock()
	prg, ok := e.cache[key]
	e.mu.RUnlock()

	if !ok {
		var err error
		prg, err = e.compile(expr, vars)
		if err != nil {
			return false, err
		}
		e.mu.Lock()
		e.cache[key] = prg
		e.mu.Unlock()
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("condition expression evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("condition expression did not evaluate to a boolean, got %T", out.Value())
	}
	return result, nil
}

func (e *exprEvaluator) compile(expr string, vars map[string]interface{}) (cel.Program, error) {
	opts := make([]cel.EnvOption, 0, len(vars))
	for name := range vars {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build condition expression environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("condition expression compile error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build condition expression program: %w", err)
	}
	return prg, nil
}

func cacheKey(expr string, vars map[string]interface{}) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return expr + "\x00" + strings.Join(names, ",")
}
