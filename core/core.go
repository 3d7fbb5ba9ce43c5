// Package core has core logic for evaluating chart definitions into chart data.
package core

import (
	"context"
	"fmt"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// Evaluator is the recursive interpreter injected into every evaluation context.
type Evaluator interface {
	EvaluateSeriesFunction(ctx context.Context, ec EvaluationContext, spec any) (schema.Result, error)
	EvaluateTransformFunction(ec EvaluationContext, spec any) any
	EvaluateSeries(ctx context.Context, ec EvaluationContext, template map[string]any) (schema.SeriesState, error)
	EvaluateSeriesGroup(ctx context.Context, ec EvaluationContext, template map[string]any) (schema.SeriesGroupState, error)
}

// WarnFunc receives configuration problems that degrade to null results.
type WarnFunc func(msg string, err error)

// Engine dispatches function specs to the series and transform registries.
type Engine struct {
	warn WarnFunc
}

var _ Evaluator = &Engine{} // Compile-time check

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWarnHook redirects configuration warnings. The default writes to stderr.
func WithWarnHook(fn WarnFunc) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.warn = fn
		}
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{warn: contract.LogWarn}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewContext creates an evaluation context bound to this engine.
func (e *Engine) NewContext(overrides ...Override) EvaluationContext {
	return EvaluationContext{evaluator: e}.WithOverrides(overrides...)
}

// EvaluateSeriesFunction evaluates a series spec. A Result is returned
// unchanged, any other plain value becomes a basic result, and call nodes are
// dispatched by name. Unknown names produce a basic null and a warning.
func (e *Engine) EvaluateSeriesFunction(ctx context.Context, ec EvaluationContext, spec any) (schema.Result, error) {
	switch r := spec.(type) {
	case schema.Result:
		return r, nil
	case *schema.Result:
		if r != nil {
			return *r, nil
		}
		return schema.NullResult(), nil
	}

	call, ok := schema.AsFunctionSpec(spec)
	if !ok {
		return schema.BasicResult(spec), nil
	}
	if err := ctx.Err(); err != nil {
		return schema.NullResult(), err
	}

	fn, ok := seriesFunctions[call.FunctionName.Canonical()]
	if !ok {
		e.warn("series function", fmt.Errorf("%w: %q", schema.ErrUnknownFunction, call.FunctionName))
		return schema.NullResult(), nil
	}
	return fn(ctx, e.bind(ec), call.FunctionArguments)
}

// EvaluateTransformFunction evaluates a transform spec. Plain values are
// returned as-is and unknown names produce nil and a warning.
func (e *Engine) EvaluateTransformFunction(ec EvaluationContext, spec any) any {
	call, ok := schema.AsFunctionSpec(spec)
	if !ok {
		return spec
	}

	fn, ok := transformFunctions[call.FunctionName.Canonical()]
	if !ok {
		e.warn("transform function", fmt.Errorf("%w: %q", schema.ErrUnknownFunction, call.FunctionName))
		return nil
	}
	return fn(e.bind(ec), call.FunctionArguments)
}

// bind makes sure nested calls made through ec come back to this engine.
func (e *Engine) bind(ec EvaluationContext) EvaluationContext {
	if ec.evaluator == nil {
		ec.evaluator = e
	}
	return ec
}
