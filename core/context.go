package core

import (
	"context"
	"errors"
	"maps"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// ErrNoEvaluator is returned when an entry point is invoked on a context that
// was not created by an Evaluator.
var ErrNoEvaluator = errors.New("evaluation context has no evaluator")

// EvaluationContext is the read-only parameter bag threaded through one
// evaluation request. It is a value type: functions that need different
// parameters derive a copy with WithOverrides.
type EvaluationContext struct {
	PointsCount          int
	TimeResolution       int64
	LastPointTimestamp   *int64
	NewestPointTimestamp *int64
	NewestEdgeTimestamp  *int64
	NowTimestamp         int64
	ExternalDataSources  map[string]contract.DataSource

	// ValueToSupply is returned by the supplyValue transform.
	ValueToSupply any

	// DynamicSeriesConfig and DynamicSeriesGroupConfig hold the instance a
	// dynamic builder is currently materializing.
	DynamicSeriesConfig      any
	DynamicSeriesGroupConfig any

	evaluator Evaluator
}

// Override changes one field of a derived context.
type Override func(*EvaluationContext)

// WithOverrides returns a copy of the context with the overrides applied.
func (ec EvaluationContext) WithOverrides(overrides ...Override) EvaluationContext {
	for _, override := range overrides {
		override(&ec)
	}
	return ec
}

// WithPointsCount sets the requested window width.
func WithPointsCount(n int) Override {
	return func(ec *EvaluationContext) { ec.PointsCount = n }
}

// WithTimeResolution sets the spacing between samples in seconds.
func WithTimeResolution(r int64) Override {
	return func(ec *EvaluationContext) { ec.TimeResolution = r }
}

// WithLastPointTimestamp anchors the window. Nil requests the newest window.
func WithLastPointTimestamp(ts *int64) Override {
	return func(ec *EvaluationContext) { ec.LastPointTimestamp = copyInt64(ts) }
}

// WithNewestPointTimestamp records the newest known point across resolutions.
func WithNewestPointTimestamp(ts *int64) Override {
	return func(ec *EvaluationContext) { ec.NewestPointTimestamp = copyInt64(ts) }
}

// WithNewestEdgeTimestamp records the last measurement time of the newest point.
func WithNewestEdgeTimestamp(ts *int64) Override {
	return func(ec *EvaluationContext) { ec.NewestEdgeTimestamp = copyInt64(ts) }
}

// WithNowTimestamp sets the current time in unix seconds.
func WithNowTimestamp(now int64) Override {
	return func(ec *EvaluationContext) { ec.NowTimestamp = now }
}

// WithDataSources replaces the registered external sources.
func WithDataSources(sources map[string]contract.DataSource) Override {
	return func(ec *EvaluationContext) { ec.ExternalDataSources = maps.Clone(sources) }
}

// WithValueToSupply sets the value returned by supplyValue.
func WithValueToSupply(v any) Override {
	return func(ec *EvaluationContext) { ec.ValueToSupply = v }
}

// WithDynamicSeriesConfig injects a dynamic series instance.
func WithDynamicSeriesConfig(config any) Override {
	return func(ec *EvaluationContext) { ec.DynamicSeriesConfig = config }
}

// WithDynamicSeriesGroupConfig injects a dynamic series group instance.
func WithDynamicSeriesGroupConfig(config any) Override {
	return func(ec *EvaluationContext) { ec.DynamicSeriesGroupConfig = config }
}

// WithEvaluator sets the evaluator used by the entry points.
func WithEvaluator(e Evaluator) Override {
	return func(ec *EvaluationContext) { ec.evaluator = e }
}

// EvaluateSeriesFunction evaluates a series spec with this context.
func (ec EvaluationContext) EvaluateSeriesFunction(ctx context.Context, spec any) (schema.Result, error) {
	if ec.evaluator == nil {
		return schema.NullResult(), ErrNoEvaluator
	}
	return ec.evaluator.EvaluateSeriesFunction(ctx, ec, spec)
}

// EvaluateTransformFunction evaluates a transform spec with this context.
// It panics on a context without an evaluator.
func (ec EvaluationContext) EvaluateTransformFunction(spec any) any {
	if ec.evaluator == nil {
		panic(ErrNoEvaluator)
	}
	return ec.evaluator.EvaluateTransformFunction(ec, spec)
}

// EvaluateSeries turns a series template into a series state.
func (ec EvaluationContext) EvaluateSeries(ctx context.Context, template map[string]any) (schema.SeriesState, error) {
	if ec.evaluator == nil {
		return schema.SeriesState{}, ErrNoEvaluator
	}
	return ec.evaluator.EvaluateSeries(ctx, ec, template)
}

// EvaluateSeriesGroup turns a series group template into a group state.
func (ec EvaluationContext) EvaluateSeriesGroup(ctx context.Context, template map[string]any) (schema.SeriesGroupState, error) {
	if ec.evaluator == nil {
		return schema.SeriesGroupState{}, ErrNoEvaluator
	}
	return ec.evaluator.EvaluateSeriesGroup(ctx, ec, template)
}

// DataSource returns the external source registered under name.
func (ec EvaluationContext) DataSource(name string) (contract.DataSource, bool) {
	if name == "" || ec.ExternalDataSources == nil {
		return nil, false
	}
	source, ok := ec.ExternalDataSources[name]
	return source, ok && source != nil
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	return schema.Int64(*v)
}
