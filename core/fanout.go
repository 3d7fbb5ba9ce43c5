package core

import (
	"context"

	"github.com/huangsam/tschart/schema"
	"golang.org/x/sync/errgroup"
)

// seriesCall is one sibling evaluation of a spec under its own context.
type seriesCall struct {
	ec   EvaluationContext
	spec any
}

// evaluateAll evaluates sibling specs concurrently and joins them. Results
// follow the order of calls; the first error cancels the remaining calls.
func evaluateAll(ctx context.Context, calls ...seriesCall) ([]schema.Result, error) {
	results := make([]schema.Result, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			r, err := call.ec.EvaluateSeriesFunction(gctx, call.spec)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluateArgs evaluates several arguments of one call under the same context.
func evaluateArgs(ctx context.Context, ec EvaluationContext, specs ...any) ([]schema.Result, error) {
	calls := make([]seriesCall, len(specs))
	for i, spec := range specs {
		calls[i] = seriesCall{ec: ec, spec: spec}
	}
	return evaluateAll(ctx, calls...)
}

// mapConcurrently runs fn for every item and collects the outputs in item order.
func mapConcurrently[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
