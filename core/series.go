package core

import (
	"context"
	"math"

	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/schema"
)

func literal(_ context.Context, _ EvaluationContext, args map[string]any) (schema.Result, error) {
	if args == nil {
		return schema.NullResult(), nil
	}
	return schema.BasicResult(args["data"]), nil
}

// normalizeTimeSpan returns the last value of a points time span or the basic
// value itself, falling back to 1 when it is not a positive finite number.
func normalizeTimeSpan(r schema.Result) float64 {
	var candidate any
	if r.IsPoints() {
		if len(r.Points) == 0 {
			return 1
		}
		candidate = r.Points[len(r.Points)-1].Value
	} else {
		candidate = r.Data
	}
	if f, ok := schema.ToFloat(candidate); ok && f > 0 {
		return f
	}
	return 1
}

// finiteOrNil wraps v, mapping NaN and infinities to nil.
func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return schema.Float(v)
}

func timeDerivative(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error) {
	inputSpec, ok := args["inputDataProvider"]
	if !ok || inputSpec == nil {
		return schema.NullResult(), nil
	}

	// One extra point of lookback restores the requested width after differencing.
	lookback := ec.WithOverrides(WithPointsCount(ec.PointsCount + 1))
	results, err := evaluateAll(ctx,
		seriesCall{ec: lookback, spec: inputSpec},
		seriesCall{ec: ec, spec: args["timeSpanProvider"]},
	)
	if err != nil {
		return schema.NullResult(), err
	}
	input, timeSpan := results[0], normalizeTimeSpan(results[1])

	if input.IsPoints() {
		points := input.Points
		if len(points) < 2 {
			return schema.PointsResult(nil), nil
		}
		out := make([]schema.Point, len(points)-1)
		for i := range out {
			prev, curr := points[i], points[i+1]
			out[i] = curr.WithValue(pointDerivative(prev, curr, timeSpan))
		}
		return schema.PointsResult(out), nil
	}

	values, isArray := schema.AsSlice(input.Data)
	if !isArray {
		return schema.NullResult(), nil
	}
	out := make([]any, max(len(values)-1, 0))
	for i := range out {
		prev, okPrev := schema.ToFloat(values[i])
		curr, okCurr := schema.ToFloat(values[i+1])
		if !okPrev || !okCurr || ec.TimeResolution <= 0 {
			continue
		}
		if v := finiteOrNil((curr - prev) / float64(ec.TimeResolution) * timeSpan); v != nil {
			out[i] = *v
		}
	}
	return schema.BasicResult(out), nil
}

// pointDerivative differentiates one adjacent pair of points. A null previous
// point on the oldest edge counts as zero unless the current point is fake, so
// the first real value after the start of history is measured from zero.
func pointDerivative(prev, curr schema.Point, timeSpan float64) *float64 {
	if !curr.HasValue() {
		return nil
	}
	var prevValue float64
	switch {
	case prev.HasValue():
		prevValue = *prev.Value
	case prev.Value == nil && prev.Oldest && !curr.Fake:
		prevValue = 0
	default:
		return nil
	}
	return finiteOrNil((*curr.Value - prevValue) / float64(curr.MeasurementDuration()) * timeSpan)
}

func rate(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error) {
	inputSpec, ok := args["inputDataProvider"]
	if !ok || inputSpec == nil {
		return schema.NullResult(), nil
	}

	results, err := evaluateArgs(ctx, ec, inputSpec, args["timeSpanProvider"])
	if err != nil {
		return schema.NullResult(), err
	}
	input, timeSpan := results[0], normalizeTimeSpan(results[1])

	if input.IsPoints() {
		out := make([]schema.Point, len(input.Points))
		for i, p := range input.Points {
			var v *float64
			if p.HasValue() {
				v = finiteOrNil(*p.Value / float64(p.MeasurementDuration()) * timeSpan)
			}
			out[i] = p.WithValue(v)
		}
		return schema.PointsResult(out), nil
	}

	values, isArray := input.Values()
	out := make([]any, len(values))
	for i, value := range values {
		f, ok := schema.ToFloat(value)
		if !ok || ec.TimeResolution <= 0 {
			continue
		}
		if v := finiteOrNil(f / float64(ec.TimeResolution) * timeSpan); v != nil {
			out[i] = *v
		}
	}
	if isArray {
		return schema.BasicResult(out), nil
	}
	return schema.BasicResult(out[0]), nil
}

func replaceEmptySeries(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error) {
	dataSpec, hasData := args["data"]
	fallbackSpec, hasFallback := args["fallbackValue"]
	if !hasData || !hasFallback {
		return schema.NullResult(), nil
	}

	results, err := evaluateArgs(ctx, ec, dataSpec, fallbackSpec, args["strategy"])
	if err != nil {
		return schema.NullResult(), err
	}
	data, fallback := results[0], results[1]
	strategy := algo.NormalizeStrategy(results[2].Data)

	var fallbackValues any
	switch {
	case fallback.IsPoints() && data.IsPoints():
		fallbackValues = alignFallback(data.Points, fallback.Points)
	case fallback.IsPoints():
		fallbackValues = schema.PointValues(fallback.Points)
	default:
		fallbackValues = fallback.Data
	}

	if data.IsPoints() {
		replaced, ok := algo.ReplaceEmpty(schema.PointValues(data.Points), strategy, fallbackValues).([]any)
		if !ok {
			return schema.NullResult(), nil
		}
		return schema.PointsResult(schema.MergePointValues(data.Points, replaced)), nil
	}
	return schema.BasicResult(algo.ReplaceEmpty(data.Data, strategy, fallbackValues)), nil
}

// alignFallback picks, for every data point, the fallback point value with the
// same timestamp or nil. Both inputs are sorted ascending.
func alignFallback(data, fallback []schema.Point) []any {
	out := make([]any, len(data))
	j := 0
	for i, p := range data {
		for j < len(fallback) && fallback[j].Timestamp < p.Timestamp {
			j++
		}
		if j < len(fallback) && fallback[j].Timestamp == p.Timestamp && fallback[j].Value != nil {
			out[i] = *fallback[j].Value
		}
	}
	return out
}

// multiplySeries multiplies operands element-wise. Points operands are
// reconciled onto one timeline first and the product keeps the timing and
// flags of the first points operand.
func multiplySeries(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error) {
	specs, ok := schema.AsSlice(args["operands"])
	if !ok {
		return schema.NullResult(), nil
	}
	results, err := evaluateArgs(ctx, ec, specs...)
	if err != nil {
		return schema.NullResult(), err
	}

	var pointsIdx []int
	var series [][]schema.Point
	for i, r := range results {
		if r.IsPoints() {
			pointsIdx = append(pointsIdx, i)
			series = append(series, r.Points)
		}
	}
	reconciled := algo.ReconcileTiming(series, ec.TimeResolution)

	operands := make([]any, len(results))
	for i, r := range results {
		operands[i] = r.Data
	}
	for k, i := range pointsIdx {
		operands[i] = schema.PointValues(reconciled[k])
	}

	product := algo.Multiply(operands)
	if len(pointsIdx) > 0 {
		if values, ok := product.([]any); ok {
			return schema.PointsResult(schema.MergePointValues(reconciled[0], values)), nil
		}
	}
	return schema.BasicResult(product), nil
}

func getDynamicSeriesConfig(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error) {
	return configProperty(ctx, ec, ec.DynamicSeriesConfig, args)
}

func getDynamicSeriesGroupConfig(ctx context.Context, ec EvaluationContext, args map[string]any) (schema.Result, error) {
	return configProperty(ctx, ec, ec.DynamicSeriesGroupConfig, args)
}

// configProperty reads propertyName from an injected dynamic config. Without
// a property name the whole config is returned.
func configProperty(ctx context.Context, ec EvaluationContext, config any, args map[string]any) (schema.Result, error) {
	spec, ok := args["propertyName"]
	if !ok {
		return schema.BasicResult(config), nil
	}
	name, err := ec.EvaluateSeriesFunction(ctx, spec)
	if err != nil {
		return schema.NullResult(), err
	}
	property, isString := name.Data.(string)
	fields, isMap := schema.AsMap(config)
	if !isString || !isMap {
		return schema.NullResult(), nil
	}
	return schema.BasicResult(fields[property]), nil
}
