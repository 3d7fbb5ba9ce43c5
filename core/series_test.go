package core

import (
	"context"
	"testing"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pt(ts int64, v float64, opts ...schema.PointOption) schema.Point {
	return schema.NewPoint(ts, schema.Float(v), opts...)
}

func nullPt(ts int64, opts ...schema.PointOption) schema.Point {
	return schema.NewPoint(ts, nil, opts...)
}

func evalSeries(t *testing.T, ec EvaluationContext, spec any) schema.Result {
	t.Helper()
	result, err := ec.EvaluateSeriesFunction(context.Background(), spec)
	require.NoError(t, err)
	return result
}

// TestLiteral tests the literal series function.
func TestLiteral(t *testing.T) {
	engine, _ := newTestEngine()
	ec := engine.NewContext()

	assert.Equal(t, schema.NullResult(), evalSeries(t, ec, schema.Call(schema.LiteralFunction, nil)))
	nested := schema.Call(schema.LiteralFunction, map[string]any{"data": 1})
	// Literal data is returned without evaluation.
	assert.Equal(t, schema.BasicResult(nested), evalSeries(t, ec, schema.Call(schema.LiteralFunction, map[string]any{"data": nested})))
}

// TestTimeDerivativePoints tests differencing of points results.
func TestTimeDerivativePoints(t *testing.T) {
	engine, _ := newTestEngine()

	tests := []struct {
		name       string
		resolution int64
		input      []schema.Point
		timeSpan   any
		expected   []schema.Point
	}{
		{
			name:       "regular points",
			resolution: 5,
			input:      []schema.Point{pt(0, 100), pt(5, 200), pt(10, 50)},
			expected:   []schema.Point{pt(5, 20), pt(10, -30)},
		},
		{
			name:       "partial newest point",
			resolution: 5,
			input: []schema.Point{
				pt(15, 50),
				pt(20, 150, schema.AsNewest(), schema.WithMeasurementWindow(nil, schema.Int64(21))),
			},
			expected: []schema.Point{
				pt(20, 50, schema.AsNewest(), schema.WithMeasurementWindow(nil, schema.Int64(21))),
			},
		},
		{
			name:       "day resolution with time span",
			resolution: 86400,
			input: []schema.Point{
				pt(0, 8640000, schema.WithPointDuration(86400)),
				pt(86400, 2160000, schema.WithPointDuration(86400)),
			},
			timeSpan: 30.0,
			expected: []schema.Point{pt(86400, -2250, schema.WithPointDuration(86400))},
		},
		{
			name:       "fake oldest points",
			resolution: 5,
			input: []schema.Point{
				nullPt(0, schema.AsOldest(), schema.AsFake()),
				nullPt(5, schema.AsOldest(), schema.AsFake()),
				pt(10, 100, schema.AsOldest()),
				pt(15, 50),
				pt(20, 150),
			},
			expected: []schema.Point{
				nullPt(5, schema.AsOldest(), schema.AsFake()),
				pt(10, 20, schema.AsOldest()),
				pt(15, -10),
				pt(20, 20),
			},
		},
		{
			name:       "single point",
			resolution: 5,
			input:      []schema.Point{pt(0, 1)},
			expected:   []schema.Point{},
		},
		{
			name:       "time span from points uses last value",
			resolution: 5,
			input:      []schema.Point{pt(0, 0), pt(5, 10)},
			timeSpan:   schema.PointsResult([]schema.Point{pt(0, 100), pt(5, 60)}),
			expected:   []schema.Point{pt(5, 120)},
		},
		{
			name:       "non-positive time span",
			resolution: 5,
			input:      []schema.Point{pt(0, 0), pt(5, 10)},
			timeSpan:   -3.0,
			expected:   []schema.Point{pt(5, 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := engine.NewContext(WithTimeResolution(tt.resolution), WithPointsCount(len(tt.expected)))
			args := map[string]any{"inputDataProvider": schema.PointsResult(tt.input)}
			if tt.timeSpan != nil {
				args["timeSpanProvider"] = tt.timeSpan
			}
			result := evalSeries(t, ec, schema.Call(schema.TimeDerivativeFunction, args))
			assert.Equal(t, schema.PointsResult(tt.expected), result)
		})
	}
}

// TestTimeDerivativeLookback tests that the input is asked for one extra point.
func TestTimeDerivativeLookback(t *testing.T) {
	mockEval := &MockEvaluator{}
	ec := NewEngine().NewContext(WithPointsCount(3), WithTimeResolution(5)).WithOverrides(WithEvaluator(mockEval))
	ctx := context.Background()

	input := schema.Call(schema.LiteralFunction, map[string]any{"data": []any{1.0, 2.0}})
	mockEval.On("EvaluateSeriesFunction", mock.Anything, mock.MatchedBy(func(ec EvaluationContext) bool {
		return ec.PointsCount == 4
	}), input).Return(schema.BasicResult([]any{1.0, 2.0}), nil)
	mockEval.On("EvaluateSeriesFunction", mock.Anything, mock.MatchedBy(func(ec EvaluationContext) bool {
		return ec.PointsCount == 3
	}), nil).Return(schema.NullResult(), nil)

	result, err := timeDerivative(ctx, ec, map[string]any{"inputDataProvider": input})
	require.NoError(t, err)
	assert.Equal(t, schema.BasicResult([]any{0.2}), result)
	mockEval.AssertExpectations(t)
}

// TestTimeDerivativeBasic tests differencing of basic results.
func TestTimeDerivativeBasic(t *testing.T) {
	engine, _ := newTestEngine()
	ec := engine.NewContext(WithTimeResolution(10), WithPointsCount(2))

	tests := []struct {
		name     string
		input    any
		expected schema.Result
	}{
		{"array", []any{0.0, 10.0, nil, 40.0}, schema.BasicResult([]any{1.0, nil, nil})},
		{"empty array", []any{}, schema.BasicResult([]any{})},
		{"scalar", 5.0, schema.NullResult()},
		{"null", nil, schema.NullResult()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evalSeries(t, ec, schema.Call(schema.TimeDerivativeFunction, map[string]any{"inputDataProvider": tt.input}))
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestRate tests per-time-span rates.
func TestRate(t *testing.T) {
	engine, _ := newTestEngine()
	ec := engine.NewContext(WithTimeResolution(5), WithPointsCount(2))

	tests := []struct {
		name     string
		args     map[string]any
		expected schema.Result
	}{
		{
			name: "points per minute",
			args: map[string]any{
				"inputDataProvider": schema.PointsResult([]schema.Point{pt(0, 10), nullPt(5), pt(10, 20)}),
				"timeSpanProvider":  60.0,
			},
			expected: schema.PointsResult([]schema.Point{pt(0, 120), nullPt(5), pt(10, 240)}),
		},
		{
			name:     "scalar",
			args:     map[string]any{"inputDataProvider": 10.0},
			expected: schema.BasicResult(2.0),
		},
		{
			name:     "array",
			args:     map[string]any{"inputDataProvider": []any{10.0, nil}, "timeSpanProvider": 10.0},
			expected: schema.BasicResult([]any{20.0, nil}),
		},
		{
			name:     "missing input",
			args:     map[string]any{},
			expected: schema.NullResult(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalSeries(t, ec, schema.Call(schema.RateFunction, tt.args)))
		})
	}
}

// TestReplaceEmptySeries tests replaceEmpty over series function results.
func TestReplaceEmptySeries(t *testing.T) {
	engine, _ := newTestEngine()
	ec := engine.NewContext(WithTimeResolution(5))

	tests := []struct {
		name     string
		args     map[string]any
		expected schema.Result
	}{
		{
			name: "points with scalar fallback",
			args: map[string]any{
				"data":          schema.PointsResult([]schema.Point{nullPt(0, schema.AsFake()), pt(5, 1)}),
				"fallbackValue": 0.0,
			},
			expected: schema.PointsResult([]schema.Point{pt(0, 0, schema.AsFake()), pt(5, 1)}),
		},
		{
			name: "points with points fallback aligned by timestamp",
			args: map[string]any{
				"data":          schema.PointsResult([]schema.Point{nullPt(0), pt(5, 1), nullPt(10)}),
				"fallbackValue": schema.PointsResult([]schema.Point{pt(5, 9), pt(10, 7)}),
			},
			expected: schema.PointsResult([]schema.Point{nullPt(0), pt(5, 1), pt(10, 7)}),
		},
		{
			name: "usePrevious",
			args: map[string]any{
				"data":          []any{nil, 3.0, nil},
				"fallbackValue": -1.0,
				"strategy":      "usePrevious",
			},
			expected: schema.BasicResult([]any{-1.0, 3.0, 3.0}),
		},
		{
			name: "basic data with points fallback",
			args: map[string]any{
				"data":          []any{nil, 2.0},
				"fallbackValue": schema.PointsResult([]schema.Point{pt(0, 4), pt(5, 5)}),
			},
			expected: schema.BasicResult([]any{4.0, 2.0}),
		},
		{
			name:     "missing fallback",
			args:     map[string]any{"data": []any{nil}},
			expected: schema.NullResult(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalSeries(t, ec, schema.Call(schema.ReplaceEmptyFunction, tt.args)))
		})
	}
}

// TestMultiplySeries tests multiplication of mixed operands.
func TestMultiplySeries(t *testing.T) {
	engine, _ := newTestEngine()
	ec := engine.NewContext(WithTimeResolution(5))

	tests := []struct {
		name     string
		operands any
		expected schema.Result
	}{
		{
			name:     "points by scalar",
			operands: []any{schema.PointsResult([]schema.Point{pt(0, 1), pt(5, 2)}), 10.0},
			expected: schema.PointsResult([]schema.Point{pt(0, 10), pt(5, 20)}),
		},
		{
			name: "points reconciled first",
			operands: []any{
				schema.PointsResult([]schema.Point{pt(0, 1), pt(5, 2)}),
				schema.PointsResult([]schema.Point{pt(5, 3)}),
			},
			expected: schema.PointsResult([]schema.Point{nullPt(0), pt(5, 6)}),
		},
		{
			name:     "scalars",
			operands: []any{2.0, 3.0},
			expected: schema.BasicResult(6.0),
		},
		{
			name:     "missing operands",
			operands: nil,
			expected: schema.NullResult(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.operands != nil {
				args["operands"] = tt.operands
			}
			assert.Equal(t, tt.expected, evalSeries(t, ec, schema.Call(schema.MultiplyFunction, args)))
		})
	}
}

// TestGetDynamicSeriesConfig tests reads from injected dynamic configs.
func TestGetDynamicSeriesConfig(t *testing.T) {
	engine, _ := newTestEngine()
	config := map[string]any{"id": "disk-1", "color": "#fff"}
	ec := engine.NewContext(WithDynamicSeriesConfig(config), WithDynamicSeriesGroupConfig("not an object"))

	byName := func(fn schema.FunctionName, name any) schema.Result {
		return evalSeries(t, ec, schema.Call(fn, map[string]any{"propertyName": name}))
	}

	assert.Equal(t, schema.BasicResult("disk-1"), byName(schema.GetDynamicSeriesConfigFunction, "id"))
	assert.Equal(t, schema.BasicResult(nil), byName(schema.GetDynamicSeriesConfigFunction, "missing"))
	assert.Equal(t, schema.NullResult(), byName(schema.GetDynamicSeriesConfigFunction, 7))
	assert.Equal(t, schema.NullResult(), byName(schema.GetDynamicSeriesGroupConfigFunction, "id"))
	assert.Equal(t, schema.BasicResult(config), evalSeries(t, ec, schema.Call(schema.GetDynamicSeriesConfigFunction, nil)))
	assert.Equal(t, schema.BasicResult("not an object"), evalSeries(t, ec, schema.Call("getDynamicSeriesGroupConfigData", nil)))
}
