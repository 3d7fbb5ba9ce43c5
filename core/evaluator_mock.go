package core

import (
	"context"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/mock"
)

// MockEvaluator is a mock implementation of the Evaluator interface.
type MockEvaluator struct {
	mock.Mock
}

var _ Evaluator = &MockEvaluator{} // Compile-time check

// EvaluateSeriesFunction implements the Evaluator interface.
func (m *MockEvaluator) EvaluateSeriesFunction(ctx context.Context, ec EvaluationContext, spec any) (schema.Result, error) {
	ret := m.Called(ctx, ec, spec)
	result, _ := ret.Get(0).(schema.Result)
	return result, ret.Error(1)
}

// EvaluateTransformFunction implements the Evaluator interface.
func (m *MockEvaluator) EvaluateTransformFunction(ec EvaluationContext, spec any) any {
	ret := m.Called(ec, spec)
	return ret.Get(0)
}

// EvaluateSeries implements the Evaluator interface.
func (m *MockEvaluator) EvaluateSeries(ctx context.Context, ec EvaluationContext, template map[string]any) (schema.SeriesState, error) {
	ret := m.Called(ctx, ec, template)
	state, _ := ret.Get(0).(schema.SeriesState)
	return state, ret.Error(1)
}

// EvaluateSeriesGroup implements the Evaluator interface.
func (m *MockEvaluator) EvaluateSeriesGroup(ctx context.Context, ec EvaluationContext, template map[string]any) (schema.SeriesGroupState, error) {
	ret := m.Called(ctx, ec, template)
	state, _ := ret.Get(0).(schema.SeriesGroupState)
	return state, ret.Error(1)
}
