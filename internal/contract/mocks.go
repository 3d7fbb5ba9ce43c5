package contract

import (
	"context"

	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock data source implementing every capability.
type MockDataSource struct {
	mock.Mock
}

var (
	_ SeriesFetcher                   = &MockDataSource{} // Compile-time check
	_ DynamicSeriesConfigFetcher      = &MockDataSource{}
	_ DynamicSeriesGroupConfigFetcher = &MockDataSource{}
)

// FetchSeries implements the SeriesFetcher interface.
func (m *MockDataSource) FetchSeries(ctx context.Context, params schema.SeriesFetchParams, sourceParams map[string]any) ([]schema.Point, error) {
	ret := m.Called(ctx, params, sourceParams)
	points, _ := ret.Get(0).([]schema.Point)
	return points, ret.Error(1)
}

// FetchDynamicSeriesConfigs implements the DynamicSeriesConfigFetcher interface.
func (m *MockDataSource) FetchDynamicSeriesConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error) {
	ret := m.Called(ctx, sourceParams)
	configs, _ := ret.Get(0).([]any)
	return configs, ret.Error(1)
}

// FetchDynamicSeriesGroupConfigs implements the DynamicSeriesGroupConfigFetcher interface.
func (m *MockDataSource) FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error) {
	ret := m.Called(ctx, sourceParams)
	configs, _ := ret.Get(0).([]any)
	return configs, ret.Error(1)
}

// MockSeriesFetcher only knows how to fetch series.
type MockSeriesFetcher struct {
	mock.Mock
}

var _ SeriesFetcher = &MockSeriesFetcher{} // Compile-time check

// FetchSeries implements the SeriesFetcher interface.
func (m *MockSeriesFetcher) FetchSeries(ctx context.Context, params schema.SeriesFetchParams, sourceParams map[string]any) ([]schema.Point, error) {
	ret := m.Called(ctx, params, sourceParams)
	points, _ := ret.Get(0).([]schema.Point)
	return points, ret.Error(1)
}
