package iostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedSourceFetchSeries(t *testing.T) {
	ctx := context.Background()
	anchored := schema.SeriesFetchParams{TimeResolution: 5, PointsCount: 2, LastPointTimestamp: schema.Int64(10)}
	sourceParams := map[string]any{SeriesIDParam: "cpu"}
	fetched := []schema.Point{schema.NewPoint(10, schema.Float(1)), schema.NewPoint(5, nil)}
	encoded, err := json.Marshal(fetched)
	require.NoError(t, err)
	now := time.Unix(10_000, 0)

	tests := []struct {
		name       string
		params     schema.SeriesFetchParams
		setupCache func(cache *MockCacheStore)
		wantFetch  bool
	}{
		{
			name:   "miss fetches and stores",
			params: anchored,
			setupCache: func(cache *MockCacheStore) {
				cache.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
				cache.On("Set", mock.Anything, encoded, currentCacheVersion, now.Unix()).Return(nil)
			},
			wantFetch: true,
		},
		{
			name:   "fresh hit skips the source",
			params: anchored,
			setupCache: func(cache *MockCacheStore) {
				cache.On("Get", mock.Anything).Return(encoded, currentCacheVersion, now.Unix()-60, nil)
			},
		},
		{
			name:   "stale hit refetches",
			params: anchored,
			setupCache: func(cache *MockCacheStore) {
				cache.On("Get", mock.Anything).Return(encoded, currentCacheVersion, now.Add(-2*time.Hour).Unix(), nil)
				cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			wantFetch: true,
		},
		{
			name:   "old version refetches",
			params: anchored,
			setupCache: func(cache *MockCacheStore) {
				cache.On("Get", mock.Anything).Return(encoded, currentCacheVersion+1, now.Unix(), nil)
				cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			wantFetch: true,
		},
		{
			name:       "newest window bypasses the cache",
			params:     schema.SeriesFetchParams{TimeResolution: 5, PointsCount: 2},
			setupCache: func(*MockCacheStore) {},
			wantFetch:  true,
		},
		{
			name:       "anchored window at the newest data bypasses the cache",
			params:     schema.SeriesFetchParams{TimeResolution: 5, PointsCount: 2, LastPointTimestamp: schema.Int64(10), ReachesNewest: true},
			setupCache: func(*MockCacheStore) {},
			wantFetch:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &contract.MockSeriesFetcher{}
			if tt.wantFetch {
				inner.On("FetchSeries", mock.Anything, tt.params, sourceParams).Return(fetched, nil)
			}
			cache := &MockCacheStore{}
			tt.setupCache(cache)

			source := NewCachedSource("store", inner, cache, time.Hour)
			source.now = func() time.Time { return now }

			points, err := source.FetchSeries(ctx, tt.params, sourceParams)
			require.NoError(t, err)
			assert.Equal(t, fetched, points)
			inner.AssertExpectations(t)
			cache.AssertExpectations(t)
			if !tt.wantFetch {
				inner.AssertNotCalled(t, "FetchSeries", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCachedSourceErrorsAreNotCached(t *testing.T) {
	errDown := errors.New("down")
	inner := &contract.MockSeriesFetcher{}
	inner.On("FetchSeries", mock.Anything, mock.Anything, mock.Anything).Return(nil, errDown)
	cache := &MockCacheStore{}
	cache.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)

	source := NewCachedSource("store", inner, cache, 0)
	_, err := source.FetchSeries(context.Background(), schema.SeriesFetchParams{TimeResolution: 5, PointsCount: 1, LastPointTimestamp: schema.Int64(5)}, nil)
	assert.ErrorIs(t, err, errDown)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedSourceDelegatesConfigs(t *testing.T) {
	ctx := context.Background()
	inner := &contract.MockDataSource{}
	inner.On("FetchDynamicSeriesConfigs", mock.Anything, mock.Anything).Return([]any{"a"}, nil)
	inner.On("FetchDynamicSeriesGroupConfigs", mock.Anything, mock.Anything).Return([]any{"g"}, nil)

	source := NewCachedSource("store", inner, nil, 0)
	configs, err := source.FetchDynamicSeriesConfigs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, configs)
	groups, err := source.FetchDynamicSeriesGroupConfigs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"g"}, groups)

	seriesOnly := NewCachedSource("store", &contract.MockSeriesFetcher{}, nil, 0)
	configs, err = seriesOnly.FetchDynamicSeriesConfigs(ctx, nil)
	assert.NoError(t, err)
	assert.Nil(t, configs)
}
