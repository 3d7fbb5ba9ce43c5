// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/tschart/schema"
)

// DataSource is anything registered under a name in the evaluation context's
// external data sources. What a source can do is discovered by asserting it
// against the capability interfaces below; a source may implement any subset.
type DataSource any

// SeriesFetcher loads raw points for a window.
type SeriesFetcher interface {
	// FetchSeries returns points at or before params.LastPointTimestamp (newest
	// window when nil) in any order. It may return up to params.PointsCount points.
	FetchSeries(ctx context.Context, params schema.SeriesFetchParams, sourceParams map[string]any) ([]schema.Point, error)
}

// DynamicSeriesConfigFetcher enumerates the instances a series template is
// materialized for, e.g. one config per disk.
type DynamicSeriesConfigFetcher interface {
	FetchDynamicSeriesConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error)
}

// DynamicSeriesGroupConfigFetcher enumerates the instances a series-group
// template is materialized for.
type DynamicSeriesGroupConfigFetcher interface {
	FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error)
}

// StoreManager defines the interface for managing the persistent stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetMetricStore() MetricStore
	GetCacheStore() CacheStore
}

// MetricStore persists raw points and dynamic configs and serves them back as
// a data source.
type MetricStore interface {
	SeriesFetcher
	DynamicSeriesConfigFetcher
	DynamicSeriesGroupConfigFetcher

	// IngestPoints upserts raw samples.
	IngestPoints(ctx context.Context, points []schema.StoredPoint) error

	// PutDynamicConfigs replaces the configs of a collection.
	PutDynamicConfigs(ctx context.Context, collection string, kind schema.ConfigKind, configs []any) error

	// GetStatus returns status information about the metric store
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all points and configs.
	Clear(ctx context.Context) error

	// Close closes the underlying connection
	Close() error
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}
