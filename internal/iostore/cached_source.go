package iostore

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// currentCacheVersion defines the version of the cached point encoding.
const currentCacheVersion = 1

// DefaultCacheTTL bounds how long a cached window is served.
const DefaultCacheTTL = 24 * time.Hour

// CachedSource serves anchored windows of an inner source from a CacheStore.
// Windows that reach the newest data always go to the inner source and are
// never stored.
type CachedSource struct {
	inner contract.DataSource
	cache contract.CacheStore
	name  string
	ttl   time.Duration
	now   func() time.Time
}

var (
	_ contract.SeriesFetcher                   = &CachedSource{} // Compile-time check
	_ contract.DynamicSeriesConfigFetcher      = &CachedSource{}
	_ contract.DynamicSeriesGroupConfigFetcher = &CachedSource{}
)

// NewCachedSource wraps inner. The name keeps keys of different sources apart.
func NewCachedSource(name string, inner contract.DataSource, cache contract.CacheStore, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{inner: inner, cache: cache, name: name, ttl: ttl, now: time.Now}
}

// FetchSeries implements contract.SeriesFetcher.
func (cs *CachedSource) FetchSeries(ctx context.Context, params schema.SeriesFetchParams, sourceParams map[string]any) ([]schema.Point, error) {
	fetcher, ok := cs.inner.(contract.SeriesFetcher)
	if !ok {
		return nil, nil
	}
	if cs.cache == nil || params.LastPointTimestamp == nil || params.ReachesNewest {
		return fetcher.FetchSeries(ctx, params, sourceParams)
	}

	key, err := cs.cacheKey(params, sourceParams)
	if err != nil {
		return fetcher.FetchSeries(ctx, params, sourceParams)
	}
	if points, ok := cs.checkCacheHit(key); ok {
		return points, nil
	}

	points, err := fetcher.FetchSeries(ctx, params, sourceParams)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(points); err == nil {
		_ = cs.cache.Set(key, data, currentCacheVersion, cs.now().Unix())
	}
	return points, nil
}

// FetchDynamicSeriesConfigs implements contract.DynamicSeriesConfigFetcher.
func (cs *CachedSource) FetchDynamicSeriesConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error) {
	if fetcher, ok := cs.inner.(contract.DynamicSeriesConfigFetcher); ok {
		return fetcher.FetchDynamicSeriesConfigs(ctx, sourceParams)
	}
	return nil, nil
}

// FetchDynamicSeriesGroupConfigs implements contract.DynamicSeriesGroupConfigFetcher.
func (cs *CachedSource) FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error) {
	if fetcher, ok := cs.inner.(contract.DynamicSeriesGroupConfigFetcher); ok {
		return fetcher.FetchDynamicSeriesGroupConfigs(ctx, sourceParams)
	}
	return nil, nil
}

// checkCacheHit returns cached points when the entry is current and fresh.
func (cs *CachedSource) checkCacheHit(key string) ([]schema.Point, bool) {
	data, version, ts, err := cs.cache.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil, false
	}
	if cs.now().Sub(time.Unix(ts, 0)) > cs.ttl {
		return nil, false
	}
	var points []schema.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, false
	}
	return points, true
}

// cacheKey hashes the source name and the full request.
func (cs *CachedSource) cacheKey(params schema.SeriesFetchParams, sourceParams map[string]any) (string, error) {
	raw, err := json.Marshal(struct {
		Source       string                   `json:"source"`
		Params       schema.SeriesFetchParams `json:"params"`
		SourceParams map[string]any           `json:"sourceParams"`
	}{cs.name, params, sourceParams})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(raw)), nil
}
