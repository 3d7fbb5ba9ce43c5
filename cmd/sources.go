package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/iostore"
	"github.com/huangsam/tschart/internal/parquet"
	"github.com/huangsam/tschart/schema"
)

// buildSources registers the data sources a chart can reference by name: the
// metric store under the configured source name (behind the fetch cache when
// one is enabled) and the optional parquet file under its base name.
func buildSources(c *contract.Config, mgr contract.StoreManager) (map[string]contract.DataSource, error) {
	sources := map[string]contract.DataSource{}

	if mgr != nil {
		if store := mgr.GetMetricStore(); store != nil && c.StoreBackend != schema.NoneBackend {
			var source contract.DataSource = store
			if cache := mgr.GetCacheStore(); cache != nil && c.CacheBackend != schema.NoneBackend {
				source = iostore.NewCachedSource(c.SourceName, store, cache, iostore.DefaultCacheTTL)
			}
			sources[c.SourceName] = source
		}
	}

	if c.ParquetSource != "" {
		fileSource, err := parquet.OpenFileSource(c.ParquetSource)
		if err != nil {
			return nil, fmt.Errorf("failed to open parquet source: %w", err)
		}
		name := parquetSourceName(c.ParquetSource)
		if _, taken := sources[name]; taken {
			return nil, fmt.Errorf("parquet source name %q collides with the store source", name)
		}
		sources[name] = fileSource
	}

	return sources, nil
}

// parquetSourceName strips directory and extension: "data/disks.parquet" is "disks".
func parquetSourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// clockAt returns a clock pinned to the configured now timestamp.
func clockAt(now int64) func() time.Time {
	return func() time.Time { return time.Unix(now, 0) }
}
