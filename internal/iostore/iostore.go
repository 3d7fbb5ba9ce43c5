// Package iostore persists raw metric points and caches data source fetches.
package iostore

import (
	"errors"
	"sync"

	"github.com/huangsam/tschart/internal/contract"
)

// ErrUnsupportedBackend is returned for backends the store cannot open.
var ErrUnsupportedBackend = errors.New("unsupported backend")

// ErrMissingParameter is returned when a fetch lacks a required source parameter.
var ErrMissingParameter = errors.New("missing source parameter")

// StoreManager holds the metric store and the fetch cache.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	metric       contract.MetricStore
	cache        contract.CacheStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetMetricStore returns the metric store.
func (mgr *StoreManager) GetMetricStore() contract.MetricStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.metric
}

// GetCacheStore returns the fetch cache.
func (mgr *StoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}
