package iostore

import (
	"context"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetMetricStore implements the StoreManager interface.
func (m *MockStoreManager) GetMetricStore() contract.MetricStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.MetricStore)
	return store
}

// GetCacheStore implements the StoreManager interface.
func (m *MockStoreManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Clear implements the CacheStore interface.
func (m *MockCacheStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMetricStore is a mock implementation of MetricStore for testing.
type MockMetricStore struct {
	contract.MockDataSource
}

var _ contract.MetricStore = &MockMetricStore{} // Compile-time check

// IngestPoints implements the MetricStore interface.
func (m *MockMetricStore) IngestPoints(ctx context.Context, points []schema.StoredPoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

// PutDynamicConfigs implements the MetricStore interface.
func (m *MockMetricStore) PutDynamicConfigs(ctx context.Context, collection string, kind schema.ConfigKind, configs []any) error {
	args := m.Called(ctx, collection, kind, configs)
	return args.Error(0)
}

// GetStatus implements the MetricStore interface.
func (m *MockMetricStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Clear implements the MetricStore interface.
func (m *MockMetricStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close implements the MetricStore interface.
func (m *MockMetricStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
