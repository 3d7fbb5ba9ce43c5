package core

import (
	"sync"
	"testing"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
)

// TestWithOverridesIsolation tests that derived contexts never leak into their parent.
func TestWithOverridesIsolation(t *testing.T) {
	last := schema.Int64(100)
	sources := map[string]contract.DataSource{"a": &contract.MockDataSource{}}
	base := NewEngine().NewContext(
		WithPointsCount(10),
		WithTimeResolution(5),
		WithLastPointTimestamp(last),
		WithDataSources(sources),
	)

	derived := base.WithOverrides(
		WithPointsCount(11),
		WithDynamicSeriesConfig(map[string]any{"id": "x"}),
	)
	*last = 200
	sources["b"] = &contract.MockDataSource{}

	assert.Equal(t, 10, base.PointsCount)
	assert.Equal(t, 11, derived.PointsCount)
	assert.Nil(t, base.DynamicSeriesConfig)
	assert.Equal(t, int64(100), *base.LastPointTimestamp)
	assert.Equal(t, int64(100), *derived.LastPointTimestamp)
	assert.Len(t, base.ExternalDataSources, 1)
}

// TestContextConcurrentDerivation tests that many goroutines can derive from one context.
func TestContextConcurrentDerivation(t *testing.T) {
	base := NewEngine().NewContext(WithPointsCount(1), WithTimeResolution(60))

	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			derived := base.WithOverrides(WithPointsCount(id), WithValueToSupply(id))
			assert.Equal(t, id, derived.PointsCount, "Goroutine %d: points count", id)
			assert.Equal(t, int64(60), derived.TimeResolution, "Goroutine %d: resolution", id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, base.PointsCount)
	assert.Nil(t, base.ValueToSupply)
}

// TestDataSource tests source lookups.
func TestDataSource(t *testing.T) {
	source := &contract.MockSeriesFetcher{}
	ec := NewEngine().NewContext(WithDataSources(map[string]contract.DataSource{
		"present": source,
		"nil":     nil,
	}))

	got, ok := ec.DataSource("present")
	assert.True(t, ok)
	assert.Same(t, source, got)

	for _, name := range []string{"", "nil", "missing"} {
		_, ok := ec.DataSource(name)
		assert.False(t, ok, name)
	}
}
