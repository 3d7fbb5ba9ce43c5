package schema

import "time"

// StoreStatus describes the contents of the metric store.
type StoreStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	SeriesCount   int       `json:"seriesCount"`
	PointCount    int       `json:"pointCount"`
	ConfigCount   int       `json:"configCount"`
	OldestPoint   time.Time `json:"oldestPoint"`
	NewestPoint   time.Time `json:"newestPoint"`
	SchemaVersion uint      `json:"schemaVersion"`
	Dirty         bool      `json:"dirty"`
}

// CacheStatus describes the contents of the fetch cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"totalEntries"`
	LastEntryTime   time.Time `json:"lastEntryTime"`
	OldestEntryTime time.Time `json:"oldestEntryTime"`
}

// StoredPoint is one raw sample persisted for a series at a resolution.
type StoredPoint struct {
	SeriesID                  string
	Resolution                int64
	Timestamp                 int64
	Value                     *float64
	FirstMeasurementTimestamp *int64
	LastMeasurementTimestamp  *int64
}
