package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/tschart/internal/parquet"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVPoints(t *testing.T) {
	now := time.Unix(10_000, 0)

	tests := []struct {
		name        string
		data        string
		expected    []schema.StoredPoint
		expectError bool
	}{
		{
			name: "header and empty value",
			data: "timestamp,value\n60,1.5\n120,\n",
			expected: []schema.StoredPoint{
				{SeriesID: "s", Resolution: 60, Timestamp: 60, Value: schema.Float(1.5)},
				{SeriesID: "s", Resolution: 60, Timestamp: 120},
			},
		},
		{
			name: "measurement window",
			data: "180, 2, 130, 175\n",
			expected: []schema.StoredPoint{
				{SeriesID: "s", Resolution: 60, Timestamp: 180, Value: schema.Float(2), FirstMeasurementTimestamp: schema.Int64(130), LastMeasurementTimestamp: schema.Int64(175)},
			},
		},
		{
			name:        "missing value column",
			data:        "60\n",
			expectError: true,
		},
		{
			name:        "invalid value",
			data:        "60,abc\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := parseCSVPoints(strings.NewReader(tt.data), "s", 60, now)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, points)
		})
	}
}

func TestReadIngestFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(10_000, 0)

	csvPath := filepath.Join(dir, "points.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("60,1\n"), 0o644))

	_, err := readIngestFile(csvPath, "", 60, now)
	assert.ErrorContains(t, err, "--series is required")
	_, err = readIngestFile(csvPath, "s", 0, now)
	assert.ErrorContains(t, err, "--resolution is required")

	parquetPath := filepath.Join(dir, "points.parquet")
	rows := parquet.ConvertPoints("sda", 60, []schema.Point{
		schema.NewPoint(60, schema.Float(1)),
		schema.NewPoint(120, nil, schema.AsFake()),
	})
	require.NoError(t, parquet.WriteSeriesPointsFile(rows, parquetPath))

	points, err := readIngestFile(parquetPath, "", 0, now)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "sda", points[0].SeriesID)

	points, err = readIngestFile(parquetPath, "renamed", 0, now)
	require.NoError(t, err)
	assert.Equal(t, "renamed", points[0].SeriesID)
}

func TestReadConfigsFile(t *testing.T) {
	dir := t.TempDir()

	arrayPath := filepath.Join(dir, "disks.yaml")
	require.NoError(t, os.WriteFile(arrayPath, []byte("- disk: sda\n- disk: sdb\n"), 0o644))
	configs, err := readConfigsFile(arrayPath)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, map[string]any{"disk": "sda"}, configs[0])

	objectPath := filepath.Join(dir, "object.json")
	require.NoError(t, os.WriteFile(objectPath, []byte(`{"disk": "sda"}`), 0o644))
	_, err = readConfigsFile(objectPath)
	assert.ErrorContains(t, err, "must be an array")
}
