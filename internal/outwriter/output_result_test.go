package outwriter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/parquet"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVResult(t *testing.T) {
	tests := []struct {
		name     string
		result   schema.Result
		expected [][]string
	}{
		{
			name:   "points",
			result: schema.PointsResult([]schema.Point{schema.NewPoint(5, schema.Float(2), schema.AsOldest())}),
			expected: [][]string{
				{"timestamp", "time", "value", "point_duration", "label"},
				{"5", "1970-01-01T00:00:05Z", "2.0", "5", "oldest"},
			},
		},
		{
			name:     "basic array",
			result:   schema.BasicResult([]any{1.0, nil, "x"}),
			expected: [][]string{{"index", "value"}, {"0", "1.0"}, {"1", "null"}, {"2", "x"}},
		},
		{
			name:     "basic object",
			result:   schema.BasicResult(map[string]any{"a": 1.0}),
			expected: [][]string{{"index", "value"}, {"0", `{"a":1}`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeCSVResult(&buf, tt.result, createFormatter(1)))
			records, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, records)
		})
	}
}

func TestWriteResultTable(t *testing.T) {
	var buf bytes.Buffer
	result := schema.PointsResult([]schema.Point{schema.NewPoint(10, nil, schema.AsFake())})
	require.NoError(t, writeResultTable(&buf, result, &contract.Config{}, createFormatter(2)))
	assert.Contains(t, buf.String(), "fake")
	assert.Contains(t, buf.String(), "10")
}

func TestPrintResultParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "result.parquet")
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: outputPath}

	err := PrintResult(schema.BasicResult(1.0), cfg, 0)
	assert.True(t, errors.Is(err, ErrNotPoints))

	points := []schema.Point{schema.NewPoint(0, schema.Float(1)), schema.NewPoint(5, schema.Float(2))}
	require.NoError(t, PrintResult(schema.PointsResult(points), cfg, 0))

	rows, err := parquet.ReadSeriesPointsFile(outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, resultSeriesID, rows[0].SeriesID)
	assert.Equal(t, int64(5), rows[1].Resolution)
}

func TestPrintValidation(t *testing.T) {
	reports := []ValidationReport{
		{Path: "ok.yaml"},
		{Path: "bad.yaml", Err: errors.Join(errors.New("unknown function: a"), errors.New("unknown function: b"))},
	}

	var buf bytes.Buffer
	records := make([]validationRecord, len(reports))
	for i, r := range reports {
		records[i] = r.record()
	}
	require.NoError(t, writeCSVValidation(&buf, records))
	assert.Equal(t, "path,valid,errors\nok.yaml,true,\nbad.yaml,false,unknown function: a|unknown function: b\n", buf.String())

	buf.Reset()
	require.NoError(t, writeValidationTable(&buf, records, false))
	assert.Contains(t, buf.String(), "invalid")
	assert.Contains(t, buf.String(), "Validated 2 chart(s)")
}
