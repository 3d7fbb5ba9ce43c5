package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unitFormatter struct{}

func (unitFormatter) FormatAxisValue(axis schema.YAxisState, value any) string {
	return fmt.Sprintf("%v %s", value, axis.UnitName)
}

func testState() schema.ChartState {
	return schema.ChartState{
		EvaluationID:   "eval-1",
		Title:          schema.ChartTitle{Content: "Disk IO"},
		TimeResolution: 5,
		PointsCount:    2,
		YAxes:          []schema.YAxisState{{ID: "io", UnitName: schema.BytesUnit}},
		XAxis:          schema.XAxisState{Timestamps: []int64{0, 5}},
		Series: []schema.SeriesState{
			{ID: "read", Name: "Read", YAxisID: "io", Data: []schema.Point{
				schema.NewPoint(0, schema.Float(1.5)),
				schema.NewPoint(5, nil, schema.AsFake(), schema.AsNewest()),
			}},
			{ID: "write", YAxisID: "missing", Data: []schema.Point{
				schema.NewPoint(0, schema.Float(2)),
				schema.NewPoint(5, schema.Float(3), schema.AsNewest()),
			}},
		},
	}
}

func TestWriteJSONChartState(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONChartState(&buf, testState()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "eval-1", decoded["evaluationId"])
	series := decoded["series"].([]any)
	require.Len(t, series, 2)
	data := series[0].(map[string]any)["data"].([]any)
	assert.Nil(t, data[1].(map[string]any)["value"])
	assert.Equal(t, true, data[1].(map[string]any)["fake"])
}

func TestWriteCSVChartState(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVChartState(&buf, testState(), createFormatter(2)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"series_id", "series_name", "y_axis_id", "timestamp", "time", "value", "label"}, records[0])
	assert.Equal(t, []string{"read", "Read", "io", "0", "1970-01-01T00:00:00Z", "1.50", "real"}, records[1])
	assert.Equal(t, []string{"read", "Read", "io", "5", "1970-01-01T00:00:05Z", "", "fake,newest"}, records[2])
	assert.Equal(t, "3.00", records[4][5])
}

func TestWriteChartTable(t *testing.T) {
	cfg := &contract.Config{Width: 120}

	tests := []struct {
		name      string
		formatter AxisFormatter
		contains  []string
	}{
		{"plain numbers", nil, []string{"Disk IO", "1.50", "00:00:05 01/01/1970", "fake,newest"}},
		{"axis units", unitFormatter{}, []string{"1.5 bytes", "2.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeChartTable(&buf, testState(), tt.formatter, cfg, createFormatter(2)))
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestFormatCellNull(t *testing.T) {
	state := testState()
	assert.Equal(t, emptyCell, formatCell(state, state.Series[0], state.Series[0].Data[1], unitFormatter{}, createFormatter(1)))
}

func TestGetMaxSeriesNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		series   int
		expected int
	}{
		{width: 120, series: 2, expected: 39},
		{width: 40, series: 5, expected: 8},
		{width: 400, series: 1, expected: 40},
		{width: 100, series: 0, expected: 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxSeriesNameWidth(&contract.Config{Width: tt.width}, tt.series))
	}
}
