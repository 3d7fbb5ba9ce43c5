package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rangeSource serves the newest aligned points at or before the requested point.
type rangeSource struct {
	points []schema.Point
}

func (s rangeSource) FetchSeries(_ context.Context, params schema.SeriesFetchParams, _ map[string]any) ([]schema.Point, error) {
	var out []schema.Point
	for _, p := range s.points {
		if params.LastPointTimestamp != nil && p.Timestamp > *params.LastPointTimestamp {
			continue
		}
		if p.Timestamp%params.TimeResolution != 0 {
			continue
		}
		out = append(out, p)
	}
	if len(out) > params.PointsCount {
		out = out[len(out)-params.PointsCount:]
	}
	return out, nil
}

func linearPoints(from, to, step int64) []schema.Point {
	var points []schema.Point
	for ts := from; ts <= to; ts += step {
		points = append(points, pt(ts, float64(ts)))
	}
	return points
}

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0) }
}

func testChartFile() schema.ChartFile {
	return schema.ChartFile{
		ChartDefinition: schema.ChartDefinition{
			Title: schema.ChartTitle{Content: "Throughput", Tip: "bytes moved"},
			YAxes: []schema.YAxisDefinition{
				{ID: "bytes", Name: "Bytes", UnitName: schema.BytesUnit, MinInterval: schema.Float(0)},
				{
					ID:       "pct",
					Name:     "Percent",
					UnitName: schema.PercentUnit,
					ValueProvider: schema.Call(schema.AbsFunction, map[string]any{
						"inputDataProvider": schema.Call(schema.SupplyValueFunction, nil),
					}),
				},
			},
			SeriesBuilders: []schema.BuilderDefinition{{
				BuilderType: schema.StaticBuilder,
				BuilderRecipe: map[string]any{
					"seriesTemplate": map[string]any{
						"id":           "cpu",
						"name":         "CPU",
						"yAxisId":      "bytes",
						"dataProvider": loadSpec(nil),
					},
				},
			}},
			SeriesGroupBuilders: []schema.BuilderDefinition{{
				BuilderType:   schema.StaticBuilder,
				BuilderRecipe: map[string]any{"seriesGroupTemplate": map[string]any{"id": "g"}},
			}},
		},
		TimeResolutionSpecs: []schema.TimeResolutionSpec{
			{TimeResolution: 60, PointsCount: 3},
			{TimeResolution: 5, PointsCount: 4},
		},
	}
}

func timestampsOf(points []schema.Point) []int64 {
	out := make([]int64, len(points))
	for i, p := range points {
		out[i] = p.Timestamp
	}
	return out
}

// TestChartStateNewestWindow tests the first non-live evaluation and its preflight.
func TestChartStateNewestWindow(t *testing.T) {
	sources := map[string]contract.DataSource{"metrics": rangeSource{points: linearPoints(0, 100, 5)}}
	engine, _ := newTestEngine()
	chart := NewChart(testChartFile(), sources, WithEngine(engine), WithClock(fixedClock(1000)))

	assert.Equal(t, int64(5), chart.TimeResolutionSpecs()[0].TimeResolution)

	state, err := chart.State(context.Background(), schema.ViewParameters{})
	require.NoError(t, err)

	assert.NotEmpty(t, state.EvaluationID)
	assert.Equal(t, "Throughput", state.Title.Content)
	assert.Equal(t, int64(5), state.TimeResolution)
	assert.Equal(t, 4, state.PointsCount)
	require.NotNil(t, state.NewestPointTimestamp)
	assert.Equal(t, int64(100), *state.NewestPointTimestamp)

	require.Len(t, state.Series, 1)
	data := state.Series[0].Data
	assert.Equal(t, []int64{85, 90, 95, 100}, timestampsOf(data))
	assert.Equal(t, []int64{85, 90, 95, 100}, state.XAxis.Timestamps)
	assert.False(t, data[2].Newest)
	assert.True(t, data[3].Newest)
	assert.Equal(t, 100.0, *data[3].Value)

	assert.Equal(t, int64(85), *state.FirstPointTimestamp)
	assert.Equal(t, int64(100), *state.LastPointTimestamp)
	assert.True(t, state.HasReachedNewest)
	assert.False(t, state.HasReachedOldest)

	require.Len(t, state.SeriesGroups, 1)
	assert.Equal(t, "g", state.SeriesGroups[0].ID)
	require.Len(t, state.YAxes, 2)
	assert.Nil(t, state.YAxes[0].MinInterval)
}

// TestChartStateHistoricalWindow tests windows anchored before the newest point.
func TestChartStateHistoricalWindow(t *testing.T) {
	sources := map[string]contract.DataSource{"metrics": rangeSource{points: linearPoints(0, 100, 5)}}
	chart := NewChart(testChartFile(), sources, WithClock(fixedClock(1000)))

	tests := []struct {
		name     string
		last     int64
		expected []int64
		oldest   bool
	}{
		{"middle of history", 50, []int64{35, 40, 45, 50}, false},
		{"clamped to newest", 500, []int64{85, 90, 95, 100}, false},
		{"start of history", 10, []int64{-5, 0, 5, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := chart.State(context.Background(), schema.ViewParameters{LastPointTimestamp: schema.Int64(tt.last)})
			require.NoError(t, err)
			require.Len(t, state.Series, 1)
			assert.Equal(t, tt.expected, state.XAxis.Timestamps)
			assert.Equal(t, tt.oldest, state.HasReachedOldest)
		})
	}
}

// TestChartStateLive tests that live windows follow the clock.
func TestChartStateLive(t *testing.T) {
	sources := map[string]contract.DataSource{"metrics": rangeSource{points: linearPoints(0, 100, 5)}}
	chart := NewChart(testChartFile(), sources, WithClock(fixedClock(1000)))

	state, err := chart.State(context.Background(), schema.ViewParameters{Live: true})
	require.NoError(t, err)

	require.NotNil(t, state.NewestPointTimestamp)
	assert.Equal(t, int64(990), *state.NewestPointTimestamp)
	data := state.Series[0].Data
	assert.Equal(t, []int64{975, 980, 985, 990}, timestampsOf(data))
	for _, p := range data {
		assert.True(t, p.Fake)
		assert.True(t, p.Newest)
		assert.Nil(t, p.Value)
	}
}

// TestChartStateNoData tests that an empty preflight anchors the chart at now.
func TestChartStateNoData(t *testing.T) {
	sources := map[string]contract.DataSource{"metrics": rangeSource{}}
	chart := NewChart(testChartFile(), sources, WithClock(fixedClock(1000)), WithNowOffset(-500))

	state, err := chart.State(context.Background(), schema.ViewParameters{})
	require.NoError(t, err)
	require.NotNil(t, state.NewestPointTimestamp)
	assert.Equal(t, int64(500), *state.NewestPointTimestamp)
	assert.True(t, state.HasReachedOldest)
}

// TestChartStateNoResolutions tests that a chart needs at least one resolution.
func TestChartStateNoResolutions(t *testing.T) {
	chart := NewChart(schema.ChartFile{}, nil)
	_, err := chart.State(context.Background(), schema.ViewParameters{})
	assert.ErrorIs(t, err, ErrNoTimeResolutions)
}

// TestFormatAxisValue tests value formatting through axis value providers.
func TestFormatAxisValue(t *testing.T) {
	chart := NewChart(testChartFile(), nil, WithClock(fixedClock(1000)))
	state := schema.ChartState{YAxes: chart.yAxesState()}
	bytesAxis, ok := state.YAxis("bytes")
	require.True(t, ok)
	pctAxis, ok := state.YAxis("pct")
	require.True(t, ok)

	assert.Equal(t, "1 KiB", chart.FormatAxisValue(bytesAxis, 1024.0))
	assert.Equal(t, "5%", chart.FormatAxisValue(pctAxis, -5.0))
	assert.Equal(t, "", chart.FormatAxisValue(bytesAxis, nil))
	assert.Equal(t, "n/a", chart.FormatAxisValue(bytesAxis, "n/a"))
}

// TestFormatTimestamp tests the resolution-dependent layouts.
func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		resolution int64
		expected   string
	}{
		{5, "00:00:05 01/01/1970"},
		{300, "00:00 01/01/1970"},
		{86400, "01/01/1970"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatTimestamp(5, tt.resolution))
	}
}
