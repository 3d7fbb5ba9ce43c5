package parquet

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// seriesKey groups the rows of a file source.
type seriesKey struct {
	seriesID   string
	resolution int64
}

// FileSource serves series from a Parquet file held in memory.
// Points are selected with the "seriesId" source parameter.
type FileSource struct {
	series map[seriesKey][]SeriesPoint // newest first
}

var _ contract.SeriesFetcher = &FileSource{} // Compile-time check

// NewFileSource indexes rows by series and resolution.
func NewFileSource(rows []SeriesPoint) *FileSource {
	fs := &FileSource{series: make(map[seriesKey][]SeriesPoint)}
	for _, row := range rows {
		if row.Fake {
			continue
		}
		key := seriesKey{row.SeriesID, row.Resolution}
		fs.series[key] = append(fs.series[key], row)
	}
	for _, points := range fs.series {
		slices.SortFunc(points, func(a, b SeriesPoint) int { return cmp.Compare(b.Timestamp, a.Timestamp) })
	}
	return fs
}

// OpenFileSource reads a Parquet file into a FileSource.
func OpenFileSource(path string) (*FileSource, error) {
	rows, err := ReadSeriesPointsFile(path)
	if err != nil {
		return nil, err
	}
	return NewFileSource(rows), nil
}

// SeriesIDs lists the distinct series in the file, sorted.
func (fs *FileSource) SeriesIDs() []string {
	seen := make(map[string]struct{})
	for key := range fs.series {
		seen[key.seriesID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FetchSeries implements contract.SeriesFetcher.
func (fs *FileSource) FetchSeries(ctx context.Context, params schema.SeriesFetchParams, sourceParams map[string]any) ([]schema.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seriesID := schema.StringField(sourceParams, "seriesId")
	if seriesID == "" {
		return nil, fmt.Errorf("parquet source requires a seriesId parameter")
	}

	var points []schema.Point
	for _, row := range fs.series[seriesKey{seriesID, params.TimeResolution}] {
		if len(points) >= params.PointsCount {
			break
		}
		if params.LastPointTimestamp != nil && row.Timestamp > *params.LastPointTimestamp {
			continue
		}
		opts := []schema.PointOption{schema.WithPointDuration(row.Resolution)}
		if row.FirstMeasurementTimestamp != nil && row.LastMeasurementTimestamp != nil {
			opts = append(opts, schema.WithMeasurementWindow(row.FirstMeasurementTimestamp, row.LastMeasurementTimestamp))
		}
		points = append(points, schema.NewPoint(row.Timestamp, row.Value, opts...))
	}
	return points, nil
}
