// Package parquet provides data structures and functions for moving time-series
// points in and out of Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/tschart/schema"
	"github.com/parquet-go/parquet-go"
)

// SeriesPoint is one point of one series at one resolution.
// The same layout is used for exported chart states and for ingestible raw data.
type SeriesPoint struct {
	// SeriesID identifies the series the point belongs to
	SeriesID string `parquet:"series_id,snappy,dict"`

	// Resolution is the point duration in seconds
	Resolution int64 `parquet:"resolution,snappy"`

	// Timestamp is the start of the point in Unix seconds
	Timestamp int64 `parquet:"timestamp,snappy"`

	// Value is the sample (nullable)
	Value *float64 `parquet:"value,optional,snappy"`

	// FirstMeasurementTimestamp is the earliest measurement inside the point (nullable)
	FirstMeasurementTimestamp *int64 `parquet:"first_measurement_ts,optional,snappy"`

	// LastMeasurementTimestamp is the latest measurement inside the point (nullable)
	LastMeasurementTimestamp *int64 `parquet:"last_measurement_ts,optional,snappy"`

	Fake   bool `parquet:"fake"`
	Oldest bool `parquet:"oldest"`
	Newest bool `parquet:"newest"`
}

// WriteSeriesPoints writes rows to w as a Parquet file.
func WriteSeriesPoints(w io.Writer, rows []SeriesPoint) error {
	// The schema is derived from the SeriesPoint struct tags
	writer := parquet.NewGenericWriter[SeriesPoint](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// WriteSeriesPointsFile writes rows to a new Parquet file at outputPath.
func WriteSeriesPointsFile(rows []SeriesPoint, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteSeriesPoints(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ReadSeriesPointsFile reads every row of a Parquet file written with the SeriesPoint layout.
func ReadSeriesPointsFile(path string) ([]SeriesPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[SeriesPoint](file)
	defer func() { _ = reader.Close() }()

	rows := make([]SeriesPoint, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// ConvertChartState flattens every series of an evaluated chart into rows.
func ConvertChartState(state schema.ChartState) []SeriesPoint {
	var rows []SeriesPoint
	for _, series := range state.Series {
		rows = append(rows, ConvertPoints(series.ID, state.TimeResolution, series.Data)...)
	}
	return rows
}

// ConvertPoints converts the points of one series into rows.
func ConvertPoints(seriesID string, resolution int64, points []schema.Point) []SeriesPoint {
	rows := make([]SeriesPoint, len(points))
	for i, p := range points {
		res := resolution
		if res <= 0 {
			res = p.PointDuration
		}
		rows[i] = SeriesPoint{
			SeriesID:                  seriesID,
			Resolution:                res,
			Timestamp:                 p.Timestamp,
			Value:                     p.Value,
			FirstMeasurementTimestamp: p.FirstMeasurementTimestamp,
			LastMeasurementTimestamp:  p.LastMeasurementTimestamp,
			Fake:                      p.Fake,
			Oldest:                    p.Oldest,
			Newest:                    p.Newest,
		}
	}
	return rows
}

// ToStoredPoints converts rows into raw samples for the metric store.
// Synthesized rows carry no measurement and are skipped.
func ToStoredPoints(rows []SeriesPoint) []schema.StoredPoint {
	points := make([]schema.StoredPoint, 0, len(rows))
	for _, row := range rows {
		if row.Fake {
			continue
		}
		points = append(points, schema.StoredPoint{
			SeriesID:                  row.SeriesID,
			Resolution:                row.Resolution,
			Timestamp:                 row.Timestamp,
			Value:                     row.Value,
			FirstMeasurementTimestamp: row.FirstMeasurementTimestamp,
			LastMeasurementTimestamp:  row.LastMeasurementTimestamp,
		})
	}
	return points
}
