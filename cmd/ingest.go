package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/parquet"
	"github.com/huangsam/tschart/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errNoMetricStore is returned when ingesting without an enabled store.
var errNoMetricStore = errors.New("no metric store is configured")

// parseCSVPoints reads rows of "timestamp,value[,first_ts,last_ts]". A header
// row is skipped, an empty value is an empty sample, and timestamps accept
// anything contract.ParseTimestamp does.
func parseCSVPoints(r io.Reader, seriesID string, resolution int64, now time.Time) ([]schema.StoredPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	points := make([]schema.StoredPoint, 0, len(records))
	for i, record := range records {
		if i == 0 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "timestamp") {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least timestamp and value", i+1)
		}

		ts, err := contract.ParseTimestamp(record[0], now)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		p := schema.StoredPoint{SeriesID: seriesID, Resolution: resolution, Timestamp: ts.Unix()}

		if v := strings.TrimSpace(record[1]); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q", i+1, v)
			}
			p.Value = schema.Float(f)
		}

		if len(record) >= 4 {
			first, firstErr := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
			last, lastErr := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
			if firstErr == nil && lastErr == nil {
				p.FirstMeasurementTimestamp = schema.Int64(first)
				p.LastMeasurementTimestamp = schema.Int64(last)
			}
		}
		points = append(points, p)
	}
	return points, nil
}

// readIngestFile loads points from a CSV or parquet file.
func readIngestFile(path, seriesID string, resolution int64, now time.Time) ([]schema.StoredPoint, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		rows, err := parquet.ReadSeriesPointsFile(path)
		if err != nil {
			return nil, err
		}
		points := parquet.ToStoredPoints(rows)
		// An explicit series id renames every row of the file.
		if seriesID != "" {
			for i := range points {
				points[i].SeriesID = seriesID
			}
		}
		return points, nil
	}

	if seriesID == "" {
		return nil, errors.New("--series is required for CSV input")
	}
	if resolution <= 0 {
		return nil, errors.New("--resolution is required for CSV input")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return parseCSVPoints(file, seriesID, resolution, now)
}

// readConfigsFile loads a JSON or YAML array of dynamic configs.
func readConfigsFile(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := schema.ParseSpecDocument(data)
	if err != nil {
		return nil, err
	}
	configs, ok := schema.AsSlice(doc)
	if !ok {
		return nil, errors.New("dynamic configs must be an array")
	}
	return configs, nil
}

// ingestCmd loads raw points into the metric store.
var ingestCmd = &cobra.Command{
	Use:   "ingest <file.csv|file.parquet>",
	Short: "Load raw points into the metric store.",
	Long: `Upsert raw points into the metric store so charts can load them.

CSV rows are "timestamp,value[,first_measurement_ts,last_measurement_ts]"
with an optional header; --series and --resolution are required. Parquet files
written by "tschart evaluate --output parquet" carry their own series ids and
resolutions; fake points are skipped.

Examples:
  tschart ingest reads.csv --series disk.sda.read_bytes --resolution 1m
  tschart ingest disk_io.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		store := storeManager.GetMetricStore()
		if store == nil {
			contract.LogFatal("Cannot ingest points", errNoMetricStore)
		}
		points, err := readIngestFile(args[0], viper.GetString("series"), cfg.TimeResolution, time.Unix(cfg.NowTimestamp, 0))
		if err != nil {
			contract.LogFatal("Cannot read points", err)
		}
		if err := store.IngestPoints(rootCtx, points); err != nil {
			contract.LogFatal("Cannot ingest points", err)
		}
		fmt.Printf("Ingested %d points into the %s store.\n", len(points), cfg.StoreBackend)
	},
}

// ingestConfigsCmd replaces the dynamic configs of a collection.
var ingestConfigsCmd = &cobra.Command{
	Use:   "ingest-configs <file.json|file.yaml>",
	Short: "Replace the dynamic configs of a collection.",
	Long: `Store the configs a dynamic builder materializes its template for.

A chart's dynamic builder reads them through externalSourceParameters
{collection: <name>}. The file holds an array; each element becomes one
series (kind "series") or one series group (kind "group").

Examples:
  tschart ingest-configs disks.json --collection disks
  tschart ingest-configs hosts.yaml --collection hosts --kind group`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		store := storeManager.GetMetricStore()
		if store == nil {
			contract.LogFatal("Cannot ingest configs", errNoMetricStore)
		}
		collection := viper.GetString("collection")
		if collection == "" {
			contract.LogFatal("Cannot ingest configs", errors.New("--collection is required"))
		}
		kind := schema.ConfigKind(viper.GetString("kind"))
		if kind != schema.SeriesConfigKind && kind != schema.SeriesGroupConfigKind {
			contract.LogFatal("Cannot ingest configs", fmt.Errorf("invalid --kind %q. must be series or group", kind))
		}
		configs, err := readConfigsFile(args[0])
		if err != nil {
			contract.LogFatal("Cannot read configs", err)
		}
		if err := store.PutDynamicConfigs(rootCtx, collection, kind, configs); err != nil {
			contract.LogFatal("Cannot ingest configs", err)
		}
		fmt.Printf("Stored %d %s configs in collection %q.\n", len(configs), kind, collection)
	},
}
