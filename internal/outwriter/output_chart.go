package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/parquet"
	"github.com/huangsam/tschart/schema"
)

// PrintChartState outputs an evaluated chart, dispatching based on the output format configured.
func PrintChartState(state schema.ChartState, formatter AxisFormatter, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONChartState(w, state)
		}, "Wrote JSON chart state"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVChartState(w, state, fmtFloat)
		}, "Wrote CSV chart state"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteSeriesPoints(w, parquet.ConvertChartState(state))
		}, "Wrote Parquet chart state"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := writeChartTable(os.Stdout, state, formatter, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing chart table output: %w", err)
		}
		_, _ = fmt.Printf("Evaluated %d series over %d points at %v resolution in %v. Store backend: %s\n",
			len(state.Series), len(state.XAxis.Timestamps), time.Duration(state.TimeResolution)*time.Second, duration, cfg.StoreBackend)
	}
	return nil
}
