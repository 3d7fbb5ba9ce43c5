package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/parquet"
	"github.com/huangsam/tschart/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ErrNotPoints is returned when a points-only format is asked to write basic data.
var ErrNotPoints = errors.New("result does not hold points")

// resultSeriesID labels the rows of a single result in Parquet output.
const resultSeriesID = "result"

// PrintResult outputs a single series function result, dispatching based on the output format configured.
func PrintResult(result schema.Result, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON result"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResult(w, result, fmtFloat)
		}, "Wrote CSV result"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if !result.IsPoints() {
			return fmt.Errorf("error writing Parquet output: %w", ErrNotPoints)
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteSeriesPoints(w, parquet.ConvertPoints(resultSeriesID, 0, result.Points))
		}, "Wrote Parquet result"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeResultTable(os.Stdout, result, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing result table output: %w", err)
		}
		_, _ = fmt.Printf("Evaluated %s result in %v\n", result.Type, duration)
	}
	return nil
}

// writeCSVResult writes points as timestamp rows and basic data as indexed rows.
func writeCSVResult(w io.Writer, result schema.Result, fmtFloat func(float64) string) error {
	if result.IsPoints() {
		header := []string{"timestamp", "time", "value", "point_duration", "label"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, p := range result.Points {
				row := []string{
					strconv.FormatInt(p.Timestamp, 10),
					time.Unix(p.Timestamp, 0).UTC().Format(contract.DateTimeFormat),
					formatNullable(p.Value, fmtFloat),
					strconv.FormatInt(p.PointDuration, 10),
					contract.GetPlainLabel(p),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return writeCSVWithHeader(w, []string{"index", "value"}, func(cw *csv.Writer) error {
		for i, v := range basicRows(result.Data) {
			if err := cw.Write([]string{strconv.Itoa(i), formatAny(v, fmtFloat)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeResultTable prints a result as a table.
func writeResultTable(w io.Writer, result schema.Result, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	if result.IsPoints() {
		table.Header([]string{"Timestamp", "Value", "Duration", "Flags"})
		for _, p := range result.Points {
			value := formatNullable(p.Value, fmtFloat)
			if value == "" {
				value = emptyCell
			}
			data = append(data, []string{
				strconv.FormatInt(p.Timestamp, 10),
				value,
				strconv.FormatInt(p.PointDuration, 10),
				flagsCell(&p, cfg.UseColors),
			})
		}
	} else {
		table.Header([]string{"Index", "Value"})
		for i, v := range basicRows(result.Data) {
			data = append(data, []string{strconv.Itoa(i), formatAny(v, fmtFloat)})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// basicRows spreads arrays into rows; anything else is a single row.
func basicRows(data any) []any {
	if values, ok := schema.AsSlice(data); ok {
		return values
	}
	return []any{data}
}

// formatAny formats a value from basic result data.
func formatAny(v any, fmtFloat func(float64) string) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := schema.ToFloat(v); ok {
		return fmtFloat(f)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
