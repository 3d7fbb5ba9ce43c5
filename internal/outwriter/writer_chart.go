package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/tschart/core"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// emptyCell is printed for missing values in tables.
const emptyCell = "-"

// writeJSONChartState marshals the chart state to JSON and writes it.
func writeJSONChartState(w io.Writer, state schema.ChartState) error {
	return writeJSON(w, state)
}

// writeCSVChartState writes one row per series point.
func writeCSVChartState(w io.Writer, state schema.ChartState, fmtFloat func(float64) string) error {
	header := []string{"series_id", "series_name", "y_axis_id", "timestamp", "time", "value", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, series := range state.Series {
			for _, p := range series.Data {
				row := []string{
					series.ID,
					series.Name,
					series.YAxisID,
					strconv.FormatInt(p.Timestamp, 10),
					time.Unix(p.Timestamp, 0).UTC().Format(contract.DateTimeFormat),
					formatNullable(p.Value, fmtFloat),
					contract.GetPlainLabel(p),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeChartTable prints the chart with one row per x-axis timestamp and one
// column per series.
func writeChartTable(w io.Writer, state schema.ChartState, formatter AxisFormatter, cfg *contract.Config, fmtFloat func(float64) string) error {
	if state.Title.Content != "" {
		_, _ = fmt.Fprintln(w, state.Title.Content)
	}

	table := tablewriter.NewWriter(w)

	nameWidth := GetMaxSeriesNameWidth(cfg, len(state.Series))
	headers := []string{"Time"}
	for _, series := range state.Series {
		name := series.Name
		if name == "" {
			name = series.ID
		}
		headers = append(headers, contract.TruncatePath(name, nameWidth))
	}
	headers = append(headers, "Flags")
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, ts := range state.XAxis.Timestamps {
		row := []string{core.FormatTimestamp(ts, state.TimeResolution)}
		var flagged *schema.Point
		for _, series := range state.Series {
			if i >= len(series.Data) {
				row = append(row, emptyCell)
				continue
			}
			p := series.Data[i]
			if flagged == nil {
				flagged = &p
			}
			row = append(row, formatCell(state, series, p, formatter, fmtFloat))
		}
		row = append(row, flagsCell(flagged, cfg.UseColors))
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// formatCell formats one point value with the unit of its series' axis.
func formatCell(state schema.ChartState, series schema.SeriesState, p schema.Point, formatter AxisFormatter, fmtFloat func(float64) string) string {
	if p.Value == nil {
		return emptyCell
	}
	if formatter != nil {
		if axis, ok := state.YAxis(series.YAxisID); ok {
			if s := formatter.FormatAxisValue(axis, *p.Value); s != "" {
				return s
			}
		}
	}
	return fmtFloat(*p.Value)
}

func flagsCell(p *schema.Point, useColors bool) string {
	if p == nil {
		return ""
	}
	if useColors {
		return contract.GetColorLabel(*p)
	}
	return contract.GetPlainLabel(*p)
}
