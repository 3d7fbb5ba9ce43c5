package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/olekukonko/tablewriter"
)

// ValidationReport is the outcome of validating one chart definition.
type ValidationReport struct {
	Path string
	Err  error
}

// validationRecord is the serialized form of a ValidationReport.
type validationRecord struct {
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r ValidationReport) record() validationRecord {
	return validationRecord{Path: r.Path, Valid: r.Err == nil, Errors: splitErrors(r.Err)}
}

// splitErrors flattens joined errors into one message each.
func splitErrors(err error) []string {
	if err == nil {
		return []string{}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

// PrintValidation outputs validation reports, dispatching based on the output format configured.
func PrintValidation(reports []ValidationReport, cfg *contract.Config) error {
	records := make([]validationRecord, len(reports))
	for i, r := range reports {
		records[i] = r.record()
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON validation results")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVValidation(w, records)
		}, "Wrote CSV validation results")
	default:
		return writeValidationTable(os.Stdout, records, cfg.UseColors)
	}
}

func writeCSVValidation(w io.Writer, records []validationRecord) error {
	return writeCSVWithHeader(w, []string{"path", "valid", "errors"}, func(cw *csv.Writer) error {
		for _, r := range records {
			if err := cw.Write([]string{r.Path, strconv.FormatBool(r.Valid), strings.Join(r.Errors, "|")}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeValidationTable(w io.Writer, records []validationRecord, useColors bool) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Chart", "Status", "Problems"})

	var data [][]string
	for _, r := range records {
		status := "ok"
		if !r.Valid {
			status = "invalid"
			if useColors {
				status = contract.FatalColor.Sprint(status)
			}
		}
		data = append(data, []string{r.Path, status, strings.Join(r.Errors, "\n")})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Validated %d chart(s)\n", len(records))
	return nil
}
