package cmd

import (
	"errors"

	"github.com/huangsam/tschart/core"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/outwriter"
	"github.com/spf13/cobra"
)

// errInvalidCharts signals that at least one chart failed validation.
var errInvalidCharts = errors.New("one or more charts are invalid")

// validateCharts checks each chart file for parse errors, unknown functions and missing resolutions.
func validateCharts(paths []string) []outwriter.ValidationReport {
	reports := make([]outwriter.ValidationReport, 0, len(paths))
	for _, path := range paths {
		file, err := loadChart(path, true)
		if err == nil && len(file.TimeResolutionSpecs) == 0 {
			err = core.ErrNoTimeResolutions
		}
		reports = append(reports, outwriter.ValidationReport{Path: path, Err: err})
	}
	return reports
}

// validateCmd validates chart definitions.
var validateCmd = &cobra.Command{
	Use:   "validate <chart-file>...",
	Short: "Report unknown functions and structural problems in chart definitions.",
	Long: `Validate chart definitions without evaluating them.

Each file is parsed, checked for unknown function names anywhere in its spec
trees (legacy aliases are accepted) and for at least one time resolution.
The command exits non-zero when any chart is invalid, which makes it usable
as a CI gate.

Examples:
  tschart validate examples/*.yaml
  tschart validate examples/disk_io.yaml --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		reports := validateCharts(args)
		if err := outwriter.NewOutWriter().WriteValidation(reports, cfg); err != nil {
			contract.LogFatal("Cannot write validation results", err)
		}
		for _, r := range reports {
			if r.Err != nil {
				contract.LogFatal("Validation failed", errInvalidCharts)
			}
		}
	},
}
