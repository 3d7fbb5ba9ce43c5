// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// AxisFormatter renders a raw value with the unit of a Y axis.
// *core.Chart satisfies it.
type AxisFormatter interface {
	FormatAxisValue(axis schema.YAxisState, value any) string
}

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteChartState prints an evaluated chart using the configured output format.
// A nil formatter prints plain numbers.
func (ow *OutWriter) WriteChartState(state schema.ChartState, formatter AxisFormatter, cfg *contract.Config, duration time.Duration) error {
	return PrintChartState(state, formatter, cfg, duration)
}

// WriteResult prints a single series function result using the configured output format.
func (ow *OutWriter) WriteResult(result schema.Result, cfg *contract.Config, duration time.Duration) error {
	return PrintResult(result, cfg, duration)
}

// WriteValidation prints the outcome of validating chart definitions.
func (ow *OutWriter) WriteValidation(reports []ValidationReport, cfg *contract.Config) error {
	return PrintValidation(reports, cfg)
}
