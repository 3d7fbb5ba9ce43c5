package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/tschart/core"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/outwriter"
	"github.com/huangsam/tschart/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runSeries evaluates a single series function spec over the configured window.
func runSeries(ctx context.Context, path string, points int) (schema.Result, error) {
	if points < 1 {
		return schema.Result{}, fmt.Errorf("--points must be at least 1 (received %d)", points)
	}
	if cfg.TimeResolution <= 0 {
		return schema.Result{}, errors.New("--resolution is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Result{}, fmt.Errorf("failed to read spec: %w", err)
	}
	spec, err := schema.ParseSpecDocument(data)
	if err != nil {
		return schema.Result{}, err
	}
	if cfg.Strict {
		if err := schema.ValidateSpec(spec); err != nil {
			return schema.Result{}, err
		}
	}

	sources, err := buildSources(cfg, storeManager)
	if err != nil {
		return schema.Result{}, err
	}

	engine := core.NewEngine()
	ec := engine.NewContext(
		core.WithPointsCount(points),
		core.WithTimeResolution(cfg.TimeResolution),
		core.WithLastPointTimestamp(cfg.LastPointTimestamp),
		core.WithNowTimestamp(cfg.NowTimestamp),
		core.WithDataSources(sources),
	)
	return engine.EvaluateSeriesFunction(ctx, ec, spec)
}

// seriesCmd evaluates a single series function spec.
var seriesCmd = &cobra.Command{
	Use:   "series <spec-file>",
	Short: "Evaluate a single series function spec.",
	Long: `Evaluate one series function spec (YAML or JSON) such as loadSeries or
timeDerivative, without a surrounding chart.

Examples:
  # Derivative of a stored counter over the last 60 minutes
  tschart series examples/read_bytes.json --resolution 1m --points 60

  # Same window as CSV
  tschart series examples/read_bytes.json --resolution 1m --points 60 --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		start := time.Now()
		result, err := runSeries(rootCtx, args[0], viper.GetInt("points"))
		if err != nil {
			contract.LogFatal("Cannot evaluate series function", err)
		}
		if err := outwriter.NewOutWriter().WriteResult(result, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write result", err)
		}
	},
}
