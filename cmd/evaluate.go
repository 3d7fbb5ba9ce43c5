package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/huangsam/tschart/core"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/outwriter"
	"github.com/huangsam/tschart/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultWatchInterval is used when the selected resolution has no update interval.
const defaultWatchInterval = 30 * time.Second

// loadChart reads and parses a chart document, rejecting unknown functions in strict mode.
func loadChart(path string, strict bool) (schema.ChartFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.ChartFile{}, fmt.Errorf("failed to read chart: %w", err)
	}
	file, err := schema.ParseChartFile(data)
	if err != nil {
		return schema.ChartFile{}, err
	}
	if strict {
		if err := file.ChartDefinition.Validate(); err != nil {
			return schema.ChartFile{}, err
		}
	}
	return file, nil
}

// watchInterval picks the update interval of the resolution that will be evaluated.
func watchInterval(chart *core.Chart, resolution int64) time.Duration {
	specs := chart.TimeResolutionSpecs()
	if len(specs) == 0 {
		return defaultWatchInterval
	}
	spec := specs[0]
	for _, s := range specs {
		if s.TimeResolution == resolution {
			spec = s
		}
	}
	if spec.UpdateInterval <= 0 {
		return defaultWatchInterval
	}
	return time.Duration(spec.UpdateInterval) * time.Second
}

// runEvaluate evaluates one chart file and prints it.
func runEvaluate(ctx context.Context, path string) error {
	file, err := loadChart(path, cfg.Strict)
	if err != nil {
		return err
	}
	sources, err := buildSources(cfg, storeManager)
	if err != nil {
		return err
	}

	watch := viper.GetBool("watch")
	clock := clockAt(cfg.NowTimestamp)
	if watch {
		if !cfg.Live {
			return errors.New("--watch requires --live")
		}
		clock = time.Now
	}

	chart := core.NewChart(file, sources, core.WithClock(clock))
	session := core.NewSession(chart)
	defer session.Close()

	ow := outwriter.NewOutWriter()
	evaluate := func() error {
		start := time.Now()
		state, err := session.Evaluate(ctx, cfg.ViewParameters())
		if err != nil {
			return err
		}
		return ow.WriteChartState(state, chart, cfg, time.Since(start))
	}

	if err := evaluate(); err != nil || !watch {
		return err
	}

	ticker := time.NewTicker(watchInterval(chart, cfg.TimeResolution))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := evaluate(); err != nil && !errors.Is(err, core.ErrSuperseded) {
				return err
			}
		}
	}
}

// evaluateCmd evaluates a chart definition.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <chart-file>",
	Short: "Evaluate a chart definition into aligned series data.",
	Long: `Evaluate a chart definition (YAML or JSON) against the configured data sources.

The metric store is registered under --source-name (default "store"); a parquet
file given with --parquet-source is registered under its base name. Series are
reconciled onto one shared timeline, with fake points filling the gaps.

Examples:
  # Evaluate the newest window at the smallest resolution
  tschart evaluate examples/disk_io.yaml

  # Evaluate the 5 minute resolution ending two hours ago
  tschart evaluate examples/disk_io.yaml --resolution 5m --last-point "2 hours ago"

  # Keep a live chart refreshed at the resolution's update interval
  tschart evaluate examples/disk_io.yaml --live --watch

  # Export series points for analytics
  tschart evaluate examples/disk_io.yaml --output parquet --output-file disk_io.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt)
		defer stop()
		if err := runEvaluate(ctx, args[0]); err != nil {
			contract.LogFatal("Cannot evaluate chart", err)
		}
	},
}
