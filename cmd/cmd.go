// Package cmd defines the command-line interface for tschart.
package cmd

import (
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ingestConfigsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Metric store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Fetch cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the fetch cache (must differ from store-db-connect)")
	rootCmd.PersistentFlags().String("source-name", contract.DefaultSourceName, "External source name the metric store is registered under")
	rootCmd.PersistentFlags().String("parquet-source", "", "Parquet file registered as an extra source named after its base name")
	rootCmd.PersistentFlags().String("resolution", "", "Time resolution (e.g. 60, 5m, '1 hour'); defaults to the smallest of the chart")
	rootCmd.PersistentFlags().String("last-point", "", "Timestamp of the last point of the window (RFC3339, unix seconds or time ago)")
	rootCmd.PersistentFlags().Bool("live", false, "Evaluate the live window ending now")
	rootCmd.PersistentFlags().String("now", "", "Override the current time (RFC3339 or unix seconds)")
	rootCmd.PersistentFlags().Bool("strict", false, "Reject specs with unknown function names before evaluation")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of evaluateCmd to Viper
	evaluateCmd.Flags().Bool("watch", false, "Re-evaluate a live chart at its update interval until interrupted")
	if err := viper.BindPFlags(evaluateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding evaluate flags", err)
	}

	// Bind all flags of seriesCmd to Viper
	seriesCmd.Flags().Int("points", 60, "Number of points in the window")
	if err := viper.BindPFlags(seriesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding series flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().String("series", "", "Series id the points are stored under")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of ingestConfigsCmd to Viper
	ingestConfigsCmd.Flags().String("collection", "", "Collection name dynamic builders reference")
	ingestConfigsCmd.Flags().String("kind", string(schema.SeriesConfigKind), "Config kind: series or group")
	if err := viper.BindPFlags(ingestConfigsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest-configs flags", err)
	}

	// Bind all flags of storeClearCmd to Viper
	storeClearCmd.Flags().Bool("cache", false, "Also clear the fetch cache")
	if err := viper.BindPFlags(storeClearCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store clear flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
