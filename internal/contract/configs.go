package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/tschart/schema"
)

// Default values for configuration.
const (
	DefaultPrecision  = 2
	MaxPrecision      = 6
	DefaultSourceName = "store"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for an evaluation.
// This struct remains the "final, validated" config.
type Config struct {
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	// SourceName is the external source name the metric store is registered under.
	SourceName string

	// ParquetSource is an optional parquet file registered as an extra source
	// named after the file's base name.
	ParquetSource string

	// TimeResolution selects a resolution spec of the chart (0 = smallest).
	TimeResolution int64

	// LastPointTimestamp anchors the window; nil means the newest window.
	LastPointTimestamp *int64

	Live         bool
	NowTimestamp int64

	// Strict rejects charts with unknown function names before evaluation.
	Strict bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	SourceName     string `mapstructure:"source-name"`
	ParquetSource  string `mapstructure:"parquet-source"`

	// --- Fields from evaluateCmd / seriesCmd flags ---
	Resolution string `mapstructure:"resolution"`
	LastPoint  string `mapstructure:"last-point"`
	Live       bool   `mapstructure:"live"`
	Now        string `mapstructure:"now"`
	Strict     bool   `mapstructure:"strict"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.LastPointTimestamp != nil {
		last := *c.LastPointTimestamp
		clone.LastPointTimestamp = &last
	}
	return &clone
}

// ViewParameters returns the window selection encoded in the config.
func (c *Config) ViewParameters() schema.ViewParameters {
	view := schema.ViewParameters{Live: c.Live, TimeResolution: c.TimeResolution}
	if c.LastPointTimestamp != nil {
		view.LastPointTimestamp = schema.Int64(*c.LastPointTimestamp)
	}
	return view
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processWindow(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates store and cache backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.CacheBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		if storePath == cachePath {
			return fmt.Errorf("store and cache must use different SQLite database files. Both resolve to %q", storePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ParquetSource = strings.TrimSpace(input.ParquetSource)
	cfg.Strict = input.Strict

	cfg.SourceName = strings.TrimSpace(input.SourceName)
	if cfg.SourceName == "" {
		cfg.SourceName = DefaultSourceName
	}

	colors := true
	if input.Color != "" {
		parsed, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		colors = parsed
	}
	cfg.UseColors = colors

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	output := input.Output
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processWindow parses the resolution and the timestamps that anchor the window.
func processWindow(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	if input.Now != "" {
		t, err := ParseTimestamp(input.Now, now)
		if err != nil {
			return fmt.Errorf("invalid --now value: %w", err)
		}
		now = t
	}
	cfg.NowTimestamp = now.Unix()

	cfg.TimeResolution = 0
	if input.Resolution != "" {
		resolution, err := ParseResolution(input.Resolution)
		if err != nil {
			return err
		}
		cfg.TimeResolution = resolution
	}

	cfg.Live = input.Live
	cfg.LastPointTimestamp = nil
	if input.LastPoint != "" {
		if cfg.Live {
			return fmt.Errorf("--last-point cannot be combined with --live")
		}
		t, err := ParseTimestamp(input.LastPoint, now)
		if err != nil {
			return fmt.Errorf("invalid --last-point value: %w", err)
		}
		if t.After(now) {
			return fmt.Errorf("last point (%s) cannot be after now (%s)", t.Format(DateTimeFormat), now.Format(DateTimeFormat))
		}
		cfg.LastPointTimestamp = schema.Int64(t.Unix())
	}

	return nil
}
