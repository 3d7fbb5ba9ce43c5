package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/iostore"
	"github.com/huangsam/tschart/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup(open bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	storeBackend := schema.DatabaseBackend(viper.GetString("store-backend"))
	storeConn := viper.GetString("store-db-connect")
	cacheBackend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	cacheConn := viper.GetString("cache-db-connect")

	for _, b := range []schema.DatabaseBackend{storeBackend, cacheBackend} {
		if _, ok := schema.ValidDatabaseBackends[b]; !ok {
			return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", b)
		}
	}
	if err := contract.ValidateDatabaseConnectionString(storeBackend, storeConn); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := contract.ValidateDatabaseConnectionString(cacheBackend, cacheConn); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	cfg.StoreBackend = storeBackend
	cfg.StoreDBConnect = storeConn
	cfg.CacheBackend = cacheBackend
	cfg.CacheDBConnect = cacheConn

	if !open {
		return nil
	}
	if err := iostore.InitStores(storeBackend, storeConn, cacheBackend, cacheConn); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup(true)
}

// storeConfigWrapper resolves the backends without opening them, for commands
// that manage the database files or tables themselves.
func storeConfigWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup(false)
}

// storeCmd focused on store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by evaluation commands. This avoids window parsing
// and output validation for simple maintenance operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the metric store and the fetch cache",
	Long: `Manage the SQL metric store that serves raw points and dynamic configs,
and the optional fetch cache in front of it.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store and cache statistics
  clear   - Remove all stored points and configs
  migrate - Run database schema migrations

Examples:
  # Check store status
  tschart store status

  # Use PostgreSQL (set connection string via env variable)
  TSCHART_STORE_BACKEND=postgresql TSCHART_STORE_DB_CONNECT="host=... dbname=..." tschart store status`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store and cache statistics and connection details",
	Long: `Show detailed information about the metric store and the fetch cache.

Displays:
- Backend type and connection status
- Number of series, points and dynamic configs
- Oldest and newest point timestamps
- Schema migration version
- Fetch cache entries and age`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if store := storeManager.GetMetricStore(); store != nil {
			status, err := store.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get store status", err)
			}
			iostore.PrintStoreStatus(os.Stdout, status)
		}
		if cache := storeManager.GetCacheStore(); cache != nil {
			status, err := cache.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get cache status", err)
			}
			fmt.Println()
			iostore.PrintCacheStatus(os.Stdout, status)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored points and dynamic configs",
	Long: `Delete all stored points, dynamic configs and migration state.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables

WARNING: This action cannot be undone. Consider exporting charts to parquet first.

Examples:
  # Clear the SQLite store (default)
  tschart store clear

  # Clear the fetch cache as well
  tschart store clear --cache`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearStore(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
		if viper.GetBool("cache") {
			if err := iostore.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
				contract.LogFatal("Failed to clear cache", err)
			}
			fmt.Println("Cache cleared successfully.")
		}
	},
}

// storeMigrateCmd runs database migrations for the metric store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the metric store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  tschart store migrate

  # Migrate to specific version
  tschart store migrate --target-version 1

  # Rollback to initial state
  tschart store migrate --target-version 0`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iostore.Migrate(os.Stdout, cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
