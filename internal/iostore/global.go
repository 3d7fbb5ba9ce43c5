package iostore

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the metric store and the fetch cache.
// An empty backend leaves the corresponding store unset.
func InitStores(storeBackend schema.DatabaseBackend, storeConnStr string, cacheBackend schema.DatabaseBackend, cacheConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var metricStore contract.MetricStore
		if storeBackend != "" {
			metricStore, err = NewMetricStore(storeBackend, storeConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize metric store: %w", err)
				return
			}
		}

		var cacheStore contract.CacheStore
		if cacheBackend != "" {
			cacheStore, err = NewCacheStore(cacheBackend, cacheConnStr)
			if err != nil {
				if metricStore != nil {
					_ = metricStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize fetch cache: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.metric = metricStore
		Manager.cache = cacheStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.metric != nil {
			_ = Manager.metric.Close()
		}
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
	})
}

// ClearStore removes the metric store.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables.
func ClearStore(backend schema.DatabaseBackend, connStr string) error {
	return clearBackend(backend, connStr, contract.GetStoreDBFilePath(), pointsTable, configsTable, "schema_migrations")
}

// ClearCache removes the fetch cache.
func ClearCache(backend schema.DatabaseBackend, connStr string) error {
	return clearBackend(backend, connStr, contract.GetCacheDBFilePath(), fetchCacheTable)
}

func clearBackend(backend schema.DatabaseBackend, connStr, defaultPath string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbFilePath := connStr
		if dbFilePath == "" {
			dbFilePath = defaultPath
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driver, err := driverName(backend)
		if err != nil {
			return err
		}
		return clearSQLTables(driver, connStr, tables...)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedBackend, backend)
	}
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(driver, connStr string, tables ...string) error {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	for _, table := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
