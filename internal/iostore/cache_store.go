package iostore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// fetchCacheTable is the name of the table for fetch caching.
const fetchCacheTable = "tschart_fetch_cache"

// CacheStoreImpl stores versioned fetch results keyed by request.
type CacheStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.CacheStore = &CacheStoreImpl{} // Compile-time check

// NewCacheStore initializes and returns a new CacheStore based on the backend type.
func NewCacheStore(backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled caching
		return &CacheStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createTables(db, map[string]string{fetchCacheTable: getCreateCacheTableQuery(backend)}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &CacheStoreImpl{db: db, backend: backend}, nil
}

// getCreateCacheTableQuery returns the CREATE TABLE query for the given backend.
func getCreateCacheTableQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS tschart_fetch_cache (
				cache_key VARCHAR(255) PRIMARY KEY,
				cache_value LONGBLOB NOT NULL,
				cache_version INT NOT NULL,
				cache_timestamp BIGINT NOT NULL
			)`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS tschart_fetch_cache (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp BIGINT NOT NULL
			)`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS tschart_fetch_cache (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp INTEGER NOT NULL
			)`
	}
}

// Get retrieves a value by key from the store.
func (cs *CacheStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64
	query := rebind(cs.backend, `SELECT cache_value, cache_version, cache_timestamp FROM tschart_fetch_cache WHERE cache_key = ?`)
	if err := cs.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a key/value pair in the store.
func (cs *CacheStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil
	}
	_, err := cs.db.Exec(cs.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (cs *CacheStoreImpl) getUpsertQuery() string {
	switch cs.backend {
	case schema.MySQLBackend:
		return `INSERT INTO tschart_fetch_cache (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`

	case schema.PostgreSQLBackend:
		return `INSERT INTO tschart_fetch_cache (cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`

	default: // SQLite
		return `INSERT OR REPLACE INTO tschart_fetch_cache (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)`
	}
}

// GetStatus returns status information about the cache store.
func (cs *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(cs.backend),
		Connected: cs.db != nil,
	}
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return status, nil
	}

	row := cs.db.QueryRow(`SELECT COUNT(*), MIN(cache_timestamp), MAX(cache_timestamp) FROM tschart_fetch_cache`)
	var oldest, newest sql.NullInt64
	if err := row.Scan(&status.TotalEntries, &oldest, &newest); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if oldest.Valid {
		status.OldestEntryTime = time.Unix(oldest.Int64, 0)
	}
	if newest.Valid {
		status.LastEntryTime = time.Unix(newest.Int64, 0)
	}
	return status, nil
}

// Clear removes every cached entry.
func (cs *CacheStoreImpl) Clear() error {
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil
	}
	if _, err := cs.db.Exec(`DELETE FROM tschart_fetch_cache`); err != nil {
		return fmt.Errorf("failed to clear %s: %w", fetchCacheTable, err)
	}
	return nil
}

// Close closes the underlying DB connection.
func (cs *CacheStoreImpl) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}
