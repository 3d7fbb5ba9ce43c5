package iostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// Table names for the metric store.
const (
	pointsTable  = "tschart_points"
	configsTable = "tschart_dynamic_configs"
)

// Source parameter keys understood by the metric store.
const (
	SeriesIDParam   = "seriesId"
	CollectionParam = "collection"
)

const createPointsQuery = `
	CREATE TABLE IF NOT EXISTS tschart_points (
		series_id VARCHAR(255) NOT NULL,
		resolution BIGINT NOT NULL,
		point_ts BIGINT NOT NULL,
		point_value DOUBLE PRECISION,
		first_ts BIGINT,
		last_ts BIGINT,
		PRIMARY KEY (series_id, resolution, point_ts)
	)`

const createConfigsQuery = `
	CREATE TABLE IF NOT EXISTS tschart_dynamic_configs (
		collection VARCHAR(255) NOT NULL,
		config_kind VARCHAR(16) NOT NULL,
		position INTEGER NOT NULL,
		config TEXT NOT NULL,
		PRIMARY KEY (collection, config_kind, position)
	)`

// MetricStoreImpl is a SQL-backed data source for raw points and dynamic configs.
type MetricStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.MetricStore = &MetricStoreImpl{} // Compile-time check

// NewMetricStore opens the metric store for the given backend.
func NewMetricStore(backend schema.DatabaseBackend, connStr string) (contract.MetricStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store that serves no data
		return &MetricStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createTables(db, map[string]string{
		pointsTable:  createPointsQuery,
		configsTable: createConfigsQuery,
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &MetricStoreImpl{db: db, backend: backend}, nil
}

func (ms *MetricStoreImpl) disabled() bool {
	return ms.backend == schema.NoneBackend || ms.db == nil
}

// FetchSeries returns the newest stored points of sourceParams["seriesId"] at
// or before params.LastPointTimestamp.
func (ms *MetricStoreImpl) FetchSeries(ctx context.Context, params schema.SeriesFetchParams, sourceParams map[string]any) ([]schema.Point, error) {
	if ms.disabled() {
		return nil, nil
	}
	seriesID := schema.StringField(sourceParams, SeriesIDParam)
	if seriesID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, SeriesIDParam)
	}
	if params.PointsCount <= 0 {
		return nil, nil
	}

	query := `SELECT point_ts, point_value, first_ts, last_ts FROM tschart_points WHERE series_id = ? AND resolution = ?`
	args := []any{seriesID, params.TimeResolution}
	if params.LastPointTimestamp != nil {
		query += ` AND point_ts <= ?`
		args = append(args, *params.LastPointTimestamp)
	}
	query += ` ORDER BY point_ts DESC LIMIT ?`
	args = append(args, params.PointsCount)

	rows, err := ms.db.QueryContext(ctx, rebind(ms.backend, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points of %s: %w", seriesID, err)
	}
	defer func() { _ = rows.Close() }()

	var points []schema.Point
	for rows.Next() {
		var ts int64
		var value sql.NullFloat64
		var first, last sql.NullInt64
		if err := rows.Scan(&ts, &value, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		opts := []schema.PointOption{schema.WithPointDuration(params.TimeResolution)}
		if first.Valid && last.Valid {
			opts = append(opts, schema.WithMeasurementWindow(schema.Int64(first.Int64), schema.Int64(last.Int64)))
		}
		var v *float64
		if value.Valid {
			v = schema.Float(value.Float64)
		}
		points = append(points, schema.NewPoint(ts, v, opts...))
	}
	return points, rows.Err()
}

// FetchDynamicSeriesConfigs returns the series configs of sourceParams["collection"].
func (ms *MetricStoreImpl) FetchDynamicSeriesConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error) {
	return ms.fetchConfigs(ctx, schema.SeriesConfigKind, sourceParams)
}

// FetchDynamicSeriesGroupConfigs returns the series-group configs of sourceParams["collection"].
func (ms *MetricStoreImpl) FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParams map[string]any) ([]any, error) {
	return ms.fetchConfigs(ctx, schema.SeriesGroupConfigKind, sourceParams)
}

func (ms *MetricStoreImpl) fetchConfigs(ctx context.Context, kind schema.ConfigKind, sourceParams map[string]any) ([]any, error) {
	if ms.disabled() {
		return nil, nil
	}
	collection := schema.StringField(sourceParams, CollectionParam)
	if collection == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, CollectionParam)
	}

	query := `SELECT config FROM tschart_dynamic_configs WHERE collection = ? AND config_kind = ? ORDER BY position`
	rows, err := ms.db.QueryContext(ctx, rebind(ms.backend, query), collection, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s configs of %s: %w", kind, collection, err)
	}
	defer func() { _ = rows.Close() }()

	configs := []any{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		var config any
		if err := json.Unmarshal([]byte(raw), &config); err != nil {
			return nil, fmt.Errorf("failed to decode config of %s: %w", collection, err)
		}
		configs = append(configs, config)
	}
	return configs, rows.Err()
}

// IngestPoints upserts raw samples in a single transaction.
func (ms *MetricStoreImpl) IngestPoints(ctx context.Context, points []schema.StoredPoint) error {
	if ms.disabled() {
		return errors.New("metric store is disabled")
	}
	if len(points) == 0 {
		return nil
	}

	tx, err := ms.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, ms.getUpsertPointQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare ingest: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range points {
		if p.SeriesID == "" || p.Resolution <= 0 {
			return fmt.Errorf("invalid point at %d: series id and a positive resolution are required", p.Timestamp)
		}
		if _, err := stmt.ExecContext(ctx, p.SeriesID, p.Resolution, p.Timestamp,
			nullFloat(p.Value), nullInt(p.FirstMeasurementTimestamp), nullInt(p.LastMeasurementTimestamp)); err != nil {
			return fmt.Errorf("failed to ingest point %s@%d: %w", p.SeriesID, p.Timestamp, err)
		}
	}
	return tx.Commit()
}

// getUpsertPointQuery returns the UPSERT query for the backend.
func (ms *MetricStoreImpl) getUpsertPointQuery() string {
	switch ms.backend {
	case schema.MySQLBackend:
		return `INSERT INTO tschart_points (series_id, resolution, point_ts, point_value, first_ts, last_ts) VALUES (?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE point_value = new.point_value, first_ts = new.first_ts, last_ts = new.last_ts`

	case schema.PostgreSQLBackend:
		return `INSERT INTO tschart_points (series_id, resolution, point_ts, point_value, first_ts, last_ts) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (series_id, resolution, point_ts) DO UPDATE SET point_value = EXCLUDED.point_value, first_ts = EXCLUDED.first_ts, last_ts = EXCLUDED.last_ts`

	default: // SQLite
		return `INSERT OR REPLACE INTO tschart_points (series_id, resolution, point_ts, point_value, first_ts, last_ts) VALUES (?, ?, ?, ?, ?, ?)`
	}
}

// PutDynamicConfigs replaces the configs of a collection and kind.
func (ms *MetricStoreImpl) PutDynamicConfigs(ctx context.Context, collection string, kind schema.ConfigKind, configs []any) error {
	if ms.disabled() {
		return errors.New("metric store is disabled")
	}
	if collection == "" {
		return fmt.Errorf("%w: %s", ErrMissingParameter, CollectionParam)
	}

	tx, err := ms.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin config update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := rebind(ms.backend, `DELETE FROM tschart_dynamic_configs WHERE collection = ? AND config_kind = ?`)
	if _, err := tx.ExecContext(ctx, deleteQuery, collection, string(kind)); err != nil {
		return fmt.Errorf("failed to remove configs of %s: %w", collection, err)
	}

	insertQuery := rebind(ms.backend, `INSERT INTO tschart_dynamic_configs (collection, config_kind, position, config) VALUES (?, ?, ?, ?)`)
	for i, config := range configs {
		raw, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to encode config %d of %s: %w", i, collection, err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, collection, string(kind), i, string(raw)); err != nil {
			return fmt.Errorf("failed to store config %d of %s: %w", i, collection, err)
		}
	}
	return tx.Commit()
}

// GetStatus returns status information about the metric store.
func (ms *MetricStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(ms.backend),
		Connected: ms.db != nil,
	}
	if ms.disabled() {
		return status, nil
	}

	row := ms.db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT series_id), MIN(point_ts), MAX(point_ts) FROM tschart_points`)
	var oldest, newest sql.NullInt64
	if err := row.Scan(&status.PointCount, &status.SeriesCount, &oldest, &newest); err != nil {
		return status, fmt.Errorf("failed to get point totals: %w", err)
	}
	if oldest.Valid {
		status.OldestPoint = time.Unix(oldest.Int64, 0)
	}
	if newest.Valid {
		status.NewestPoint = time.Unix(newest.Int64, 0)
	}

	row = ms.db.QueryRow(`SELECT COUNT(*) FROM tschart_dynamic_configs`)
	if err := row.Scan(&status.ConfigCount); err != nil {
		return status, fmt.Errorf("failed to get config totals: %w", err)
	}

	// The version table only exists once migrations have run
	row = ms.db.QueryRow(`SELECT version, dirty FROM schema_migrations LIMIT 1`)
	var version int64
	var dirty bool
	if err := row.Scan(&version, &dirty); err == nil && version > 0 {
		status.SchemaVersion = uint(version)
		status.Dirty = dirty
	}

	return status, nil
}

// Clear removes all points and configs while keeping the tables.
func (ms *MetricStoreImpl) Clear(ctx context.Context) error {
	if ms.disabled() {
		return nil
	}
	for _, table := range []string{pointsTable, configsTable} {
		if _, err := ms.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying DB connection.
func (ms *MetricStoreImpl) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
