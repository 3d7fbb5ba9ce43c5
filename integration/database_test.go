//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestTschartWithMySQL tests the tschart CLI with a MySQL metric store.
func TestTschartWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "tschart",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/tschart?parseTime=true", host, port.Port())
	t.Setenv("TSCHART_STORE_BACKEND", "mysql")
	t.Setenv("TSCHART_STORE_DB_CONNECT", connStr)

	runStoreScenario(t)
}

// TestTschartWithPostgres tests the tschart CLI with a PostgreSQL metric store.
func TestTschartWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	t.Setenv("TSCHART_STORE_BACKEND", "postgresql")
	t.Setenv("TSCHART_STORE_DB_CONNECT", connStr)

	runStoreScenario(t)
}

// runStoreScenario migrates the configured store, loads the example disks
// and evaluates the example chart against them.
func runStoreScenario(t *testing.T) {
	_, err := runTschart(t, "store", "migrate")
	require.NoError(t, err)

	_, err = runTschart(t, "store", "clear")
	require.NoError(t, err)

	_, err = runTschart(t, "ingest-configs", "examples/disks.json", "--collection", "disks")
	require.NoError(t, err)

	for _, series := range []string{"disk.sda.read_bytes", "disk.sdb.read_bytes"} {
		_, err = runTschart(t, "ingest", "examples/reads.csv", "--series", series, "--resolution", "60")
		require.NoError(t, err)
	}

	out, err := runTschart(t, "evaluate", "examples/disk_io.yaml", "--resolution", "60", "--last-point", "360", "--output", "json")
	require.NoError(t, err)

	var state struct {
		Series []struct {
			ID   string `json:"id"`
			Data []struct {
				Timestamp int64    `json:"timestamp"`
				Value     *float64 `json:"value"`
			} `json:"data"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	require.Len(t, state.Series, 2)
	assert.Equal(t, "sda", state.Series[0].ID)

	data := state.Series[0].Data
	require.NotEmpty(t, data)
	last := data[len(data)-1]
	assert.Equal(t, int64(360), last.Timestamp)
	require.NotNil(t, last.Value)
	assert.InDelta(t, 200.0, *last.Value, 1e-9)

	_, err = runTschart(t, "store", "status")
	require.NoError(t, err)
}
