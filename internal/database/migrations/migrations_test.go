package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"booking-warden/internal/logger"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "warden",
				"POSTGRES_PASSWORD": "warden",
				"POSTGRES_DB":       "warden",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://warden:warden@%s:%s/warden?sslmode=disable", host, port.Port())
}

func TestMigrateUpAndDown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	dsn := startPostgres(t)
	log := logger.NewWriterLogger(io.Discard)

	runner := NewRunner(dsn, log)
	defer runner.Close()

	version, _, err := runner.Version()
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, runner.MigrateUp())
	require.NoError(t, runner.MigrateUp(), "re-running is a no-op")

	version, dirty, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name IN ('orders', 'users', 'locations')`,
	).Scan(&tables))
	assert.Equal(t, 3, tables)

	require.NoError(t, runner.MigrateDown())
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name IN ('orders', 'users', 'locations')`,
	).Scan(&tables))
	assert.Zero(t, tables)
}

func TestInitializeReleasesConnectionOnBadSource(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	dsn := startPostgres(t) + "&application_name=warden_migrate_bad"

	r := &Runner{dsn: dsn, logger: logger.NewWriterLogger(io.Discard), source: fstest.MapFS{}}
	require.Error(t, r.Initialize())
	assert.Nil(t, r.migrator)

	db, err := sql.Open("postgres", startDSN(dsn))
	require.NoError(t, err)
	defer db.Close()

	assert.Eventually(t, func() bool {
		var open int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM pg_stat_activity WHERE application_name = 'warden_migrate_bad'`,
		).Scan(&open)
		return err == nil && open == 0
	}, 5*time.Second, 100*time.Millisecond)
}

// startDSN strips the application name so the checking connection is not counted.
func startDSN(dsn string) string {
	return strings.TrimSuffix(dsn, "&application_name=warden_migrate_bad")
}
