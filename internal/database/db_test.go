package database_test

import (
	"context"
	"io"
	"testing"

	"booking-warden/internal/config"
	"booking-warden/internal/database"
	"booking-warden/internal/logger"
	"booking-warden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAndPrepareSchema(t *testing.T) {
	ctx := context.Background()
	log := logger.NewWriterLogger(io.Discard)
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", AutoMigrate: true}

	db, err := database.Open(ctx, cfg, log)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.PrepareSchema(ctx, db, cfg, log))
	// idempotent
	require.NoError(t, database.PrepareSchema(ctx, db, cfg, log))

	for _, m := range database.Tables() {
		_, err := db.NewSelect().Model(m).Count(ctx)
		assert.NoError(t, err, "table for %T should exist", m)
	}

	_, err = db.NewInsert().Model(&models.Location{ID: 7, Address: "Havevej 7"}).Exec(ctx)
	assert.NoError(t, err)
}

func TestPrepareSchemaSkipsWhenAutoMigrateDisabled(t *testing.T) {
	ctx := context.Background()
	log := logger.NewWriterLogger(io.Discard)
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}

	db, err := database.Open(ctx, cfg, log)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.PrepareSchema(ctx, db, cfg, log))

	_, err = db.NewSelect().Model((*models.Order)(nil)).Count(ctx)
	assert.Error(t, err, "no schema should have been created")
}
