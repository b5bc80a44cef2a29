package db_test

import (
	"context"
	"database/sql"
	"testing"

	"booking-warden/internal/database"
	"booking-warden/internal/directory/db"
	"booking-warden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *db.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := database.CreateTables(context.Background(), bunDB); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })
	return &db.DB{Bun: bunDB}
}

func TestUpsertLocationOverwritesEveryField(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertLocation(ctx, &models.Location{ID: 12, Address: "Havevej 12", City: "Roskilde", Hidden: true}))
	require.NoError(t, store.UpsertLocation(ctx, &models.Location{ID: 3, Address: "Havevej 3"}))
	require.NoError(t, store.UpsertLocation(ctx, &models.Location{ID: 12, Address: "Havevej 12A", City: "Roskilde"}))

	locations, err := store.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, int64(3), locations[0].ID)
	assert.Equal(t, "Havevej 12A", locations[1].Address)
	assert.False(t, locations[1].Hidden)
}

func TestUpsertUserOverwritesUnit(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: 1, FirstName: "Ane", LastName: "Holm", LocationID: 12}))
	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: 1, FirstName: "Ane", LastName: "Holm", LocationID: 14}))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(14), users[0].LocationID)
	assert.Equal(t, "Ane Holm", users[0].FullName())
}
