package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"booking-warden/internal/config"
	"booking-warden/internal/database/migrations"
	"booking-warden/internal/logger"
	"booking-warden/internal/models"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	maxConnectAttempts = 5
	connectRetryDelay  = 2 * time.Second
)

// Open connects to the configured store and returns a bun handle. Postgres
// goes through lib/pq, sqlite through sqliteshim.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	driverName := "postgres"
	if cfg.Driver == "sqlite" {
		driverName = sqliteshim.ShimName
	}

	var sqldb *sql.DB
	var err error
	for i := 0; i < maxConnectAttempts; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to %s (attempt %d/%d)", cfg.Driver, i+1, maxConnectAttempts))
		sqldb, err = sql.Open(driverName, cfg.DSN)
		if err == nil {
			err = sqldb.PingContext(ctx)
			if err == nil {
				break
			}
			sqldb.Close()
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to %s: %v", cfg.Driver, err))
		if i < maxConnectAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectRetryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s after %d attempts: %w", cfg.Driver, maxConnectAttempts, err)
	}

	if cfg.Driver == "sqlite" {
		// a single connection keeps :memory: databases coherent
		sqldb.SetMaxOpenConns(1)
		log.Info("DATABASE", "✅ SQLite connection successful")
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// Tables lists every model the warden persists, parents first.
func Tables() []interface{} {
	return []interface{}{(*models.Location)(nil), (*models.User)(nil), (*models.Order)(nil)}
}

// CreateTables builds the schema straight from the bun models. Used for
// sqlite stores, where the Postgres migrations do not apply.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, m := range Tables() {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}

// PrepareSchema brings the schema up to date according to the driver.
func PrepareSchema(ctx context.Context, db *bun.DB, cfg config.DatabaseConfig, log *logger.Logger) error {
	if !cfg.AutoMigrate {
		log.Info("DATABASE", "Auto migration disabled, assuming schema is current")
		return nil
	}
	if cfg.Driver == "sqlite" {
		if err := CreateTables(ctx, db); err != nil {
			return err
		}
		log.LogDatabase("CREATE", "orders,users,locations", "schema ensured from models")
		return nil
	}

	runner := migrations.NewRunner(cfg.DSN, log)
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("DATABASE", fmt.Sprintf("Closing migrator: %v", err))
		}
	}()
	return runner.MigrateUp()
}
