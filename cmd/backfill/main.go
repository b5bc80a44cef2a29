// Command backfill imports Heynabo locations and users into the reference
// tables the policy pass attributes bookings with. Run it once before the
// first pass and whenever residents move.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"booking-warden/internal/auth"
	"booking-warden/internal/config"
	"booking-warden/internal/database"
	"booking-warden/internal/directory"
	directorydb "booking-warden/internal/directory/db"
	"booking-warden/internal/heynabo"
	"booking-warden/internal/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, ".env file not found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger(cfg.Log.Dir)
	defer log.Close()
	log.SetLevel(logger.ParseLevel(cfg.Log.Level))

	if cfg.Heynabo.Host == "" || cfg.Heynabo.Email == "" || cfg.Heynabo.Password == "" || cfg.Database.DSN == "" {
		log.Fatal("CONFIG", "HEYNABO_HOST, HEYNABO_EMAIL, HEYNABO_PASSWORD and DB_DSN must be set")
	}

	ctx := context.Background()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := database.PrepareSchema(ctx, bunDB, cfg.Database, log); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Schema preparation failed: %v", err))
	}

	client := heynabo.NewClient(cfg.Heynabo, &http.Client{Timeout: cfg.Heynabo.HTTPTimeout}, log)
	tokens := auth.NewTokenProvider(client, nil, log)

	svc := directory.NewService(&directorydb.DB{Bun: bunDB}, log)
	result, err := svc.Backfill(ctx, client, tokens)
	if err != nil {
		log.Fatal("BACKFILL", err.Error())
	}

	log.Info("BACKFILL", fmt.Sprintf("Imported %d locations and %d users", result.Locations, result.Users))
}
