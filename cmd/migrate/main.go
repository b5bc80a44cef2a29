// Command migrate applies or rolls back the Postgres schema.
//
//	migrate up | down | version
package main

import (
	"fmt"
	"os"

	"booking-warden/internal/config"
	"booking-warden/internal/database/migrations"
	"booking-warden/internal/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, ".env file not found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger(cfg.Log.Dir)
	defer log.Close()

	if len(os.Args) != 2 {
		log.Fatal("APP", "usage: migrate up|down|version")
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("CONFIG", fmt.Sprintf("migrations only apply to postgres, DB_DRIVER is %q", cfg.Database.Driver))
	}
	if cfg.Database.DSN == "" {
		log.Fatal("CONFIG", "DB_DSN not set")
	}

	runner := migrations.NewRunner(cfg.Database.DSN, log)
	defer runner.Close()

	var err error
	switch os.Args[1] {
	case "up":
		err = runner.MigrateUp()
	case "down":
		err = runner.MigrateDown()
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = runner.Version()
		if err == nil {
			log.Info("DATABASE", fmt.Sprintf("Schema version %d (dirty: %t)", version, dirty))
		}
	default:
		log.Fatal("APP", fmt.Sprintf("unknown command %q", os.Args[1]))
	}
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	log.Info("DATABASE", fmt.Sprintf("migrate %s done", os.Args[1]))
}
