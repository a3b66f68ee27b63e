package main

import (
	"context"
	"flag"

	"github.com/dvloznov/finance-bot/internal/config"
	"github.com/dvloznov/finance-bot/internal/logger"
	"github.com/dvloznov/finance-bot/internal/store/sqlite"
)

func main() {
	cfg := config.Load()

	var (
		dbPath = flag.String("db", cfg.Store.Path, "SQLite database file (or set DB_PATH env)")
		status = flag.Bool("status", false, "Only print the current schema version")
	)
	flag.Parse()

	log := logger.NewWithOptions(logger.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format})
	ctx := context.Background()

	// Open creates the file and runs pending migrations, so status is
	// read from the raw handle before anything is applied.
	store, err := sqlite.OpenRaw(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open database")
	}
	defer store.Close()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read schema version")
	}
	log.Info().
		Str("path", *dbPath).
		Int("version", current).
		Int("latest", sqlite.LatestVersion()).
		Msg("Schema status")

	if *status {
		return
	}

	applied, err := store.Migrate(ctx)
	for _, m := range applied {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Migration applied")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	if len(applied) == 0 {
		log.Info().Msg("No new migrations to apply. Database is up to date.")
	} else {
		log.Info().Int("count", len(applied)).Msg("Migrations applied")
	}
}
