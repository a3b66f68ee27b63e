package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dvloznov/finance-bot/internal/config"
	"github.com/dvloznov/finance-bot/internal/export"
	"github.com/dvloznov/finance-bot/internal/logger"
	"github.com/dvloznov/finance-bot/internal/store/sqlite"
)

func main() {
	cfg := config.Load()

	var (
		dbPath    = flag.String("db", cfg.Store.Path, "SQLite database file (or set DB_PATH env)")
		xlsxPath  = flag.String("xlsx", "finance_report.xlsx", "Excel report output path")
		csvPath   = flag.String("csv", "finance_report.csv", "CSV report output path")
		tail      = flag.Int("tail", 5, "Number of latest transactions to print")
		bqProject = flag.String("bq-project", "", "Optional: BigQuery project to load transactions into")
		bqDataset = flag.String("bq-dataset", "", "Optional: BigQuery dataset (table 'transactions')")
	)
	flag.Parse()

	log := logger.NewWithOptions(logger.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format})
	ctx := context.Background()

	// Open would create an empty database; report a missing file instead.
	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("Database not found")
	}

	store, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer store.Close()

	records, err := store.ListAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions")
	}
	if len(records) == 0 {
		log.Warn().Msg("The database is empty, nothing to export")
		return
	}

	var xlsx bytes.Buffer
	if err := export.WriteXLSX(&xlsx, records); err != nil {
		log.Fatal().Err(err).Msg("Failed to build Excel report")
	}
	if err := os.WriteFile(*xlsxPath, xlsx.Bytes(), 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *xlsxPath).Msg("Failed to write Excel report")
	}

	csvFile, err := os.Create(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *csvPath).Msg("Failed to create CSV report")
	}
	if err := export.WriteCSV(csvFile, records); err != nil {
		csvFile.Close()
		log.Fatal().Err(err).Msg("Failed to write CSV report")
	}
	if err := csvFile.Close(); err != nil {
		log.Fatal().Err(err).Msg("Failed to close CSV report")
	}

	export.PrintSummary(os.Stdout, export.Summarize(records), export.Tail(records, *tail))
	fmt.Printf("\n✅ Export complete:\n- %s (Excel)\n- %s (CSV, for Google Sheets)\n", *xlsxPath, *csvPath)

	if *bqProject != "" && *bqDataset != "" {
		if err := export.LoadToBigQuery(ctx, *bqProject, *bqDataset, records); err != nil {
			log.Fatal().Err(err).Msg("Failed to load transactions into BigQuery")
		}
		log.Info().
			Int("count", len(records)).
			Str("project", *bqProject).
			Str("dataset", *bqDataset).
			Msg("Transactions loaded into BigQuery")
	}
}
