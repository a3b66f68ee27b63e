package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-bot/internal/api"
	"github.com/dvloznov/finance-bot/internal/archive"
	"github.com/dvloznov/finance-bot/internal/config"
	"github.com/dvloznov/finance-bot/internal/llm"
	"github.com/dvloznov/finance-bot/internal/logger"
	"github.com/dvloznov/finance-bot/internal/messaging"
	"github.com/dvloznov/finance-bot/internal/pipeline"
	"github.com/dvloznov/finance-bot/internal/sheets"
	"github.com/dvloznov/finance-bot/internal/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Parse command-line flags
	var (
		port   = flag.String("port", cfg.Server.Port, "HTTP server port (or set PORT env)")
		dbPath = flag.String("db", cfg.Store.Path, "SQLite database file (or set DB_PATH env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format})

	ctx := context.Background()

	store, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open record store")
	}
	defer store.Close()

	extractor, err := llm.NewGeminiExtractor(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	gateway := messaging.NewGateway(cfg.Twilio, log)
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
		log.Warn().Msg("Twilio credentials not configured - replies will be dropped")
	}

	mirror := sheets.NewMirror(cfg.Sheets, nil, log)
	if cfg.Sheets.SpreadsheetID == "" {
		log.Warn().Msg("GOOGLE_SHEETS_ID not configured - spreadsheet mirror will report 'missing id'")
	}

	var opts []pipeline.Option
	if cfg.Archive.Bucket != "" {
		archiver, err := archive.New(ctx, cfg.Archive.Bucket, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create media archiver")
		}
		opts = append(opts, pipeline.WithArchiver(archiver))
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("Voice notes will be archived")
	}

	p := pipeline.New(extractor, store, mirror, gateway, opts...)

	// Create HTTP server
	server := &http.Server{
		Addr:        ":" + *port,
		Handler:     api.NewRouter(p, log),
		ReadTimeout: 15 * time.Second,
		// The webhook runs the whole pipeline before answering.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting finance bot")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
