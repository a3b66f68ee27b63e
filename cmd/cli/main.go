package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dvloznov/finance-bot/internal/config"
	"github.com/dvloznov/finance-bot/internal/llm"
	"github.com/dvloznov/finance-bot/internal/logger"
	"github.com/dvloznov/finance-bot/internal/messaging"
	"github.com/dvloznov/finance-bot/internal/pipeline"
	"github.com/dvloznov/finance-bot/internal/sheets"
	"github.com/dvloznov/finance-bot/internal/store/sqlite"
	"github.com/rs/zerolog"
)

const defaultSender = "cli:local"

func main() {
	cfg := config.Load()
	log := logger.NewWithOptions(logger.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "send":
		runSend(cfg, log)
	case "voice":
		runVoice(cfg, log)
	case "parse":
		runParse(cfg, log)
	case "stats":
		runStats(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Bot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  send      Run a text message through the bot, replies printed here")
	fmt.Println("  voice     Run a local voice note through the bot")
	fmt.Println("  parse     Store model JSON directly, skipping the model call")
	fmt.Println("  stats     Print a sender's report")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runSend(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	from := fs.String("from", defaultSender, "Sender id")
	text := fs.String("text", "", "Message text")
	fs.Parse(os.Args[2:])

	if *text == "" {
		log.Fatal().Msg("-text is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	p, closeFn := buildPipeline(ctx, cfg, log, true)
	defer closeFn()

	p.Handle(ctx, messaging.InboundMessage{From: *from, Body: *text})
}

func runVoice(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("voice", flag.ExitOnError)
	from := fs.String("from", defaultSender, "Sender id")
	file := fs.String("file", "", "Path to a voice note (.ogg)")
	contentType := fs.String("content-type", "audio/ogg", "Content type of the file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("-file is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	p, closeFn := buildPipeline(ctx, cfg, log, true)
	defer closeFn()

	p.Handle(ctx, messaging.InboundMessage{
		From:     *from,
		NumMedia: 1,
		Media:    []messaging.Media{{ContentType: *contentType, URL: *file}},
	})
}

func runParse(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	from := fs.String("from", defaultSender, "Sender id")
	input := fs.String("json", "", "Model answer to store (reads stdin when empty)")
	fs.Parse(os.Args[2:])

	text := *input
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		text = string(data)
	}

	ctx := logger.WithContext(context.Background(), log)
	p, closeFn := buildPipeline(ctx, cfg, log, false)
	defer closeFn()

	n := p.ParseAndPersist(ctx, *from, text)
	log.Info().Int("stored", n).Msg("Parse completed")
}

func runStats(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	from := fs.String("from", defaultSender, "Sender id")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	store, err := sqlite.Open(ctx, cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer store.Close()

	stats, err := store.Stats(ctx, *from)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute stats")
	}
	fmt.Println(pipeline.FormatStats(stats))
}

// buildPipeline wires the real store, mirror and (optionally) Gemini, with
// replies going to stdout.
func buildPipeline(ctx context.Context, cfg config.Config, log zerolog.Logger, withModel bool) (*pipeline.Pipeline, func()) {
	store, err := sqlite.Open(ctx, cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}

	var extractor pipeline.Extractor
	if withModel {
		gemini, err := llm.NewGeminiExtractor(ctx, cfg.Gemini)
		if err != nil {
			store.Close()
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		extractor = gemini
	}

	mirror := sheets.NewMirror(cfg.Sheets, nil, log)
	gateway := &consoleGateway{out: os.Stdout}

	return pipeline.New(extractor, store, mirror, gateway), func() { store.Close() }
}

// consoleGateway prints replies and reads "media" from the local filesystem.
type consoleGateway struct {
	out io.Writer
}

func (g *consoleGateway) SendReply(ctx context.Context, to, text string) {
	fmt.Fprintf(g.out, "→ %s\n%s\n\n", to, messaging.TruncateReply(text))
}

func (g *consoleGateway) DownloadMedia(ctx context.Context, url, destination string) bool {
	log := logger.FromContext(ctx)

	src, err := os.Open(url)
	if err != nil {
		log.Error().Err(err).Str("path", url).Msg("Failed to open voice note")
		return false
	}
	defer src.Close()

	dst, err := os.Create(destination)
	if err != nil {
		log.Error().Err(err).Str("path", destination).Msg("Failed to create temp file")
		return false
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return false
	}
	return dst.Close() == nil
}
