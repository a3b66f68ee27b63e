// Package pipeline classifies inbound chat messages, asks the model for
// transactions and fans each one out to the store, the spreadsheet and the
// reply.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/finance-bot/internal/domain"
	"github.com/dvloznov/finance-bot/internal/llm"
	"github.com/dvloznov/finance-bot/internal/logger"
	"github.com/dvloznov/finance-bot/internal/messaging"
	"github.com/google/uuid"
)

// Pipeline handles one inbound message at a time. It keeps no state between
// messages and is safe for concurrent use if its collaborators are.
type Pipeline struct {
	extractor Extractor
	store     RecordStore
	mirror    Mirror
	gateway   Gateway
	archiver  MediaArchiver // optional

	tempDir string
	newID   func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithArchiver copies every downloaded voice note through a.
func WithArchiver(a MediaArchiver) Option {
	return func(p *Pipeline) { p.archiver = a }
}

// WithTempDir sets where voice notes are downloaded. Default os.TempDir().
func WithTempDir(dir string) Option {
	return func(p *Pipeline) { p.tempDir = dir }
}

// New wires a Pipeline.
func New(extractor Extractor, store RecordStore, mirror Mirror, gateway Gateway, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		store:     store,
		mirror:    mirror,
		gateway:   gateway,
		tempDir:   os.TempDir(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle dispatches one message: media first, then text. A message with
// neither gets no reply.
func (p *Pipeline) Handle(ctx context.Context, msg messaging.InboundMessage) {
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"from":        msg.From,
		"message_sid": msg.MessageSID,
	})
	ctx = logger.WithContext(ctx, log)

	if msg.HasMedia() {
		media := msg.Media[0]
		if !isAudio(media.ContentType) {
			log.Info().Str("content_type", media.ContentType).Msg("Unsupported media")
			p.gateway.SendReply(ctx, msg.From, MsgSendAudioOrText)
			return
		}
		p.handleAudio(ctx, msg.From, media)
		return
	}

	text := strings.TrimSpace(msg.Body)
	if text == "" {
		log.Debug().Msg("Empty message ignored")
		return
	}

	if isStatsCommand(text) {
		p.handleStats(ctx, msg.From)
		return
	}
	p.handleText(ctx, msg.From, msg.Body)
}

func (p *Pipeline) handleText(ctx context.Context, userID, text string) {
	log := logger.FromContext(ctx)

	out, err := p.extractor.Extract(ctx, llm.Content{Text: text}, llm.TextInstructions())
	if err != nil {
		log.Error().Err(err).Msg("Text extraction failed")
		p.gateway.SendReply(ctx, userID, MsgAIError)
		return
	}
	p.ParseAndPersist(ctx, userID, out)
}

func (p *Pipeline) handleAudio(ctx context.Context, userID string, media messaging.Media) {
	log := logger.FromContext(ctx)

	path := filepath.Join(p.tempDir, p.newID()+".ogg")
	defer removeQuietly(path)

	if !p.gateway.DownloadMedia(ctx, media.URL, path) {
		p.gateway.SendReply(ctx, userID, MsgDownloadError)
		return
	}
	p.gateway.SendReply(ctx, userID, MsgListening)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to read voice note")
		p.gateway.SendReply(ctx, userID, MsgAIError)
		return
	}

	mimeType := baseMIMEType(media.ContentType)
	if p.archiver != nil {
		if uri, err := p.archiver.Archive(ctx, mimeType, data); err != nil {
			log.Warn().Err(err).Msg("Failed to archive voice note")
		} else if uri != "" {
			log.Debug().Str("uri", uri).Msg("Voice note archived")
		}
	}

	out, err := p.extractor.Extract(ctx, llm.Content{Data: data, MIMEType: mimeType}, llm.AudioInstructions())
	if err != nil {
		log.Error().Err(err).Msg("Audio extraction failed")
		p.gateway.SendReply(ctx, userID, MsgAIError)
		return
	}
	p.ParseAndPersist(ctx, userID, out)
}

func (p *Pipeline) handleStats(ctx context.Context, userID string) {
	log := logger.FromContext(ctx)

	stats, err := p.store.Stats(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute stats")
		p.gateway.SendReply(ctx, userID, MsgStatsError)
		return
	}
	p.gateway.SendReply(ctx, userID, FormatStats(stats))
}

// FormatStats renders the total followed by one line per category.
func FormatStats(stats domain.UserStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Financial Report*\n\n💰 Total: %.2f€\n\n📂 *Breakdown:*", stats.Total)
	for _, c := range stats.Categories {
		fmt.Fprintf(&b, "\n- %s: %.2f€", c.Category, c.Total)
	}
	return b.String()
}

func isStatsCommand(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == statsCommand || strings.Contains(t, "stat")
}

func isAudio(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "audio")
}

// baseMIMEType drops parameters such as "; codecs=opus".
func baseMIMEType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(base)
}

// removeQuietly deletes path if it exists; cleanup errors are dropped.
func removeQuietly(path string) {
	_ = os.Remove(path)
}
