package handlers

import (
	"context"
	"net/http"

	"github.com/dvloznov/finance-bot/internal/logger"
	"github.com/dvloznov/finance-bot/internal/messaging"
)

// emptyTwiML acknowledges a webhook without asking the provider to send anything.
const emptyTwiML = "<Response></Response>"

// MessageHandler processes one decoded inbound message.
type MessageHandler interface {
	Handle(ctx context.Context, msg messaging.InboundMessage)
}

// WebhookHandler receives the messaging provider's callbacks.
type WebhookHandler struct {
	pipeline MessageHandler
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(pipeline MessageHandler) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline}
}

// Receive handles POST /webhook. The provider always gets 200 and an empty
// TwiML body, whatever happened while processing.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		log.Warn().Err(err).Msg("Failed to parse webhook form")
	} else {
		msg := messaging.DecodeInbound(r.PostForm)
		log.Info().
			Str("from", msg.From).
			Int("num_media", msg.NumMedia).
			Str("message_sid", msg.MessageSID).
			Msg("Incoming message")

		// A provider disconnect must not abort a half-finished run.
		h.process(context.WithoutCancel(r.Context()), msg)
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(emptyTwiML))
}

func (h *WebhookHandler) process(ctx context.Context, msg messaging.InboundMessage) {
	defer func() {
		if err := recover(); err != nil {
			log := logger.FromContext(ctx)
			log.Error().
				Interface("error", err).
				Str("from", msg.From).
				Msg("Panic while handling message")
		}
	}()

	h.pipeline.Handle(ctx, msg)
}
