// Package api assembles the bot's HTTP surface.
package api

import (
	"net/http"

	"github.com/dvloznov/finance-bot/internal/api/handlers"
	"github.com/dvloznov/finance-bot/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// NewRouter mounts the webhook and health endpoints behind the middleware chain.
func NewRouter(pipeline handlers.MessageHandler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))

	webhook := handlers.NewWebhookHandler(pipeline)

	r.Get("/", handlers.Home)
	r.Get("/health", handlers.Health)
	r.Post("/webhook", webhook.Receive)

	return r
}
