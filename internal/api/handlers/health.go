package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/finance-bot/internal/api/middleware"
)

// HomeMessage is served on GET /.
const HomeMessage = "Finance bot running!"

// Home handles GET /.
func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(HomeMessage))
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
