package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opsline/rcachat/internal/middleware"
	"github.com/opsline/rcachat/internal/port/cache"
)

// MountRoutes registers all API routes on the given chi router. The chat
// endpoint carries idempotency so a retried POST after a network blip does
// not invoke the agent twice.
func MountRoutes(r chi.Router, h *Handlers, idempotencyCache cache.Cache, idempotencyTTL time.Duration) {
	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Chat
		r.With(middleware.Idempotency(idempotencyCache, idempotencyTTL)).
			Post("/chat", h.Chat)

		// Sessions
		r.Post("/sessions/new", h.NewSession)
		r.Get("/session", h.GetSession)

		// History and demo scenarios
		r.Get("/history", h.ListHistory)
		r.Get("/scenarios", h.ListScenarios)

		// Agent identity (for the UI header)
		r.Get("/agent", h.GetAgentInfo)
	})
}
