package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hack4good/ideadex/internal/svc"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(service *svc.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(service)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Proposals (read-only).
	r.Get("/proposals", h.ListProposals)
	r.Get("/proposals/*", h.GetProposal)

	// Search.
	r.Get("/search", h.Search)

	// Stats.
	r.Get("/stats", h.Stats)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
