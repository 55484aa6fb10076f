package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seliv/margin/internal/threadservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *threadservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents.
	r.Get("/files", h.ListFiles)
	r.Get("/content/*", h.GetContent)

	// Comment threads.
	r.Get("/threads/*", h.GetThreads)
	r.Post("/threads/*", h.AddComment)

	// Search and aggregates.
	r.Get("/search", h.Search)
	r.Get("/authors", h.Authors)
	r.Get("/timeline", h.Timeline)
	r.Get("/tags", h.Tags)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
