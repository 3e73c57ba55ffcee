package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scrap/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, logger *slog.Logger) chi.Router {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token, logger))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
	})

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.ListFolders)
		r.Post("/", h.CreateFolder)
		r.Get("/{id}", h.GetFolder)
		r.Put("/{id}", h.RenameFolder)
		r.Delete("/{id}", h.DeleteFolder)
	})

	r.Get("/resolve/{input}", h.Resolve)
	r.Post("/sync", h.Sync)
	r.Get("/history", h.History)

	return r
}
