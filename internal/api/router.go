package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/socialgram/internal/editor"
	"github.com/starford/socialgram/internal/notify"
	"github.com/starford/socialgram/internal/repository"
)

// RouterConfig wires the API router.
type RouterConfig struct {
	Repo     repository.Repository
	Sessions *editor.Registry
	Creator  *editor.Creator
	Notifier notify.Notifier

	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// AllowedOrigins enables CORS for browser clients on other origins.
	AllowedOrigins []string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(cfg RouterConfig) chi.Router {
	h := NewHandler(cfg.Repo, cfg.Sessions, cfg.Creator, cfg.Notifier)

	r := chi.NewRouter()
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	r.Route("/ideas", func(r chi.Router) {
		r.Get("/", h.ListIdeas)
		r.Post("/", h.CreateIdea)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetIdea)
			r.Patch("/", h.UpdateIdea)
			r.Delete("/", h.DeleteIdea)
			r.Put("/script", h.PutScript)
			r.Post("/links/{category}", h.AddLink)
			r.Delete("/links/{category}/{index}", h.RemoveLink)
		})
	})

	r.Get("/search", h.Search)
	r.Get("/links", h.LinkedIdeas)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
