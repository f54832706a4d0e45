package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jwebster45206/survival-kitchen/internal/middleware"
	"github.com/jwebster45206/survival-kitchen/internal/sessions"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const maxBodyBytes = 1 << 20

// RouterConfig carries the dependencies of the HTTP API.
type RouterConfig struct {
	Manager        *sessions.Manager
	Storage        storage.Storage
	Redis          *redis.Client
	DefaultCatalog *catalog.Catalog
	RateLimiter    *middleware.RateLimiter
	Logger         *slog.Logger
}

// NewRouter wires every API route.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	r.Method(http.MethodGet, "/health", NewHealthHandler(cfg.Storage, cfg.Manager, cfg.Logger))

	games := NewGamesHandler(cfg.Manager, cfg.Storage, cfg.DefaultCatalog, cfg.Logger)
	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/catalogs", NewCatalogsHandler(cfg.Storage, cfg.Logger))

		// Streaming lives outside the timeout and body-limit group.
		r.Method(http.MethodGet, "/games/{id}/events", NewEventsHandler(cfg.Redis, cfg.Manager, cfg.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(maxBodyBytes))
			r.Use(chimw.Timeout(15 * time.Second))

			r.Post("/games", games.Create)
			r.Get("/games/{id}", games.Get)
			r.Delete("/games/{id}", games.Delete)
			r.Post("/games/{id}/commands", games.Command)
			r.Get("/games/{id}/messages", games.Messages)
			r.Put("/games/{id}/catalog", games.ReloadCatalog)
		})
	})

	return r
}
