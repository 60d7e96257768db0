package server

import (
	"net/http"

	"github.com/cloo-solutions/snowbot/internal/api"
	"github.com/cloo-solutions/snowbot/internal/api/handlers"
	"github.com/cloo-solutions/snowbot/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AskHandler   *handlers.AskHandler
	AdminHandler *handlers.AdminHandler
	AdminToken   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/ready", cfg.AskHandler.Ready)
	r.Post("/ask", cfg.AskHandler.Ask)

	if cfg.AdminHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.AdminToken))
			r.Post("/admin/reindex", cfg.AdminHandler.Reindex)
		})
	}

	return r
}
