package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/echochat/internal/config"
	"github.com/playperu/echochat/internal/handler/chat"
	"github.com/playperu/echochat/internal/handler/health"
	"github.com/playperu/echochat/internal/handler/static"
	"github.com/playperu/echochat/internal/httpjson"
)

func addRoutes(r chi.Router, cfg *config.Config, logger *slog.Logger, assets *static.Handler) {
	checks := map[string]health.Checker{}

	r.Get("/openapi.json", handleOpenAPI(cfg))
	r.Mount("/docs", v5emb.New("Chat API", "/openapi.json", "/docs"))

	// Root serves the SPA entry file when the static directory is present.
	if assets != nil {
		r.Get("/", assets.Index())
		r.Mount(cfg.StaticPrefix, assets.Routes())
		checks["static"] = assets
	} else {
		r.Get("/", static.Fallback())
	}

	r.Mount(cfg.APIPrefix, chat.NewHandler(logger).Routes())
	r.Mount("/healthz", health.NewHandler(logger, checks).Routes())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}
