package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/playperu/echochat/internal/aiclient"
	"github.com/playperu/echochat/internal/config"
	"github.com/playperu/echochat/internal/handler/static"
)

// Server is the composition root: one chi router carrying the static assets,
// the chat routes and the operational endpoints.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
	assets *static.Handler
	ai     *aiclient.Provider
}

// New wires every component from cfg. A missing static directory is logged and
// leaves the server running with the JSON index fallback.
func New(cfg *config.Config, logger *slog.Logger, ai *aiclient.Provider) *Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(corsOptions(cfg.CORS)))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	assets, err := static.New(cfg.StaticDir, cfg.IndexFile, logger)
	if err != nil {
		logger.Warn("static assets disabled", "dir", cfg.StaticDir, "error", err)
	} else {
		logger.Info("serving static assets", "dir", cfg.StaticDir, "prefix", cfg.StaticPrefix)
	}

	if cfg.CORS.WildcardCredentials() {
		logger.Warn("CORS allows credentials from any origin",
			"origins", cfg.CORS.AllowedOrigins)
	}

	addRoutes(r, cfg, logger, assets)

	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
		assets: assets,
		ai:     ai,
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// AI returns the lazily built external AI client handle.
func (s *Server) AI() *aiclient.Provider { return s.ai }

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then releases the static root and the
// AI client handle.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	if s.assets != nil {
		err = errors.Join(err, s.assets.Close())
	}
	if s.ai != nil {
		err = errors.Join(err, s.ai.Close())
	}
	return err
}
