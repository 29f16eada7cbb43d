package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/echochat/internal/aiclient"
	"github.com/playperu/echochat/internal/config"
	"github.com/playperu/echochat/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(stdout, cfg)

	// --- External AI client (built on first use) ---
	ai := aiclient.NewProvider(cfg.GeminiAPIKey)
	if err := aiclient.CheckKey(cfg.GeminiAPIKey); err != nil {
		var cfgErr *aiclient.ConfigurationError
		if !errors.As(err, &cfgErr) {
			return err
		}
		logger.Warn("AI client not configured", "setting", cfgErr.Setting, "error", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg, logger, ai)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.Addr(), "dev_mode", cfg.DevMode)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
