package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"csvserve/internal/config"
	"csvserve/internal/dataset"
	"csvserve/internal/logging"
	"csvserve/internal/web"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"source", cfg.Source.Path,
		"delimiter", cfg.Source.Delimiter,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)

	// Kick off the dataset load; the server answers NOT_READY until the
	// outcome is published.
	store := dataset.NewStore()
	loader := &dataset.FileLoader{
		Path:  cfg.Source.Path,
		Comma: cfg.Source.Comma(),
	}

	var loadCtx context.Context
	var cancelLoad context.CancelFunc
	if cfg.Source.LoadTimeout > 0 {
		loadCtx, cancelLoad = context.WithTimeout(context.Background(), cfg.Source.LoadTimeout)
	} else {
		loadCtx, cancelLoad = context.WithCancel(context.Background())
	}
	store.StartLoad(loadCtx, loader)

	// Release the load context once the outcome lands.
	go func() {
		<-store.Done()
		cancelLoad()
	}()

	server := web.NewServer(store, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Abort a load still in flight
		cancelLoad()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
