package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filesorter-ai/internal/app"
	"filesorter-ai/internal/config"
	"filesorter-ai/internal/handlers"
	"filesorter-ai/internal/http"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API categorizes files and directories with a language model and keeps
// the resulting labels consistent through a canonical category taxonomy.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: FileSorter AI API
//   description: |
//     Categorization sessions, consistency passes and taxonomy queries over
//     a local file-categorization database.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()
	slog.Info("Database initialized", "path", cfg.DBPath, "taxonomy_entries", len(a.Resolver.Store().Entries()))

	if err := a.Sweeper.Schedule(cfg.CleanupSchedule); err != nil {
		log.Fatalf("Failed to schedule cleanup: %v", err)
	}
	if cfg.CleanupSchedule != "" {
		slog.Info("Cleanup scheduled", "schedule", cfg.CleanupSchedule)
	}

	// Load the local model in the background so startup is not blocked.
	go func() {
		if err := a.WarmUp(ctx); err != nil {
			slog.Warn("Model warm-up failed", "model", cfg.LLMModelName, "error", err)
		}
	}()

	deps := &http.Deps{
		Runner:   a.Pipeline,
		Resolver: a.Resolver,
		Records:  a.Files,
		Sweeper:  a.Sweeper,
		Database: a.Taxonomy,
	}
	if a.Index != nil {
		deps.Index = handlers.Pinger(a.Index)
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", server.Addr)
	slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		slog.Error("API server failed", "error", err)
		stop()
	}
	<-shutdownDone
}
