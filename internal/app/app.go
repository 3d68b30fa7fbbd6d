// Package app wires the storage, taxonomy, model and pipeline layers from a
// Config. Both the API server and the CLI build on it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"filesorter-ai/internal/config"
	"filesorter-ai/internal/llm"
	"filesorter-ai/internal/maintenance"
	"filesorter-ai/internal/pipeline"
	"filesorter-ai/internal/service"
	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxindex"
	"filesorter-ai/internal/taxonomy"
	"filesorter-ai/internal/vectorstore"
)

// App holds the wired components.
type App struct {
	Config *config.Config

	DB       *sql.DB
	Files    *storage.FileRepo
	Taxonomy *storage.TaxonomyRepo
	Resolver *taxonomy.Resolver

	Provider     llm.Provider
	Orchestrator *service.Orchestrator
	Consistency  *service.ConsistencyPass
	Sweeper      *maintenance.Sweeper
	Pipeline     *pipeline.Pipeline

	// Index is nil when QDRANT_URL is not set.
	Index *taxindex.Index

	lock   *storage.WriteLock
	qdrant *vectorstore.QdrantStore
}

// NewLogger builds the slog logger described by cfg.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// New opens the database, loads the taxonomy and builds every service.
// Call Close when done.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.lock, err = storage.AcquireWriteLock(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a.DB, err = storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(a.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.DebugContext(ctx, "Database initialized", "path", cfg.DBPath)

	a.Files = storage.NewFileRepo(a.DB)
	a.Taxonomy = storage.NewTaxonomyRepo(a.DB)

	store := taxonomy.NewStore(a.Taxonomy)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	a.Resolver = taxonomy.NewResolver(store)
	slog.DebugContext(ctx, "Taxonomy loaded", "entries", len(store.Entries()))

	a.Provider, err = llm.New(llm.ProviderConfig{
		Kind:    cfg.LLMProvider,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModelName,
		APIKey:  cfg.LLMAPIKey,
	})
	if err != nil {
		return nil, err
	}

	a.Orchestrator = service.NewOrchestrator(a.Provider, a.Resolver, a.Files, service.OrchestratorConfig{
		LocalTimeout:  cfg.LocalLLMTimeout,
		RemoteTimeout: cfg.RemoteLLMTimeout,
		Keys:          keySource(cfg),
		Hints:         cfg.ConsistencyHints,
		Language:      cfg.CategoryLanguage,
		Whitelist:     whitelist(cfg.Whitelist),
	})
	a.Consistency = service.NewConsistencyPass(a.Provider, a.Resolver, a.Files, service.ConsistencyConfig{
		ChunkSize:     cfg.ConsistencyChunkSize,
		SnapshotSize:  cfg.TaxonomySnapshotSize,
		MaxTokens:     cfg.ConsistencyMaxTokens,
		PromptLogging: cfg.PromptLogging,
	})
	a.Sweeper = maintenance.NewSweeper(a.Files, a.Resolver)

	if cfg.QdrantURL != "" {
		if err := a.connectIndex(ctx); err != nil {
			return nil, err
		}
		a.Consistency.WithRelated(a.Index)
		a.Sweeper.WithIndex(a.Index)
	}

	a.Pipeline = pipeline.New(a.Orchestrator, a.Consistency, a.Files, a.Sweeper)
	return a, nil
}

// connectIndex validates the embeddings endpoint, prepares the collection and
// syncs the current taxonomy into it.
func (a *App) connectIndex(ctx context.Context) error {
	cfg := a.Config

	qs, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return err
	}
	a.qdrant = qs

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	// EmbedTexts rejects vectors of the wrong size, so one call validates the model.
	if _, err := embedder.EmbedTexts(ctx, []string{"Documents / Reports"}); err != nil {
		return fmt.Errorf("failed to validate embedding client: %w", err)
	}

	a.Index = taxindex.New(qs, embedder, cfg.QdrantCollection, embedder.VectorSize())
	if err := a.Index.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	if err := a.Index.Sync(ctx, a.Resolver.Store().Entries()); err != nil {
		return fmt.Errorf("failed to sync taxonomy index: %w", err)
	}
	slog.InfoContext(ctx, "Taxonomy index ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)
	return nil
}

// WarmUp asks a local llama.cpp router to load the configured model. It is a
// no-op for remote providers.
func (a *App) WarmUp(ctx context.Context) error {
	if !a.Provider.IsLocal() {
		return nil
	}
	return llm.NewModelLoader(a.Config.LLMBaseURL).LoadModel(ctx, a.Config.LLMModelName, nil)
}

// Close stops the sweeper schedule and releases every resource.
func (a *App) Close() {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	if a.qdrant != nil {
		_ = a.qdrant.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.lock != nil {
		if err := a.lock.Release(); err != nil {
			slog.Warn("Failed to release database lock", "error", err)
		}
	}
}

func keySource(cfg *config.Config) llm.KeySource {
	if cfg.IsLocalProvider() {
		return nil
	}
	return llm.EnvKeySource{Var: cfg.LLMAPIKeyEnv, Fallback: cfg.LLMAPIKey}
}

func whitelist(wl *config.Whitelist) *service.Whitelist {
	if wl == nil {
		return nil
	}
	return &service.Whitelist{Categories: wl.Categories, Subcategories: wl.Subcategories}
}
