package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"filesorter-ai/internal/handlers"
	"filesorter-ai/internal/taxonomy"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Runner   handlers.SessionRunner
	Resolver *taxonomy.Resolver
	Records  handlers.RecordStore
	Sweeper  handlers.Sweeper
	Database handlers.Pinger
	// Index is nil when the semantic taxonomy index is disabled.
	Index handlers.Pinger
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	taxonomyHandler := handlers.NewTaxonomyHandler(deps.Resolver)
	reportHandler := handlers.NewReportHandler(deps.Resolver.Store())

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/categorize", handlers.NewCategorizeHandler(deps.Runner))
		r.Method(http.MethodPost, "/consistency", handlers.NewConsistencyHandler(deps.Runner))
		r.Method(http.MethodGet, "/files", handlers.NewFilesHandler(deps.Records))
		r.Method(http.MethodPost, "/cleanup", handlers.NewCleanupHandler(deps.Sweeper))
		r.Method(http.MethodGet, "/report", reportHandler)
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Database, deps.Index))

		r.Get("/taxonomy", taxonomyHandler.List)
		r.Get("/taxonomy/{id}", taxonomyHandler.Get)
		r.Post("/taxonomy/resolve", taxonomyHandler.Resolve)
	})

	r.Method(http.MethodGet, "/report", reportHandler)

	// Liveness probe
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("filesorter-ai ok\n"))
	})

	return r
}
