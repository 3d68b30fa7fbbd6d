package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"filesorter-ai/internal/contextutil"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	database           Pinger
	index              Pinger
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. index may be nil when the
// semantic taxonomy index is disabled.
func NewHealthHandler(database Pinger, index Pinger) *HealthHandler {
	return &HealthHandler{
		database:           database,
		index:              index,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK if healthy, 503 Service Unavailable if degraded or unhealthy.
// The model provider is not probed.
//
// swagger:route GET /api/health healthCheck
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is degraded or unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	// The database is required; the index only degrades the service.
	status := "healthy"
	httpStatus := http.StatusOK
	if h.check(checkCtx, logger, "database", h.database) {
		checks["database"] = "ok"
	} else {
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	if h.index != nil {
		if h.check(checkCtx, logger, "vector_store", h.index) {
			checks["vector_store"] = "ok"
		} else {
			checks["vector_store"] = "error"
			issues = append(issues, "vector_store_unavailable")
			if status == "healthy" {
				status = "degraded"
				httpStatus = http.StatusServiceUnavailable
			}
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}
	writeJSON(ctx, w, httpStatus, response)
}

func (h *HealthHandler) check(ctx context.Context, logger *slog.Logger, name string, p Pinger) bool {
	if p == nil {
		return false
	}
	if err := p.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
		return false
	}
	return true
}
