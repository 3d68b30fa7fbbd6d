package handlers

import (
	"net/http"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/report"
	"filesorter-ai/internal/taxonomy"
)

const reportTitle = "Taxonomy report"

// ReportHandler renders the taxonomy report.
type ReportHandler struct {
	store    *taxonomy.Store
	renderer *report.Renderer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store *taxonomy.Store) *ReportHandler {
	return &ReportHandler{store: store, renderer: report.NewRenderer()}
}

// ServeHTTP returns the report as an HTML page, or as Markdown when
// format=markdown is given.
//
// swagger:route GET /api/report report
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	markdown, fragment, err := h.renderer.Render(h.store.Entries(), h.store.Aliases())
	if err != nil {
		handleServiceError(ctx, w, err, "failed to render report")
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(markdown)); err != nil {
			logger.ErrorContext(ctx, "failed to write report", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Page(reportTitle, fragment)); err != nil {
		logger.ErrorContext(ctx, "failed to write report", "error", err)
	}
}
