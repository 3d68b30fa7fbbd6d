package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/pipeline"
	"filesorter-ai/internal/scanner"
	"filesorter-ai/internal/service"
)

// SessionRunner runs categorization sessions and consistency passes.
type SessionRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Report, error)
	Harmonize(ctx context.Context, dir string, recursive bool, progress service.ProgressFunc) ([]service.CategorizedItem, service.ConsistencyReport, error)
}

// CategorizeRequest represents a categorization request.
//
// swagger:model CategorizeRequest
type CategorizeRequest struct {
	// Directory to categorize
	// required: true
	Dir string `json:"dir"`

	// Include regular files (default true when neither files nor directories is set)
	Files *bool `json:"files,omitempty"`

	// Include directories
	Directories *bool `json:"directories,omitempty"`

	Hidden    bool `json:"hidden"`
	Recursive bool `json:"recursive"`

	// Run the consistency pass after the new items are labelled
	Consistency bool `json:"consistency"`

	AbortOnError bool `json:"abort_on_error"`

	// Remove empty records under dir first
	Cleanup bool `json:"cleanup"`
}

// CategorizeResponse represents a categorization response.
//
// swagger:model CategorizeResponse
type CategorizeResponse struct {
	*pipeline.Report

	// Progress lines emitted during the session
	Progress []string `json:"progress"`

	// Set when the session stopped early under abort_on_error
	Aborted string `json:"aborted,omitempty"`
}

// CategorizeHandler handles HTTP requests for categorization sessions.
type CategorizeHandler struct {
	runner SessionRunner
}

// NewCategorizeHandler creates a new CategorizeHandler.
func NewCategorizeHandler(runner SessionRunner) *CategorizeHandler {
	return &CategorizeHandler{runner: runner}
}

// ServeHTTP handles HTTP requests for categorization.
//
// swagger:route POST /api/categorize categorize
//
// Categorize the entries of a directory.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/CategorizeResponse"
//	'400':
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *CategorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req CategorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(ctx, w, err, "")
		return
	}
	if strings.TrimSpace(req.Dir) == "" {
		handleServiceError(ctx, w, &service.ValidationError{Field: "dir", Message: "dir cannot be empty"}, "")
		return
	}

	progress := &progressLog{}
	preq := pipeline.Request{
		Dir:         req.Dir,
		Options:     req.scanOptions(),
		Consistency: req.Consistency,
		Cleanup:     req.Cleanup,
		Progress:    progress.add,
	}
	if req.AbortOnError {
		preq.Policy = service.AbortOnError
	}

	logger.InfoContext(ctx, "categorization requested", "dir", req.Dir, "recursive", req.Recursive)
	report, err := h.runner.Run(ctx, preq)
	if err != nil && (report == nil || report.Stats.Scanned == 0) {
		handleServiceError(ctx, w, err, "failed to categorize directory")
		return
	}

	resp := CategorizeResponse{Report: report, Progress: progress.snapshot()}
	if err != nil {
		resp.Aborted = err.Error()
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func (req CategorizeRequest) scanOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.Hidden = req.Hidden
	opts.Recursive = req.Recursive
	if req.Files == nil && req.Directories == nil {
		return opts
	}
	opts.Files = req.Files != nil && *req.Files
	opts.Directories = req.Directories != nil && *req.Directories
	return opts
}

// ConsistencyRequest represents a request to harmonize stored labels.
//
// swagger:model ConsistencyRequest
type ConsistencyRequest struct {
	// required: true
	Dir       string `json:"dir"`
	Recursive bool   `json:"recursive"`
}

// ConsistencyResponse represents the outcome of a consistency pass.
//
// swagger:model ConsistencyResponse
type ConsistencyResponse struct {
	Items    []service.CategorizedItem `json:"items"`
	Report   service.ConsistencyReport `json:"report"`
	Progress []string                  `json:"progress"`
}

// ConsistencyHandler handles HTTP requests for standalone consistency passes.
type ConsistencyHandler struct {
	runner SessionRunner
}

// NewConsistencyHandler creates a new ConsistencyHandler.
func NewConsistencyHandler(runner SessionRunner) *ConsistencyHandler {
	return &ConsistencyHandler{runner: runner}
}

// ServeHTTP handles HTTP requests for consistency passes.
//
// swagger:route POST /api/consistency consistency
//
// Harmonize the stored labels of a directory against the taxonomy.
func (h *ConsistencyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req ConsistencyRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(ctx, w, err, "")
		return
	}
	if strings.TrimSpace(req.Dir) == "" {
		handleServiceError(ctx, w, &service.ValidationError{Field: "dir", Message: "dir cannot be empty"}, "")
		return
	}

	progress := &progressLog{}
	items, report, err := h.runner.Harmonize(ctx, req.Dir, req.Recursive, progress.add)
	if err != nil {
		handleServiceError(ctx, w, err, "failed to run consistency pass")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ConsistencyResponse{Items: items, Report: report, Progress: progress.snapshot()})
}

// progressLog collects progress lines for the response body.
type progressLog struct {
	mu    sync.Mutex
	lines []string
}

func (p *progressLog) add(line string) {
	p.mu.Lock()
	p.lines = append(p.lines, line)
	p.mu.Unlock()
}

func (p *progressLog) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.lines...)
}
