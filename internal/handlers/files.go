package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"filesorter-ai/internal/service"
	"filesorter-ai/internal/storage"
)

// RecordStore lists and cleans stored file records.
type RecordStore interface {
	ListByDir(ctx context.Context, dirPath string, recursive bool) ([]storage.FileRecord, error)
}

// Sweeper removes records that carry neither a label nor a suggested name.
type Sweeper interface {
	Sweep(ctx context.Context, dirPath string) ([]storage.FileRecord, error)
}

// FileRecord is the JSON view of a stored record.
//
// swagger:model FileRecord
type FileRecord struct {
	Dir           string    `json:"dir"`
	Name          string    `json:"name"`
	IsDir         bool      `json:"is_dir"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory"`
	TaxonomyID    int64     `json:"taxonomy_id,omitempty"`
	SuggestedName string    `json:"suggested_name,omitempty"`
	RenameOnly    bool      `json:"rename_only,omitempty"`
	RenameApplied bool      `json:"rename_applied,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FilesHandler lists stored labels for a directory.
type FilesHandler struct {
	records RecordStore
}

// NewFilesHandler creates a new FilesHandler.
func NewFilesHandler(records RecordStore) *FilesHandler {
	return &FilesHandler{records: records}
}

// ServeHTTP handles GET /api/files?dir=...&recursive=true.
//
// swagger:route GET /api/files files
func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	dir := r.URL.Query().Get("dir")
	if dir == "" {
		handleServiceError(ctx, w, &service.ValidationError{Field: "dir", Message: "dir query parameter is required"}, "")
		return
	}
	recursive := false
	if v := r.URL.Query().Get("recursive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			handleServiceError(ctx, w, &service.ValidationError{Field: "recursive", Message: "recursive must be a boolean"}, "")
			return
		}
		recursive = parsed
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		handleServiceError(ctx, w, &service.ValidationError{Field: "dir", Message: "dir cannot be resolved"}, "")
		return
	}
	records, err := h.records.ListByDir(ctx, abs, recursive)
	if err != nil {
		handleServiceError(ctx, w, err, "failed to list records")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toFileRecords(records))
}

// CleanupRequest selects the directory to clean. An empty dir cleans every record.
//
// swagger:model CleanupRequest
type CleanupRequest struct {
	Dir string `json:"dir"`
}

// CleanupResponse lists the removed records.
//
// swagger:model CleanupResponse
type CleanupResponse struct {
	Removed []FileRecord `json:"removed"`
}

// CleanupHandler removes empty records.
type CleanupHandler struct {
	sweeper Sweeper
}

// NewCleanupHandler creates a new CleanupHandler.
func NewCleanupHandler(sweeper Sweeper) *CleanupHandler {
	return &CleanupHandler{sweeper: sweeper}
}

// ServeHTTP handles POST /api/cleanup.
//
// swagger:route POST /api/cleanup cleanup
func (h *CleanupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req CleanupRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(ctx, w, err, "")
			return
		}
	}

	dir := req.Dir
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			handleServiceError(ctx, w, &service.ValidationError{Field: "dir", Message: "dir cannot be resolved"}, "")
			return
		}
		dir = abs
	}

	removed, err := h.sweeper.Sweep(ctx, dir)
	if err != nil {
		handleServiceError(ctx, w, err, "failed to clean records")
		return
	}
	writeJSON(ctx, w, http.StatusOK, CleanupResponse{Removed: toFileRecords(removed)})
}

func toFileRecords(records []storage.FileRecord) []FileRecord {
	out := make([]FileRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, FileRecord{
			Dir:           rec.DirPath,
			Name:          rec.FileName,
			IsDir:         rec.FileType == storage.FileTypeDirectory,
			Category:      rec.Category,
			Subcategory:   rec.Subcategory,
			TaxonomyID:    rec.TaxonomyID,
			SuggestedName: rec.SuggestedName,
			RenameOnly:    rec.RenameOnly,
			RenameApplied: rec.RenameApplied,
			UpdatedAt:     rec.UpdatedAt,
		})
	}
	return out
}
