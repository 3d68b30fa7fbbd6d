package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/service"
	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

// TaxonomyEntry is the JSON view of a canonical entry.
//
// swagger:model TaxonomyEntry
type TaxonomyEntry struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Frequency   int    `json:"frequency"`

	// Normalized label pairs that resolve to this entry
	Aliases []string `json:"aliases"`
}

// ResolveRequest represents a label to resolve.
//
// swagger:model ResolveRequest
type ResolveRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// TaxonomyHandler serves the canonical taxonomy.
type TaxonomyHandler struct {
	resolver *taxonomy.Resolver
}

// NewTaxonomyHandler creates a new TaxonomyHandler.
func NewTaxonomyHandler(resolver *taxonomy.Resolver) *TaxonomyHandler {
	return &TaxonomyHandler{resolver: resolver}
}

// List returns every entry ordered by id.
//
// swagger:route GET /api/taxonomy taxonomyList
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	store := h.resolver.Store()
	aliases := aliasesByID(store.Aliases())

	entries := store.Entries()
	out := make([]TaxonomyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toTaxonomyEntry(e, aliases[e.ID]))
	}
	writeJSON(r.Context(), w, http.StatusOK, out)
}

// Get returns one entry.
//
// swagger:route GET /api/taxonomy/{id} taxonomyGet
func (h *TaxonomyHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		handleServiceError(ctx, w, &service.ValidationError{Field: "id", Message: "id must be a positive integer"}, "")
		return
	}

	store := h.resolver.Store()
	entry, ok := store.Get(id)
	if !ok {
		handleServiceError(ctx, w, service.ErrNotFound, "")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toTaxonomyEntry(entry, aliasesByID(store.Aliases())[id]))
}

// Resolve maps a raw label pair onto its canonical entry, creating one when
// nothing matches.
//
// swagger:route POST /api/taxonomy/resolve taxonomyResolve
func (h *TaxonomyHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(ctx, w, err, "")
		return
	}

	resolved := h.resolver.Resolve(ctx, req.Category, req.Subcategory)
	if resolved.TaxonomyID == taxonomy.Unavailable {
		logger.ErrorContext(ctx, "taxonomy store unavailable", "category", req.Category, "subcategory", req.Subcategory)
		writeError(w, http.StatusServiceUnavailable, "taxonomy store unavailable")
		return
	}
	writeJSON(ctx, w, http.StatusOK, resolved)
}

func toTaxonomyEntry(e storage.TaxonomyEntry, aliases []string) TaxonomyEntry {
	if aliases == nil {
		aliases = []string{}
	}
	return TaxonomyEntry{
		ID:          e.ID,
		Category:    e.CanonicalCategory,
		Subcategory: e.CanonicalSubcategory,
		Frequency:   e.Frequency,
		Aliases:     aliases,
	}
}

// aliasesByID groups alias keys as "category : subcategory" per entry id.
func aliasesByID(aliases map[taxonomy.Key]int64) map[int64][]string {
	out := make(map[int64][]string)
	for k, id := range aliases {
		out[id] = append(out[id], strings.Join([]string{k.Category, k.Subcategory}, " : "))
	}
	for _, list := range out {
		sort.Strings(list)
	}
	return out
}
