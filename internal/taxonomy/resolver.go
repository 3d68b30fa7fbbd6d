package taxonomy

import (
	"context"
	"sync"

	"filesorter-ai/internal/contextutil"
)

// Unavailable is the taxonomy id returned when resolution could not reach the store.
const Unavailable int64 = -1

// Resolved is a canonical label pair and its taxonomy id.
type Resolved struct {
	TaxonomyID  int64  `json:"taxonomy_id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Empty reports whether either label is blank.
func (r Resolved) Empty() bool {
	return r.Category == "" || r.Subcategory == ""
}

// Resolver turns raw labels into canonical ones. Every label write goes
// through Resolve so near-duplicates converge on one entry.
type Resolver struct {
	store *Store
	mu    sync.Mutex
}

// NewResolver creates a Resolver over store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Store returns the underlying taxonomy store.
func (r *Resolver) Store() *Store {
	return r.store
}

// Resolve maps (category, subcategory) onto a canonical entry, trying aliases,
// exact matches and fuzzy matches before creating a new entry. When the store
// cannot be written, the sanitized input is returned with TaxonomyID Unavailable.
func (r *Resolver) Resolve(ctx context.Context, rawCategory, rawSubcategory string) Resolved {
	logger := contextutil.LoggerFromContext(ctx)

	category, normCategory := prepare(rawCategory, DefaultCategory)
	subcategory, normSubcategory := prepare(rawSubcategory, DefaultSubcategory)
	key := Key{normCategory, normSubcategory}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, found := r.store.FindAlias(key)
	if !found {
		id, found = r.store.FindCanonical(key)
	}
	if !found {
		if bestID, score, ok := r.store.FindBestFuzzy(normCategory, normSubcategory); ok && MeetsThreshold(score) {
			logger.DebugContext(ctx, "fuzzy taxonomy match",
				"category", category, "subcategory", subcategory, "taxonomy_id", bestID, "score", score)
			id, found = bestID, true
		}
	}

	wrote := false
	if !found {
		newID, recovered, err := r.store.CreateEntry(ctx, category, subcategory, normCategory, normSubcategory)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create taxonomy entry",
				"category", category, "subcategory", subcategory, "error", err)
			return Resolved{TaxonomyID: Unavailable, Category: category, Subcategory: subcategory}
		}
		if recovered {
			logger.DebugContext(ctx, "taxonomy insert raced, reusing existing entry", "taxonomy_id", newID)
		}
		id, wrote = newID, !recovered
	}

	entry, ok := r.store.Get(id)
	if !ok {
		return Resolved{TaxonomyID: Unavailable, Category: category, Subcategory: subcategory}
	}

	if entry.NormalizedCategory != normCategory || entry.NormalizedSubcategory != normSubcategory {
		if _, aliased := r.store.FindAlias(key); !aliased {
			if err := r.store.RegisterAlias(ctx, id, normCategory, normSubcategory); err != nil {
				logger.WarnContext(ctx, "failed to register taxonomy alias", "taxonomy_id", id, "error", err)
			} else {
				wrote = true
			}
		}
	}

	if wrote {
		r.recompute(ctx, id)
		entry, _ = r.store.Get(id)
	}

	return Resolved{
		TaxonomyID:  entry.ID,
		Category:    entry.CanonicalCategory,
		Subcategory: entry.CanonicalSubcategory,
	}
}

// RecomputeFrequency refreshes the frequency of each valid id. Errors are logged.
func (r *Resolver) RecomputeFrequency(ctx context.Context, ids ...int64) {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r.recompute(ctx, id)
	}
}

func (r *Resolver) recompute(ctx context.Context, id int64) {
	if err := r.store.RecomputeFrequency(ctx, id); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to recompute taxonomy frequency",
			"taxonomy_id", id, "error", err)
	}
}

// prepare sanitizes a label, applies the default when it is empty and returns
// the display text with its normalized key.
func prepare(raw, fallback string) (string, string) {
	label := SanitizeLabel(raw)
	if label == "" {
		label = fallback
	}
	normalized := Normalize(label)
	if normalized == "" {
		label = fallback
		normalized = Normalize(fallback)
	}
	return label, normalized
}
