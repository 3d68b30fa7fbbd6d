// Package taxindex mirrors taxonomy entries into a vector collection so the
// consistency pass can offer semantically related labels to the model.
package taxindex

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/vectorstore"
)

const syncBatchSize = 64

// Embedder turns label text into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the semantic taxonomy index.
type Index struct {
	store      vectorstore.VectorStore
	embedder   Embedder
	collection string
	vectorSize int
}

// New creates an Index over collection.
func New(store vectorstore.VectorStore, embedder Embedder, collection string, vectorSize int) *Index {
	return &Index{
		store:      store,
		embedder:   embedder,
		collection: collection,
		vectorSize: vectorSize,
	}
}

// PointID is the stable point id of a normalized label pair.
func PointID(normCategory, normSubcategory string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("filesorter://taxonomy/"+normCategory+"/"+normSubcategory)).String()
}

func labelText(category, subcategory string) string {
	return category + " / " + subcategory
}

// EnsureCollection creates the backing collection if needed.
func (i *Index) EnsureCollection(ctx context.Context) error {
	return i.store.EnsureCollection(ctx, i.collection, i.vectorSize)
}

// Ping reports an error when the backing collection is unreachable or missing.
func (i *Index) Ping(ctx context.Context) error {
	exists, err := i.store.CollectionExists(ctx, i.collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("collection %s does not exist", i.collection)
	}
	return nil
}

// Sync upserts one point per entry in use and deletes the points of entries
// no file record references (frequency 0).
func (i *Index) Sync(ctx context.Context, entries []storage.TaxonomyEntry) error {
	logger := contextutil.LoggerFromContext(ctx)

	var live []storage.TaxonomyEntry
	var unused []string
	for _, e := range entries {
		if e.Frequency > 0 {
			live = append(live, e)
		} else {
			unused = append(unused, PointID(e.NormalizedCategory, e.NormalizedSubcategory))
		}
	}

	for start := 0; start < len(live); start += syncBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := live[start:min(start+syncBatchSize, len(live))]

		texts := make([]string, len(batch))
		for j, e := range batch {
			texts[j] = labelText(e.CanonicalCategory, e.CanonicalSubcategory)
		}
		vectors, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed taxonomy labels: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
		}

		points := make([]vectorstore.Point, len(batch))
		for j, e := range batch {
			points[j] = vectorstore.Point{
				ID:  PointID(e.NormalizedCategory, e.NormalizedSubcategory),
				Vec: vectors[j],
				Meta: map[string]any{
					"category":    e.CanonicalCategory,
					"subcategory": e.CanonicalSubcategory,
					"taxonomy_id": e.ID,
					"frequency":   e.Frequency,
				},
			}
		}
		if err := i.store.Upsert(ctx, i.collection, points); err != nil {
			return fmt.Errorf("failed to upsert taxonomy points: %w", err)
		}
	}

	if len(unused) > 0 {
		if err := i.store.Delete(ctx, i.collection, unused); err != nil {
			return fmt.Errorf("failed to delete unused taxonomy points: %w", err)
		}
	}

	logger.InfoContext(ctx, "taxonomy index synced", "collection", i.collection, "entries", len(live), "removed", len(unused))
	return nil
}

// Related returns up to k indexed labels nearest to any of labels, best
// first. The input labels themselves are not returned.
func (i *Index) Related(ctx context.Context, labels []storage.CategoryPair, k int) ([]storage.CategoryPair, error) {
	if k <= 0 || len(labels) == 0 {
		return nil, nil
	}

	inputs := make(map[storage.CategoryPair]struct{}, len(labels))
	var texts []string
	for _, l := range labels {
		if strings.TrimSpace(l.Category) == "" {
			continue
		}
		if _, dup := inputs[l]; dup {
			continue
		}
		inputs[l] = struct{}{}
		texts = append(texts, labelText(l.Category, l.Subcategory))
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed labels: %w", err)
	}

	best := make(map[storage.CategoryPair]float32)
	for _, vec := range vectors {
		hits, err := i.store.Search(ctx, i.collection, vec, k)
		if err != nil {
			return nil, fmt.Errorf("failed to search taxonomy index: %w", err)
		}
		for _, hit := range hits {
			pair, ok := pairFromMeta(hit.Meta)
			if !ok {
				continue
			}
			if _, input := inputs[pair]; input {
				continue
			}
			if score, seen := best[pair]; !seen || hit.Score > score {
				best[pair] = hit.Score
			}
		}
	}

	related := make([]storage.CategoryPair, 0, len(best))
	for pair := range best {
		related = append(related, pair)
	}
	sort.Slice(related, func(a, b int) bool {
		sa, sb := best[related[a]], best[related[b]]
		if sa != sb {
			return sa > sb
		}
		if related[a].Category != related[b].Category {
			return related[a].Category < related[b].Category
		}
		return related[a].Subcategory < related[b].Subcategory
	})
	if len(related) > k {
		related = related[:k]
	}
	return related, nil
}

func pairFromMeta(meta map[string]any) (storage.CategoryPair, bool) {
	category, _ := meta["category"].(string)
	subcategory, _ := meta["subcategory"].(string)
	if category == "" || subcategory == "" {
		return storage.CategoryPair{}, false
	}
	return storage.CategoryPair{Category: category, Subcategory: subcategory}, true
}
