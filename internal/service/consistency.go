package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/llm"
	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

const (
	defaultChunkSize        = 10
	defaultSnapshotSize     = 150
	defaultConsistencyToken = 512
	relatedPerChunk         = 10
)

// CategorizedItem is an item together with its current label.
type CategorizedItem struct {
	Item
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	TaxonomyID  int64  `json:"taxonomy_id"`
}

// RelatedFinder returns taxonomy labels semantically close to the given ones.
type RelatedFinder interface {
	Related(ctx context.Context, labels []storage.CategoryPair, k int) ([]storage.CategoryPair, error)
}

// ConsistencyConfig configures a ConsistencyPass.
type ConsistencyConfig struct {
	ChunkSize     int
	SnapshotSize  int
	MaxTokens     int
	PromptLogging bool
}

// ConsistencyOptions controls one Run.
type ConsistencyOptions struct {
	Progress ProgressFunc
	// Stop is sampled between chunks.
	Stop *atomic.Bool
}

// ConsistencyReport summarizes a Run.
type ConsistencyReport struct {
	Chunks       int `json:"chunks"`
	FailedChunks int `json:"failed_chunks"`
	Changed      int `json:"changed"`
}

// ConsistencyPass asks the model to re-align assigned labels with the
// current taxonomy, a chunk at a time.
type ConsistencyPass struct {
	provider Provider
	resolver *taxonomy.Resolver
	files    FileStore
	related  RelatedFinder
	cfg      ConsistencyConfig
}

// NewConsistencyPass creates a ConsistencyPass.
func NewConsistencyPass(provider Provider, resolver *taxonomy.Resolver, files FileStore, cfg ConsistencyConfig) *ConsistencyPass {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.SnapshotSize <= 0 {
		cfg.SnapshotSize = defaultSnapshotSize
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultConsistencyToken
	}
	return &ConsistencyPass{
		provider: provider,
		resolver: resolver,
		files:    files,
		cfg:      cfg,
	}
}

// WithRelated adds semantically related taxonomy entries to each chunk's prompt.
func (p *ConsistencyPass) WithRelated(finder RelatedFinder) *ConsistencyPass {
	p.related = finder
	return p
}

// Run harmonizes existing in place. Entries of newly that share an id with a
// harmonized item receive the same label. A failed chunk is skipped; the
// returned error is only set when ctx ends the pass.
func (p *ConsistencyPass) Run(ctx context.Context, existing, newly []CategorizedItem, opts ConsistencyOptions) (ConsistencyReport, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var report ConsistencyReport

	if len(existing) == 0 || stopped(opts.Stop) {
		return report, nil
	}

	byID := indexByID(existing)
	newByID := indexByID(newly)
	snapshot := p.snapshot()

	total := len(existing)
	for start := 0; start < total; start += p.cfg.ChunkSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if stopped(opts.Stop) {
			logger.InfoContext(ctx, "consistency pass stopped", "processed", start, "total", total)
			break
		}

		end := min(start+p.cfg.ChunkSize, total)
		chunk := existing[start:end]
		report.Chunks++

		logger.InfoContext(ctx, fmt.Sprintf("[CONSISTENCY] Processing chunk %d-%d of %d", start+1, end, total))
		for _, item := range chunk {
			logger.DebugContext(ctx, fmt.Sprintf("  [BEFORE] %s -> %s / %s", item.Name, item.Category, item.Subcategory))
		}

		updates, err := p.harmonizeChunk(ctx, chunk, snapshot)
		if err != nil {
			report.FailedChunks++
			logger.WarnContext(ctx, "consistency pass chunk failed", "chunk_start", start+1, "chunk_end", end, "error", err)
			continue
		}

		for _, u := range updates {
			changed, ok := p.apply(ctx, u, existing, newly, byID, newByID, opts.Progress)
			if ok && changed {
				report.Changed++
			}
		}

		for _, item := range existing[start:end] {
			logger.DebugContext(ctx, fmt.Sprintf("  [AFTER] %s -> %s / %s", item.Name, item.Category, item.Subcategory))
		}
	}

	logger.InfoContext(ctx, "consistency pass finished",
		"chunks", report.Chunks, "failed_chunks", report.FailedChunks, "changed", report.Changed)
	return report, nil
}

// harmonizedEntry is one element of the model's reply. Missing fields are nil.
type harmonizedEntry struct {
	ID          *string `json:"id"`
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
}

type harmonizedReply struct {
	Harmonized []json.RawMessage `json:"harmonized"`
}

func (p *ConsistencyPass) harmonizeChunk(ctx context.Context, chunk []CategorizedItem, snapshot []storage.CategoryPair) ([]harmonizedEntry, error) {
	logger := contextutil.LoggerFromContext(ctx)

	taxonomyLabels := p.withRelated(ctx, chunk, snapshot)
	prompt, err := buildConsistencyPrompt(chunk, taxonomyLabels)
	if err != nil {
		return nil, err
	}
	if p.cfg.PromptLogging {
		logger.DebugContext(ctx, "consistency prompt", "prompt", prompt)
	}

	reply, err := p.provider.CompletePrompt(ctx, prompt, p.cfg.MaxTokens)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	if p.cfg.PromptLogging {
		logger.DebugContext(ctx, "consistency response", "response", reply)
	}

	return parseConsistencyResponse(ctx, reply)
}

// apply writes one harmonized entry. ok is false when the entry was skipped.
func (p *ConsistencyPass) apply(ctx context.Context, entry harmonizedEntry, existing, newly []CategorizedItem,
	byID, newByID map[string]int, progress ProgressFunc) (changed, ok bool) {
	logger := contextutil.LoggerFromContext(ctx)

	if entry.ID == nil || strings.TrimSpace(*entry.ID) == "" {
		logger.WarnContext(ctx, "harmonized entry without id skipped")
		return false, false
	}
	id := strings.TrimSpace(*entry.ID)
	idx, found := byID[id]
	if !found {
		logger.WarnContext(ctx, "consistency pass referenced unknown item id", "id", id, "error", ErrUnknownReference)
		return false, false
	}
	target := &existing[idx]

	category := target.Category
	if entry.Category != nil && strings.TrimSpace(*entry.Category) != "" {
		category = strings.TrimSpace(*entry.Category)
	}
	subcategory := target.Subcategory
	if entry.Subcategory != nil && strings.TrimSpace(*entry.Subcategory) != "" {
		subcategory = strings.TrimSpace(*entry.Subcategory)
	}
	if subcategory == "" {
		subcategory = category
	}

	resolved := p.resolver.Resolve(ctx, category, subcategory)
	changed = resolved.Category != target.Category || resolved.Subcategory != target.Subcategory

	target.Category = resolved.Category
	target.Subcategory = resolved.Subcategory
	target.TaxonomyID = resolved.TaxonomyID

	if err := persistLabel(ctx, p.files, p.resolver, target.Item, resolved); err != nil {
		logger.WarnContext(ctx, "failed to persist harmonized label", "id", id, "error", err)
	}

	if j, present := newByID[id]; present {
		newly[j].Category = resolved.Category
		newly[j].Subcategory = resolved.Subcategory
		newly[j].TaxonomyID = resolved.TaxonomyID
	}

	if changed {
		line := fmt.Sprintf("[CONSISTENCY] %s -> %s / %s", target.Name, resolved.Category, resolved.Subcategory)
		emit(progress, line)
		logger.InfoContext(ctx, line)
	}
	return changed, true
}

func (p *ConsistencyPass) snapshot() []storage.CategoryPair {
	entries := p.resolver.Store().Snapshot(p.cfg.SnapshotSize)
	pairs := make([]storage.CategoryPair, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, storage.CategoryPair{Category: e.CanonicalCategory, Subcategory: e.CanonicalSubcategory})
	}
	return pairs
}

// withRelated appends index matches for the chunk's labels to snapshot.
// Index errors leave the snapshot unchanged.
func (p *ConsistencyPass) withRelated(ctx context.Context, chunk []CategorizedItem, snapshot []storage.CategoryPair) []storage.CategoryPair {
	if p.related == nil {
		return snapshot
	}

	labels := make([]storage.CategoryPair, 0, len(chunk))
	for _, item := range chunk {
		labels = append(labels, storage.CategoryPair{Category: item.Category, Subcategory: item.Subcategory})
	}
	extra, err := p.related.Related(ctx, labels, relatedPerChunk)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "related taxonomy lookup failed", "error", err)
		return snapshot
	}

	seen := make(map[storage.CategoryPair]struct{}, len(snapshot)+len(extra))
	out := make([]storage.CategoryPair, 0, len(snapshot)+len(extra))
	for _, pair := range append(append([]storage.CategoryPair(nil), snapshot...), extra...) {
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		out = append(out, pair)
	}
	return out
}

type promptLabel struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

type promptItem struct {
	ID          string `json:"id"`
	File        string `json:"file"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func buildConsistencyPrompt(chunk []CategorizedItem, labels []storage.CategoryPair) (string, error) {
	known := make([]promptLabel, 0, len(labels))
	for _, l := range labels {
		known = append(known, promptLabel{Category: l.Category, Subcategory: l.Subcategory})
	}
	items := make([]promptItem, 0, len(chunk))
	for _, item := range chunk {
		items = append(items, promptItem{
			ID:          item.ID(),
			File:        item.Name,
			Category:    item.Category,
			Subcategory: item.Subcategory,
		})
	}

	knownJSON, err := json.Marshal(known)
	if err != nil {
		return "", fmt.Errorf("failed to encode taxonomy snapshot: %w", err)
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode items: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a taxonomy normalization assistant.\n")
	b.WriteString("Review the (category, subcategory) assignments below and make them consistent.\n")
	b.WriteString("Guidelines:\n")
	b.WriteString("1. Prefer the known taxonomy entries when they closely match.\n")
	b.WriteString("2. Merge near-duplicate labels (e.g. 'Docs' vs 'Documents'), but do not collapse distinct concepts.\n")
	b.WriteString("3. Keep labels that already fit the file.\n")
	b.WriteString("4. Always provide both category and subcategory.\n")
	b.WriteString("5. Respond with JSON only, shaped as {\"harmonized\":[{\"id\":\"...\",\"category\":\"...\",\"subcategory\":\"...\"}]}.\n\n")
	b.WriteString("Known taxonomy entries:\n")
	b.Write(knownJSON)
	b.WriteString("\n\nItems:\n")
	b.Write(itemsJSON)
	b.WriteString("\n")
	return b.String(), nil
}

// parseConsistencyResponse accepts {"harmonized":[...]}, a bare array, or
// "<id> => <Category> : <Subcategory>" lines ending with END.
func parseConsistencyResponse(ctx context.Context, reply string) ([]harmonizedEntry, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var raw json.RawMessage
	if err := llm.DecodeJSON(reply, &raw); err == nil {
		if elements, ok := harmonizedElements(raw); ok {
			entries := make([]harmonizedEntry, 0, len(elements))
			for _, el := range elements {
				var entry harmonizedEntry
				if err := json.Unmarshal(el, &entry); err != nil {
					logger.WarnContext(ctx, "harmonized entry is not an object", "error", err)
					continue
				}
				entries = append(entries, entry)
			}
			return entries, nil
		}
	}

	entries := parseHarmonizedLines(reply)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, snippetOf(reply))
	}
	return entries, nil
}

func harmonizedElements(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}
	switch trimmed[0] {
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, false
		}
		return elements, true
	case '{':
		var obj harmonizedReply
		if err := json.Unmarshal(trimmed, &obj); err != nil || obj.Harmonized == nil {
			return nil, false
		}
		return obj.Harmonized, true
	}
	return nil, false
}

func parseHarmonizedLines(reply string) []harmonizedEntry {
	var entries []harmonizedEntry
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "END" {
			break
		}

		id, rest, found := strings.Cut(line, "=>")
		if !found {
			continue
		}
		category, subcategory, _ := strings.Cut(rest, ":")
		id = strings.TrimSpace(id)
		category = strings.TrimSpace(category)
		subcategory = strings.TrimSpace(subcategory)
		if subcategory == "" {
			subcategory = category
		}
		if id == "" || category == "" {
			continue
		}
		entries = append(entries, harmonizedEntry{ID: &id, Category: &category, Subcategory: &subcategory})
	}
	return entries
}

// persistLabel stores resolved for item in the item's own directory, keeping
// any rename suggestion already recorded there.
func persistLabel(ctx context.Context, files FileStore, resolver *taxonomy.Resolver, item Item, resolved taxonomy.Resolved) error {
	rec := &storage.FileRecord{
		DirPath:     item.Dir,
		FileName:    item.Name,
		FileType:    item.FileType(),
		Category:    resolved.Category,
		Subcategory: resolved.Subcategory,
		TaxonomyID:  resolved.TaxonomyID,
	}
	existing, err := files.Get(ctx, item.Dir, item.Name, item.FileType())
	switch {
	case err == nil:
		rec.SuggestedName = existing.SuggestedName
		rec.RenameApplied = existing.RenameApplied
	case !errors.Is(err, storage.ErrNotFound):
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "existing record lookup failed", "name", item.Name, "error", err)
	}

	if err := files.Upsert(ctx, rec); err != nil {
		return WrapError(err, "failed to persist categorization")
	}
	if existing != nil && existing.TaxonomyID > 0 && existing.TaxonomyID != resolved.TaxonomyID {
		resolver.RecomputeFrequency(ctx, existing.TaxonomyID, resolved.TaxonomyID)
	} else {
		resolver.RecomputeFrequency(ctx, resolved.TaxonomyID)
	}
	return nil
}

func indexByID(items []CategorizedItem) map[string]int {
	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[item.ID()] = i
	}
	return byID
}

func stopped(stop *atomic.Bool) bool {
	return stop != nil && stop.Load()
}

func snippetOf(s string) string {
	const limit = 120
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
