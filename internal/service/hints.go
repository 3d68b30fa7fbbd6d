package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

// maxHints caps the recent assignments offered per prompt.
const maxHints = 5

// HintHistory remembers the labels assigned during one run, keyed by item
// signature, most recent first.
type HintHistory struct {
	mu    sync.Mutex
	bySig map[string][]storage.CategoryPair
}

// NewHintHistory creates an empty history.
func NewHintHistory() *HintHistory {
	return &HintHistory{bySig: make(map[string][]storage.CategoryPair)}
}

// Record moves pair to the front of the signature's history.
func (h *HintHistory) Record(sig string, pair storage.CategoryPair) {
	pair, ok := cleanPair(pair)
	if !ok || sig == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.bySig[sig]
	next := make([]storage.CategoryPair, 0, maxHints)
	next = append(next, pair)
	for _, p := range prev {
		if p == pair {
			continue
		}
		if len(next) == maxHints {
			break
		}
		next = append(next, p)
	}
	h.bySig[sig] = next
}

// Get returns a copy of the history for sig.
func (h *HintHistory) Get(sig string) []storage.CategoryPair {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]storage.CategoryPair(nil), h.bySig[sig]...)
}

// cleanPair sanitizes both labels. A blank subcategory takes the category.
func cleanPair(p storage.CategoryPair) (storage.CategoryPair, bool) {
	p.Category = taxonomy.SanitizeLabel(p.Category)
	p.Subcategory = taxonomy.SanitizeLabel(p.Subcategory)
	if p.Category == "" {
		return p, false
	}
	if p.Subcategory == "" {
		p.Subcategory = p.Category
	}
	return p, true
}

// extension returns the lowercased extension including the dot, or "".
func extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx+1 >= len(name) {
		return ""
	}
	return strings.ToLower(name[idx:])
}

// signature groups similar items: "FILE:.pdf", "DIR:<none>".
func signature(item Item) string {
	tag := "FILE"
	if item.IsDir {
		tag = "DIR"
	}
	ext := extension(item.Name)
	if ext == "" {
		ext = "<none>"
	}
	return tag + ":" + ext
}

// collectHints takes the session history first and tops it up with labels
// recently stored for the same extension.
func (o *Orchestrator) collectHints(ctx context.Context, item Item, history *HintHistory) []storage.CategoryPair {
	hints := make([]storage.CategoryPair, 0, maxHints)
	add := func(p storage.CategoryPair) bool {
		p, ok := cleanPair(p)
		if !ok {
			return false
		}
		for _, existing := range hints {
			if existing == p {
				return false
			}
		}
		hints = append(hints, p)
		return len(hints) == maxHints
	}

	if history != nil {
		for _, p := range history.Get(signature(item)) {
			if add(p) {
				return hints
			}
		}
	}

	remaining := maxHints - len(hints)
	recent, err := o.files.RecentCategoriesForExtension(ctx, extension(item.Name), item.FileType(), remaining)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to load recent categories", "name", item.Name, "error", err)
		return hints
	}
	for _, p := range recent {
		if add(p) {
			break
		}
	}
	return hints
}

func formatHintBlock(hints []storage.CategoryPair) string {
	if len(hints) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent assignments for similar items:\n")
	for _, h := range hints {
		fmt.Fprintf(&b, "- %s : %s\n", h.Category, h.Subcategory)
	}
	b.WriteString("Prefer one of the above when it fits; otherwise, choose the closest consistent alternative.")
	return b.String()
}

func languageBlock(language string) string {
	language = strings.TrimSpace(language)
	if language == "" || strings.EqualFold(language, "english") {
		return ""
	}
	return fmt.Sprintf("Use %s for both the main category and subcategory names. Respond in %s.", language, language)
}

func whitelistBlock(wl *Whitelist) string {
	if wl == nil {
		return ""
	}
	var b strings.Builder
	if len(wl.Categories) > 0 {
		b.WriteString("Allowed main categories (pick exactly one label from the numbered list):\n")
		for i, c := range wl.Categories {
			fmt.Fprintf(&b, "%d) %s\n", i+1, c)
		}
	}
	if len(wl.Subcategories) > 0 {
		b.WriteString("Allowed subcategories (pick exactly one label from the numbered list):\n")
		for i, s := range wl.Subcategories {
			fmt.Fprintf(&b, "%d) %s\n", i+1, s)
		}
	} else {
		b.WriteString("Allowed subcategories: any (pick a specific, relevant subcategory; do not repeat the main category).")
	}
	return strings.TrimRight(b.String(), "\n")
}

// promptContext joins the language, whitelist and hint blocks.
func (o *Orchestrator) promptContext(ctx context.Context, item Item, history *HintHistory) string {
	var blocks []string
	if lang := languageBlock(o.cfg.Language); lang != "" {
		blocks = append(blocks, lang)
	}
	if wl := whitelistBlock(o.cfg.Whitelist); wl != "" {
		blocks = append(blocks, wl)
	}
	if o.cfg.Hints {
		if hint := formatHintBlock(o.collectHints(ctx, item, history)); hint != "" {
			blocks = append(blocks, hint)
		}
	}
	return strings.Join(blocks, "\n\n")
}
