package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks filesorter-ai/internal/service Provider
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_store.go -package=mocks filesorter-ai/internal/service FileStore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/llm"
	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

// Provider is the model interface used by categorization and the consistency pass.
// This interface is defined from the service layer's perspective (consumer-first).
type Provider interface {
	// CategorizeFile returns a "Category : Subcategory" line for one item.
	CategorizeFile(ctx context.Context, name, path string, isDir bool, hints string) (string, error)
	// CompletePrompt returns the raw reply to a prompt.
	CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error)
	// IsLocal reports whether the model runs on this machine.
	IsLocal() bool
}

// FileStore persists categorized file records.
type FileStore interface {
	// GetByNameAndType returns the newest record for (name, type) in any directory.
	GetByNameAndType(ctx context.Context, fileName string, fileType storage.FileType) (*storage.FileRecord, error)
	Get(ctx context.Context, dirPath, fileName string, fileType storage.FileType) (*storage.FileRecord, error)
	Upsert(ctx context.Context, rec *storage.FileRecord) error
	Delete(ctx context.Context, dirPath, fileName string, fileType storage.FileType) error
	RecentCategoriesForExtension(ctx context.Context, ext string, fileType storage.FileType, limit int) ([]storage.CategoryPair, error)
}

const (
	defaultLocalTimeout  = 60 * time.Second
	defaultRemoteTimeout = 10 * time.Second
)

// Item is one file-system entry to categorize.
type Item struct {
	Dir   string `json:"dir"`
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// FullPath returns the entry's path.
func (i Item) FullPath() string {
	return filepath.Join(i.Dir, i.Name)
}

// ID returns the stable slash-separated key used to match harmonized entries.
func (i Item) ID() string {
	return filepath.ToSlash(filepath.Join(i.Dir, i.Name))
}

// FileType returns the storage file type for the entry.
func (i Item) FileType() storage.FileType {
	if i.IsDir {
		return storage.FileTypeDirectory
	}
	return storage.FileTypeFile
}

// Source tells where a label came from.
type Source string

const (
	SourceCache Source = "CACHE"
	SourceAI    Source = "AI"
)

// RecategorizationHint asks the caller to process an item again.
type RecategorizationHint struct {
	Item   Item   `json:"item"`
	Reason string `json:"reason"`
}

// Result is the outcome of categorizing one item. Exactly one of Err and
// Hint is set when the item was not categorized.
type Result struct {
	Item     Item
	Resolved taxonomy.Resolved
	Source   Source
	Err      error
	Hint     *RecategorizationHint
}

// OK reports whether the item received a label.
func (r Result) OK() bool {
	return r.Err == nil && r.Hint == nil
}

// ProgressFunc receives human-readable progress lines.
type ProgressFunc func(line string)

// BatchPolicy decides what CategorizeAll does after a failed item.
type BatchPolicy int

const (
	// ContinueOnError records the failure and moves on to the next item.
	ContinueOnError BatchPolicy = iota
	// AbortOnError stops at the first failure. Results gathered so far are
	// returned and stay persisted.
	AbortOnError
)

// BatchOptions controls CategorizeAll.
type BatchOptions struct {
	Policy   BatchPolicy
	Progress ProgressFunc
	// Stop is sampled between items. A nil Stop never stops.
	Stop *atomic.Bool
}

// Whitelist limits the labels the model may pick. An empty list leaves
// that level unrestricted.
type Whitelist struct {
	Categories    []string
	Subcategories []string
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	LocalTimeout  time.Duration
	RemoteTimeout time.Duration
	// Keys is checked before every remote model call. Nil disables the check.
	Keys llm.KeySource
	// Hints adds recent assignments for similar items to the prompt.
	Hints bool
	// Language is the label language. Empty or English adds no instruction.
	Language  string
	Whitelist *Whitelist
}

// Orchestrator categorizes single items: cache first, then a bounded model call.
type Orchestrator struct {
	provider Provider
	resolver *taxonomy.Resolver
	files    FileStore
	cfg      OrchestratorConfig
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(provider Provider, resolver *taxonomy.Resolver, files FileStore, cfg OrchestratorConfig) *Orchestrator {
	if cfg.LocalTimeout <= 0 {
		cfg.LocalTimeout = defaultLocalTimeout
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = defaultRemoteTimeout
	}
	return &Orchestrator{
		provider: provider,
		resolver: resolver,
		files:    files,
		cfg:      cfg,
	}
}

// Timeout returns the model call timeout for the current provider.
func (o *Orchestrator) Timeout() time.Duration {
	if o.provider.IsLocal() {
		return o.cfg.LocalTimeout
	}
	return o.cfg.RemoteTimeout
}

// CategorizeAll categorizes items in order. history may be nil; a fresh one
// is used then. The returned error is non-nil only when the batch stopped
// early: cancellation, or the first failure under AbortOnError.
func (o *Orchestrator) CategorizeAll(ctx context.Context, items []Item, history *HintHistory, opts BatchOptions) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	if history == nil {
		history = NewHintHistory()
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if opts.Stop != nil && opts.Stop.Load() {
			logger.InfoContext(ctx, "categorization stopped", "processed", len(results), "remaining", len(items)-len(results))
			break
		}

		res := o.Categorize(ctx, item, history, opts.Progress)
		results = append(results, res)

		if res.Err != nil && opts.Policy == AbortOnError {
			return results, WrapError(res.Err, fmt.Sprintf("categorization aborted at %s", item.Name))
		}
	}
	return results, nil
}

// Categorize resolves one item. It never panics on a bad reply; failures are
// reported in the Result and through progress.
func (o *Orchestrator) Categorize(ctx context.Context, item Item, history *HintHistory, progress ProgressFunc) Result {
	logger := contextutil.LoggerFromContext(ctx)
	isLocal := o.provider.IsLocal()

	if res, ok := o.fromCache(ctx, item, progress); ok {
		if err := o.store(ctx, item, res.Resolved, history); err != nil {
			res.Err = err
		}
		return res
	}

	if !isLocal && o.cfg.Keys != nil {
		if _, err := o.cfg.Keys.APIKey(); err != nil {
			credErr := &CredentialError{Err: err}
			line := fmt.Sprintf("[CRYPTO] %s (%v)", item.Name, err)
			emit(progress, line)
			logger.ErrorContext(ctx, line)
			return Result{Item: item, Err: credErr}
		}
	}

	prompt := o.promptContext(ctx, item, history)
	reply, err := o.callWithTimeout(ctx, o.Timeout(), func(callCtx context.Context) (string, error) {
		return o.provider.CategorizeFile(callCtx, item.Name, item.FullPath(), item.IsDir, prompt)
	})
	if err != nil {
		line := fmt.Sprintf("[LLM-ERROR] %s (%v)", item.Name, err)
		emit(progress, line)
		logger.ErrorContext(ctx, "model error while categorizing", "name", item.Name, "error", err)
		return Result{Item: item, Err: err}
	}

	// The whitelist applies to the raw labels so a rejected label never
	// reaches the taxonomy.
	category, subcategory, complete := o.applyWhitelist(splitCategoryLine(reply))
	resolved := taxonomy.Resolved{TaxonomyID: taxonomy.Unavailable, Category: category, Subcategory: subcategory}
	if complete {
		resolved = o.resolver.Resolve(ctx, category, subcategory)
	}
	if resolved.Category == "" {
		resolved.Category = taxonomy.DefaultCategory
	}

	if resolved.Empty() {
		logger.WarnContext(ctx, "categorization returned an empty label", "name", item.Name)
		if err := o.files.Delete(ctx, item.Dir, item.Name, item.FileType()); err != nil {
			logger.WarnContext(ctx, "failed to remove stale record", "name", item.Name, "error", err)
		}
		reason := "Categorization returned no result. The item will be processed again."
		if !isLocal {
			reason = "Categorization returned no result. Configure your remote API key and try again."
		}
		return Result{Item: item, Resolved: resolved, Source: SourceAI, Hint: &RecategorizationHint{Item: item, Reason: reason}}
	}

	progressLine(progress, SourceAI, item, resolved)
	if err := o.store(ctx, item, resolved, history); err != nil {
		return Result{Item: item, Resolved: resolved, Source: SourceAI, Err: err}
	}
	return Result{Item: item, Resolved: resolved, Source: SourceAI}
}

// fromCache returns the cached label for (name, type) from any directory.
func (o *Orchestrator) fromCache(ctx context.Context, item Item, progress ProgressFunc) (Result, bool) {
	logger := contextutil.LoggerFromContext(ctx)

	rec, err := o.files.GetByNameAndType(ctx, item.Name, item.FileType())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.WarnContext(ctx, "cache lookup failed", "name", item.Name, "error", err)
		}
		return Result{}, false
	}

	category := taxonomy.SanitizeLabel(rec.Category)
	subcategory := taxonomy.SanitizeLabel(rec.Subcategory)
	if category == "" || subcategory == "" {
		logger.DebugContext(ctx, "ignoring cached record with empty labels", "name", item.Name)
		return Result{}, false
	}

	resolved := o.resolver.Resolve(ctx, category, subcategory)
	progressLine(progress, SourceCache, item, resolved)
	return Result{Item: item, Resolved: resolved, Source: SourceCache}, true
}

// store persists the label for item and feeds the hint history.
func (o *Orchestrator) store(ctx context.Context, item Item, resolved taxonomy.Resolved, history *HintHistory) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := persistLabel(ctx, o.files, o.resolver, item, resolved); err != nil {
		logger.ErrorContext(ctx, "failed to persist categorization", "name", item.Name, "error", err)
		return err
	}

	logger.InfoContext(ctx, "categorized item", "name", item.Name,
		"category", resolved.Category, "subcategory", resolved.Subcategory, "taxonomy_id", resolved.TaxonomyID)

	if history != nil {
		history.Record(signature(item), storage.CategoryPair{Category: resolved.Category, Subcategory: resolved.Subcategory})
	}
	return nil
}

// callWithTimeout runs fn in its own goroutine and stops waiting after
// timeout. fn's context is cancelled then, but fn may keep running; its late
// result is dropped.
func (o *Orchestrator) callWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) (string, error)) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := fn(callCtx)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			return r.text, nil
		}
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return "", classifyProviderError(r.err)
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

func classifyProviderError(err error) error {
	if errors.Is(err, llm.ErrUnavailable) {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrExternalService, err)
}

// splitCategoryLine splits "Category : Subcategory" on the first " : ".
// Without a separator the whole reply is the category.
func splitCategoryLine(reply string) (string, string) {
	category, subcategory, found := strings.Cut(reply, " : ")
	if !found {
		return strings.TrimSpace(reply), ""
	}
	return strings.TrimSpace(category), strings.TrimSpace(subcategory)
}

// applyWhitelist replaces labels outside the allowed lists with the first
// allowed entry. complete is false when a replacement left a label blank.
func (o *Orchestrator) applyWhitelist(category, subcategory string) (string, string, bool) {
	wl := o.cfg.Whitelist
	if wl == nil {
		return category, subcategory, true
	}
	complete := true
	if !allowed(category, wl.Categories) {
		category = firstOrBlank(wl.Categories)
		complete = complete && strings.TrimSpace(category) != ""
	}
	if !allowed(subcategory, wl.Subcategories) {
		subcategory = firstOrBlank(wl.Subcategories)
		complete = complete && strings.TrimSpace(subcategory) != ""
	}
	return category, subcategory, complete
}

func allowed(value string, list []string) bool {
	if len(list) == 0 {
		return true
	}
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

func firstOrBlank(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func emit(progress ProgressFunc, line string) {
	if progress != nil {
		progress(line)
	}
}

func progressLine(progress ProgressFunc, source Source, item Item, resolved taxonomy.Resolved) {
	sub := resolved.Subcategory
	if sub == "" {
		sub = "-"
	}
	path := item.FullPath()
	if path == "" {
		path = "-"
	}
	emit(progress, fmt.Sprintf("[%s] %s\n    Category : %s\n    Subcat   : %s\n    Path     : %s",
		source, item.Name, resolved.Category, sub, path))
}
