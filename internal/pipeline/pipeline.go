package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/scanner"
	"filesorter-ai/internal/service"
	"filesorter-ai/internal/storage"
)

// Categorizer labels a batch of items.
type Categorizer interface {
	CategorizeAll(ctx context.Context, items []service.Item, history *service.HintHistory, opts service.BatchOptions) ([]service.Result, error)
}

// Harmonizer re-aligns labels with the taxonomy.
type Harmonizer interface {
	Run(ctx context.Context, existing, newly []service.CategorizedItem, opts service.ConsistencyOptions) (service.ConsistencyReport, error)
}

// RecordLister reads stored labels.
type RecordLister interface {
	ListByDir(ctx context.Context, dirPath string, recursive bool) ([]storage.FileRecord, error)
}

// Cleaner removes records without a category or suggested name.
type Cleaner interface {
	Sweep(ctx context.Context, dirPath string) ([]storage.FileRecord, error)
}

// Request describes one categorization session.
type Request struct {
	Dir         string
	Options     scanner.Options
	Consistency bool
	Policy      service.BatchPolicy
	// Cleanup removes empty records under Dir before anything is loaded.
	Cleanup  bool
	Progress service.ProgressFunc
	Stop     *atomic.Bool
}

// Failure is an entry that could not be labelled.
type Failure struct {
	Item  service.Item `json:"item"`
	Error string       `json:"error"`
}

// Report is the outcome of a Run.
type Report struct {
	// Items holds every labelled entry: stored ones first, then the new ones.
	Items    []service.CategorizedItem      `json:"items"`
	New      []service.CategorizedItem      `json:"new"`
	Failures []Failure                      `json:"failures"`
	Hints    []service.RecategorizationHint `json:"hints"`
	Stats    Stats                          `json:"stats"`
}

// Pipeline drives a categorization session over one directory.
type Pipeline struct {
	categorizer Categorizer
	harmonizer  Harmonizer
	records     RecordLister
	cleaner     Cleaner
}

// New creates a Pipeline. harmonizer and cleaner may be nil.
func New(categorizer Categorizer, harmonizer Harmonizer, records RecordLister, cleaner Cleaner) *Pipeline {
	return &Pipeline{
		categorizer: categorizer,
		harmonizer:  harmonizer,
		records:     records,
		cleaner:     cleaner,
	}
}

// Run scans req.Dir, labels entries without a stored label and optionally
// runs the consistency pass over everything. On an aborted batch the partial
// report is returned together with the error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx)
	report := &Report{
		Items:    []service.CategorizedItem{},
		New:      []service.CategorizedItem{},
		Failures: []Failure{},
		Hints:    []service.RecategorizationHint{},
	}

	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return report, fmt.Errorf("failed to resolve %s: %w", req.Dir, err)
	}
	req.Dir = dir

	if req.Cleanup && p.cleaner != nil {
		removed, err := p.cleaner.Sweep(ctx, req.Dir)
		if err != nil {
			logger.WarnContext(ctx, "cleanup before categorization failed", "dir", req.Dir, "error", err)
		}
		report.Stats.Cleaned = len(removed)
	}

	entries, err := scanner.List(ctx, req.Dir, req.Options)
	if err != nil {
		return report, fmt.Errorf("failed to scan %s: %w", req.Dir, err)
	}
	report.Stats.Scanned = len(entries)

	stored, err := p.storedLabels(ctx, req.Dir, req.Options.Recursive)
	if err != nil {
		return report, err
	}

	var queue []service.Item
	for _, e := range entries {
		item := service.Item{Dir: e.Dir, Name: e.Name, IsDir: e.IsDir}
		if rec, ok := stored[item.ID()]; ok && rec.IsDir == item.IsDir {
			report.Items = append(report.Items, rec)
			continue
		}
		queue = append(queue, item)
	}
	report.Stats.Cached = len(report.Items)

	logger.InfoContext(ctx, "starting categorization",
		"dir", req.Dir, "scanned", len(entries), "cached", report.Stats.Cached, "queued", len(queue))

	results, runErr := p.categorizer.CategorizeAll(ctx, queue, service.NewHintHistory(), service.BatchOptions{
		Policy:   req.Policy,
		Progress: req.Progress,
		Stop:     req.Stop,
	})
	for _, res := range results {
		report.Stats.record(res)
		switch {
		case res.Err != nil:
			report.Failures = append(report.Failures, Failure{Item: res.Item, Error: res.Err.Error()})
		case res.Hint != nil:
			report.Hints = append(report.Hints, *res.Hint)
		default:
			report.New = append(report.New, service.CategorizedItem{
				Item:        res.Item,
				Category:    res.Resolved.Category,
				Subcategory: res.Resolved.Subcategory,
				TaxonomyID:  res.Resolved.TaxonomyID,
			})
		}
	}
	report.Items = append(report.Items, report.New...)

	if runErr != nil {
		logger.WarnContext(ctx, "categorization ended early", "dir", req.Dir, "error", runErr)
		return report, runErr
	}

	if req.Consistency && p.harmonizer != nil && !stopped(req.Stop) {
		cr, err := p.harmonizer.Run(ctx, report.Items, report.New, service.ConsistencyOptions{
			Progress: req.Progress,
			Stop:     req.Stop,
		})
		report.Stats.ConsistencyChanges = cr.Changed
		if err != nil {
			return report, err
		}
	}

	logger.InfoContext(ctx, "categorization completed",
		"dir", req.Dir,
		"new", len(report.New),
		"failures", report.Stats.Failures,
		"hints", report.Stats.Hints,
		"consistency_changes", report.Stats.ConsistencyChanges)
	return report, nil
}

// Harmonize runs the consistency pass over the labels stored under dir.
func (p *Pipeline) Harmonize(ctx context.Context, dir string, recursive bool, progress service.ProgressFunc) ([]service.CategorizedItem, service.ConsistencyReport, error) {
	if p.harmonizer == nil {
		return nil, service.ConsistencyReport{}, fmt.Errorf("consistency pass is not configured")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, service.ConsistencyReport{}, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	stored, err := p.records.ListByDir(ctx, abs, recursive)
	if err != nil {
		return nil, service.ConsistencyReport{}, fmt.Errorf("failed to load stored labels: %w", err)
	}
	items := make([]service.CategorizedItem, 0, len(stored))
	for _, rec := range stored {
		if item, ok := toCategorized(rec); ok {
			items = append(items, item)
		}
	}

	cr, err := p.harmonizer.Run(ctx, items, nil, service.ConsistencyOptions{Progress: progress})
	return items, cr, err
}

// storedLabels returns labelled records under dir keyed by item id.
func (p *Pipeline) storedLabels(ctx context.Context, dir string, recursive bool) (map[string]service.CategorizedItem, error) {
	records, err := p.records.ListByDir(ctx, dir, recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored labels: %w", err)
	}
	byID := make(map[string]service.CategorizedItem, len(records))
	for _, rec := range records {
		if item, ok := toCategorized(rec); ok {
			byID[item.ID()] = item
		}
	}
	return byID, nil
}

// toCategorized converts a record with a complete label.
func toCategorized(rec storage.FileRecord) (service.CategorizedItem, bool) {
	if strings.TrimSpace(rec.Category) == "" || strings.TrimSpace(rec.Subcategory) == "" {
		return service.CategorizedItem{}, false
	}
	return service.CategorizedItem{
		Item: service.Item{
			Dir:   rec.DirPath,
			Name:  rec.FileName,
			IsDir: rec.FileType == storage.FileTypeDirectory,
		},
		Category:    rec.Category,
		Subcategory: rec.Subcategory,
		TaxonomyID:  rec.TaxonomyID,
	}, true
}

func stopped(stop *atomic.Bool) bool {
	return stop != nil && stop.Load()
}
