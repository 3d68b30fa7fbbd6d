package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// RecordStore removes records that carry neither a category nor a suggested name.
type RecordStore interface {
	RemoveEmpty(ctx context.Context, dirPath string) ([]storage.FileRecord, error)
}

// IndexSyncer mirrors taxonomy entries into the semantic index.
type IndexSyncer interface {
	Sync(ctx context.Context, entries []storage.TaxonomyEntry) error
}

// Sweeper prunes empty file records and keeps taxonomy frequencies honest.
type Sweeper struct {
	files    RecordStore
	resolver *taxonomy.Resolver
	index    IndexSyncer
	logger   *slog.Logger

	mu   sync.Mutex // serializes sweeps
	cron *cron.Cron
}

// NewSweeper creates a Sweeper.
func NewSweeper(files RecordStore, resolver *taxonomy.Resolver) *Sweeper {
	return &Sweeper{
		files:    files,
		resolver: resolver,
		logger:   slog.Default(),
	}
}

// WithIndex makes scheduled sweeps resync the semantic taxonomy index.
func (s *Sweeper) WithIndex(index IndexSyncer) *Sweeper {
	s.index = index
	return s
}

// Sweep removes empty records under dirPath (everything when empty) and
// recomputes the frequency of every taxonomy entry they referenced.
func (s *Sweeper) Sweep(ctx context.Context, dirPath string) ([]storage.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := contextutil.LoggerFromContext(ctx)

	removed, err := s.files.RemoveEmpty(ctx, dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to remove empty records: %w", err)
	}

	ids := make([]int64, 0, len(removed))
	for _, rec := range removed {
		if rec.TaxonomyID > 0 {
			ids = append(ids, rec.TaxonomyID)
		}
	}
	s.resolver.RecomputeFrequency(ctx, ids...)

	if len(removed) > 0 {
		logger.InfoContext(ctx, "removed empty records", "dir", dirPath, "count", len(removed))
	}
	return removed, nil
}

// Schedule runs a full sweep on the cron spec (five fields). An empty spec
// schedules nothing.
func (s *Sweeper) Schedule(spec string) error {
	if spec == "" {
		return nil
	}
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("cleanup already scheduled")
	}

	c := cron.New(cron.WithParser(cronParser))
	c.Schedule(schedule, cron.FuncJob(s.runScheduled))
	c.Start()
	s.cron = c

	s.logger.Info("cleanup scheduled", "spec", spec, "next", schedule.Next(time.Now()).Format(time.RFC3339))
	return nil
}

func (s *Sweeper) runScheduled() {
	ctx := contextutil.WithLogger(context.Background(), s.logger.With("job", "cleanup"))

	if _, err := s.Sweep(ctx, ""); err != nil {
		s.logger.Error("scheduled cleanup failed", "error", err)
		return
	}
	if s.index == nil {
		return
	}
	if err := s.index.Sync(ctx, s.resolver.Store().Entries()); err != nil {
		s.logger.Warn("taxonomy index sync failed", "error", err)
	}
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
