package taxonomy

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_repository.go -package=mocks filesorter-ai/internal/taxonomy Repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"filesorter-ai/internal/storage"
)

// Repository persists taxonomy entries and aliases.
// It is implemented by *storage.TaxonomyRepo.
type Repository interface {
	ListEntries(ctx context.Context) ([]storage.TaxonomyEntry, error)
	ListAliases(ctx context.Context) ([]storage.AliasRecord, error)
	FindEntryByKey(ctx context.Context, normCategory, normSubcategory string) (*storage.TaxonomyEntry, error)
	InsertEntry(ctx context.Context, e *storage.TaxonomyEntry) (int64, error)
	InsertAlias(ctx context.Context, a storage.AliasRecord) error
	RecomputeFrequency(ctx context.Context, id int64) (int, error)
}

// Key is a normalized (category, subcategory) pair.
type Key struct {
	Category    string
	Subcategory string
}

// Store is the in-memory view of the taxonomy tables. Lookups are served from
// maps; writes go to the repository first and then update the maps.
// Store is safe for concurrent use.
type Store struct {
	repo Repository

	mu        sync.RWMutex
	entries   map[int64]storage.TaxonomyEntry
	canonical map[Key]int64
	aliases   map[Key]int64
}

// NewStore creates an empty Store backed by repo. Call Load to populate it.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:      repo,
		entries:   make(map[int64]storage.TaxonomyEntry),
		canonical: make(map[Key]int64),
		aliases:   make(map[Key]int64),
	}
}

// Load replaces the in-memory maps with the persisted tables.
func (s *Store) Load(ctx context.Context) error {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}
	aliases, err := s.repo.ListAliases(ctx)
	if err != nil {
		return fmt.Errorf("failed to load aliases: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[int64]storage.TaxonomyEntry, len(entries))
	s.canonical = make(map[Key]int64, len(entries))
	s.aliases = make(map[Key]int64, len(aliases))
	for _, e := range entries {
		s.entries[e.ID] = e
		s.canonical[Key{e.NormalizedCategory, e.NormalizedSubcategory}] = e.ID
	}
	for _, a := range aliases {
		s.aliases[Key{a.CategoryNorm, a.SubcategoryNorm}] = a.TaxonomyID
	}
	return nil
}

// FindCanonical returns the id of the entry whose normalized pair is key.
func (s *Store) FindCanonical(key Key) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.canonical[key]
	return id, ok
}

// FindAlias returns the id an alias key maps to.
func (s *Store) FindAlias(key Key) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.aliases[key]
	return id, ok
}

// FindBestFuzzy scans every entry and returns the one with the highest
// CombinedScore. Ties go to the lowest id. ok is false when the store is empty.
func (s *Store) FindBestFuzzy(normCategory, normSubcategory string) (id int64, score float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		sc := CombinedScore(e, normCategory, normSubcategory)
		if !ok || sc > score || (sc == score && e.ID < id) {
			id, score, ok = e.ID, sc, true
		}
	}
	return id, score, ok
}

// CreateEntry inserts a canonical entry. When another writer inserted the same
// normalized pair first, the existing id is returned and recovered is true.
func (s *Store) CreateEntry(ctx context.Context, category, subcategory, normCategory, normSubcategory string) (id int64, recovered bool, err error) {
	entry := storage.TaxonomyEntry{
		CanonicalCategory:     category,
		CanonicalSubcategory:  subcategory,
		NormalizedCategory:    normCategory,
		NormalizedSubcategory: normSubcategory,
	}

	id, err = s.repo.InsertEntry(ctx, &entry)
	if err != nil {
		if !errors.Is(err, storage.ErrDuplicate) {
			return 0, false, err
		}
		existing, findErr := s.repo.FindEntryByKey(ctx, normCategory, normSubcategory)
		if findErr != nil {
			return 0, false, fmt.Errorf("failed to re-read taxonomy entry after conflict: %w", findErr)
		}
		entry = *existing
		recovered = true
	} else {
		entry.ID = id
	}

	s.mu.Lock()
	s.entries[entry.ID] = entry
	s.canonical[Key{entry.NormalizedCategory, entry.NormalizedSubcategory}] = entry.ID
	s.mu.Unlock()

	return entry.ID, recovered, nil
}

// RegisterAlias maps a normalized pair onto id. It does nothing when the pair
// is already canonical for id or an alias for the pair already exists.
func (s *Store) RegisterAlias(ctx context.Context, id int64, normCategory, normSubcategory string) error {
	key := Key{normCategory, normSubcategory}

	s.mu.RLock()
	entry, known := s.entries[id]
	_, aliased := s.aliases[key]
	s.mu.RUnlock()

	if known && entry.NormalizedCategory == normCategory && entry.NormalizedSubcategory == normSubcategory {
		return nil
	}
	if aliased {
		return nil
	}

	if err := s.repo.InsertAlias(ctx, storage.AliasRecord{
		CategoryNorm:    normCategory,
		SubcategoryNorm: normSubcategory,
		TaxonomyID:      id,
	}); err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.aliases[key]; !exists {
		s.aliases[key] = id
	}
	s.mu.Unlock()
	return nil
}

// Get returns the entry with the given id.
func (s *Store) Get(id int64) (storage.TaxonomyEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// RecomputeFrequency refreshes an entry's frequency from the file records
// that currently reference it.
func (s *Store) RecomputeFrequency(ctx context.Context, id int64) error {
	freq, err := s.repo.RecomputeFrequency(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if e, ok := s.entries[id]; ok {
		e.Frequency = freq
		s.entries[id] = e
	}
	s.mu.Unlock()
	return nil
}

// Entries returns all entries ordered by id.
func (s *Store) Entries() []storage.TaxonomyEntry {
	s.mu.RLock()
	out := make([]storage.TaxonomyEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Aliases returns all alias mappings.
func (s *Store) Aliases() map[Key]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Key]int64, len(s.aliases))
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}

// Snapshot returns up to n entries ordered by frequency (desc), then id.
func (s *Store) Snapshot(n int) []storage.TaxonomyEntry {
	entries := s.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Frequency > entries[j].Frequency
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
