package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TaxonomyRepo provides methods for the category_taxonomy and category_alias tables.
type TaxonomyRepo struct {
	db *sql.DB
}

// NewTaxonomyRepo creates a new TaxonomyRepo.
func NewTaxonomyRepo(db *sql.DB) *TaxonomyRepo {
	return &TaxonomyRepo{db: db}
}

// ListEntries returns all taxonomy entries ordered by id.
func (r *TaxonomyRepo) ListEntries(ctx context.Context) ([]TaxonomyEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, canonical_category, canonical_subcategory, normalized_category, normalized_subcategory, frequency
		 FROM category_taxonomy ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxonomy: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanEntries(rows)
}

// Snapshot returns up to limit entries ordered by frequency (desc) then id.
func (r *TaxonomyRepo) Snapshot(ctx context.Context, limit int) ([]TaxonomyEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, canonical_category, canonical_subcategory, normalized_category, normalized_subcategory, frequency
		 FROM category_taxonomy ORDER BY frequency DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxonomy snapshot: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanEntries(rows)
}

// FindEntryByKey gets an entry by its normalized pair.
// Returns nil and ErrNotFound if not found.
func (r *TaxonomyRepo) FindEntryByKey(ctx context.Context, normCategory, normSubcategory string) (*TaxonomyEntry, error) {
	var e TaxonomyEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT id, canonical_category, canonical_subcategory, normalized_category, normalized_subcategory, frequency
		 FROM category_taxonomy WHERE normalized_category = ? AND normalized_subcategory = ?`,
		normCategory, normSubcategory,
	).Scan(&e.ID, &e.CanonicalCategory, &e.CanonicalSubcategory, &e.NormalizedCategory, &e.NormalizedSubcategory, &e.Frequency)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query taxonomy entry: %w", err)
	}
	return &e, nil
}

// GetEntry gets an entry by id. Returns nil and ErrNotFound if not found.
func (r *TaxonomyRepo) GetEntry(ctx context.Context, id int64) (*TaxonomyEntry, error) {
	var e TaxonomyEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT id, canonical_category, canonical_subcategory, normalized_category, normalized_subcategory, frequency
		 FROM category_taxonomy WHERE id = ?`, id,
	).Scan(&e.ID, &e.CanonicalCategory, &e.CanonicalSubcategory, &e.NormalizedCategory, &e.NormalizedSubcategory, &e.Frequency)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query taxonomy entry: %w", err)
	}
	return &e, nil
}

// InsertEntry inserts a new canonical entry and returns its id.
// A conflicting normalized pair yields an error wrapping ErrDuplicate.
func (r *TaxonomyRepo) InsertEntry(ctx context.Context, e *TaxonomyEntry) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO category_taxonomy
		 (canonical_category, canonical_subcategory, normalized_category, normalized_subcategory, frequency)
		 VALUES (?, ?, ?, ?, 0)`,
		e.CanonicalCategory, e.CanonicalSubcategory, e.NormalizedCategory, e.NormalizedSubcategory,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("taxonomy entry %q/%q: %w", e.NormalizedCategory, e.NormalizedSubcategory, ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to insert taxonomy entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read taxonomy id: %w", err)
	}
	return id, nil
}

// ListAliases returns all alias mappings.
func (r *TaxonomyRepo) ListAliases(ctx context.Context) ([]AliasRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT alias_category_norm, alias_subcategory_norm, taxonomy_id FROM category_alias ORDER BY taxonomy_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query aliases: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var aliases []AliasRecord
	for rows.Next() {
		var a AliasRecord
		if err := rows.Scan(&a.CategoryNorm, &a.SubcategoryNorm, &a.TaxonomyID); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return aliases, nil
}

// InsertAlias records an alias. An existing alias for the same key is kept.
func (r *TaxonomyRepo) InsertAlias(ctx context.Context, a AliasRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO category_alias (alias_category_norm, alias_subcategory_norm, taxonomy_id)
		 VALUES (?, ?, ?)`,
		a.CategoryNorm, a.SubcategoryNorm, a.TaxonomyID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alias: %w", err)
	}
	return nil
}

// RecomputeFrequency sets an entry's frequency to the number of file records
// referencing it and returns the new value.
func (r *TaxonomyRepo) RecomputeFrequency(ctx context.Context, id int64) (int, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE category_taxonomy
		 SET frequency = (SELECT COUNT(*) FROM file_categorization WHERE taxonomy_id = ?)
		 WHERE id = ?`, id, id)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute frequency: %w", err)
	}

	var freq int
	err = r.db.QueryRowContext(ctx, "SELECT frequency FROM category_taxonomy WHERE id = ?", id).Scan(&freq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read frequency: %w", err)
	}
	return freq, nil
}

// Ping checks that the database is reachable.
func (r *TaxonomyRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanEntries(rows *sql.Rows) ([]TaxonomyEntry, error) {
	var entries []TaxonomyEntry
	for rows.Next() {
		var e TaxonomyEntry
		if err := rows.Scan(&e.ID, &e.CanonicalCategory, &e.CanonicalSubcategory, &e.NormalizedCategory, &e.NormalizedSubcategory, &e.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
