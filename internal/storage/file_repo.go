package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FileRepo provides methods for file_categorization operations.
// It implements service.FileStore.
type FileRepo struct {
	db *sql.DB
}

// NewFileRepo creates a new FileRepo.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

const fileColumns = `dir_path, file_name, file_type, category, subcategory, taxonomy_id,
	suggested_name, rename_only, rename_applied, timestamp`

// GetByNameAndType gets the most recently written record for (fileName, fileType),
// ignoring the directory.
func (r *FileRepo) GetByNameAndType(ctx context.Context, fileName string, fileType FileType) (*FileRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+` FROM file_categorization
		 WHERE file_name = ? AND file_type = ?
		 ORDER BY timestamp DESC, id DESC LIMIT 1`,
		fileName, string(fileType),
	)
	rec, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file record: %w", err)
	}
	return rec, nil
}

// Get gets the record for an exact (dir, name, type).
func (r *FileRepo) Get(ctx context.Context, dirPath, fileName string, fileType FileType) (*FileRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+` FROM file_categorization
		 WHERE dir_path = ? AND file_name = ? AND file_type = ?`,
		dirPath, fileName, string(fileType),
	)
	rec, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file record: %w", err)
	}
	return rec, nil
}

// Upsert inserts a new record or updates the existing one for (name, type, dir).
func (r *FileRepo) Upsert(ctx context.Context, rec *FileRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO file_categorization
		 (file_name, file_type, dir_path, category, subcategory, taxonomy_id,
		  suggested_name, rename_only, rename_applied, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (file_name, file_type, dir_path) DO UPDATE SET
		 category = excluded.category,
		 subcategory = excluded.subcategory,
		 taxonomy_id = excluded.taxonomy_id,
		 suggested_name = excluded.suggested_name,
		 rename_only = excluded.rename_only,
		 rename_applied = excluded.rename_applied,
		 timestamp = CURRENT_TIMESTAMP`,
		rec.FileName, string(rec.FileType), rec.DirPath, rec.Category, rec.Subcategory,
		nullableID(rec.TaxonomyID), rec.SuggestedName, rec.RenameOnly, rec.RenameApplied,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert file record: %w", err)
	}
	return nil
}

// Delete removes the record for (dir, name, type).
func (r *FileRepo) Delete(ctx context.Context, dirPath, fileName string, fileType FileType) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM file_categorization WHERE dir_path = ? AND file_name = ? AND file_type = ?",
		dirPath, fileName, string(fileType),
	)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}

// ListByDir returns records stored for dirPath, including subdirectories when
// recursive is set. An empty dirPath lists every record.
func (r *FileRepo) ListByDir(ctx context.Context, dirPath string, recursive bool) ([]FileRecord, error) {
	where, args := dirFilter(dirPath, recursive)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM file_categorization"+where+" ORDER BY dir_path, file_name",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query file records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanFiles(rows)
}

// RemoveEmpty deletes records under dirPath that carry neither a category nor a
// suggested name, and returns what was removed. Rename-only records survive.
func (r *FileRepo) RemoveEmpty(ctx context.Context, dirPath string) ([]FileRecord, error) {
	where, args := dirFilter(dirPath, true)
	cond := "TRIM(category) = '' AND TRIM(suggested_name) = ''"
	if where == "" {
		where = " WHERE " + cond
	} else {
		where += " AND " + cond
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, "SELECT "+fileColumns+" FROM file_categorization"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query empty records: %w", err)
	}
	removed, err := scanFiles(rows)
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	if len(removed) == 0 {
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM file_categorization"+where, args...); err != nil {
		return nil, fmt.Errorf("failed to delete empty records: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cleanup: %w", err)
	}
	return removed, nil
}

// RecentCategoriesForExtension returns distinct labels most recently assigned to
// entries whose name ends in ext (case-insensitive). An empty ext matches names
// without an extension.
func (r *FileRepo) RecentCategoriesForExtension(ctx context.Context, ext string, fileType FileType, limit int) ([]CategoryPair, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT category, subcategory FROM file_categorization
		 WHERE file_type = ? AND TRIM(category) != ''`
	args := []any{string(fileType)}
	if ext == "" {
		query += " AND instr(file_name, '.') = 0"
	} else {
		query += " AND LOWER(substr(file_name, -length(?))) = ?"
		lower := strings.ToLower(ext)
		args = append(args, lower, lower)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit*4)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent categories: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var pairs []CategoryPair
	seen := make(map[CategoryPair]struct{})
	for rows.Next() {
		var p CategoryPair
		if err := rows.Scan(&p.Category, &p.Subcategory); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
		if len(pairs) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return pairs, nil
}

// TaxonomyIDsInUse returns the distinct taxonomy ids referenced by file records.
func (r *FileRepo) TaxonomyIDsInUse(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT taxonomy_id FROM file_categorization WHERE taxonomy_id IS NOT NULL ORDER BY taxonomy_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query taxonomy ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

func dirFilter(dirPath string, recursive bool) (string, []any) {
	if dirPath == "" {
		return "", nil
	}
	if !recursive {
		return " WHERE dir_path = ?", []any{dirPath}
	}
	prefix := strings.TrimSuffix(dirPath, "/") + "/"
	return " WHERE (dir_path = ? OR substr(dir_path, 1, length(?)) = ?)", []any{dirPath, prefix, prefix}
}

func nullableID(id int64) sql.NullInt64 {
	if id <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*FileRecord, error) {
	var (
		rec        FileRecord
		fileType   string
		taxonomyID sql.NullInt64
		updatedAt  sql.NullString
	)
	if err := row.Scan(&rec.DirPath, &rec.FileName, &fileType, &rec.Category, &rec.Subcategory, &taxonomyID,
		&rec.SuggestedName, &rec.RenameOnly, &rec.RenameApplied, &updatedAt); err != nil {
		return nil, err
	}
	rec.FileType = ParseFileType(fileType)
	if taxonomyID.Valid {
		rec.TaxonomyID = taxonomyID.Int64
	}
	if updatedAt.Valid {
		t, err := parseTimestamp(updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		rec.UpdatedAt = t
	}
	return &rec, nil
}

func scanFiles(rows *sql.Rows) ([]FileRecord, error) {
	var records []FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
