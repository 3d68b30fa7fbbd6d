package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS category_taxonomy (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			canonical_category TEXT NOT NULL,
			canonical_subcategory TEXT NOT NULL,
			normalized_category TEXT NOT NULL,
			normalized_subcategory TEXT NOT NULL,
			frequency INTEGER NOT NULL DEFAULT 0,
			UNIQUE (normalized_category, normalized_subcategory)
		);`,
		`CREATE TABLE IF NOT EXISTS category_alias (
			alias_category_norm TEXT NOT NULL,
			alias_subcategory_norm TEXT NOT NULL,
			taxonomy_id INTEGER NOT NULL,
			PRIMARY KEY (alias_category_norm, alias_subcategory_norm),
			FOREIGN KEY (taxonomy_id) REFERENCES category_taxonomy(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS file_categorization (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_name TEXT NOT NULL,
			file_type TEXT NOT NULL,
			dir_path TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			subcategory TEXT NOT NULL DEFAULT '',
			taxonomy_id INTEGER,
			suggested_name TEXT NOT NULL DEFAULT '',
			rename_only INTEGER NOT NULL DEFAULT 0,
			rename_applied INTEGER NOT NULL DEFAULT 0,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (file_name, file_type, dir_path)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_file_categorization_name_type
			ON file_categorization (file_name, file_type);`,
		`CREATE INDEX IF NOT EXISTS idx_file_categorization_taxonomy
			ON file_categorization (taxonomy_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY conflict.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// parseTimestamp parses a SQLite DATETIME string.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		// SQLite might use a different format
		t, err = time.Parse(time.RFC3339, s)
	}
	return t, err
}
