package storage

import "time"

// FileType distinguishes files from directories in file_categorization.
type FileType string

const (
	FileTypeFile      FileType = "F"
	FileTypeDirectory FileType = "D"
)

// ParseFileType converts the persisted tag into a FileType.
func ParseFileType(s string) FileType {
	if s == string(FileTypeDirectory) {
		return FileTypeDirectory
	}
	return FileTypeFile
}

// TaxonomyEntry is a canonical (category, subcategory) pair.
type TaxonomyEntry struct {
	ID                    int64
	CanonicalCategory     string
	CanonicalSubcategory  string
	NormalizedCategory    string
	NormalizedSubcategory string
	Frequency             int // Count of file records referencing this entry
}

// AliasRecord maps a normalized label pair onto a canonical taxonomy entry.
type AliasRecord struct {
	CategoryNorm    string
	SubcategoryNorm string
	TaxonomyID      int64
}

// FileRecord is a categorized file or directory.
type FileRecord struct {
	DirPath       string
	FileName      string
	FileType      FileType
	Category      string
	Subcategory   string
	TaxonomyID    int64 // 0 when the label has no taxonomy entry
	SuggestedName string
	RenameOnly    bool
	RenameApplied bool
	UpdatedAt     time.Time
}

// CategoryPair is a plain (category, subcategory) label.
type CategoryPair struct {
	Category    string
	Subcategory string
}
