package storage

import (
	"context"
	"errors"
	"testing"
)

func TestFileRepo_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewFileRepo(db)
	ctx := context.Background()

	rec := &FileRecord{
		DirPath:     "/home/user/Downloads",
		FileName:    "report.pdf",
		FileType:    FileTypeFile,
		Category:    "Documents",
		Subcategory: "Reports",
		TaxonomyID:  7,
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, rec.DirPath, rec.FileName, FileTypeFile)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Category != "Documents" || got.Subcategory != "Reports" || got.TaxonomyID != 7 {
		t.Errorf("Get() = %+v, want Documents/Reports id 7", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Get() UpdatedAt should be set")
	}

	// Upsert on the same identity updates in place.
	rec.Subcategory = "Invoices"
	rec.TaxonomyID = 0
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	got, err = repo.Get(ctx, rec.DirPath, rec.FileName, FileTypeFile)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Subcategory != "Invoices" || got.TaxonomyID != 0 {
		t.Errorf("Get() after update = %+v, want Invoices with no taxonomy id", got)
	}

	all, err := repo.ListByDir(ctx, "", true)
	if err != nil {
		t.Fatalf("ListByDir() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListByDir() len = %d, want 1", len(all))
	}

	if _, err := repo.Get(ctx, rec.DirPath, rec.FileName, FileTypeDirectory); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() wrong type error = %v, want ErrNotFound", err)
	}
}

func TestFileRepo_GetByNameAndType_IgnoresDirectory(t *testing.T) {
	db := newTestDB(t)
	repo := NewFileRepo(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &FileRecord{
		DirPath: "/a", FileName: "setup.exe", FileType: FileTypeFile,
		Category: "Applications", Subcategory: "Installers",
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByNameAndType(ctx, "setup.exe", FileTypeFile)
	if err != nil {
		t.Fatalf("GetByNameAndType() error = %v", err)
	}
	if got.DirPath != "/a" || got.Category != "Applications" {
		t.Errorf("GetByNameAndType() = %+v", got)
	}

	if _, err := repo.GetByNameAndType(ctx, "setup.exe", FileTypeDirectory); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByNameAndType() directory error = %v, want ErrNotFound", err)
	}
}

func TestFileRepo_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewFileRepo(db)
	ctx := context.Background()

	rec := &FileRecord{DirPath: "/d", FileName: "x.txt", FileType: FileTypeFile, Category: "Texts"}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.Delete(ctx, "/d", "x.txt", FileTypeFile); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, "/d", "x.txt", FileTypeFile); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
	// Deleting a missing record is not an error.
	if err := repo.Delete(ctx, "/d", "x.txt", FileTypeFile); err != nil {
		t.Errorf("Delete() missing record error = %v", err)
	}
}

func TestFileRepo_ListByDir(t *testing.T) {
	db := newTestDB(t)
	repo := NewFileRepo(db)
	ctx := context.Background()

	for _, rec := range []FileRecord{
		{DirPath: "/data", FileName: "a.txt", FileType: FileTypeFile, Category: "Texts"},
		{DirPath: "/data/sub", FileName: "b.txt", FileType: FileTypeFile, Category: "Texts"},
		{DirPath: "/database", FileName: "c.txt", FileType: FileTypeFile, Category: "Texts"},
	} {
		rec := rec
		if err := repo.Upsert(ctx, &rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		dir       string
		recursive bool
		want      int
	}{
		{name: "flat", dir: "/data", recursive: false, want: 1},
		{name: "recursive excludes sibling prefix", dir: "/data", recursive: true, want: 2},
		{name: "trailing slash", dir: "/data/", recursive: true, want: 1},
		{name: "all", dir: "", recursive: false, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListByDir(ctx, tt.dir, tt.recursive)
			if err != nil {
				t.Fatalf("ListByDir() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("ListByDir(%q, %v) len = %d, want %d", tt.dir, tt.recursive, len(got), tt.want)
			}
		})
	}
}

func TestFileRepo_RemoveEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewFileRepo(db)
	ctx := context.Background()

	records := []FileRecord{
		{DirPath: "/d", FileName: "empty.bin", FileType: FileTypeFile},
		{DirPath: "/d", FileName: "blank.bin", FileType: FileTypeFile, Category: "   "},
		{DirPath: "/d", FileName: "rename.jpg", FileType: FileTypeFile, SuggestedName: "beach_2024.jpg", RenameOnly: true},
		{DirPath: "/d", FileName: "kept.pdf", FileType: FileTypeFile, Category: "Documents", Subcategory: "Reports"},
		{DirPath: "/other", FileName: "empty.bin", FileType: FileTypeFile},
	}
	for _, rec := range records {
		rec := rec
		if err := repo.Upsert(ctx, &rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	removed, err := repo.RemoveEmpty(ctx, "/d")
	if err != nil {
		t.Fatalf("RemoveEmpty() error = %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("RemoveEmpty() removed %d records, want 2", len(removed))
	}

	remaining, err := repo.ListByDir(ctx, "/d", false)
	if err != nil {
		t.Fatalf("ListByDir() error = %v", err)
	}
	names := map[string]FileRecord{}
	for _, r := range remaining {
		names[r.FileName] = r
	}
	if len(names) != 2 {
		t.Errorf("remaining = %v, want rename.jpg and kept.pdf", names)
	}
	renameOnly, ok := names["rename.jpg"]
	if !ok {
		t.Fatal("rename-only record was pruned")
	}
	if !renameOnly.RenameOnly || renameOnly.SuggestedName != "beach_2024.jpg" {
		t.Errorf("rename-only record = %+v", renameOnly)
	}

	// Records outside the directory are untouched.
	if _, err := repo.Get(ctx, "/other", "empty.bin", FileTypeFile); err != nil {
		t.Errorf("Get() outside sweep error = %v", err)
	}

	removed, err = repo.RemoveEmpty(ctx, "")
	if err != nil {
		t.Fatalf("RemoveEmpty() all error = %v", err)
	}
	if len(removed) != 1 {
		t.Errorf("RemoveEmpty(\"\") removed %d, want 1", len(removed))
	}
}

func TestFileRepo_RecentCategoriesForExtension(t *testing.T) {
	db := newTestDB(t)
	repo := NewFileRepo(db)
	ctx := context.Background()

	for _, rec := range []FileRecord{
		{DirPath: "/p", FileName: "a.JPG", FileType: FileTypeFile, Category: "Images", Subcategory: "Photos"},
		{DirPath: "/p", FileName: "b.jpg", FileType: FileTypeFile, Category: "Images", Subcategory: "Photos"},
		{DirPath: "/p", FileName: "c.jpg", FileType: FileTypeFile, Category: "Images", Subcategory: "Screenshots"},
		{DirPath: "/p", FileName: "d.png", FileType: FileTypeFile, Category: "Images", Subcategory: "Icons"},
		{DirPath: "/p", FileName: "e.jpg", FileType: FileTypeFile},
		{DirPath: "/p", FileName: "Makefile", FileType: FileTypeFile, Category: "Development", Subcategory: "Build"},
	} {
		rec := rec
		if err := repo.Upsert(ctx, &rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	got, err := repo.RecentCategoriesForExtension(ctx, ".jpg", FileTypeFile, 5)
	if err != nil {
		t.Fatalf("RecentCategoriesForExtension() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentCategoriesForExtension() = %+v, want 2 distinct pairs", got)
	}
	for _, p := range got {
		if p.Category != "Images" || (p.Subcategory != "Photos" && p.Subcategory != "Screenshots") {
			t.Errorf("unexpected pair %+v", p)
		}
	}

	got, err = repo.RecentCategoriesForExtension(ctx, "", FileTypeFile, 5)
	if err != nil {
		t.Fatalf("RecentCategoriesForExtension() error = %v", err)
	}
	if len(got) != 1 || got[0].Category != "Development" {
		t.Errorf("RecentCategoriesForExtension(\"\") = %+v, want Development/Build", got)
	}

	got, err = repo.RecentCategoriesForExtension(ctx, ".jpg", FileTypeFile, 1)
	if err != nil {
		t.Fatalf("RecentCategoriesForExtension() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("RecentCategoriesForExtension() limit 1 len = %d", len(got))
	}
}

func TestFileRepo_TaxonomyIDsInUse(t *testing.T) {
	db := newTestDB(t)
	repo := NewFileRepo(db)
	ctx := context.Background()

	for i, id := range []int64{3, 3, 5, 0} {
		rec := &FileRecord{DirPath: "/d", FileName: string(rune('a' + i)), FileType: FileTypeFile, Category: "C", TaxonomyID: id}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	ids, err := repo.TaxonomyIDsInUse(ctx)
	if err != nil {
		t.Fatalf("TaxonomyIDsInUse() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 5 {
		t.Errorf("TaxonomyIDsInUse() = %v, want [3 5]", ids)
	}
}
