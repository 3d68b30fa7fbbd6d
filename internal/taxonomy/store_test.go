package taxonomy_test

import (
	"context"
	"testing"

	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

func TestStore_FindBestFuzzy_TieBreaksToLowestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []int64
	for _, cat := range []string{"aaax", "aaay"} {
		id, err := f.repo.InsertEntry(ctx, &storage.TaxonomyEntry{
			CanonicalCategory: cat, CanonicalSubcategory: "s",
			NormalizedCategory: cat, NormalizedSubcategory: "s",
		})
		if err != nil {
			t.Fatalf("InsertEntry() error = %v", err)
		}
		ids = append(ids, id)
	}
	if err := f.store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Map iteration order varies between runs; the result must not.
	for i := 0; i < 20; i++ {
		id, score, ok := f.store.FindBestFuzzy("aaaz", "s")
		if !ok {
			t.Fatal("FindBestFuzzy() ok = false")
		}
		if id != ids[0] {
			t.Fatalf("FindBestFuzzy() id = %d, want lowest id %d", id, ids[0])
		}
		if score != 0.875 {
			t.Fatalf("FindBestFuzzy() score = %v, want 0.875", score)
		}
	}
}

func TestStore_FindBestFuzzy_Empty(t *testing.T) {
	f := newFixture(t)
	if _, _, ok := f.store.FindBestFuzzy("a", "b"); ok {
		t.Error("FindBestFuzzy() on empty store ok = true")
	}
}

func TestStore_RegisterAlias(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, recovered, err := f.store.CreateEntry(ctx, "Images", "Photos", "images", "photos")
	if err != nil || recovered {
		t.Fatalf("CreateEntry() = %d, %v, %v", id, recovered, err)
	}

	tests := []struct {
		name      string
		cat, sub  string
		wantAlias bool
	}{
		{name: "canonical pair is a no-op", cat: "images", sub: "photos", wantAlias: false},
		{name: "new alias is stored", cat: "image", sub: "photo", wantAlias: true},
		{name: "repeat alias is a no-op", cat: "image", sub: "photo", wantAlias: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.store.RegisterAlias(ctx, id, tt.cat, tt.sub); err != nil {
				t.Fatalf("RegisterAlias() error = %v", err)
			}
			_, ok := f.store.FindAlias(taxonomy.Key{Category: tt.cat, Subcategory: tt.sub})
			if ok != tt.wantAlias {
				t.Errorf("FindAlias() ok = %v, want %v", ok, tt.wantAlias)
			}
		})
	}

	aliases, err := f.repo.ListAliases(ctx)
	if err != nil {
		t.Fatalf("ListAliases() error = %v", err)
	}
	if len(aliases) != 1 {
		t.Errorf("ListAliases() len = %d, want 1", len(aliases))
	}
}

func TestStore_Snapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	files := storage.NewFileRepo(f.db)

	low, _, _ := f.store.CreateEntry(ctx, "A", "One", "a", "one")
	high, _, _ := f.store.CreateEntry(ctx, "B", "Two", "b", "two")
	if err := files.Upsert(ctx, &storage.FileRecord{DirPath: "/", FileName: "x", FileType: storage.FileTypeFile, Category: "B", TaxonomyID: high}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := f.store.RecomputeFrequency(ctx, high); err != nil {
		t.Fatalf("RecomputeFrequency() error = %v", err)
	}

	snap := f.store.Snapshot(150)
	if len(snap) != 2 || snap[0].ID != high || snap[1].ID != low {
		t.Errorf("Snapshot() = %+v, want [%d %d]", snap, high, low)
	}
	if got := f.store.Snapshot(1); len(got) != 1 {
		t.Errorf("Snapshot(1) len = %d, want 1", len(got))
	}
}
