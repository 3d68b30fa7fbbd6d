package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// makeTree creates files (and their parents) under root. Paths ending in "/"
// are created as directories.
func makeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatalf("Failed to create dir: %v", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(full, []byte("content"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func names(entries []Entry, root string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		rel, _ := filepath.Rel(root, e.FullPath)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestList(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		"report.pdf",
		"photo.jpg",
		".hidden.txt",
		".DS_Store",
		"Thumbs.db",
		"desktop.ini",
		"projects/main.go",
		"projects/.git/config",
		".cache/blob",
		"empty/",
	)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "files and directories",
			opts: DefaultOptions(),
			want: []string{"empty", "photo.jpg", "projects", "report.pdf"},
		},
		{
			name: "files only",
			opts: Options{Files: true},
			want: []string{"photo.jpg", "report.pdf"},
		},
		{
			name: "directories only",
			opts: Options{Directories: true},
			want: []string{"empty", "projects"},
		},
		{
			name: "hidden included",
			opts: Options{Files: true, Hidden: true},
			want: []string{".hidden.txt", "photo.jpg", "report.pdf"},
		},
		{
			name: "recursive skips hidden directories",
			opts: Options{Files: true, Recursive: true},
			want: []string{"photo.jpg", "projects/main.go", "report.pdf"},
		},
		{
			name: "recursive with hidden",
			opts: Options{Files: true, Recursive: true, Hidden: true},
			want: []string{".cache/blob", ".hidden.txt", "photo.jpg", "projects/.git/config", "projects/main.go", "report.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := List(context.Background(), root, tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			got := names(entries, root)
			if len(got) != len(tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("List()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestList_EntryFields(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "folder/note.md")

	entries, err := List(context.Background(), root, Options{Files: true, Directories: true, Recursive: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() found %d entries, want 2", len(entries))
	}

	dir, file := entries[0], entries[1]
	if !dir.IsDir || dir.Name != "folder" || dir.Dir != root {
		t.Errorf("directory entry = %+v", dir)
	}
	if file.IsDir || file.Name != "note.md" || file.Dir != filepath.Join(root, "folder") {
		t.Errorf("file entry = %+v", file)
	}
	if file.FullPath != filepath.Join(root, "folder", "note.md") {
		t.Errorf("FullPath = %q", file.FullPath)
	}
}

func TestList_Errors(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "file.txt")

	if _, err := List(context.Background(), filepath.Join(root, "missing"), DefaultOptions()); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("List() on a missing directory error = %v, want fs.ErrNotExist", err)
	}
	if _, err := List(context.Background(), filepath.Join(root, "file.txt"), DefaultOptions()); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("List() on a file error = %v, want ErrNotDirectory", err)
	}
}

func TestList_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.txt", "sub/b.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, recursive := range []bool{false, true} {
		_, err := List(ctx, root, Options{Files: true, Recursive: recursive})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("List(recursive=%v) error = %v, want context.Canceled", recursive, err)
		}
	}
}
