package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotDirectory is returned when List is given a path that is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// junkNames are system files that never get a category.
var junkNames = map[string]struct{}{
	".ds_store":   {},
	"thumbs.db":   {},
	"desktop.ini": {},
}

// Options selects which entries List returns.
type Options struct {
	Files       bool
	Directories bool
	Hidden      bool // Include dot-files and dot-directories
	Recursive   bool
}

// DefaultOptions lists files and directories at the top level only.
func DefaultOptions() Options {
	return Options{Files: true, Directories: true}
}

// Entry is one file-system entry found by List.
type Entry struct {
	FullPath string // Absolute or caller-relative path as walked
	Name     string // Base name
	Dir      string // Parent directory of the entry
	IsDir    bool
}

// List returns the entries under dir matching opts, sorted by path.
func List(ctx context.Context, dir string, opts Options) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	var entries []Entry
	if opts.Recursive {
		entries, err = walk(ctx, dir, opts)
	} else {
		entries, err = readDir(ctx, dir, opts)
	}
	if err != nil {
		return entries, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FullPath < entries[j].FullPath
	})
	return entries, nil
}

func readDir(ctx context.Context, dir string, opts Options) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if skip(de.Name(), opts) {
			continue
		}
		if e, ok := toEntry(dir, de, opts); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func walk(ctx context.Context, root string, opts Options) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		if skip(de.Name(), opts) {
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if e, ok := toEntry(filepath.Dir(path), de, opts); ok {
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return entries, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return entries, nil
}

func toEntry(dir string, de fs.DirEntry, opts Options) (Entry, bool) {
	isDir := de.IsDir()
	if isDir && !opts.Directories {
		return Entry{}, false
	}
	if !isDir && !opts.Files {
		return Entry{}, false
	}
	return Entry{
		FullPath: filepath.Join(dir, de.Name()),
		Name:     de.Name(),
		Dir:      dir,
		IsDir:    isDir,
	}, true
}

// skip reports whether name is junk or, without opts.Hidden, a dot-file.
func skip(name string, opts Options) bool {
	if _, junk := junkNames[strings.ToLower(name)]; junk {
		return true
	}
	return !opts.Hidden && strings.HasPrefix(name, ".")
}
