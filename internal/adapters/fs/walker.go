// Package fs provides file system adapters: size-adaptive source ingestion,
// memory mapping, hashing, atomic writes and source discovery.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/tusk/internal/core/domain"
)

// Walker finds source files below a directory.
type Walker struct {
	ext string
}

// NewWalker creates a Walker matching files with the given extension.
// An empty ext means domain.SourceExt.
func NewWalker(ext string) *Walker {
	if ext == "" {
		ext = domain.SourceExt
	}
	return &Walker{ext: ext}
}

// WalkFiles yields every matching file below root, skipping VCS and tool
// directories and anything matching ignores. Paths include root.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if skip, action := w.shouldSkip(path != root, d, ignores); skip {
				return action
			}

			if d.IsDir() || filepath.Ext(path) != w.ext {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// shouldSkip reports whether d is excluded. For directories the returned
// action is filepath.SkipDir.
func (w *Walker) shouldSkip(nested bool, d fs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()

	if d.IsDir() && nested {
		switch name {
		case ".git", ".jj", domain.TuskDirName:
			return true, filepath.SkipDir
		}
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			if d.IsDir() {
				return true, filepath.SkipDir
			}
			return true, nil
		}
	}

	return false, nil
}
