// Package fs provides file system adapters for input resolution, staleness
// checks and the output tree lifecycle.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root together with its info,
// skipping VCS and state directories and any name matching ignores.
// Paths are yielded as filepath.WalkDir produces them, i.e. prefixed with root.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, fs.FileInfo] {
	return func(yield func(string, fs.FileInfo) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root && w.shouldSkip(d.Name(), ignores) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				// Removed between listing and stat.
				return nil //nolint:nilerr // a vanished file carries no timestamp
			}

			if !yield(path, info) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkip(name string, ignores []string) bool {
	switch name {
	case ".git", ".jj", ".hg", domain.StateDirName:
		return true
	}
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
