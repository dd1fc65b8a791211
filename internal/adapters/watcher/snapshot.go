package watcher

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/ports"
)

// Snapshot remembers a content digest per file so that saves which do not
// change a file can be told apart from real edits.
type Snapshot struct {
	mu   sync.Mutex
	sums map[string]uint64
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{sums: make(map[string]uint64)}
}

// Seed records the digest of every regular file below root.
func (s *Snapshot) Seed(root string, skip func(path string) bool) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are simply not seeded
		}
		if path != root && skip != nil && skip(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if sum, ok := digest(path); ok {
			s.mu.Lock()
			s.sums[path] = sum
			s.mu.Unlock()
		}
		return nil
	})
}

// Changed updates the snapshot for event and reports whether the event
// reflects a change. Only events on known files whose digest did not move
// are reported as unchanged.
func (s *Snapshot) Changed(event ports.WatchEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Operation {
	case ports.OpRemove, ports.OpRename:
		delete(s.sums, event.Path)
		return true
	case ports.OpCreate, ports.OpWrite:
	}

	sum, ok := digest(event.Path)
	if !ok {
		// Directories, vanished files and unreadable files always count.
		delete(s.sums, event.Path)
		return true
	}

	prev, known := s.sums[event.Path]
	s.sums[event.Path] = sum
	return !known || prev != sum
}

// Len returns the number of files in the snapshot.
func (s *Snapshot) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sums)
}

func digest(path string) (uint64, bool) {
	f, err := os.Open(path) //nolint:gosec // path comes from the watched tree
	if err != nil {
		return 0, false
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, false
	}
	return h.Sum64(), true
}
