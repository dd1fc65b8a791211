package watchloop

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultIgnorePatterns match editor and OS files that never trigger a build.
// 4913 is the probe file vim writes to test directory permissions.
var DefaultIgnorePatterns = []string{"*.swp", "*~", ".DS_Store", "4913"}

// VCSDirs are version control directories below the watch root.
var VCSDirs = []string{".git", ".hg", ".jj", ".svn"}

// ToolDirs hold dependency and compiler caches written during builds.
var ToolDirs = []string{"node_modules", "target"}

// Ignore decides which changed paths are not build inputs.
// Directories are absolute subtrees; patterns are filepath.Match globs
// applied to every path element below the root.
type Ignore struct {
	root     string
	dirs     []string
	patterns []string
}

// NewIgnore builds the ignore set for root. dirs are absolute paths, files
// or directories, written by builds; patterns extend the defaults.
func NewIgnore(root string, dirs, patterns []string) *Ignore {
	cleaned := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d != "" {
			cleaned = append(cleaned, filepath.Clean(d))
		}
	}

	all := slices.Concat(DefaultIgnorePatterns, VCSDirs, ToolDirs, patterns)
	slices.Sort(all)
	return &Ignore{
		root:     filepath.Clean(root),
		dirs:     cleaned,
		patterns: slices.Compact(all),
	}
}

// Match reports whether path is ignored. Paths outside the root are ignored.
func (i *Ignore) Match(path string) bool {
	path = filepath.Clean(path)
	for _, d := range i.dirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}

	rel, err := filepath.Rel(i.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	if rel == "." {
		return false
	}

	for part := range strings.SplitSeq(rel, string(filepath.Separator)) {
		for _, pattern := range i.patterns {
			if ok, _ := filepath.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

// Skip returns the list handed to ports.Watcher.Start.
func (i *Ignore) Skip() []string {
	return slices.Concat(i.dirs, i.patterns)
}
