package fs

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StalenessChecker = (*StalenessChecker)(nil)

// StalenessChecker compares input and output modification times.
// Equal timestamps count as up to date.
type StalenessChecker struct {
	resolver *Resolver
	walker   *Walker
}

// NewStalenessChecker creates a new StalenessChecker.
func NewStalenessChecker(resolver *Resolver, walker *Walker) *StalenessChecker {
	return &StalenessChecker{
		resolver: resolver,
		walker:   walker,
	}
}

// IsDue reports whether the target must be rebuilt.
func (c *StalenessChecker) IsDue(t *domain.Target, force bool) (bool, error) {
	if force || len(t.Outputs) == 0 {
		return true, nil
	}

	newestInput, err := c.newestInput(t.Inputs)
	if err != nil {
		return false, zerr.With(err, "target", t.Name)
	}

	oldestOutput, missing, err := c.oldestOutput(t.Outputs)
	if err != nil {
		return false, zerr.With(err, "target", t.Name)
	}
	if missing {
		return true, nil
	}

	return newestInput.After(oldestOutput), nil
}

// newestInput returns the latest modification time among all inputs.
// Directories contribute their own mtime and that of every file below them.
func (c *StalenessChecker) newestInput(inputs []string) (time.Time, error) {
	var newest time.Time
	if len(inputs) == 0 {
		return newest, nil
	}

	paths, err := c.resolver.ResolveInputs(inputs)
	if err != nil {
		return newest, err
	}

	for _, path := range paths {
		mod, err := c.modTime(path)
		if err != nil {
			return newest, err
		}
		if mod.After(newest) {
			newest = mod
		}
	}
	return newest, nil
}

// oldestOutput returns the earliest modification time among all outputs.
// missing is set as soon as one output does not exist.
func (c *StalenessChecker) oldestOutput(outputs []string) (oldest time.Time, missing bool, err error) {
	for i, path := range outputs {
		mod, err := c.modTime(path)
		if errors.Is(err, domain.ErrInputNotFound) {
			return time.Time{}, true, nil
		}
		if err != nil {
			return time.Time{}, false, err
		}
		if i == 0 || mod.Before(oldest) {
			oldest = mod
		}
	}
	return oldest, false, nil
}

// modTime returns the mtime of a file, or for a directory the newest mtime
// of the directory itself and every file below it.
func (c *StalenessChecker) modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, zerr.With(zerr.Wrap(domain.ErrInputNotFound, "path does not exist"), "path", path)
		}
		return time.Time{}, zerr.With(zerr.Wrap(domain.ErrPathStatFailed, err.Error()), "path", path)
	}

	mod := info.ModTime()
	if !info.IsDir() {
		return mod, nil
	}

	for _, fi := range c.walker.WalkFiles(path, nil) {
		if fi.ModTime().After(mod) {
			mod = fi.ModTime()
		}
	}
	return mod, nil
}
