package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolver expands declared input paths and glob patterns to existing paths.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveInputs resolves absolute input paths or patterns to a sorted,
// de-duplicated list of existing paths. A path or pattern that matches
// nothing fails with domain.ErrInputNotFound.
func (r *Resolver) ResolveInputs(inputs []string) ([]string, error) {
	unique := make(map[string]struct{}, len(inputs))

	for _, input := range inputs {
		if !isGlob(input) {
			if _, err := os.Stat(input); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil, zerr.With(zerr.Wrap(domain.ErrInputNotFound, "missing input"), "path", input)
				}
				return nil, zerr.With(zerr.Wrap(domain.ErrPathStatFailed, err.Error()), "path", input)
			}
			unique[filepath.Clean(input)] = struct{}{}
			continue
		}

		matches, err := filepath.Glob(input)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", input)
		}
		if len(matches) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInputNotFound, "pattern matched nothing"), "path", input)
		}
		for _, match := range matches {
			unique[match] = struct{}{}
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	slices.Sort(result)
	return result, nil
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
