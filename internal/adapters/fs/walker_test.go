package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
)

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	files := map[string]bool{
		".git/config":     false,
		".kiln/state":     false,
		"ignored/file":    false,
		"src/main.rs":     true,
		"src/html/a.html": true,
		"README.md":       true,
		"notes.swp":       false,
	}
	for rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(rel), 0o600))
	}

	var got []string
	for path, info := range fs.NewWalker().WalkFiles(root, []string{"ignored", "*.swp"}) {
		require.False(t, info.IsDir())
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}

	var want []string
	for rel, keep := range files {
		if keep {
			want = append(want, rel)
		}
	}
	assert.ElementsMatch(t, want, got)
}

func TestResolver_ResolveInputs(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.txt", "b.txt", "c.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("content"), 0o600))
	}

	resolved, err := fs.NewResolver().ResolveInputs([]string{
		filepath.Join(dir, "*.txt"),
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "c.log"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.log"),
	}, resolved)

	_, err = fs.NewResolver().ResolveInputs([]string{filepath.Join(dir, "[")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to glob path")
}
