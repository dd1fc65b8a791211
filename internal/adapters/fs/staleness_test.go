package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
)

func writeFile(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func newChecker() *fs.StalenessChecker {
	return fs.NewStalenessChecker(fs.NewResolver(), fs.NewWalker())
}

func TestStalenessChecker_IsDue(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) *domain.Target
		force bool
		want  bool
	}{
		{
			name: "no outputs is always due",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "in.txt"), base)
				return &domain.Target{Name: "x", Inputs: []string{filepath.Join(dir, "in.txt")}}
			},
			want: true,
		},
		{
			name: "missing output",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "src", "x.txt"), base)
				return &domain.Target{
					Name:    "x",
					Inputs:  []string{filepath.Join(dir, "src", "x.txt")},
					Outputs: []string{filepath.Join(dir, "out", "x.bin")},
				}
			},
			want: true,
		},
		{
			name: "input newer than output",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "out", "x.bin"), base)
				writeFile(t, filepath.Join(dir, "src", "x.txt"), base.Add(time.Second))
				return &domain.Target{
					Name:    "x",
					Inputs:  []string{filepath.Join(dir, "src", "x.txt")},
					Outputs: []string{filepath.Join(dir, "out", "x.bin")},
				}
			},
			want: true,
		},
		{
			name: "output newer than input",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "src", "x.txt"), base)
				writeFile(t, filepath.Join(dir, "out", "x.bin"), base.Add(time.Second))
				return &domain.Target{
					Name:    "x",
					Inputs:  []string{filepath.Join(dir, "src", "x.txt")},
					Outputs: []string{filepath.Join(dir, "out", "x.bin")},
				}
			},
			want: false,
		},
		{
			name: "equal timestamps are up to date",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "src", "x.txt"), base)
				writeFile(t, filepath.Join(dir, "out", "x.bin"), base)
				return &domain.Target{
					Name:    "x",
					Inputs:  []string{filepath.Join(dir, "src", "x.txt")},
					Outputs: []string{filepath.Join(dir, "out", "x.bin")},
				}
			},
			want: false,
		},
		{
			name: "force overrides fresh outputs",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "src", "x.txt"), base)
				writeFile(t, filepath.Join(dir, "out", "x.bin"), base.Add(time.Hour))
				return &domain.Target{
					Name:    "x",
					Inputs:  []string{filepath.Join(dir, "src", "x.txt")},
					Outputs: []string{filepath.Join(dir, "out", "x.bin")},
				}
			},
			force: true,
			want:  true,
		},
		{
			name: "compares against the oldest output",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "out", "old.js"), base)
				writeFile(t, filepath.Join(dir, "src", "app.ts"), base.Add(time.Minute))
				writeFile(t, filepath.Join(dir, "out", "new.css"), base.Add(time.Hour))
				return &domain.Target{
					Name:    "bundle",
					Inputs:  []string{filepath.Join(dir, "src", "app.ts")},
					Outputs: []string{filepath.Join(dir, "out", "new.css"), filepath.Join(dir, "out", "old.js")},
				}
			},
			want: true,
		},
		{
			name: "directory input uses the newest file",
			setup: func(t *testing.T, dir string) *domain.Target {
				html := filepath.Join(dir, "src", "html")
				writeFile(t, filepath.Join(html, "a.html"), base)
				writeFile(t, filepath.Join(html, "nested", "b.html"), base.Add(2*time.Minute))
				require.NoError(t, os.Chtimes(html, base, base))
				require.NoError(t, os.Chtimes(filepath.Join(html, "nested"), base, base))
				writeFile(t, filepath.Join(dir, "out", "index.css"), base.Add(time.Minute))
				return &domain.Target{
					Name:    "css",
					Inputs:  []string{html},
					Outputs: []string{filepath.Join(dir, "out", "index.css")},
				}
			},
			want: true,
		},
		{
			name: "glob input",
			setup: func(t *testing.T, dir string) *domain.Target {
				writeFile(t, filepath.Join(dir, "src", "a.rs"), base)
				writeFile(t, filepath.Join(dir, "src", "b.rs"), base.Add(time.Second))
				writeFile(t, filepath.Join(dir, "out", "server"), base.Add(time.Minute))
				return &domain.Target{
					Name:    "server",
					Inputs:  []string{filepath.Join(dir, "src", "*.rs")},
					Outputs: []string{filepath.Join(dir, "out", "server")},
				}
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.setup(t, t.TempDir())

			due, err := newChecker().IsDue(target, tt.force)
			require.NoError(t, err)
			assert.Equal(t, tt.want, due)
		})
	}
}

func TestStalenessChecker_InputNotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "out", "x.bin"), time.Now())

	tests := []struct {
		name  string
		input string
	}{
		{name: "missing file", input: filepath.Join(dir, "src", "gone.txt")},
		{name: "glob without matches", input: filepath.Join(dir, "src", "*.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &domain.Target{
				Name:    "x",
				Inputs:  []string{tt.input},
				Outputs: []string{filepath.Join(dir, "out", "x.bin")},
			}
			_, err := newChecker().IsDue(target, false)
			require.ErrorIs(t, err, domain.ErrInputNotFound)
		})
	}
}

// Touching an input makes the target due again.
func TestStalenessChecker_TouchMakesDue(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	in := filepath.Join(dir, "src", "x.txt")
	out := filepath.Join(dir, "out", "x.bin")
	writeFile(t, in, base)
	writeFile(t, out, base.Add(time.Minute))

	target := &domain.Target{Name: "x", Inputs: []string{in}, Outputs: []string{out}}
	checker := newChecker()

	due, err := checker.IsDue(target, false)
	require.NoError(t, err)
	require.False(t, due)

	touched := base.Add(2 * time.Minute)
	require.NoError(t, os.Chtimes(in, touched, touched))

	due, err = checker.IsDue(target, false)
	require.NoError(t, err)
	assert.True(t, due)
}
