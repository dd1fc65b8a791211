package watchloop_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/engine/watchloop"
)

func TestIgnore_Match(t *testing.T) {
	root := filepath.FromSlash("/p")
	ig := watchloop.NewIgnore(root,
		[]string{
			filepath.Join(root, "dist"),
			filepath.Join(root, ".kiln"),
			filepath.Join(root, "assets", "css", "index.css"),
		},
		[]string{"*.log"},
	)

	tests := []struct {
		path string
		want bool
	}{
		{"src/main.rs", false},
		{"assets/css/tailwind.css", false},
		{"assets/css/index.css", true},
		{"assets/css/index.css.map", false},
		{"server/target/debug/deps/server.d", true},
		{"web/node_modules/x/index.js", true},
		{"dist/bin/server", true},
		{"dist", true},
		{"distribution/notes.md", false},
		{".kiln/state", true},
		{".git/index", true},
		{"server/.jj/x", true},
		{"src/.main.rs.swp", true},
		{"src/main.rs~", true},
		{"src/4913", true},
		{".DS_Store", true},
		{"logs/build.log", true},
		{"../elsewhere/file", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ig.Match(filepath.Join(root, filepath.FromSlash(tt.path))))
		})
	}
}

func TestIgnore_Skip(t *testing.T) {
	ig := watchloop.NewIgnore("/p", []string{"/p/dist", ""}, []string{"*.log", "*.swp"})
	skip := ig.Skip()

	assert.Equal(t, filepath.Clean("/p/dist"), skip[0])
	assert.Contains(t, skip, "*.log")
	assert.Contains(t, skip, ".git")
	assert.Len(t, skip, 1+len(watchloop.DefaultIgnorePatterns)+len(watchloop.VCSDirs)+len(watchloop.ToolDirs)+1, "duplicates are dropped")
}
