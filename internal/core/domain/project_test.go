package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func newProject(t *testing.T) *domain.Project {
	t.Helper()
	root := filepath.FromSlash("/work/site")
	g := newGraph(t,
		&domain.Target{
			Name:    "css",
			Inputs:  []string{"assets/css/tailwind.css", "src/html"},
			Outputs: []string{"${out}/www/index.css"},
			Action: domain.Action{
				Command:     []string{"./tailwindcss", "-o", "${out}/www/index.css", domain.FlagsPlaceholder},
				FlagSet:     "tailwind",
				Environment: map[string]string{"NODE_ENV": "${mode}"},
			},
		},
		&domain.Target{
			Name:         "server",
			Dependencies: []string{"css"},
			Outputs:      []string{"target/${subpath}/server"},
			Action: domain.Action{
				Command:    []string{"cargo", "build"},
				WorkingDir: "server",
			},
		},
	)
	return &domain.Project{
		Root:  root,
		Graph: g,
		Modes: domain.DefaultModeConfig(),
		Output: domain.OutputTree{
			Root:       filepath.Join(root, "dist"),
			Categories: domain.DefaultCategories(),
		},
		Run: &domain.RunStep{
			Command: []string{"${out}/bin/server"},
			Args:    []string{"--port", "${port}"},
			EnvFile: ".env",
		},
	}
}

func TestProject_Materialize(t *testing.T) {
	p := newProject(t)
	mode := domain.BuildMode{
		Name:    domain.ModeRelease,
		Subpath: "release",
		Env:     map[string]string{"NODE_ENV": "overridden", "CI": "1"},
	}

	g, err := p.Materialize(mode, 9000)
	require.NoError(t, err)
	assert.Equal(t, p.Graph.Len(), g.Len(), "graph shape is unchanged")

	css, ok := g.Target("css")
	require.True(t, ok)
	out := filepath.Join(p.Root, "dist")
	assert.Equal(t, []string{filepath.Join(out, "www", "index.css")}, css.Outputs)
	assert.Equal(t, []string{
		filepath.Join(p.Root, "assets", "css", "tailwind.css"),
		filepath.Join(p.Root, "src", "html"),
	}, css.Inputs)
	assert.Equal(t, []string{"./tailwindcss", "-o", filepath.Join(out, "www", "index.css"), domain.FlagsPlaceholder}, css.Action.Command)
	assert.Equal(t, p.Root, css.Action.WorkingDir)
	assert.Equal(t, "release", css.Action.Environment["NODE_ENV"], "target env wins over mode env")
	assert.Equal(t, "1", css.Action.Environment["CI"])
	assert.Equal(t, "release", css.Action.Environment[domain.EnvActionMode])
	assert.Equal(t, out, css.Action.Environment[domain.EnvActionOut])
	assert.Equal(t, p.Root, css.Action.Environment[domain.EnvActionRoot])

	server, ok := g.Target("server")
	require.True(t, ok)
	assert.Equal(t, []string{"css"}, server.Dependencies)
	assert.Equal(t, []string{filepath.Join(p.Root, "target", "release", "server")}, server.Outputs)
	assert.Equal(t, filepath.Join(p.Root, "server"), server.Action.WorkingDir)

	orig, _ := p.Graph.Target("css")
	assert.Equal(t, []string{"${out}/www/index.css"}, orig.Outputs, "the source graph is not modified")
}

func TestProject_MaterializeRun(t *testing.T) {
	p := newProject(t)
	mode := domain.BuildMode{Name: domain.ModeDebug, Subpath: "debug"}

	rs := p.MaterializeRun(mode, 4000)
	require.NotNil(t, rs)
	assert.Equal(t, []string{filepath.Join(p.Root, "dist", "bin", "server"), "--port", "4000"}, rs.Argv())
	assert.Equal(t, 4000, rs.Port)
	assert.Equal(t, filepath.Join(p.Root, ".env"), rs.EnvFile)
	assert.Equal(t, p.Root, rs.WorkingDir)

	p.Run = nil
	assert.Nil(t, p.MaterializeRun(mode, 4000))
}

func TestOutputTree_Dirs(t *testing.T) {
	tree := domain.OutputTree{Root: "/o", Categories: []string{"bin", "www"}}
	assert.Equal(t, []string{"/o", filepath.Join("/o", "bin"), filepath.Join("/o", "www")}, tree.Dirs())
}
