package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const siteConfig = `
version: "1"
default: package
modes:
  release:
    flags:
      cargo: ["--release"]
      tailwind: ["--minify"]
    environment:
      RUSTFLAGS: "-Copt-level=3"
targets:
  css:
    input: [src/html, assets/css/tailwind.css, tailwind.config.js]
    output: [assets/css/index.css]
    cmd: ["./tailwindcss", "-i", "assets/css/tailwind.css", "-o", "assets/css/index.css", "${flags}"]
    flags: tailwind
  server:
    input: [server/src, server/Cargo.toml]
    output: ["server/target/${subpath}/server"]
    cmd: ["cargo", "build", "${flags}"]
    flags: cargo
    workingDir: server
  frontend:
    dependsOn: [css]
    input: [src, assets/css/index.css]
    output: ["${out}/www/index.html"]
    cmd: ["npm", "run", "build"]
    environment:
      NODE_ENV: "${mode}"
  package:
    dependsOn: [server, frontend]
watch:
  ignore: ["*.log", "node_modules"]
  debounce: 150ms
run:
  cmd: ["${out}/bin/server"]
  args: ["${port}"]
  port: 3000
  envFile: .env
  health: health
`

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(mockLogger)
}

func metadata(t *testing.T, err error) map[string]any {
	t.Helper()
	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	return zErr.Metadata()
}

func TestLoader_Load_Project(t *testing.T) {
	t.Setenv(domain.EnvOutput, "")
	root := t.TempDir()
	configPath := createFile(t, root, domain.ConfigFileName, siteConfig)

	project, err := newLoader(t).Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, root, project.Root)
	assert.Equal(t, configPath, project.ConfigPath)
	assert.Equal(t, "package", project.Default)

	var names []string
	for tgt := range project.Graph.Targets() {
		names = append(names, tgt.Name)
	}
	assert.Equal(t, []string{"css", "server", "frontend", "package"}, names, "declaration order is kept")

	css, ok := project.Graph.Target("css")
	require.True(t, ok)
	assert.Equal(t, "tailwind", css.Action.FlagSet)
	assert.Equal(t, []string{"src/html", "assets/css/tailwind.css", "tailwind.config.js"}, css.Inputs)

	pkg, ok := project.Graph.Target("package")
	require.True(t, ok)
	assert.True(t, pkg.IsAlias())
	assert.Equal(t, []string{"server", "frontend"}, pkg.Dependencies)

	release, err := project.Modes.Select(domain.ModeRelease)
	require.NoError(t, err)
	assert.Equal(t, []string{"--minify"}, release.FlagsFor("tailwind"))
	assert.Equal(t, "-Copt-level=3", release.Env["RUSTFLAGS"])

	assert.Equal(t, filepath.Join(root, "dist"), project.Output.Root)
	assert.Equal(t, domain.DefaultCategories(), project.Output.Categories)

	assert.Equal(t, root, project.Watch.Root)
	assert.Equal(t, 150*time.Millisecond, project.Watch.Debounce)
	assert.Equal(t, []string{"*.log", "node_modules"}, project.Watch.Ignore)

	require.NotNil(t, project.Run)
	assert.Equal(t, 3000, project.Run.Port)
	assert.Equal(t, "/health", project.Run.HealthPath)
	assert.Equal(t, ".env", project.Run.EnvFile)
}

func TestLoader_Load_Defaults(t *testing.T) {
	t.Setenv(domain.EnvOutput, "")
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
targets:
  hello:
    cmd: ["echo", "hello"]
`)

	project, err := newLoader(t).Load(root)
	require.NoError(t, err)

	assert.Empty(t, project.Default)
	assert.Nil(t, project.Run)
	assert.Equal(t, domain.DefaultDebounce, project.Watch.Debounce)
	assert.Equal(t, filepath.Join(root, domain.DefaultOutputRoot), project.Output.Root)

	debug, err := project.Modes.Select(domain.ModeDebug)
	require.NoError(t, err)
	assert.Equal(t, "debug", debug.Subpath)
}

func TestLoader_Load_OutputOverride(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
output: build
categories: [bin, www, assets]
targets:
  hello:
    cmd: ["true"]
`)

	t.Setenv(domain.EnvOutput, "")
	project, err := newLoader(t).Load(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "build"), project.Output.Root)
	assert.Equal(t, []string{"bin", "www", "assets"}, project.Output.Categories)

	t.Setenv(domain.EnvOutput, "out/env")
	project, err = newLoader(t).Load(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "out", "env"), project.Output.Root)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMD  map[string]any
	}{
		{
			name:    "malformed yaml",
			content: "targets: [",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "unknown key",
			content: "targetz: {}",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "no targets",
			content: `version: "1"`,
			wantErr: domain.ErrConfigInvalid,
		},
		{
			name:    "targets not a mapping",
			content: "targets: [a, b]",
			wantErr: domain.ErrConfigInvalid,
		},
		{
			name: "missing dependency",
			content: `
targets:
  web:
    dependsOn: [ghost]
`,
			wantErr: domain.ErrUnknownTarget,
			wantMD:  map[string]any{"target": "web", "dependency": "ghost"},
		},
		{
			name: "unknown default",
			content: `
default: nope
targets:
  web:
    cmd: ["true"]
`,
			wantErr: domain.ErrUnknownTarget,
			wantMD:  map[string]any{"target": "nope"},
		},
		{
			name: "unknown mode",
			content: `
modes:
  profile:
    subpath: prof
targets:
  web:
    cmd: ["true"]
`,
			wantErr: domain.ErrConfigInvalid,
			wantMD:  map[string]any{"mode": "profile"},
		},
		{
			name: "invalid debounce",
			content: `
watch:
  debounce: soon
targets:
  web:
    cmd: ["true"]
`,
			wantErr: domain.ErrConfigInvalid,
		},
		{
			name: "run without cmd",
			content: `
run:
  port: 8080
targets:
  web:
    cmd: ["true"]
`,
			wantErr: domain.ErrConfigInvalid,
		},
		{
			name: "invalid target name",
			content: `
targets:
  "two words":
    cmd: ["true"]
`,
			wantErr: domain.ErrInvalidTargetName,
		},
		{
			name: "unknown target key",
			content: `
targets:
  a:
    cmd: ["true"]
  b:
    cmd: ["true"]
    depends_on: [a]
`,
			wantErr: domain.ErrConfigParseFailed,
			wantMD:  map[string]any{"target": "b"},
		},
		{
			name: "bad target field type",
			content: `
targets:
  web:
    cmd: "not a list"
`,
			wantErr: domain.ErrConfigParseFailed,
			wantMD:  map[string]any{"target": "web"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.ConfigFileName, tt.content)

			_, err := newLoader(t).Load(root)
			require.ErrorIs(t, err, tt.wantErr)

			md := metadata(t, err)
			for k, v := range tt.wantMD {
				assert.Equal(t, v, md[k], "metadata %q", k)
			}
		})
	}
}

func TestLoader_Load_VersionWarning(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)

	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
version: "2"
targets:
  web:
    cmd: ["true"]
`)

	_, err := config.NewLoader(mockLogger).Load(root)
	require.NoError(t, err)
}
