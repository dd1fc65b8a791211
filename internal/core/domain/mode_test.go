package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Mode
		wantErr bool
	}{
		{in: "", want: domain.ModeDebug},
		{in: "debug", want: domain.ModeDebug},
		{in: "Release", want: domain.ModeRelease},
		{in: " release ", want: domain.ModeRelease},
		{in: "profile", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeConfig_Defaults(t *testing.T) {
	cfg := domain.DefaultModeConfig()

	debug, err := cfg.Select(domain.ModeDebug)
	require.NoError(t, err)
	assert.Equal(t, "debug", debug.Subpath)
	assert.Empty(t, debug.FlagsFor("cargo"))

	release, err := cfg.Select(domain.ModeRelease)
	require.NoError(t, err)
	assert.Equal(t, "release", release.Subpath)

	_, err = cfg.Select("bench")
	require.ErrorIs(t, err, domain.ErrUnknownMode)
}

func TestModeConfig_Override(t *testing.T) {
	cfg := domain.DefaultModeConfig()
	cfg.Override(domain.BuildMode{
		Name:  domain.ModeRelease,
		Flags: map[string][]string{"cargo": {"--release"}, "tailwind": {"--minify"}},
		Env:   map[string]string{"RUSTFLAGS": "-Ctarget-cpu=native"},
	})
	cfg.Override(domain.BuildMode{
		Name:  domain.ModeRelease,
		Flags: map[string][]string{"tailwind": {"--minify", "--optimize"}},
	})

	release, err := cfg.Select(domain.ModeRelease)
	require.NoError(t, err)
	assert.Equal(t, "release", release.Subpath, "empty subpath keeps the default")
	assert.Equal(t, []string{"--release"}, release.FlagsFor("cargo"))
	assert.Equal(t, []string{"--minify", "--optimize"}, release.FlagsFor("tailwind"))
	assert.Equal(t, "-Ctarget-cpu=native", release.Env["RUSTFLAGS"])

	debug, err := cfg.Select(domain.ModeDebug)
	require.NoError(t, err)
	assert.Empty(t, debug.FlagsFor("tailwind"), "overriding release leaves debug untouched")
}

func TestModeConfig_OverrideZeroValue(t *testing.T) {
	var cfg domain.ModeConfig
	cfg.Override(domain.BuildMode{Name: domain.ModeDebug, Subpath: "dev"})

	debug, err := cfg.Select(domain.ModeDebug)
	require.NoError(t, err)
	assert.Equal(t, "dev", debug.Subpath)

	_, err = cfg.Select(domain.ModeRelease)
	require.NoError(t, err)
}

func TestVars_Expand(t *testing.T) {
	vars := domain.Vars{"out": "/p/dist", "mode": "release"}

	assert.Equal(t, "/p/dist/bin/server", vars.Expand("${out}/bin/server"))
	assert.Equal(t, "target/release", vars.Expand("target/$mode"))
	assert.Equal(t, "${flags}", vars.Expand("${flags}"))
	assert.Equal(t, "${HOME}/x", vars.Expand("$HOME/x"))
	assert.Equal(t, "plain", vars.Expand("plain"))
	assert.Nil(t, vars.ExpandAll(nil))
}

func TestTarget_Args(t *testing.T) {
	release := domain.BuildMode{
		Name:  domain.ModeRelease,
		Flags: map[string][]string{"tailwind": {"--minify"}},
	}
	debug := domain.BuildMode{Name: domain.ModeDebug}

	spliced := &domain.Target{
		Name: "css",
		Action: domain.Action{
			Command: []string{"./tailwindcss", "-i", "in.css", domain.FlagsPlaceholder, "-o", "out.css"},
			FlagSet: "tailwind",
		},
	}
	assert.Equal(t, []string{"./tailwindcss", "-i", "in.css", "--minify", "-o", "out.css"}, spliced.Args(release))
	assert.Equal(t, []string{"./tailwindcss", "-i", "in.css", "-o", "out.css"}, spliced.Args(debug))

	appended := &domain.Target{
		Name:   "css",
		Action: domain.Action{Command: []string{"./tailwindcss"}, FlagSet: "tailwind"},
	}
	assert.Equal(t, []string{"./tailwindcss", "--minify"}, appended.Args(release))

	noSet := &domain.Target{Name: "x", Action: domain.Action{Command: []string{"true"}}}
	assert.Equal(t, []string{"true"}, noSet.Args(release))
}

func TestTarget_OutputDirs(t *testing.T) {
	tgt := &domain.Target{Outputs: []string{"/o/www/app.js", "/o/bin/server", "/o/www/app.css"}}
	assert.Equal(t, []string{"/o/bin", "/o/www"}, tgt.OutputDirs())
}

func TestTarget_IsAlias(t *testing.T) {
	assert.True(t, (&domain.Target{Name: "all"}).IsAlias())
	assert.False(t, (&domain.Target{Name: "x", Action: domain.Action{Command: []string{"make"}}}).IsAlias())
}
