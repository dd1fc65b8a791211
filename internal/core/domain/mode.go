package domain

import (
	"maps"
	"os"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Mode names a build mode.
type Mode string

const (
	// ModeDebug builds unoptimized artifacts for development.
	ModeDebug Mode = "debug"
	// ModeRelease builds optimized artifacts for packaging.
	ModeRelease Mode = "release"
)

// ParseMode converts a string into a Mode.
// An empty string selects ModeDebug.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDebug:
		return ModeDebug, nil
	case ModeRelease:
		return ModeRelease, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownMode, "invalid mode"), "mode", s)
	}
}

// BuildMode is the flag set and output subpath selected for one invocation.
type BuildMode struct {
	Name Mode
	// Flags maps a flag-set name (e.g. "cargo", "tailwind") to extra arguments.
	Flags map[string][]string
	// Subpath is the output subpath segment, exposed to actions as ${subpath}.
	Subpath string
	// Env is merged into every action's environment.
	Env map[string]string
}

// FlagsFor returns the flags of the named flag set, or nil.
func (m BuildMode) FlagsFor(set string) []string {
	if set == "" {
		return nil
	}
	return m.Flags[set]
}

// ModeConfig holds the known build modes.
type ModeConfig struct {
	modes map[Mode]BuildMode
}

// DefaultModeConfig returns the built-in debug and release modes.
func DefaultModeConfig() ModeConfig {
	return ModeConfig{
		modes: map[Mode]BuildMode{
			ModeDebug:   {Name: ModeDebug, Subpath: string(ModeDebug), Flags: map[string][]string{}},
			ModeRelease: {Name: ModeRelease, Subpath: string(ModeRelease), Flags: map[string][]string{}},
		},
	}
}

// Override merges a configured mode on top of the defaults.
// Flag sets are replaced per name; a non-empty subpath replaces the default.
func (c *ModeConfig) Override(m BuildMode) {
	if c.modes == nil {
		*c = DefaultModeConfig()
	}
	base := c.modes[m.Name]
	base.Name = m.Name
	if m.Subpath != "" {
		base.Subpath = m.Subpath
	}
	flags := maps.Clone(base.Flags)
	if flags == nil {
		flags = make(map[string][]string, len(m.Flags))
	}
	for set, f := range m.Flags {
		flags[set] = slices.Clone(f)
	}
	base.Flags = flags
	if len(m.Env) > 0 {
		env := maps.Clone(base.Env)
		if env == nil {
			env = make(map[string]string, len(m.Env))
		}
		maps.Copy(env, m.Env)
		base.Env = env
	}
	c.modes[m.Name] = base
}

// Select returns the BuildMode for name.
func (c ModeConfig) Select(name Mode) (BuildMode, error) {
	m, ok := c.modes[name]
	if !ok {
		return BuildMode{}, zerr.With(zerr.Wrap(ErrUnknownMode, "mode not configured"), "mode", string(name))
	}
	return m, nil
}

// Vars is the set of variables substituted into target definitions.
type Vars map[string]string

const (
	// VarOut is the output root.
	VarOut = "out"
	// VarRoot is the project root.
	VarRoot = "root"
	// VarMode is the active mode name.
	VarMode = "mode"
	// VarSubpath is the active mode's output subpath segment.
	VarSubpath = "subpath"
	// VarPort is the port handed to the run step.
	VarPort = "port"
)

// Expand substitutes ${name} and $name references.
// Unknown names are left untouched so shell variables and ${flags} survive.
func (v Vars) Expand(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return os.Expand(s, func(key string) string {
		if val, ok := v[key]; ok {
			return val
		}
		return "${" + key + "}"
	})
}

// ExpandAll expands every element of ss.
func (v Vars) ExpandAll(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = v.Expand(s)
	}
	return out
}
