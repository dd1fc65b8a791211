package domain

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// FlagsPlaceholder is the command argument replaced by the active mode's flag set.
const FlagsPlaceholder = "${flags}"

// Action is the executable step bound to a target.
// An empty Command makes the target an alias that only groups its prerequisites.
type Action struct {
	Command     []string
	WorkingDir  string
	Environment map[string]string
	// FlagSet names the group of mode flags spliced into Command.
	FlagSet string
}

// Target is a named, buildable unit with prerequisites and an action.
type Target struct {
	Name         string
	Dependencies []string
	Action       Action
	Inputs       []string
	Outputs      []string
}

// IsAlias reports whether the target has no command to run.
func (t *Target) IsAlias() bool {
	return len(t.Action.Command) == 0
}

// OutputDirs returns the distinct parent directories of the declared outputs.
func (t *Target) OutputDirs() []string {
	dirs := make([]string, 0, len(t.Outputs))
	for _, out := range t.Outputs {
		dirs = append(dirs, filepath.Dir(out))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// Args returns the command line for the given mode.
// The mode's flags for the action's flag set replace a FlagsPlaceholder
// argument, or are appended when the command has no placeholder.
func (t *Target) Args(mode BuildMode) []string {
	flags := mode.FlagsFor(t.Action.FlagSet)
	args := make([]string, 0, len(t.Action.Command)+len(flags))
	spliced := false
	for _, arg := range t.Action.Command {
		if arg == FlagsPlaceholder {
			args = append(args, flags...)
			spliced = true
			continue
		}
		args = append(args, arg)
	}
	if !spliced {
		args = append(args, flags...)
	}
	return args
}

// Expand returns a copy of the target with variables substituted in its
// command, working directory, environment, inputs and outputs.
func (t *Target) Expand(vars Vars) Target {
	out := Target{
		Name:         t.Name,
		Dependencies: slices.Clone(t.Dependencies),
		Inputs:       vars.ExpandAll(t.Inputs),
		Outputs:      vars.ExpandAll(t.Outputs),
		Action: Action{
			Command:    vars.ExpandAll(t.Action.Command),
			WorkingDir: vars.Expand(t.Action.WorkingDir),
			FlagSet:    t.Action.FlagSet,
		},
	}
	if len(t.Action.Environment) > 0 {
		out.Action.Environment = make(map[string]string, len(t.Action.Environment))
		for k, v := range t.Action.Environment {
			out.Action.Environment[k] = vars.Expand(v)
		}
	}
	return out
}

// ValidateTargetName rejects empty names and names containing whitespace.
func ValidateTargetName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return zerr.With(zerr.Wrap(ErrInvalidTargetName, "invalid target"), "target", name)
	}
	return nil
}
