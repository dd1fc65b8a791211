package domain

import "go.trai.ch/zerr"

var (
	// ErrTargetAlreadyExists is returned when attempting to add a target with a name that already exists.
	ErrTargetAlreadyExists = zerr.New("target already exists")
	// ErrUnknownTarget is returned when a requested target or a referenced prerequisite is not registered.
	ErrUnknownTarget = zerr.New("unknown target")
	// ErrCyclicDependency is returned when resolution encounters a target that is still being visited.
	ErrCyclicDependency = zerr.New("cyclic dependency")
	// ErrNoTargetSpecified is returned when no target was given and the configuration has no default.
	ErrNoTargetSpecified = zerr.New("no target specified and no default target configured")
	// ErrInvalidTargetName is returned when a target name is empty or contains whitespace.
	ErrInvalidTargetName = zerr.New("invalid target name")

	// ErrUnknownMode is returned when a build mode other than debug or release is requested.
	ErrUnknownMode = zerr.New("unknown build mode, expected 'debug' or 'release'")

	// ErrIO is the parent of all output tree and filesystem setup failures.
	ErrIO = zerr.New("i/o error")
	// ErrOutputTreePrepareFailed is returned when the output tree cannot be removed or created.
	ErrOutputTreePrepareFailed = zerr.Wrap(ErrIO, "failed to prepare output tree")
	// ErrOutputRootUnsafe is returned when the output root would remove the project itself.
	ErrOutputRootUnsafe = zerr.Wrap(ErrIO, "refusing to use output root")
	// ErrInputNotFound is returned when a declared input matches no file.
	ErrInputNotFound = zerr.New("input not found")
	// ErrPathStatFailed is returned when stating an input or output fails for a reason other than absence.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrActionFailed is returned when a target's action exits non-zero or cannot be started.
	ErrActionFailed = zerr.New("action failed")
	// ErrOutputsNotProduced is returned when an action succeeded but left its outputs missing or stale.
	ErrOutputsNotProduced = zerr.New("action did not produce its declared outputs")
	// ErrAborted marks a target that was never started.
	ErrAborted = zerr.New("aborted")
	// ErrAbortedDueToDependency marks a target that was not started because a prerequisite failed.
	ErrAbortedDueToDependency = zerr.Wrap(ErrAborted, "aborted due to failed dependency")
	// ErrBuildFailed is returned when one or more targets failed or were aborted.
	ErrBuildFailed = zerr.New("build failed")

	// ErrConfigNotFound is returned when no kiln.yaml can be found.
	ErrConfigNotFound = zerr.New("could not find kiln.yaml")
	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")
	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")
	// ErrConfigInvalid is returned when the config file parses but violates a constraint.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrNoRunStep is returned when watch is asked to run the artifact but no run step is configured.
	ErrNoRunStep = zerr.New("no run step configured")
	// ErrRunStepFailed is returned when the supervised run step cannot be started.
	ErrRunStepFailed = zerr.New("failed to start run step")
)
