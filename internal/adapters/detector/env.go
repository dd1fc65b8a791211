// Package detector selects the renderer for the current environment.
package detector

import (
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode is the rendering mode of a build.
type OutputMode int

const (
	// ModeAuto selects the mode from the environment.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive renderer.
	ModeTUI
	// ModeLinear forces the line-based renderer.
	ModeLinear
)

// ErrUnknownOutputMode is returned for a --ui value other than auto, tui or linear.
var ErrUnknownOutputMode = zerr.New("unknown ui mode, expected 'auto', 'tui' or 'linear'")

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// DetectEnvironment returns ModeLinear when stdout is not a terminal or a CI
// environment is detected, and ModeTUI otherwise.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // fd fits in int
	return detect(isTTY, os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputMode {
	if !isTTY || ci == "true" || ci == "1" {
		return ModeLinear
	}
	return ModeTUI
}

// ParseMode parses a --ui flag value. The empty string means auto.
func ParseMode(flag string) (OutputMode, error) {
	switch flag {
	case "", "auto":
		return ModeAuto, nil
	case "tui":
		return ModeTUI, nil
	case "linear", "ci":
		return ModeLinear, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(ErrUnknownOutputMode, "invalid --ui"), "ui", flag)
	}
}

// ResolveMode applies a user override to the detected mode.
func ResolveMode(autoDetected, override OutputMode) OutputMode {
	if override == ModeAuto {
		return autoDetected
	}
	return override
}
