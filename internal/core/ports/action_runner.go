// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Command is a fully resolved action invocation.
type Command struct {
	// Args is the argument vector; Args[0] is the program.
	Args []string
	// Dir is the working directory.
	Dir string
	// Env overlays the filtered system environment.
	Env map[string]string
}

// ActionRunner runs one action to completion.
//
//go:generate mockgen -source=action_runner.go -destination=mocks/mock_action_runner.go -package=mocks
type ActionRunner interface {
	// Run starts the command and waits for it to exit.
	// It returns the exit code; err is non-nil only when the process could not be started.
	Run(ctx context.Context, cmd Command, stdout, stderr io.Writer) (exitCode int, err error)
}
