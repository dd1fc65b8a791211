// Package main is the entry point for the kiln build tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	_ "go.trai.ch/kiln/internal/wiring"
)

// Process exit codes.
const (
	exitOK          = 0
	exitBuildFailed = 1
	exitGraph       = 2
	exitIO          = 3
	exitConfig      = 4
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// The logger is not available yet.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitBuildFailed
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	logs, _ := components.Logger.(commands.LogConfigurer)
	cli := commands.New(components.App, logs)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	err = cli.Execute(ctx)
	if err == nil {
		return exitOK
	}
	// The renderer has already shown what failed.
	if !errors.Is(err, domain.ErrBuildFailed) {
		components.Logger.Error(err)
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit code. Graph, I/O and
// configuration errors take precedence over a failed action.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrUnknownTarget),
		errors.Is(err, domain.ErrCyclicDependency),
		errors.Is(err, domain.ErrNoTargetSpecified),
		errors.Is(err, domain.ErrTargetAlreadyExists),
		errors.Is(err, domain.ErrInvalidTargetName):
		return exitGraph
	case errors.Is(err, domain.ErrIO):
		return exitIO
	case errors.Is(err, domain.ErrConfigNotFound),
		errors.Is(err, domain.ErrConfigReadFailed),
		errors.Is(err, domain.ErrConfigParseFailed),
		errors.Is(err, domain.ErrConfigInvalid),
		errors.Is(err, domain.ErrUnknownMode),
		errors.Is(err, domain.ErrNoRunStep),
		errors.Is(err, detector.ErrUnknownOutputMode):
		return exitConfig
	default:
		return exitBuildFailed
	}
}
