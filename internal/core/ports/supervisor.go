package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Process is a supervised child started by a ProcessSupervisor.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int
	// Stop terminates the child, escalating to a kill after the grace period.
	// It returns once the child has exited.
	Stop(ctx context.Context) error
	// Done is closed when the child exits.
	Done() <-chan struct{}
	// Err returns the exit error once Done is closed.
	Err() error
}

// ProcessSupervisor starts the run step.
//
//go:generate mockgen -source=supervisor.go -destination=mocks/mock_supervisor.go -package=mocks
type ProcessSupervisor interface {
	// Start launches the run step with its output copied to out.
	// When the step has a health path, Start returns after the child answers it.
	Start(ctx context.Context, step domain.RunStep, out io.Writer) (Process, error)
}
