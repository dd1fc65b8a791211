package ports

import (
	"context"
	"time"
)

// Renderer presents a build as it runs. The tracer bridge feeds it span
// events; the linear and TUI adapters implement it.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	Start(ctx context.Context) error
	// Stop stops accepting events and flushes pending output.
	Stop() error
	// Wait blocks until the renderer has terminated.
	Wait() error

	// OnPlan announces the targets in execution order, each target's in-plan
	// prerequisites, and the targets named on the command line.
	OnPlan(targets []string, deps map[string][]string, requested []string)

	OnTargetStart(spanID, parentID, name string, startTime time.Time)
	// OnTargetLog receives raw action output; data may hold partial lines.
	OnTargetLog(spanID string, data []byte)
	// OnTargetDone reports the end of a target. skipped means it was up to date.
	OnTargetDone(spanID string, endTime time.Time, err error, skipped bool)
}
