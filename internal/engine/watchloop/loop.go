// Package watchloop rebuilds the project when its sources change and
// supervises the run step between builds.
package watchloop

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// State is the phase of a watch session.
type State int32

const (
	// StateIdle waits for file changes.
	StateIdle State = iota
	// StateDebouncing collects changes until the window closes.
	StateDebouncing
	// StateBuilding runs a build.
	StateBuilding
	// StateRunning supervises the run step after a successful build.
	StateRunning
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateBuilding:
		return "building"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// BuildFunc runs one build cycle. It returns the run step to start after a
// successful build, or nil when there is none. A non-nil error means the
// cycle failed; the loop reports it and keeps watching.
type BuildFunc func(ctx context.Context) (*domain.RunStep, error)

// Options configures a Loop.
type Options struct {
	// Root is the watched directory.
	Root string
	// Ignore filters changed paths. Nil ignores only the defaults.
	Ignore *Ignore
	// Debounce is the quiet period before a build starts.
	Debounce time.Duration
	// InitialBuild builds once before waiting for changes.
	InitialBuild bool
	// RunOutput receives the run step's output.
	RunOutput io.Writer
}

// Loop owns one watch session: a watcher, a debounce timer and at most one
// supervised child. All state transitions happen on the goroutine calling Run.
type Loop struct {
	build      BuildFunc
	watchers   ports.WatcherFactory
	supervisor ports.ProcessSupervisor
	metrics    ports.MetricsRecorder
	logger     ports.Logger
	opts       Options

	state atomic.Int32
	child ports.Process
}

// New creates a Loop. metrics may be nil.
func New(
	build BuildFunc,
	watchers ports.WatcherFactory,
	supervisor ports.ProcessSupervisor,
	metrics ports.MetricsRecorder,
	logger ports.Logger,
	opts Options,
) *Loop {
	if opts.Debounce <= 0 {
		opts.Debounce = domain.DefaultDebounce
	}
	if opts.Ignore == nil {
		opts.Ignore = NewIgnore(opts.Root, nil, nil)
	}
	if opts.RunOutput == nil {
		opts.RunOutput = io.Discard
	}
	return &Loop{
		build:      build,
		watchers:   watchers,
		supervisor: supervisor,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
	}
}

// State returns the current phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}

// Run watches until ctx is cancelled. Build failures never end the loop.
// The run step is terminated before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	w, err := l.watchers.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create watcher")
	}
	if err := w.Start(ctx, l.opts.Root, l.opts.Ignore.Skip()); err != nil {
		_ = w.Stop()
		return zerr.With(zerr.Wrap(err, "failed to start watcher"), "root", l.opts.Root)
	}
	defer func() { _ = w.Stop() }()
	defer l.stopChild(ctx)

	trigger := make(chan []string, 1)
	debouncer := NewDebouncer(l.opts.Debounce, func(paths []string) {
		select {
		case trigger <- paths:
		default:
		}
	})
	defer debouncer.Stop()

	l.logger.Info("watching " + l.opts.Root + " for changes")

	if l.opts.InitialBuild {
		l.cycle(ctx, nil)
	} else {
		l.setState(StateIdle)
	}

	events := w.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				// The watcher closes its channel when ctx is done.
				events = nil
				if ctx.Err() != nil {
					return nil
				}
				return zerr.New("file watcher stopped unexpectedly")
			}
			if l.opts.Ignore.Match(event.Path) {
				continue
			}
			l.logger.Debug("change: " + event.Operation.String() + " " + event.Path)
			if l.metrics != nil {
				l.metrics.IncWatchEvents(1)
			}
			debouncer.Add(event.Path)
			l.setState(StateDebouncing)

		case paths := <-trigger:
			l.cycle(ctx, paths)

		case <-l.childDone():
			l.childExited()
		}
	}
}

// cycle stops the run step, builds, and starts the run step again on success.
func (l *Loop) cycle(ctx context.Context, paths []string) {
	if len(paths) > 0 {
		l.logger.Info(describe(paths) + " changed, rebuilding")
	}
	l.stopChild(ctx)
	l.setState(StateBuilding)

	step, err := l.build(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.logger.Error(err)
		l.logger.Info("waiting for changes")
		l.settle()
		return
	}
	if step == nil {
		l.settle()
		return
	}

	proc, err := l.supervisor.Start(ctx, *step, l.opts.RunOutput)
	if err != nil {
		l.logger.Error(err)
		l.settle()
		return
	}
	l.child = proc
	if l.metrics != nil {
		l.metrics.SetRunStepUp(true)
	}
	l.logger.Info("started " + strings.Join(step.Argv(), " ") + " (pid " + strconv.Itoa(proc.Pid()) + ")")
	l.settle()
}

// settle leaves Building for Running or Idle.
func (l *Loop) settle() {
	if l.child != nil {
		l.setState(StateRunning)
		return
	}
	l.setState(StateIdle)
}

// childDone returns the exit channel of the run step, or nil without one.
func (l *Loop) childDone() <-chan struct{} {
	if l.child == nil {
		return nil
	}
	return l.child.Done()
}

func (l *Loop) childExited() {
	if err := l.child.Err(); err != nil {
		l.logger.Warn("run step exited: " + err.Error())
	} else {
		l.logger.Warn("run step exited")
	}
	l.child = nil
	if l.metrics != nil {
		l.metrics.SetRunStepUp(false)
	}
	if l.State() == StateRunning {
		l.setState(StateIdle)
	}
}

// stopChild terminates the run step. It outlives ctx so that the child is
// stopped on shutdown too.
func (l *Loop) stopChild(ctx context.Context) {
	if l.child == nil {
		return
	}
	proc := l.child
	l.child = nil

	l.logger.Debug("stopping run step (pid " + strconv.Itoa(proc.Pid()) + ")")
	if err := proc.Stop(context.WithoutCancel(ctx)); err != nil {
		l.logger.Warn("failed to stop run step: " + err.Error())
	}
	if l.metrics != nil {
		l.metrics.SetRunStepUp(false)
	}
}

func describe(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	return strconv.Itoa(len(paths)) + " files"
}
