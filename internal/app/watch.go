package app

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/kiln/internal/engine/watchloop"
	"go.trai.ch/zerr"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	ProjectOptions
	Clean       bool
	Force       bool
	Parallelism int
	// Run starts the run step after every successful build.
	Run bool
	// Port overrides the run step's port.
	Port int
	// RunArgs are appended to the run step's arguments.
	RunArgs []string
	// Debounce overrides the configured window.
	Debounce time.Duration
	// Ignore extends the configured ignore patterns.
	Ignore []string
	// MetricsAddr serves Prometheus metrics when set.
	MetricsAddr string
	// SkipInitialBuild waits for the first change before building.
	SkipInitialBuild bool
}

// Watch rebuilds on every change until ctx is cancelled. Configuration is
// reloaded before every build; errors after the first load are logged and
// the loop keeps watching.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	p, err := a.load(opts.ConfigPath, opts.Output)
	if err != nil {
		return err
	}
	s, err := resolve(p, opts.ProjectOptions, opts.Port)
	if err != nil {
		return err
	}
	if opts.Run && p.Run == nil {
		return zerr.With(zerr.Wrap(domain.ErrNoRunStep, "--run needs a run step"), "config", p.ConfigPath)
	}

	var recorder ports.MetricsRecorder
	if opts.MetricsAddr != "" {
		srv, rec := metrics.NewServer(a.logger)
		if err := srv.Start(ctx, opts.MetricsAddr); err != nil {
			return err
		}
		recorder = rec
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = p.Watch.Debounce
	}

	ignore := watchloop.NewIgnore(p.Watch.Root, writtenPaths(p, s.plan), slices.Concat(p.Watch.Ignore, opts.Ignore))

	loop := watchloop.New(a.watchBuild(opts, recorder), a.watchers, a.supervisor, recorder, a.logger, watchloop.Options{
		Root:         p.Watch.Root,
		Ignore:       ignore,
		Debounce:     debounce,
		InitialBuild: !opts.SkipInitialBuild,
		RunOutput:    a.stdout,
	})
	return loop.Run(ctx)
}

// writtenPaths lists what a build writes: the output root, the state dir
// and every declared output of the plan.
func writtenPaths(p *domain.Project, plan *domain.ExecutionPlan) []string {
	paths := []string{p.Output.Root, filepath.Join(p.Root, domain.StateDirName)}
	for _, t := range plan.Targets() {
		paths = append(paths, t.Outputs...)
	}
	return paths
}

// watchBuild returns the build cycle of the watch loop. Watch output is
// always linear so that it interleaves with the run step's output.
func (a *App) watchBuild(opts WatchOptions, recorder ports.MetricsRecorder) watchloop.BuildFunc {
	clean := opts.Clean
	return func(ctx context.Context) (*domain.RunStep, error) {
		p, err := a.load(opts.ConfigPath, opts.Output)
		if err != nil {
			return nil, err
		}
		s, err := resolve(p, opts.ProjectOptions, opts.Port)
		if err != nil {
			return nil, err
		}

		dirs := a.dirs.ForTree(p.Root, p.Output)
		if err := dirs.Prepare(clean); err != nil {
			return nil, err
		}
		clean = false

		report, err := a.execute(ctx, s, linear.NewRenderer(a.stdout, a.stderr), scheduler.Options{
			Parallelism: opts.Parallelism,
			Force:       opts.Force,
			Dirs:        dirs,
		}, recorder)
		if err != nil {
			return nil, err
		}
		a.summarize(report)
		if err := report.Err(); err != nil {
			return nil, err
		}

		if !opts.Run {
			return nil, nil
		}
		step := p.MaterializeRun(s.mode, s.port)
		if step == nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrNoRunStep, "run step was removed"), "config", p.ConfigPath)
		}
		step.Args = append(step.Args, opts.RunArgs...)
		return step, nil
	}
}
