// Package scheduler executes an execution plan wave by wave.
package scheduler

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options configures one run.
type Options struct {
	// Parallelism bounds the targets running at once. Zero means runtime.NumCPU().
	Parallelism int
	// Force rebuilds every target regardless of staleness.
	Force bool
	// Dirs creates per-target output directories. It may be nil.
	Dirs ports.DirectoryLifecycle
}

// Scheduler runs the targets of a plan. Targets of one wave run
// concurrently; a wave starts only after the previous one has finished.
type Scheduler struct {
	runner    ports.ActionRunner
	staleness ports.StalenessChecker
	tracer    ports.Tracer
	metrics   ports.MetricsRecorder
	logger    ports.Logger
}

// NewScheduler creates a new Scheduler. metrics may be nil.
func NewScheduler(
	runner ports.ActionRunner,
	staleness ports.StalenessChecker,
	tracer ports.Tracer,
	metrics ports.MetricsRecorder,
	logger ports.Logger,
) *Scheduler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Scheduler{
		runner:    runner,
		staleness: staleness,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run executes plan in mode and returns the per-target report. Failures
// are recorded in the report rather than returned. Once ctx is done no new
// action is started; running actions are left to finish.
func (s *Scheduler) Run(ctx context.Context, plan *domain.ExecutionPlan, mode domain.BuildMode, opts Options) *domain.BuildReport {
	start := time.Now()
	report := domain.NewBuildReport(mode.Name)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	s.tracer.EmitPlan(ctx, plan.Names(), plan.Dependencies(), plan.Requested())

	run := &buildRun{
		s:      s,
		plan:   plan,
		mode:   mode,
		opts:   opts,
		report: report,
		byName: make(map[string]*domain.Target, plan.Len()),
	}
	for _, t := range plan.Targets() {
		run.byName[t.Name] = t
	}

	for i, wave := range plan.Waves() {
		s.logger.Debug("starting wave " + strconv.Itoa(i+1) + ": " + strings.Join(names(wave), ", "))

		var g errgroup.Group
		g.SetLimit(parallelism)
		for _, t := range wave {
			g.Go(func() error {
				run.target(ctx, t)
				return nil
			})
		}
		_ = g.Wait()
	}

	report.Duration = time.Since(start)
	s.metrics.ObserveBuild(mode.Name, report.Success(), report.Duration)
	return report
}

type buildRun struct {
	s      *Scheduler
	plan   *domain.ExecutionPlan
	mode   domain.BuildMode
	opts   Options
	report *domain.BuildReport
	byName map[string]*domain.Target
}

// target runs one target and records its result.
func (r *buildRun) target(ctx context.Context, t *domain.Target) {
	start := time.Now()
	ctx, span := r.s.tracer.Start(ctx, t.Name, ports.WithAttribute(ports.AttrTarget, t.Name))

	var log syncBuffer
	res := r.execute(ctx, t, io.MultiWriter(&log, span))
	res.Name = t.Name
	res.Log = log.String()
	res.Duration = time.Since(start)

	span.SetAttribute(ports.AttrStatus, string(res.Status))
	if res.Err != nil {
		span.RecordError(res.Err)
	}
	span.End()

	r.report.Record(res)
	r.s.metrics.ObserveTarget(t.Name, res.Status, res.Duration)
}

func (r *buildRun) execute(ctx context.Context, t *domain.Target, out io.Writer) domain.TargetResult {
	rebuiltDep := false
	for _, dep := range t.Dependencies {
		switch r.report.Status(dep) {
		case domain.StatusFailed, domain.StatusAborted:
			return aborted(zerr.With(zerr.With(zerr.Wrap(domain.ErrAbortedDueToDependency, "not started"),
				"target", t.Name), "dependency", dep))
		case domain.StatusSucceeded:
			rebuiltDep = true
		}
	}
	if err := ctx.Err(); err != nil {
		return aborted(zerr.With(zerr.Wrap(err, "build cancelled"), "target", t.Name))
	}

	if t.IsAlias() {
		if rebuiltDep {
			return domain.TargetResult{Status: domain.StatusSucceeded}
		}
		return domain.TargetResult{Status: domain.StatusSkipped}
	}

	check := r.withImplicitInputs(t)
	if !r.opts.Force && !rebuiltDep {
		due, err := r.s.staleness.IsDue(check, false)
		if err != nil {
			return failed(zerr.With(err, "target", t.Name))
		}
		if !due {
			r.s.logger.Debug(t.Name + " is up to date")
			return domain.TargetResult{Status: domain.StatusSkipped}
		}
	}

	if r.opts.Dirs != nil && len(t.Outputs) > 0 {
		if err := r.opts.Dirs.EnsureDirs(t.OutputDirs()...); err != nil {
			return failed(zerr.With(err, "target", t.Name))
		}
	}

	cmd := ports.Command{
		Args: t.Args(r.mode),
		Dir:  t.Action.WorkingDir,
		Env:  t.Action.Environment,
	}
	r.s.logger.Debug(t.Name + ": " + strings.Join(cmd.Args, " "))

	code, err := r.s.runner.Run(ctx, cmd, out, out)
	if err != nil {
		return failed(zerr.With(zerr.Wrap(domain.ErrActionFailed, err.Error()), "target", t.Name))
	}
	if code != 0 {
		return failed(zerr.With(zerr.With(zerr.Wrap(domain.ErrActionFailed, "action exited non-zero"),
			"target", t.Name), "exit_code", code))
	}

	if len(t.Outputs) > 0 {
		due, err := r.s.staleness.IsDue(check, false)
		if err != nil {
			return failed(zerr.With(err, "target", t.Name))
		}
		if due {
			return failed(zerr.With(zerr.Wrap(domain.ErrOutputsNotProduced, "outputs missing or older than inputs"),
				"target", t.Name))
		}
	}

	return domain.TargetResult{Status: domain.StatusSucceeded}
}

// withImplicitInputs returns a copy of t whose inputs also list the outputs
// of its prerequisites. Aliases pass the outputs of their own prerequisites
// through.
func (r *buildRun) withImplicitInputs(t *domain.Target) *domain.Target {
	inputs := slices.Clone(t.Inputs)
	seen := make(map[string]bool)
	var collect func(deps []string)
	collect = func(deps []string) {
		for _, dep := range deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			d, ok := r.byName[dep]
			if !ok {
				continue
			}
			if d.IsAlias() {
				collect(d.Dependencies)
				continue
			}
			inputs = append(inputs, d.Outputs...)
		}
	}
	collect(t.Dependencies)

	cp := *t
	cp.Inputs = inputs
	return &cp
}

func aborted(err error) domain.TargetResult {
	return domain.TargetResult{Status: domain.StatusAborted, Err: err}
}

func failed(err error) domain.TargetResult {
	return domain.TargetResult{Status: domain.StatusFailed, Err: err}
}

func names(targets []*domain.Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Name
	}
	return out
}

// syncBuffer collects action output written from the stdout and stderr
// copy goroutines of one command.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type nopMetrics struct{}

func (nopMetrics) ObserveBuild(domain.Mode, bool, time.Duration)            {}
func (nopMetrics) ObserveTarget(string, domain.TargetStatus, time.Duration) {}
func (nopMetrics) IncWatchEvents(int)                                       {}
func (nopMetrics) SetRunStepUp(bool)                                        {}
