// Package app implements the application layer for kiln.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/adapters/tui"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	runner       ports.ActionRunner
	staleness    ports.StalenessChecker
	dirs         ports.DirectoryLifecycleFactory
	watchers     ports.WatcherFactory
	supervisor   ports.ProcessSupervisor
	logger       ports.Logger

	stdout     io.Writer
	stderr     io.Writer
	teaOptions []tea.ProgramOption
	detect     func() detector.OutputMode
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	runner ports.ActionRunner,
	staleness ports.StalenessChecker,
	dirs ports.DirectoryLifecycleFactory,
	watchers ports.WatcherFactory,
	supervisor ports.ProcessSupervisor,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		runner:       runner,
		staleness:    staleness,
		dirs:         dirs,
		watchers:     watchers,
		supervisor:   supervisor,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		detect:       detector.DetectEnvironment,
	}
}

// WithOutput redirects build output and plan listings.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithDetector replaces terminal detection for --ui auto.
func (a *App) WithDetector(detect func() detector.OutputMode) *App {
	a.detect = detect
	return a
}

// ProjectOptions select the configuration and the build mode.
type ProjectOptions struct {
	// ConfigPath is kiln.yaml or a directory to discover it from. Empty means ".".
	ConfigPath string
	// Mode is "debug" or "release". Empty means debug.
	Mode string
	// Output overrides the output root.
	Output string
	// Targets are the requested targets. Empty means the configured default.
	Targets []string
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	ProjectOptions
	Clean       bool
	Force       bool
	Parallelism int
	// UI is auto, tui or linear.
	UI string
}

// Build runs the requested targets once. The report is returned even when
// the build failed; the error then wraps domain.ErrBuildFailed.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*domain.BuildReport, error) {
	override, err := detector.ParseMode(opts.UI)
	if err != nil {
		return nil, err
	}

	s, err := a.session(opts.ProjectOptions)
	if err != nil {
		return nil, err
	}

	dirs := a.dirs.ForTree(s.project.Root, s.project.Output)
	if err := dirs.Prepare(opts.Clean); err != nil {
		return nil, err
	}

	interactive := detector.ResolveMode(a.detect(), override) == detector.ModeTUI
	var renderer ports.Renderer
	if interactive {
		renderer = tui.NewRenderer(a.stderr, append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)...)
	} else {
		renderer = linear.NewRenderer(a.stdout, a.stderr)
	}

	report, err := a.execute(ctx, s, renderer, scheduler.Options{
		Parallelism: opts.Parallelism,
		Force:       opts.Force,
		Dirs:        dirs,
	}, nil)
	if err != nil {
		return report, err
	}

	if interactive {
		a.printFailures(report)
	}
	a.summarize(report)
	return report, report.Err()
}

// Plan prints the resolved plan and its waves without running anything.
func (a *App) Plan(opts ProjectOptions) (*domain.ExecutionPlan, error) {
	s, err := a.session(opts)
	if err != nil {
		return nil, err
	}

	w := a.stdout
	_, _ = fmt.Fprintf(w, "Plan for %s (%s): %d target(s)\n",
		strings.Join(s.plan.Requested(), ", "), s.mode.Name, s.plan.Len())
	for i, wave := range s.plan.Waves() {
		names := make([]string, len(wave))
		for j, t := range wave {
			names[j] = t.Name
		}
		_, _ = fmt.Fprintf(w, "  wave %d: %s\n", i+1, strings.Join(names, ", "))
	}
	return s.plan, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	Output     string
}

// Clean removes the output tree.
func (a *App) Clean(opts CleanOptions) error {
	p, err := a.load(opts.ConfigPath, opts.Output)
	if err != nil {
		return err
	}

	a.logger.Info("removing " + p.Output.Root)
	if err := a.dirs.ForTree(p.Root, p.Output).Remove(); err != nil {
		return err
	}
	a.logger.Info("removed " + p.Output.Root)
	return nil
}

// session is a loaded project resolved for one build.
type session struct {
	project *domain.Project
	mode    domain.BuildMode
	plan    *domain.ExecutionPlan
	port    int
}

func (a *App) session(opts ProjectOptions) (*session, error) {
	p, err := a.load(opts.ConfigPath, opts.Output)
	if err != nil {
		return nil, err
	}
	return resolve(p, opts, 0)
}

func (a *App) load(path, output string) (*domain.Project, error) {
	if path == "" {
		path = "."
	}
	p, err := a.configLoader.Load(path)
	if err != nil {
		return nil, err
	}
	if output != "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, err.Error()), "output", output)
		}
		p.Output.Root = abs
	}
	return p, nil
}

// resolve selects the mode, materializes the graph and resolves the
// requested targets. port 0 picks the run step's port.
func resolve(p *domain.Project, opts ProjectOptions, port int) (*session, error) {
	name, err := domain.ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	mode, err := p.Modes.Select(name)
	if err != nil {
		return nil, err
	}

	if port == 0 {
		port = domain.DefaultPort
		if p.Run != nil && p.Run.Port != 0 {
			port = p.Run.Port
		}
	}

	targets := opts.Targets
	if len(targets) == 0 {
		if p.Default == "" {
			return nil, domain.ErrNoTargetSpecified
		}
		targets = []string{p.Default}
	}

	g, err := p.Materialize(mode, port)
	if err != nil {
		return nil, err
	}
	plan, err := g.ResolveAll(targets)
	if err != nil {
		return nil, err
	}

	return &session{project: p, mode: mode, plan: plan, port: port}, nil
}

// execute runs the renderer and the scheduler side by side. The renderer
// stops once the scheduler is done; quitting the renderer cancels the build.
func (a *App) execute(
	ctx context.Context,
	s *session,
	renderer ports.Renderer,
	opts scheduler.Options,
	metrics ports.MetricsRecorder,
) (*domain.BuildReport, error) {
	tracer := telemetry.NewOTelTracer("kiln", renderer)
	defer func() {
		_ = tracer.Shutdown(context.WithoutCancel(ctx))
	}()

	sched := scheduler.NewScheduler(a.runner, a.staleness, tracer, metrics, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	var report *domain.BuildReport

	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()
		report = sched.Run(gctx, s.plan, s.mode, opts)
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// printFailures writes the full log of every failed target. The
// interactive view is gone once the build ends, so this is the only place
// the output survives.
func (a *App) printFailures(report *domain.BuildReport) {
	for _, res := range report.Results() {
		if res.Status != domain.StatusFailed {
			continue
		}
		_, _ = fmt.Fprintf(a.stderr, "--- %s (failed) ---\n", res.Name)
		if res.Log != "" {
			_, _ = io.WriteString(a.stderr, res.Log)
			if !strings.HasSuffix(res.Log, "\n") {
				_, _ = io.WriteString(a.stderr, "\n")
			}
		}
	}
}

func (a *App) summarize(report *domain.BuildReport) {
	msg := fmt.Sprintf("%s build: %d succeeded, %d up to date",
		report.Mode,
		report.Count(domain.StatusSucceeded),
		report.Count(domain.StatusSkipped))
	if n := report.Count(domain.StatusFailed); n > 0 {
		msg += fmt.Sprintf(", %d failed", n)
	}
	if n := report.Count(domain.StatusAborted); n > 0 {
		msg += fmt.Sprintf(", %d aborted", n)
	}
	a.logger.Info(msg + " in " + report.Duration.Round(time.Millisecond).String())
}
