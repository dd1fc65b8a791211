// Package supervisor starts and stops the run step of watch mode.
package supervisor

import (
	"context"
	"errors"
	"io"
	"maps"
	"net/http"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/joho/godotenv"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultGracePeriod is how long Stop waits after SIGTERM before SIGKILL.
	DefaultGracePeriod = 5 * time.Second
	// DefaultHealthTimeout bounds how long Start polls the health path.
	DefaultHealthTimeout = 15 * time.Second

	healthInterval  = 100 * time.Millisecond
	ptyDrainTimeout = 100 * time.Millisecond
)

var _ ports.ProcessSupervisor = (*Supervisor)(nil)

// Supervisor implements ports.ProcessSupervisor. The child runs in its own
// process group so that Stop reaches anything it spawned.
type Supervisor struct {
	logger        ports.Logger
	usePTY        bool
	gracePeriod   time.Duration
	healthTimeout time.Duration
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithPipes connects the child to plain pipes instead of a pseudo terminal.
func WithPipes() Option {
	return func(s *Supervisor) { s.usePTY = false }
}

// WithGracePeriod sets the time between SIGTERM and SIGKILL.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) { s.gracePeriod = d }
}

// WithHealthTimeout sets how long Start waits for the health path.
func WithHealthTimeout(d time.Duration) Option {
	return func(s *Supervisor) { s.healthTimeout = d }
}

// New creates a Supervisor.
func New(logger ports.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		logger:        logger,
		usePTY:        true,
		gracePeriod:   DefaultGracePeriod,
		healthTimeout: DefaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the run step and streams its output to out. When the step
// has a health path, Start returns once the child answers on it.
func (s *Supervisor) Start(ctx context.Context, step domain.RunStep, out io.Writer) (ports.Process, error) {
	argv := step.Argv()
	if len(argv) == 0 {
		return nil, zerr.Wrap(domain.ErrNoRunStep, "run step has no command")
	}

	env, err := environment(os.Environ(), step)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // command comes from the project config
	cmd.Dir = step.WorkingDir
	cmd.Env = env

	p := &Process{cmd: cmd, done: make(chan struct{}), grace: s.gracePeriod}
	if err := p.start(out, s.usePTY); err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrRunStepFailed, err.Error()),
			"command", argv[0]), "dir", step.WorkingDir)
	}
	s.logger.Debug("started run step " + strings.Join(argv, " ") + " (pid " + strconv.Itoa(p.Pid()) + ")")

	if step.HealthPath == "" {
		return p, nil
	}
	if err := s.waitHealthy(ctx, p, step); err != nil {
		_ = p.Stop(context.WithoutCancel(ctx))
		return nil, err
	}
	return p, nil
}

func (s *Supervisor) waitHealthy(ctx context.Context, p *Process, step domain.RunStep) error {
	url := "http://127.0.0.1:" + strconv.Itoa(step.Port) + step.HealthPath
	ctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	client := &http.Client{Timeout: time.Second}
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		if healthy(ctx, client, url) {
			s.logger.Debug("run step healthy at " + url)
			return nil
		}
		select {
		case <-p.Done():
			return zerr.With(zerr.Wrap(domain.ErrRunStepFailed, "run step exited before becoming healthy"), "url", url)
		case <-ctx.Done():
			return zerr.With(zerr.Wrap(domain.ErrRunStepFailed, "run step did not become healthy"), "url", url)
		case <-ticker.C:
		}
	}
}

func healthy(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// environment layers the env file, then the step's own variables and PORT,
// over the inherited environment.
func environment(sysEnv []string, step domain.RunStep) ([]string, error) {
	env := make(map[string]string, len(sysEnv))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			env[k] = v
		}
	}

	if step.EnvFile != "" {
		fileEnv, err := godotenv.Read(step.EnvFile)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrRunStepFailed, "failed to read env file"), "path", step.EnvFile)
		}
		maps.Copy(env, fileEnv)
	}
	maps.Copy(env, step.Env)
	if step.Port > 0 {
		env["PORT"] = strconv.Itoa(step.Port)
	}

	result := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		result = append(result, k+"="+env[k])
	}
	return result, nil
}

// Process is a supervised child.
type Process struct {
	cmd   *exec.Cmd
	grace time.Duration

	done     chan struct{}
	err      error
	stopOnce sync.Once
	stopErr  error
}

func (p *Process) start(out io.Writer, usePTY bool) error {
	if usePTY {
		// pty.Start puts the child in a new session, which is also a new process group.
		ptmx, err := pty.Start(p.cmd)
		if err != nil {
			return err
		}
		ioDone := make(chan struct{})
		go func() {
			defer close(ioDone)
			_, _ = io.Copy(out, ptmx)
		}()
		go p.wait(func() {
			// Grandchildren may keep the terminal open after the child exits.
			select {
			case <-ioDone:
			case <-time.After(ptyDrainTimeout):
			}
			_ = ptmx.Close()
			<-ioDone
		})
		return nil
	}

	p.cmd.Stdout = out
	p.cmd.Stderr = out
	p.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := p.cmd.Start(); err != nil {
		return err
	}
	go p.wait(nil)
	return nil
}

func (p *Process) wait(cleanup func()) {
	err := p.cmd.Wait()
	if cleanup != nil {
		cleanup()
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		err = zerr.Wrap(err, "failed to wait for run step")
	}
	p.err = err
	close(p.done)
}

// Pid returns the child's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed when the child has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Err returns the exit error once Done is closed.
func (p *Process) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Stop sends SIGTERM to the child's process group and SIGKILL after the
// grace period or when ctx is done. It returns once the child has exited and
// is safe to call more than once.
func (p *Process) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.stopErr = p.terminate(ctx)
	})
	return p.stopErr
}

func (p *Process) terminate(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	pgid := -p.Pid()
	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return zerr.With(zerr.Wrap(err, "failed to signal run step"), "pid", p.Pid())
	}

	timer := time.NewTimer(p.grace)
	defer timer.Stop()
	select {
	case <-p.done:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	if err := syscall.Kill(pgid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return zerr.With(zerr.Wrap(err, "failed to kill run step"), "pid", p.Pid())
	}
	<-p.done
	return nil
}
