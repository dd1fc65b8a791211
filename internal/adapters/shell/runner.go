// Package shell runs build actions as child processes.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ActionRunner = (*Runner)(nil)

// Runner implements ports.ActionRunner using os/exec and a pseudo terminal,
// so compilers keep their colored output.
type Runner struct {
	// usePTY falls back to plain pipes when false.
	usePTY bool
}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{usePTY: true}
}

// NewPipeRunner creates a Runner that connects the child to pipes instead of
// a pseudo terminal. Stdout and stderr stay separate.
func NewPipeRunner() *Runner {
	return &Runner{}
}

// Run starts the command and waits for it to exit. A started command is
// never killed on cancellation; ctx only prevents new starts.
func (r *Runner) Run(ctx context.Context, command ports.Command, stdout, stderr io.Writer) (int, error) {
	if len(command.Args) == 0 {
		return -1, zerr.New("empty command")
	}
	if err := ctx.Err(); err != nil {
		return -1, zerr.Wrap(err, "not starting command")
	}

	env := resolveEnvironment(os.Environ(), command.Env)
	cmd := newCmd(command, env)

	if r.usePTY {
		return runPTY(cmd, stdout)
	}

	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return -1, startError(err, command)
	}
	return exitCode(cmd.Wait())
}

func newCmd(command ports.Command, env []string) *exec.Cmd {
	name := command.Args[0]

	executable := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.Command(executable, command.Args[1:]...) //nolint:gosec // command comes from the project config
	cmd.Args[0] = name
	cmd.Dir = command.Dir
	cmd.Env = env
	return cmd
}

func runPTY(cmd *exec.Cmd, out io.Writer) (int, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return -1, startError(err, ports.Command{Args: cmd.Args, Dir: cmd.Dir})
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		// The pty merges stdout and stderr.
		_, _ = io.Copy(out, ptmx)
	}()

	waitErr := cmd.Wait()
	<-ioDone
	return exitCode(waitErr)
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, zerr.Wrap(err, "failed to wait for command")
}

func startError(err error, command ports.Command) error {
	wrapped := zerr.With(zerr.Wrap(err, "failed to start command"), "command", command.Args[0])
	if command.Dir != "" {
		wrapped = zerr.With(wrapped, "dir", command.Dir)
	}
	return wrapped
}

// allowListedEnvVars are the system environment variables an action inherits.
// Everything else has to be declared by the mode or the target.
var allowListedEnvVars = []string{
	"HOME",
	"PATH",
	"TERM",
	"USER",
	"CARGO_HOME",
	"RUSTUP_HOME",
	"GOPATH",
	"GOCACHE",
}

// resolveEnvironment filters sysEnv to the allow-list and overlays actionEnv.
func resolveEnvironment(sysEnv []string, actionEnv map[string]string) []string {
	envMap := make(map[string]string, len(allowListedEnvVars)+len(actionEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok && slices.Contains(allowListedEnvVars, k) {
			envMap[k] = v
		}
	}

	for k, v := range actionEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches the PATH of env rather than the PATH of this process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
