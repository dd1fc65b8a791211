// Package linear provides a synchronous, line-buffered renderer for CI and piped output.
package linear

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// prefixColors are assigned to target names by hash so a target keeps its
// color across runs.
var prefixColors = []termenv.ANSIColor{
	termenv.ANSICyan,
	termenv.ANSIMagenta,
	termenv.ANSIBlue,
	termenv.ANSIYellow,
	termenv.ANSIBrightCyan,
	termenv.ANSIBrightMagenta,
	termenv.ANSIBrightBlue,
}

// Renderer implements ports.Renderer for non-interactive environments.
// Target output goes to stdout line by line with a "[target]" prefix;
// lifecycle messages go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	targets map[string]*targetState // spanID -> target state
}

type targetState struct {
	name      string
	startTime time.Time
	buf       *bytes.Buffer
}

// NewRenderer creates a new Renderer. Nil writers select os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, output.ColorProfileANSI),
		targets: make(map[string]*targetState),
	}
}

// Start is a no-op for the linear renderer.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, target := range r.targets {
		r.flushLocked(target)
	}
	return nil
}

// Wait is a no-op for the linear renderer.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlan prints the planned targets.
func (r *Renderer) OnPlan(targets []string, _ map[string][]string, requested []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planning to build %d target(s) for %s\n",
		len(targets), strings.Join(requested, ", "))
}

// OnTargetStart prints a start message.
func (r *Renderer) OnTargetStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets[spanID] = &targetState{
		name:      name,
		startTime: startTime,
		buf:       new(bytes.Buffer),
	}

	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefix(name))
}

// OnTargetLog buffers data and prints every complete line with the target prefix.
func (r *Renderer) OnTargetLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.targets[spanID]
	if !ok {
		return
	}

	target.buf.Write(data)
	for {
		i := bytes.IndexByte(target.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := target.buf.Next(i + 1)
		r.printLineLocked(target.name, line)
	}
}

// OnTargetDone flushes the remaining partial line and prints the outcome.
func (r *Renderer) OnTargetDone(spanID string, endTime time.Time, err error, skipped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.targets[spanID]
	if !ok {
		return
	}
	r.flushLocked(target)

	duration := endTime.Sub(target.startTime).Round(time.Millisecond)
	prefix := r.prefix(target.name)

	switch {
	case errors.Is(err, domain.ErrAborted):
		symbol := r.output.String(style.Warning).Foreground(termenv.ANSIYellow).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Aborted\n", prefix, symbol)
	case err != nil:
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
	case skipped:
		symbol := r.output.String(style.Skip).Faint().String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Up to date\n", prefix, symbol)
	default:
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
	}

	delete(r.targets, spanID)
}

func (r *Renderer) prefix(name string) string {
	color := prefixColors[xxhash.Sum64String(name)%uint64(len(prefixColors))]
	return r.output.String("[" + name + "]").Foreground(color).String()
}

// flushLocked prints what is left of a partial line.
func (r *Renderer) flushLocked(target *targetState) {
	if target.buf.Len() > 0 {
		r.printLineLocked(target.name, target.buf.Bytes())
		target.buf.Reset()
	}
}

// printLineLocked prints a line with the plain target prefix.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
