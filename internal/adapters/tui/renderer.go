package tui

import (
	"context"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/zerr"
)

var _ ports.Renderer = (*Renderer)(nil)

// ErrInterrupted is returned by Wait when the user quit the view.
var ErrInterrupted = zerr.New("interrupted")

// Renderer runs a bubbletea program over a Model.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a renderer drawing to w (os.Stderr when nil).
func NewRenderer(w io.Writer, opts ...tea.ProgramOption) *Renderer {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.ColorProfile())

	model := NewModel()
	opts = append([]tea.ProgramOption{tea.WithOutput(w), tea.WithAltScreen()}, opts...)
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start runs the program in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		if err == nil && r.model.Interrupted {
			err = ErrInterrupted
		}
		r.errCh <- err
	}()
	return nil
}

// Stop asks the program to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the program has terminated.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// OnPlan implements ports.Renderer.
func (r *Renderer) OnPlan(targets []string, deps map[string][]string, requested []string) {
	r.program.Send(telemetry.MsgPlan{Names: targets, Dependencies: deps, Requested: requested})
}

// OnTargetStart implements ports.Renderer.
func (r *Renderer) OnTargetStart(spanID, parentID, name string, startTime time.Time) {
	r.program.Send(telemetry.MsgTargetStart{SpanID: spanID, ParentID: parentID, Name: name, StartTime: startTime})
}

// OnTargetLog implements ports.Renderer.
func (r *Renderer) OnTargetLog(spanID string, data []byte) {
	r.program.Send(telemetry.MsgTargetLog{SpanID: spanID, Data: data})
}

// OnTargetDone implements ports.Renderer.
func (r *Renderer) OnTargetDone(spanID string, endTime time.Time, err error, skipped bool) {
	r.program.Send(telemetry.MsgTargetDone{SpanID: spanID, EndTime: endTime, Err: err, Skipped: skipped})
}
