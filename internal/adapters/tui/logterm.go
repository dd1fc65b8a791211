package tui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/midterm"
)

// LogTerm is a scrollable virtual terminal holding one target's output.
// Escape sequences written by the action are interpreted, so progress bars
// and colored compiler output render as they would in a real terminal.
type LogTerm struct {
	vt      *midterm.Terminal
	Offset  int
	Height  int
	Width   int
	viewBuf *bytes.Buffer
	mu      sync.Mutex
}

// NewLogTerm creates an empty LogTerm.
func NewLogTerm() *LogTerm {
	return &LogTerm{
		vt:      midterm.NewAutoResizingTerminal(),
		viewBuf: new(bytes.Buffer),
	}
}

// Write feeds output into the terminal. A view scrolled to the bottom
// follows new output.
func (l *LogTerm) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	follow := l.Offset >= l.maxOffset()
	n, err := l.vt.Write(p)
	if follow {
		l.Offset = l.maxOffset()
	}
	return n, err
}

// Resize sets the visible area.
func (l *LogTerm) Resize(width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Width = max(width, 1)
	l.vt.ResizeX(l.Width)

	follow := l.Offset >= l.maxOffset()
	l.Height = max(height, 1)
	if follow {
		l.Offset = l.maxOffset()
	}
	l.clamp()
}

// UsedHeight returns the number of lines written so far.
func (l *LogTerm) UsedHeight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vt.UsedHeight()
}

// ScrollToBottom moves the view to the latest output.
func (l *LogTerm) ScrollToBottom() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Offset = l.maxOffset()
}

// View renders the visible lines.
func (l *LogTerm) View() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.viewBuf.Reset()
	l.clamp()
	for i := 0; i < l.Height; i++ {
		row := l.Offset + i
		if row >= l.vt.UsedHeight() {
			break
		}
		if i > 0 {
			_ = l.viewBuf.WriteByte('\n')
		}
		_ = l.vt.RenderLine(l.viewBuf, row)
	}
	return l.viewBuf.String()
}

// Scroll handles scrolling keys.
func (l *LogTerm) Scroll(msg tea.KeyMsg) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch msg.String() {
	case "pgup", "ctrl+u":
		l.Offset -= l.Height
	case "pgdown", "ctrl+d":
		l.Offset += l.Height
	case "home", "g":
		l.Offset = 0
	case "end", "G":
		l.Offset = l.maxOffset()
	}
	l.clamp()
}

func (l *LogTerm) clamp() {
	if l.Offset < 0 {
		l.Offset = 0
	}
	if limit := l.maxOffset(); l.Offset > limit {
		l.Offset = limit
	}
}

func (l *LogTerm) maxOffset() int {
	return max(l.vt.UsedHeight()-l.Height, 0)
}
