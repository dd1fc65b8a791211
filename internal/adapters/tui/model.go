// Package tui provides the interactive build view: a target list next to a
// scrollable log pane for the selected target.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
)

const (
	listWidthRatio     = 0.3
	logPaneBorderWidth = 4
)

// TargetStatus is the display state of a target.
type TargetStatus string

const (
	// StatusPending means the target has not started.
	StatusPending TargetStatus = "Pending"
	// StatusRunning means the target's span is open.
	StatusRunning TargetStatus = "Running"
	// StatusDone means the target was rebuilt.
	StatusDone TargetStatus = "Done"
	// StatusSkipped means the target was up to date.
	StatusSkipped TargetStatus = "Skipped"
	// StatusError means the target failed.
	StatusError TargetStatus = "Error"
	// StatusAborted means the target never started.
	StatusAborted TargetStatus = "Aborted"
)

// TargetNode is one row of the target list.
type TargetNode struct {
	Name   string
	Status TargetStatus
	Term   *LogTerm
}

// Model is the bubbletea model of the build view.
type Model struct {
	Targets   []*TargetNode
	TargetMap map[string]*TargetNode
	SpanMap   map[string]*TargetNode

	SelectedIdx int
	ListOffset  int
	ListHeight  int
	LogWidth    int
	LogHeight   int

	// FollowMode moves the selection to each target as it starts.
	FollowMode bool
	// Interrupted is set when the user quits before the build finished.
	Interrupted bool
}

// NewModel creates an empty model in follow mode.
func NewModel() *Model {
	return &Model{
		TargetMap:  make(map[string]*TargetNode),
		SpanMap:    make(map[string]*TargetNode),
		FollowMode: true,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case telemetry.MsgPlan:
		m.initTargets(msg.Names)

	case telemetry.MsgTargetStart:
		node, ok := m.TargetMap[msg.Name]
		if !ok {
			return m, nil
		}
		node.Status = StatusRunning
		m.SpanMap[msg.SpanID] = node
		if m.FollowMode {
			m.selectName(msg.Name)
		}

	case telemetry.MsgTargetLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}

	case telemetry.MsgTargetDone:
		node, ok := m.SpanMap[msg.SpanID]
		if !ok {
			return m, nil
		}
		switch {
		case errors.Is(msg.Err, domain.ErrAborted):
			node.Status = StatusAborted
		case msg.Err != nil:
			node.Status = StatusError
		case msg.Skipped:
			node.Status = StatusSkipped
		default:
			node.Status = StatusDone
		}
		delete(m.SpanMap, msg.SpanID)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Interrupted = true
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.FollowMode = false
			m.selectIndex(m.SelectedIdx - 1)
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Targets)-1 {
			m.FollowMode = false
			m.selectIndex(m.SelectedIdx + 1)
		}
	case "esc", "f":
		m.FollowMode = true
		for i, node := range m.Targets {
			if node.Status == StatusRunning {
				m.selectIndex(i)
				break
			}
		}
	default:
		if node := m.Selected(); node != nil {
			node.Term.Scroll(msg)
		}
	}
	return nil
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * listWidthRatio)
	m.LogWidth = width - listWidth - logPaneBorderWidth
	m.LogHeight = height - lipgloss.Height(titleStyle.Render("LOGS"))
	m.ListHeight = height - lipgloss.Height(titleStyle.Render("TARGETS")+"\n\n")
	m.ensureVisible()

	for _, node := range m.Targets {
		node.Term.Resize(m.LogWidth, m.LogHeight)
	}
}

func (m *Model) initTargets(names []string) {
	m.Targets = make([]*TargetNode, len(names))
	m.TargetMap = make(map[string]*TargetNode, len(names))
	m.SpanMap = make(map[string]*TargetNode)
	m.SelectedIdx = 0
	m.ListOffset = 0

	for i, name := range names {
		term := NewLogTerm()
		if m.LogWidth > 0 && m.LogHeight > 0 {
			term.Resize(m.LogWidth, m.LogHeight)
		}
		m.Targets[i] = &TargetNode{Name: name, Status: StatusPending, Term: term}
		m.TargetMap[name] = m.Targets[i]
	}
}

// Selected returns the target shown in the log pane, or nil.
func (m *Model) Selected() *TargetNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Targets) {
		return m.Targets[m.SelectedIdx]
	}
	return nil
}

func (m *Model) selectName(name string) {
	for i, node := range m.Targets {
		if node.Name == name {
			m.selectIndex(i)
			return
		}
	}
}

func (m *Model) selectIndex(i int) {
	m.SelectedIdx = i
	m.ensureVisible()
	if node := m.Selected(); node != nil && m.FollowMode {
		node.Term.ScrollToBottom()
	}
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}
