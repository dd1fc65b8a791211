package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/ui/style"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, m.targetList(), m.logPane())
}

func (m *Model) targetList() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("TARGETS") + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Targets))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		s.WriteString(m.renderRow(i, m.Targets[i]) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderRow(index int, node *TargetNode) string {
	rowStyle := statusStyle(node.Status)
	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render(style.Arrow + " ")
		if node.Status == StatusPending || node.Status == StatusRunning {
			rowStyle = selectedStyle
		}
	}
	return cursor + rowStyle.Render(statusIcon(node.Status)+" "+node.Name)
}

func (m *Model) logPane() string {
	node := m.Selected()
	if node == nil {
		return logStyle.Render(titleStyle.Render("LOGS (Waiting...)"))
	}

	mode := " (Manual)"
	if m.FollowMode {
		mode = " (Following)"
	}
	return logStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("LOGS: "+node.Name+mode),
		node.Term.View(),
	))
}

func statusIcon(status TargetStatus) string {
	switch status {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusSkipped:
		return style.Skip
	case StatusError:
		return style.Cross
	case StatusAborted:
		return style.Warning
	default:
		return style.Circle
	}
}

func statusStyle(status TargetStatus) lipgloss.Style {
	switch status {
	case StatusRunning:
		return targetRunningStyle
	case StatusDone:
		return targetDoneStyle
	case StatusSkipped:
		return targetSkippedStyle
	case StatusError:
		return targetErrorStyle
	case StatusAborted:
		return targetAbortedStyle
	default:
		return targetPendingStyle
	}
}
