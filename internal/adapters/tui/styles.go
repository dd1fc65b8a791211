package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/ui/style"
)

var (
	targetPendingStyle = lipgloss.NewStyle().Foreground(style.Ash)

	targetRunningStyle = lipgloss.NewStyle().
				Foreground(style.Ember).
				Bold(true)

	targetDoneStyle = lipgloss.NewStyle().Foreground(style.Green)

	targetErrorStyle = lipgloss.NewStyle().Foreground(style.Red)

	targetAbortedStyle = lipgloss.NewStyle().Foreground(style.Yellow)

	targetSkippedStyle = lipgloss.NewStyle().
				Foreground(style.Ash).
				Faint(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Ember).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Ember).
			Foreground(style.White)

	listStyle = lipgloss.NewStyle().MarginRight(2)

	logStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Ash).
			PaddingLeft(1)
)
