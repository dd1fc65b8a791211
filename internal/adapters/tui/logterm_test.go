package tui_test

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/tui"
)

func lines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line%d\r\n", i)
	}
	return b.String()
}

func TestLogTerm_FollowsOutputAtBottom(t *testing.T) {
	lt := tui.NewLogTerm()
	lt.Resize(40, 5)

	_, err := lt.Write([]byte(lines(12)))
	require.NoError(t, err)

	assert.Positive(t, lt.MaxOffset())
	assert.Equal(t, lt.MaxOffset(), lt.Offset)
	assert.Contains(t, lt.View(), "line12")
	assert.NotContains(t, lt.View(), "line1\n")
}

func TestLogTerm_ScrolledUpStays(t *testing.T) {
	lt := tui.NewLogTerm()
	lt.Resize(40, 3)
	_, _ = lt.Write([]byte(lines(10)))

	lt.Scroll(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, lt.Offset)

	_, _ = lt.Write([]byte(lines(3)))
	assert.Equal(t, 0, lt.Offset)
	assert.Contains(t, lt.View(), "line1")

	lt.Scroll(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, lt.MaxOffset(), lt.Offset)
}

func TestLogTerm_ScrollClamps(t *testing.T) {
	lt := tui.NewLogTerm()
	lt.Resize(40, 4)
	_, _ = lt.Write([]byte(lines(6)))

	lt.Scroll(tea.KeyMsg{Type: tea.KeyPgUp})
	lt.Scroll(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, 0, lt.Offset)

	lt.Scroll(tea.KeyMsg{Type: tea.KeyPgDown})
	lt.Scroll(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, lt.MaxOffset(), lt.Offset)
}

func TestLogTerm_ResizeMinimum(t *testing.T) {
	lt := tui.NewLogTerm()
	lt.Resize(0, -3)
	assert.Equal(t, 1, lt.Width)
	assert.Equal(t, 1, lt.Height)
	assert.Empty(t, lt.View())
}
