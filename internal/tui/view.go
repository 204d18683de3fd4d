package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions for the TUI view.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"})
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// View implements tea.Model. It renders the TUI as a string.
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	switch m.state {
	case StatePicker:
		b.WriteString(bannerStyle.Render(Banner))
		b.WriteString("\n")
		b.WriteString(m.list.View())
	case StateViewport:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("esc: back to list  n: add"))
	case StateForm:
		b.WriteString(m.form.View())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %s", m.err.Error())))
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar.View())

	return b.String()
}
