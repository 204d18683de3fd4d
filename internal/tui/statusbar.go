package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar displays the loaded session root and the currently selected
// diagram/walkthrough's name and revision.
type StatusBar struct {
	width      int
	sessionID  string
	root       string
	activeName string
	activeRev  uint64
	hasActive  bool
	style      lipgloss.Style
}

// NewStatusBar creates a new StatusBar with the given terminal width.
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{
		width: width,
		style: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}),
	}
}

// SetSession sets the loaded session's id and folder root.
func (s *StatusBar) SetSession(sessionID, root string) {
	s.sessionID = sessionID
	s.root = root
}

// SetActive records the name and revision of the diagram or walkthrough
// currently shown in the viewport.
func (s *StatusBar) SetActive(name string, rev uint64) {
	s.activeName = name
	s.activeRev = rev
	s.hasActive = true
}

// ClearActive reverts the status bar to showing only the session, for when
// the picker (rather than a rendered diagram) is on screen.
func (s *StatusBar) ClearActive() {
	s.hasActive = false
}

// View renders the status bar as a styled string.
func (s *StatusBar) View() string {
	base := fmt.Sprintf(" %s  %s", s.sessionID, filepath.Base(s.root))
	if !s.hasActive {
		return s.style.Render(base)
	}
	return s.style.Render(fmt.Sprintf("%s  %s @ rev %d", base, s.activeName, s.activeRev))
}
