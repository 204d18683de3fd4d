package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusBarRendersSessionAndActive(t *testing.T) {
	sb := NewStatusBar(80)
	sb.SetSession("s1", "/tmp/sessions/demo")
	result := sb.View()
	assert.Contains(t, result, "s1")
	assert.Contains(t, result, "demo")
	assert.NotContains(t, result, "rev")

	sb.SetActive("Handshake", 4)
	result = sb.View()
	assert.Contains(t, result, "Handshake")
	assert.Contains(t, result, "rev 4")
}

func TestStatusBarClearActive(t *testing.T) {
	sb := NewStatusBar(80)
	sb.SetSession("s1", "/tmp/sessions/demo")
	sb.SetActive("Handshake", 4)
	sb.ClearActive()
	result := sb.View()
	assert.NotContains(t, result, "Handshake")
}
