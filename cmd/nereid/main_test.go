package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidestLine(t *testing.T) {
	assert.Equal(t, 0, widestLine(""))
	assert.Equal(t, 22, widestLine("short\nlonger line that wraps"))
}

func TestWidestLine_SingleLine(t *testing.T) {
	assert.Equal(t, 11, widestLine("hello world"))
}

func TestVersionStringIncludesVersion(t *testing.T) {
	assert.Contains(t, versionString(), version)
}

func TestRunNewThenRunRender(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configPathFlag = ""
	durabilityFlag = ""

	root := filepath.Join(t.TempDir(), "demo-session")
	newName = "main"
	newKind = "sequence"
	require.NoError(t, runNew(root))

	_, err := os.Stat(filepath.Join(root, "meta.json"))
	require.NoError(t, err)

	renderDiagramID = ""
	require.NoError(t, runRender(root))
}

func TestRunNew_RejectsUnknownKind(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configPathFlag = ""
	durabilityFlag = ""

	root := filepath.Join(t.TempDir(), "bad-kind")
	newName = "main"
	newKind = "state-machine"
	err := runNew(root)
	assert.Error(t, err)
}

func TestRunNew_RefusesExistingRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configPathFlag = ""
	durabilityFlag = ""

	root := t.TempDir()
	newName = "main"
	newKind = "sequence"
	err := runNew(root)
	assert.Error(t, err)
}
