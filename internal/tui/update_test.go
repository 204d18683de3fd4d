package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/config"
)

func TestApplyQuickAdd_SeqParticipant(t *testing.T) {
	session := newFixtureSession(t)
	m := NewModel(session, "/tmp/demo", config.Default(), nil)
	m.list.Select(0)

	d, ok := m.selectedDiagram()
	require.True(t, ok)
	startRev := d.Rev

	m.formKind = pickerKindDiagram
	m.formInputs = &quickAddInputs{target: targetSeqParticipant, name: "Alice"}
	m.applyQuickAdd()

	require.NoError(t, m.err)
	assert.Equal(t, startRev+1, d.Rev)
	assert.Equal(t, 1, d.Ast.Sequence.Participants.Len())
}

func TestApplyQuickAdd_WalkthroughStep(t *testing.T) {
	session := newFixtureSession(t)
	m := NewModel(session, "/tmp/demo", config.Default(), nil)
	m.list.Select(1)

	w, ok := m.selectedWalkthrough()
	require.True(t, ok)
	startRev := w.Rev

	m.formKind = pickerKindWalkthrough
	m.formInputs = &quickAddInputs{target: targetWalkthroughNode, name: "Step one", text: "Do the thing."}
	m.applyQuickAdd()

	require.NoError(t, m.err)
	assert.Equal(t, startRev+1, w.Rev)
	assert.Equal(t, 1, w.Nodes.Len())
}

func TestApplyQuickAdd_InvalidFromIdRecordsError(t *testing.T) {
	session := newFixtureSession(t)
	m := NewModel(session, "/tmp/demo", config.Default(), nil)
	m.list.Select(0)

	m.formKind = pickerKindDiagram
	m.formInputs = &quickAddInputs{target: targetSeqMessage, from: "bad/id", to: "ok", text: "hi"}
	m.applyQuickAdd()

	assert.Error(t, m.err)
}
