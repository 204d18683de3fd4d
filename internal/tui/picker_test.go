package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func newFixtureSession(t *testing.T) *model.Session {
	t.Helper()
	sessionID, err := ids.NewSessionId("s1")
	require.NoError(t, err)
	session := model.NewSession(sessionID)

	diagramID, err := ids.NewDiagramId("d1")
	require.NoError(t, err)
	diagram := model.NewDiagram(diagramID, "Handshake", model.DiagramAst{Kind: model.KindSequence, Sequence: model.NewSequenceAst()})
	session.Diagrams.Set(diagramID, diagram)

	walkthroughID, err := ids.NewWalkthroughId("w1")
	require.NoError(t, err)
	session.Walkthroughs.Set(walkthroughID, model.NewWalkthrough(walkthroughID, "Tour"))

	return session
}

func TestBuildPickerItems(t *testing.T) {
	session := newFixtureSession(t)
	items := buildPickerItems(session)
	require.Len(t, items, 2)

	diagramItem, ok := items[0].(pickerItem)
	require.True(t, ok)
	assert.Equal(t, pickerKindDiagram, diagramItem.kind)
	assert.Equal(t, "Handshake", diagramItem.Title())

	walkthroughItem, ok := items[1].(pickerItem)
	require.True(t, ok)
	assert.Equal(t, pickerKindWalkthrough, walkthroughItem.kind)
	assert.Equal(t, "Tour", walkthroughItem.Title())
}
