package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func mustObjectID(t *testing.T, raw string) ids.ObjectId {
	t.Helper()
	id, err := ids.NewObjectId(raw)
	require.NoError(t, err)
	return id
}

func freshSeqDiagram(t *testing.T) *model.Diagram {
	t.Helper()
	diagID, err := ids.NewDiagramId("d1")
	require.NoError(t, err)
	return model.NewDiagram(diagID, "seq", model.NewSequenceDiagramAst())
}

func freshFlowDiagram(t *testing.T) *model.Diagram {
	t.Helper()
	diagID, err := ids.NewDiagramId("d1")
	require.NoError(t, err)
	return model.NewDiagram(diagID, "flow", model.NewFlowchartDiagramAst())
}

func TestApplyOps_ConflictRejection(t *testing.T) {
	diag := freshSeqDiagram(t)
	pID := mustObjectID(t, "p:a")

	_, err := ApplyOps(diag, 1, []Op{AddParticipant{ParticipantID: pID, MermaidName: "A"}})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint64(1), conflict.BaseRev)
	assert.Equal(t, uint64(0), conflict.CurrentRev)
	assert.Equal(t, 0, diag.Ast.Sequence.Participants.Len())
	assert.Equal(t, uint64(0), diag.Rev)
}

func TestApplyOps_CascadingRemoveParticipant(t *testing.T) {
	diag := freshSeqDiagram(t)
	a := mustObjectID(t, "p:a")
	b := mustObjectID(t, "p:b")
	m1 := mustObjectID(t, "m:1")

	res, err := ApplyOps(diag, 0, []Op{
		AddParticipant{ParticipantID: a, MermaidName: "A"},
		AddParticipant{ParticipantID: b, MermaidName: "B"},
		AddMessage{MessageID: m1, From: a, To: b, Kind: model.Sync, Text: "hi", OrderKey: 0},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.NewRev)

	res, err = ApplyOps(diag, 1, []Op{RemoveParticipant{ParticipantID: a}})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), res.NewRev)
	assert.Equal(t, uint64(2), diag.Rev)
	assert.Equal(t, 1, diag.Ast.Sequence.Participants.Len())
	assert.Empty(t, diag.Ast.Sequence.Messages)

	wantRemoved := []string{"d1/seq/participant/p:a", "d1/seq/message/m:1"}
	gotRemoved := make([]string, len(res.Delta.Removed))
	for i, r := range res.Delta.Removed {
		gotRemoved[i] = r.String()
	}
	assert.ElementsMatch(t, wantRemoved, gotRemoved)
}

func TestApplyOps_FlowEdgeConnectorNormalization(t *testing.T) {
	diag := freshFlowDiagram(t)
	a := mustObjectID(t, "n:a")
	b := mustObjectID(t, "n:b")
	e1 := mustObjectID(t, "e:1")

	_, err := ApplyOps(diag, 0, []Op{
		AddNode{NodeID: a, Label: "A"},
		AddNode{NodeID: b, Label: "B"},
	})
	require.NoError(t, err)

	connector := "  <--  "
	_, err = ApplyOps(diag, 1, []Op{AddEdge{EdgeID: e1, From: a, To: b, Connector: &connector}})
	require.NoError(t, err)
	edge, ok := diag.Ast.Flowchart.Edges.Get(e1)
	require.True(t, ok)
	assert.Nil(t, edge.Connector, "normalises to the default -->, which stores as nil")

	e2 := mustObjectID(t, "e:2")
	connector2 := "<--x"
	_, err = ApplyOps(diag, 2, []Op{AddEdge{EdgeID: e2, From: a, To: b, Connector: &connector2}})
	require.NoError(t, err)
	edge2, ok := diag.Ast.Flowchart.Edges.Get(e2)
	require.True(t, ok)
	require.NotNil(t, edge2.Connector)
	assert.Equal(t, "-->x", *edge2.Connector)
}

func TestApplyOps_DuplicateMermaidID(t *testing.T) {
	diag := freshFlowDiagram(t)
	one := mustObjectID(t, "n:one")
	two := mustObjectID(t, "n:two")

	_, err := ApplyOps(diag, 0, []Op{
		AddNode{NodeID: one, Label: "One"},
		AddNode{NodeID: two, Label: "Two"},
	})
	require.NoError(t, err)

	mermaidID := "one"
	_, err = ApplyOps(diag, 1, []Op{SetNodeMermaidId{NodeID: two, MermaidID: &mermaidID}})

	var dup *DuplicateFlowNodeMermaidIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "one", dup.MermaidID)
	assert.Equal(t, "n:one", dup.OtherID)
}

func TestApplyOps_KindMismatch(t *testing.T) {
	diag := freshSeqDiagram(t)
	a := mustObjectID(t, "n:a")

	_, err := ApplyOps(diag, 0, []Op{AddNode{NodeID: a, Label: "A"}})

	var mismatch *KindMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestApplyOps_MessagesCanonicalOrder(t *testing.T) {
	diag := freshSeqDiagram(t)
	a := mustObjectID(t, "p:a")
	b := mustObjectID(t, "p:b")
	m2 := mustObjectID(t, "m:2")
	m1 := mustObjectID(t, "m:1")

	_, err := ApplyOps(diag, 0, []Op{
		AddParticipant{ParticipantID: a, MermaidName: "A"},
		AddParticipant{ParticipantID: b, MermaidName: "B"},
		AddMessage{MessageID: m2, From: a, To: b, Kind: model.Sync, Text: "second", OrderKey: 5},
		AddMessage{MessageID: m1, From: a, To: b, Kind: model.Sync, Text: "first", OrderKey: 1},
	})
	require.NoError(t, err)

	require.Len(t, diag.Ast.Sequence.Messages, 2)
	assert.Equal(t, "m:1", diag.Ast.Sequence.Messages[0].MessageID.String())
	assert.Equal(t, "m:2", diag.Ast.Sequence.Messages[1].MessageID.String())
}
