package mermaid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func TestSafeID(t *testing.T) {
	assert.Equal(t, "a_b_c", SafeID("a.b c"))
	assert.Equal(t, "id_1abc", SafeID("1abc"))
	assert.Equal(t, "abc", SafeID("abc"))
}

func TestEscapeLabel(t *testing.T) {
	assert.Equal(t, `a\"b\\c\nd`, EscapeLabel("a\"b\\c\nd"))
}

func TestExportSequence_StableOrder(t *testing.T) {
	ast := model.NewSequenceAst()
	a, _ := ids.NewObjectId("p:a")
	b, _ := ids.NewObjectId("p:b")
	ast.Participants.Set(a, model.Participant{MermaidName: "Alice"})
	ast.Participants.Set(b, model.Participant{MermaidName: "Bob"})
	m1, _ := ids.NewObjectId("m:1")
	ast.Messages = []model.Message{{MessageID: m1, From: a, To: b, Kind: model.Sync, Text: "hi", OrderKey: 0}}

	out := ExportSequence(ast)

	assert.Contains(t, out, "sequenceDiagram")
	assert.Contains(t, out, "participant Alice")
	assert.Contains(t, out, "Alice->>Bob: hi")
}

func TestDetectKind(t *testing.T) {
	kind, err := DetectKind("sequenceDiagram\nAlice->>Bob: hi\n")
	require.NoError(t, err)
	assert.Equal(t, model.KindSequence, kind)

	kind, err = DetectKind("flowchart TD\nA-->B\n")
	require.NoError(t, err)
	assert.Equal(t, model.KindFlowchart, kind)
}

func TestParseSequence_RoundTrip(t *testing.T) {
	ast, err := ParseSequence("sequenceDiagram\nparticipant Alice\nparticipant Bob\nAlice->>Bob: hello\n")
	require.NoError(t, err)
	require.Equal(t, 2, ast.Participants.Len())
	require.Len(t, ast.Messages, 1)
	assert.Equal(t, "hello", ast.Messages[0].Text)
}

func TestParseFlowchart_Basic(t *testing.T) {
	ast, err := ParseFlowchart("flowchart TD\nA[\"Start\"]\nB[\"End\"]\nA --> B\n")
	require.NoError(t, err)
	assert.Equal(t, 2, ast.Nodes.Len())
	assert.Equal(t, 1, ast.Edges.Len())
}

func TestParseFlowchart_StadiumNode(t *testing.T) {
	ast, err := ParseFlowchart("flowchart TD\nA([\"Start\"])\n")
	require.NoError(t, err)
	require.Equal(t, 1, ast.Nodes.Len())

	node, ok := ast.Nodes.Get(ast.Nodes.Keys()[0])
	require.True(t, ok)
	assert.Equal(t, "Start", node.Label)
	require.NotNil(t, node.Shape)
	assert.Equal(t, "stadium", *node.Shape)
}

func TestExportFlowchart_StadiumNode(t *testing.T) {
	ast := model.NewFlowchartAst()
	id, _ := ids.NewObjectId("n:0")
	shape := "stadium"
	ast.Nodes.Set(id, model.Node{Label: "Start", Shape: &shape})

	out := ExportFlowchart(ast)

	assert.Contains(t, out, `(["Start"])`)
}

func TestParseFlowchart_StadiumNode_RoundTrip(t *testing.T) {
	ast := model.NewFlowchartAst()
	id, _ := ids.NewObjectId("n:0")
	shape := "stadium"
	mermaidID := "A"
	ast.Nodes.Set(id, model.Node{Label: "Start", Shape: &shape, MermaidID: &mermaidID})

	source := ExportFlowchart(ast)
	reparsed, err := ParseFlowchart(source)
	require.NoError(t, err)
	require.Equal(t, 1, reparsed.Nodes.Len())

	node, ok := reparsed.Nodes.Get(reparsed.Nodes.Keys()[0])
	require.True(t, ok)
	assert.Equal(t, "Start", node.Label)
	require.NotNil(t, node.Shape)
	assert.Equal(t, "stadium", *node.Shape)
}
