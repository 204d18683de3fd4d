package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/flowlayout"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
	"github.com/bnomei/nereid/internal/routing"
	"github.com/bnomei/nereid/internal/seqlayout"
)

func TestFlowchart_OutputIsRectangular(t *testing.T) {
	ast := model.NewFlowchartAst()
	a, err := ids.NewObjectId("n:a")
	require.NoError(t, err)
	b, err := ids.NewObjectId("n:b")
	require.NoError(t, err)
	ast.Nodes.Set(a, model.Node{Label: "Start"})
	ast.Nodes.Set(b, model.Node{Label: "End"})
	edgeID, err := ids.NewObjectId("e:1")
	require.NoError(t, err)
	ast.Edges.Set(edgeID, model.Edge{From: a, To: b})

	layout := flowlayout.Layout(ast)
	routes := routing.Route(ast, layout)
	out := Flowchart(ast, layout, routes)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.NotEmpty(t, lines)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)))
	}
	assert.Contains(t, out, "Start")
}

func TestSequence_OutputContainsParticipantNames(t *testing.T) {
	ast := model.NewSequenceAst()
	a, err := ids.NewObjectId("p:a")
	require.NoError(t, err)
	b, err := ids.NewObjectId("p:b")
	require.NoError(t, err)
	ast.Participants.Set(a, model.Participant{MermaidName: "Alice"})
	ast.Participants.Set(b, model.Participant{MermaidName: "Bob"})
	m1, err := ids.NewObjectId("m:1")
	require.NoError(t, err)
	ast.Messages = []model.Message{{MessageID: m1, From: a, To: b, Kind: model.Sync, Text: "hi", OrderKey: 1}}

	layout := seqlayout.Layout(ast)
	out := Sequence(ast, layout)

	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Bob")
	assert.True(t, strings.HasSuffix(out, "\n"))
}
