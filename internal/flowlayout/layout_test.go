package flowlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func buildAst(t *testing.T, nodeLabels map[string]string, edges [][2]string) *model.FlowchartAst {
	t.Helper()
	ast := model.NewFlowchartAst()
	for raw, label := range nodeLabels {
		id, err := ids.NewObjectId(raw)
		require.NoError(t, err)
		ast.Nodes.Set(id, model.Node{Label: label})
	}
	for i, pair := range edges {
		from, err := ids.NewObjectId(pair[0])
		require.NoError(t, err)
		to, err := ids.NewObjectId(pair[1])
		require.NoError(t, err)
		edgeID, err := ids.NewObjectId("e:" + string(rune('0'+i)))
		require.NoError(t, err)
		ast.Edges.Set(edgeID, model.Edge{From: from, To: to})
	}
	return ast
}

func TestLayout_NonOverlappingPlacements(t *testing.T) {
	ast := buildAst(t, map[string]string{
		"n:a": "Start",
		"n:b": "Middle",
		"n:c": "End",
	}, [][2]string{{"n:a", "n:b"}, {"n:b", "n:c"}})

	layout := Layout(ast)

	require.Len(t, layout.Layers, 3)
	a, _ := ids.NewObjectId("n:a")
	b, _ := ids.NewObjectId("n:b")
	c, _ := ids.NewObjectId("n:c")
	assert.Less(t, layout.NodePlacements[a].Y, layout.NodePlacements[b].Y)
	assert.Less(t, layout.NodePlacements[b].Y, layout.NodePlacements[c].Y)
}

func TestLayout_CycleDoesNotHang(t *testing.T) {
	ast := buildAst(t, map[string]string{
		"n:a": "A",
		"n:b": "B",
	}, [][2]string{{"n:a", "n:b"}, {"n:b", "n:a"}})

	layout := Layout(ast)

	assert.NotEmpty(t, layout.Layers)
}

func TestLayout_UnreachableNodeStartsAtLayerZero(t *testing.T) {
	ast := buildAst(t, map[string]string{
		"n:a": "A",
		"n:b": "B",
		"n:c": "Island",
	}, [][2]string{{"n:a", "n:b"}})

	layout := Layout(ast)
	c, _ := ids.NewObjectId("n:c")
	assert.Equal(t, 0, layout.NodePlacements[c].Y)
}
