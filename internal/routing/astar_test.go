package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/flowlayout"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func TestRoute_SegmentsAreAxisAligned(t *testing.T) {
	ast := model.NewFlowchartAst()
	a, err := ids.NewObjectId("n:a")
	require.NoError(t, err)
	b, err := ids.NewObjectId("n:b")
	require.NoError(t, err)
	ast.Nodes.Set(a, model.Node{Label: "A"})
	ast.Nodes.Set(b, model.Node{Label: "B"})
	edgeID, err := ids.NewObjectId("e:1")
	require.NoError(t, err)
	ast.Edges.Set(edgeID, model.Edge{From: a, To: b})

	layout := flowlayout.Layout(ast)
	routes := Route(ast, layout)

	path, ok := routes[edgeID]
	require.True(t, ok)
	require.GreaterOrEqual(t, len(path), 2)
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		assert.True(t, dx == 0 || dy == 0, "segment %d is not axis-aligned", i)
	}
}

func TestManhattanFallback_IsLShaped(t *testing.T) {
	path := manhattanFallback(Point{X: 0, Y: 0}, Point{X: 5, Y: 5})
	require.Len(t, path, 3)
	assert.Equal(t, Point{X: 0, Y: 5}, path[1])
}

func TestAstarSearch_FindsPathAroundObstacle(t *testing.T) {
	m := &obstacleMap{
		blocked: map[Point]bool{
			{X: 1, Y: 0}: true,
			{X: 1, Y: 1}: true,
		},
		penalty: make(map[Point]int),
		maxX:    10,
		maxY:    10,
	}
	path, ok := astarSearch(m, Point{X: 0, Y: 0}, Point{X: 2, Y: 0})
	require.True(t, ok)
	for _, p := range path {
		assert.False(t, m.blocked[p], "path passes through blocked point %v", p)
	}
	assert.Equal(t, Point{X: 0, Y: 0}, path[0])
	assert.Equal(t, Point{X: 2, Y: 0}, path[len(path)-1])
}
