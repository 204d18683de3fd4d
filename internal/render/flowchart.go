package render

import (
	"unicode/utf8"

	"github.com/bnomei/nereid/internal/flowlayout"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
	"github.com/bnomei/nereid/internal/routing"
)

// Flowchart rasterizes ast using layout and routes into Unicode box-drawing
// text. Routed edges are drawn first (each path fills only blank cells, then
// sets its arrowhead), then boxes in node insertion order, so a box's border
// always wins over a crossing edge.
func Flowchart(ast *model.FlowchartAst, layout *flowlayout.FlowLayout, routes map[ids.ObjectId][]routing.Point) string {
	c := newCanvas(layout.Width+2, layout.Height+2)

	for _, edgeID := range ast.Edges.Keys() {
		if path, ok := routes[edgeID]; ok {
			drawPath(c, path)
		}
	}
	for _, nodeID := range ast.Nodes.Keys() {
		if placement, ok := layout.NodePlacements[nodeID]; ok {
			node, _ := ast.Nodes.Get(nodeID)
			drawBox(c, placement, node.Label)
		}
	}

	return c.String()
}

func drawBox(c *canvas, p flowlayout.Placement, label string) {
	x, y, w, h := p.X, p.Y, p.Width, p.Height
	if w < 2 || h < 2 {
		return
	}
	c.set(x, y, '┌')
	c.set(x+w-1, y, '┐')
	c.set(x, y+h-1, '└')
	c.set(x+w-1, y+h-1, '┘')
	for i := 1; i < w-1; i++ {
		c.set(x+i, y, '─')
		c.set(x+i, y+h-1, '─')
	}
	for j := 1; j < h-1; j++ {
		c.set(x, y+j, '│')
		c.set(x+w-1, y+j, '│')
	}
	inner := w - 2
	labelRunes := []rune(label)
	if len(labelRunes) > inner {
		labelRunes = labelRunes[:inner]
	}
	pad := (inner - utf8.RuneCountInString(string(labelRunes))) / 2
	c.writeText(x+1+pad, y+h/2, string(labelRunes))
}

func drawPath(c *canvas, path []routing.Point) {
	for i := 0; i < len(path); i++ {
		p := path[i]
		glyph := pathGlyph(path, i)
		if c.cells[clampIdx(p.Y, c.rows)][clampIdx(p.X, c.cols)] == ' ' {
			c.set(p.X, p.Y, glyph)
		}
	}
	if len(path) >= 2 {
		last := path[len(path)-1]
		prev := path[len(path)-2]
		if last.Y > prev.Y {
			c.set(last.X, last.Y, '▾')
		} else if last.Y < prev.Y {
			c.set(last.X, last.Y, '▴')
		}
	}
}

func pathGlyph(path []routing.Point, i int) rune {
	if len(path) < 2 {
		return '─'
	}
	var dx, dy int
	if i > 0 {
		dx, dy = path[i].X-path[i-1].X, path[i].Y-path[i-1].Y
	} else {
		dx, dy = path[i+1].X-path[i].X, path[i+1].Y-path[i].Y
	}
	if dy == 0 {
		return '─'
	}
	return '│'
}

func clampIdx(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}
