// Package flowlayout implements the layered Sugiyama-style placement
// pipeline for flowchart ASTs described in spec.md §4.3: longest-path
// layer assignment, barycenter crossing minimization, and coordinate
// assignment.
package flowlayout

import (
	"sort"
	"unicode/utf8"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

const (
	minNodeWidth  = 3
	maxNodeWidth  = 40
	nodeHeight    = 3
	vGap          = 2
	hGap          = 3
)

// Placement is a node's rectangle in the layout grid.
type Placement struct {
	X, Y, Width, Height int
}

// FlowLayout is the computed geometry of a flowchart: layers of node ids in
// top-to-bottom order, each node's placement, and overall canvas size.
type FlowLayout struct {
	Layers         [][]ids.ObjectId
	NodePlacements map[ids.ObjectId]Placement
	Width          int
	Height         int
}

// Layout runs the full pipeline over ast.
func Layout(ast *model.FlowchartAst) *FlowLayout {
	nodeOrder := ast.Nodes.Keys()
	layerOf := assignLayers(ast, nodeOrder)
	layers := orderWithinLayers(ast, nodeOrder, layerOf)
	widths := assignWidths(ast, nodeOrder)
	placements, width, height := assignCoordinates(layers, widths)

	return &FlowLayout{Layers: layers, NodePlacements: placements, Width: width, Height: height}
}

// assignLayers computes each node's layer via longest-path relaxation,
// bounded to len(nodeOrder) passes so cycles (back-edges) stop growing
// instead of looping forever, per spec.md §4.3 step 1.
func assignLayers(ast *model.FlowchartAst, nodeOrder []ids.ObjectId) map[ids.ObjectId]int {
	layer := make(map[ids.ObjectId]int, len(nodeOrder))
	for _, n := range nodeOrder {
		layer[n] = 0
	}

	edgeIDs := ast.Edges.Keys()
	for pass := 0; pass < len(nodeOrder); pass++ {
		changed := false
		for _, eID := range edgeIDs {
			e, _ := ast.Edges.Get(eID)
			if layer[e.To] < layer[e.From]+1 {
				layer[e.To] = layer[e.From] + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return layer
}

// orderWithinLayers groups nodes into their layers and reorders each layer
// with the barycenter sweeps.
func orderWithinLayers(ast *model.FlowchartAst, nodeOrder []ids.ObjectId, layerOf map[ids.ObjectId]int) [][]ids.ObjectId {
	maxLayer := 0
	for _, l := range layerOf {
		if l > maxLayer {
			maxLayer = l
		}
	}
	layers := make([][]ids.ObjectId, maxLayer+1)
	for _, n := range nodeOrder {
		l := layerOf[n]
		layers[l] = append(layers[l], n)
	}

	predecessors := make(map[ids.ObjectId][]ids.ObjectId)
	successors := make(map[ids.ObjectId][]ids.ObjectId)
	for _, eID := range ast.Edges.Keys() {
		e, _ := ast.Edges.Get(eID)
		successors[e.From] = append(successors[e.From], e.To)
		predecessors[e.To] = append(predecessors[e.To], e.From)
	}

	position := func(layerIdx int) map[ids.ObjectId]int {
		pos := make(map[ids.ObjectId]int, len(layers[layerIdx]))
		for i, n := range layers[layerIdx] {
			pos[n] = i
		}
		return pos
	}

	barycenterSweep := func(neighborsOf map[ids.ObjectId][]ids.ObjectId, fromLayer, toLayer int) {
		refPos := position(fromLayer)
		bc := make(map[ids.ObjectId]float64, len(layers[toLayer]))
		for i, n := range layers[toLayer] {
			neighbors := neighborsOf[n]
			if len(neighbors) == 0 {
				bc[n] = float64(i)
				continue
			}
			sum := 0
			count := 0
			for _, nb := range neighbors {
				if p, ok := refPos[nb]; ok {
					sum += p
					count++
				}
			}
			if count == 0 {
				bc[n] = float64(i)
			} else {
				bc[n] = float64(sum) / float64(count)
			}
		}
		orig := make(map[ids.ObjectId]int, len(layers[toLayer]))
		for i, n := range layers[toLayer] {
			orig[n] = i
		}
		sort.SliceStable(layers[toLayer], func(i, j int) bool {
			a, b := layers[toLayer][i], layers[toLayer][j]
			if bc[a] != bc[b] {
				return bc[a] < bc[b]
			}
			return orig[a] < orig[b]
		})
	}

	// One down-up sweep (use successors as reference from the layer below)
	// followed by one up-down sweep (use predecessors from the layer above).
	for l := len(layers) - 2; l >= 0; l-- {
		barycenterSweep(successors, l+1, l)
	}
	for l := 1; l < len(layers); l++ {
		barycenterSweep(predecessors, l-1, l)
	}

	return layers
}

// assignWidths computes each node's rendered width from its label length.
func assignWidths(ast *model.FlowchartAst, nodeOrder []ids.ObjectId) map[ids.ObjectId]int {
	widths := make(map[ids.ObjectId]int, len(nodeOrder))
	for _, n := range nodeOrder {
		node, _ := ast.Nodes.Get(n)
		w := utf8.RuneCountInString(node.Label) + 2
		if w < minNodeWidth {
			w = minNodeWidth
		}
		if w > maxNodeWidth {
			w = maxNodeWidth
		}
		widths[n] = w
	}
	return widths
}

// assignCoordinates lays layers out top to bottom with vGap between them and
// nodes within a layer left to right with hGap between them.
func assignCoordinates(layers [][]ids.ObjectId, widths map[ids.ObjectId]int) (map[ids.ObjectId]Placement, int, int) {
	placements := make(map[ids.ObjectId]Placement)
	y := 0
	maxWidth := 0
	for _, layer := range layers {
		x := 0
		for _, n := range layer {
			w := widths[n]
			placements[n] = Placement{X: x, Y: y, Width: w, Height: nodeHeight}
			x += w + hGap
		}
		if x-hGap > maxWidth {
			maxWidth = x - hGap
		}
		y += nodeHeight + vGap
	}
	height := y - vGap
	if height < 0 {
		height = 0
	}
	if maxWidth < 0 {
		maxWidth = 0
	}
	return placements, maxWidth, height
}
