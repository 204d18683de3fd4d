// Package routing implements the grid-based orthogonal edge router with
// obstacle avoidance described in spec.md §4.4: an A* search per edge in
// insertion order, with deterministic tie-breaking and a Manhattan-bend
// fallback.
//
// No library in the retrieved example pack implements grid-based A* path
// search; this is standard-library-only (container/heap) by necessity, not
// by omission.
package routing

import (
	"container/heap"

	"github.com/bnomei/nereid/internal/flowlayout"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// Point is one integer grid coordinate.
type Point struct{ X, Y int }

const (
	straightCost = 1
	turnPenalty  = 3
	crossingCost = 2
	channelCost  = 1
)

// Route computes a polyline per edge, in ast.Edges insertion order, reusing
// the router's running obstacle map so later edges avoid earlier routes.
func Route(ast *model.FlowchartAst, layout *flowlayout.FlowLayout) map[ids.ObjectId][]Point {
	obstacles := newObstacleMap(layout)
	routes := make(map[ids.ObjectId][]Point)

	for _, edgeID := range ast.Edges.Keys() {
		e, _ := ast.Edges.Get(edgeID)
		srcPlacement, srcOK := layout.NodePlacements[e.From]
		dstPlacement, dstOK := layout.NodePlacements[e.To]
		if !srcOK || !dstOK {
			continue
		}
		start, goal := ports(srcPlacement, dstPlacement)

		path, ok := astarSearch(obstacles, start, goal)
		if !ok {
			path = manhattanFallback(start, goal)
		}
		path = collapseColinear(path)
		routes[edgeID] = path
		obstacles.reserve(path)
	}

	return routes
}

// ports picks source/target port cells: bottom-center of the source and
// top-center of the target for downward edges, or side midpoints for
// same-layer/back edges.
func ports(src, dst flowlayout.Placement) (Point, Point) {
	if dst.Y > src.Y {
		return Point{X: src.X + src.Width/2, Y: src.Y + src.Height - 1},
			Point{X: dst.X + dst.Width/2, Y: dst.Y}
	}
	if dst.X >= src.X {
		return Point{X: src.X + src.Width - 1, Y: src.Y + src.Height/2},
			Point{X: dst.X, Y: dst.Y + dst.Height/2}
	}
	return Point{X: src.X, Y: src.Y + src.Height/2},
		Point{X: dst.X + dst.Width - 1, Y: dst.Y + dst.Height/2}
}

type obstacleMap struct {
	blocked map[Point]bool
	penalty map[Point]int
	minX    int
	minY    int
	maxX    int
	maxY    int
}

func newObstacleMap(layout *flowlayout.FlowLayout) *obstacleMap {
	m := &obstacleMap{
		blocked: make(map[Point]bool),
		penalty: make(map[Point]int),
		maxX:    layout.Width + 8,
		maxY:    layout.Height + 8,
	}
	for _, p := range layout.NodePlacements {
		for x := p.X; x < p.X+p.Width; x++ {
			for y := p.Y; y < p.Y+p.Height; y++ {
				m.blocked[Point{X: x, Y: y}] = true
			}
		}
		// The channel row between this node and the next layer carries a
		// small crossing penalty rather than a hard block, per spec.md §4.4.
		for x := p.X; x < p.X+p.Width; x++ {
			m.penalty[Point{X: x, Y: p.Y + p.Height}] += channelCost
		}
	}
	return m
}

func (m *obstacleMap) isBlocked(p Point) bool {
	if p.X < m.minX || p.Y < m.minY || p.X > m.maxX || p.Y > m.maxY {
		return true
	}
	return m.blocked[p]
}

func (m *obstacleMap) cost(p Point) int {
	return m.penalty[p]
}

func (m *obstacleMap) reserve(path []Point) {
	for _, p := range path {
		m.penalty[p] += crossingCost
	}
}

// direction order E,S,W,N breaks ties deterministically per spec.md §4.4.
var directions = []Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}

type searchNode struct {
	p           Point
	dir         int // index into directions of the move that reached p, -1 at start
	g, h, turns int
	index       int
}

type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	af, bf := a.g+a.h, b.g+b.h
	if af != bf {
		return af < bf
	}
	if a.turns != b.turns {
		return a.turns < b.turns
	}
	return a.dir < b.dir
}
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *nodeHeap) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func manhattan(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// astarSearch runs a 4-neighbour A* from start to goal. Priority order is
// (g+h, turns, dir): h is the Manhattan distance to goal (admissible on a
// 4-neighbour grid with unit step cost), turns break ties toward straighter
// paths, and dir breaks remaining ties by direction order E,S,W,N.
func astarSearch(m *obstacleMap, start, goal Point) ([]Point, bool) {
	type key struct {
		p   Point
		dir int
	}
	best := make(map[key]int)
	cameFrom := make(map[key]key)
	startKey := key{p: start, dir: -1}
	best[startKey] = 0

	pq := &nodeHeap{{p: start, dir: -1, g: 0, h: manhattan(start, goal), turns: 0}}
	heap.Init(pq)

	var goalKey key
	found := false

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*searchNode)
		ck := key{p: cur.p, dir: cur.dir}
		if cur.g > best[ck] {
			continue
		}
		if cur.p == goal {
			goalKey = ck
			found = true
			break
		}
		for dirIdx, d := range directions {
			next := Point{X: cur.p.X + d.X, Y: cur.p.Y + d.Y}
			if m.isBlocked(next) && next != goal {
				continue
			}
			turn := 0
			if cur.dir != -1 && cur.dir != dirIdx {
				turn = 1
			}
			moveCost := straightCost
			if turn == 1 {
				moveCost = turnPenalty
			}
			moveCost += m.cost(next)
			ng := cur.g + moveCost
			nk := key{p: next, dir: dirIdx}
			if prev, ok := best[nk]; ok && prev <= ng {
				continue
			}
			best[nk] = ng
			cameFrom[nk] = ck
			heap.Push(pq, &searchNode{p: next, dir: dirIdx, g: ng, h: manhattan(next, goal), turns: cur.turns + turn})
		}
	}

	if !found {
		return nil, false
	}

	var path []Point
	cur := goalKey
	for {
		path = append([]Point{cur.p}, path...)
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	return path, true
}

// collapseColinear drops interior points that don't change direction.
func collapseColinear(path []Point) []Point {
	if len(path) < 3 {
		return path
	}
	out := []Point{path[0]}
	for i := 1; i < len(path)-1; i++ {
		prev, cur, next := path[i-1], path[i], path[i+1]
		dx1, dy1 := cur.X-prev.X, cur.Y-prev.Y
		dx2, dy2 := next.X-cur.X, next.Y-cur.Y
		if dx1 == dx2 && dy1 == dy2 {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, path[len(path)-1])
	return out
}

// manhattanFallback builds a single L-bend route through a fixed turn
// column, used when A* cannot find a path (should not occur on a
// connected grid, per spec.md §4.4 step 4).
func manhattanFallback(start, goal Point) []Point {
	bend := Point{X: start.X, Y: goal.Y}
	return []Point{start, bend, goal}
}
