// Package place implements the NodePlacer (spec.md §4.4): it assigns grid coordinates to a node
// using a fixed sequence of prioritized strategies, committing all-or-nothing (spec.md Design
// Notes §9 "Mutation on failure") so a failed attempt never leaves partial grid writes behind.
package place

import (
	"github.com/asciigraph/layout/graph"
	"github.com/asciigraph/layout/grid"
	"github.com/asciigraph/layout/internal/assert"
)

// DefaultColumnScanLimit bounds the column-scan fallback strategy (spec.md §4.4 strategy 5).
const DefaultColumnScanLimit = 100

// ringDistances is the pair of distances predecessor-relative and successor-relative rings are
// tried at (spec.md §4.4 strategy 3 and 4).
var ringDistances = []int{2, 4}

// PlaceNode attempts to place n on grd, trying candidate positions in strategy-priority order
// skipping the first tryCount of them. parent selects chained placement when it is already
// placed; pass graph.InvalidNode otherwise. distance is the parent
// edge's minlen, used only for chained placement. It returns whether placement succeeded; on
// failure the grid and node are left untouched.
func PlaceNode(g *graph.Graph, grd *grid.Grid, n graph.NodeHandle, tryCount int, parent graph.NodeHandle, distance int, columnScanLimit int) bool {
	node := g.Node(n)
	cx, cy := Dimensions(g, n)

	var candidates []grid.Point
	if parent != graph.InvalidNode && g.Node(parent).Placed {
		candidates = chainedCandidates(g, parent, distance, cx, cy)
	} else {
		if tryCount == 0 {
			candidates = append(candidates, grid.Point{X: 0, Y: 0})
		}
		preds := placedNeighbors(g, g.InEdges(n), n)
		candidates = append(candidates, predecessorCandidates(g, preds)...)
		succs := placedNeighbors(g, g.OutEdges(n), n)
		candidates = append(candidates, successorCandidates(g, succs)...)
		candidates = append(candidates, columnScanCandidates(g, preds, columnScanLimit)...)
	}

	if tryCount >= len(candidates) {
		return false
	}
	for _, p := range candidates[tryCount:] {
		if commit(grd, n, p, cx, cy) {
			node.X, node.Y, node.CX, node.CY = p.X, p.Y, cx, cy
			node.Placed = true
			return true
		}
	}
	return false
}

// RemoveNode undoes a placement: clears every grid cell n owns and marks it unplaced (spec.md
// §4.4 "removeNode").
func RemoveNode(g *graph.Graph, grd *grid.Grid, n graph.NodeHandle) {
	grd.RemoveOwnedByNode(n)
	node := g.Node(n)
	node.Placed = false
}

// Dimensions returns n's grid footprint: cx columns, cy rows, per spec.md §4.4's
// `cx = max(1, ceil((|label|+2)/5))`, `cy = 1`, overridden by MinWidth/MinHeight when set.
func Dimensions(g *graph.Graph, n graph.NodeHandle) (cx, cy int) {
	node := g.Node(n)
	cx = max(1, ceilDiv(len(node.Label)+2, 5))
	cy = 1
	if node.Attrs.MinWidth != nil {
		cx = *node.Attrs.MinWidth
	}
	if node.Attrs.MinHeight != nil {
		cy = *node.Attrs.MinHeight
	}
	assert.That(cx >= 1 && cy >= 1, "node %q has non-positive footprint %dx%d", node.Name, cx, cy)
	return cx, cy
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func commit(grd *grid.Grid, n graph.NodeHandle, p grid.Point, cx, cy int) bool {
	for dy := 0; dy < cy; dy++ {
		for dx := 0; dx < cx; dx++ {
			if !grd.Free(p.Add(dx, dy)) {
				return false
			}
		}
	}
	for dy := 0; dy < cy; dy++ {
		for dx := 0; dx < cx; dx++ {
			grd.Set(p.Add(dx, dy), grid.NodeOwner{Node: n})
		}
	}
	return true
}

// placedNeighbors returns the distinct already-placed nodes reachable via edges, excluding n
// itself (self-loops).
func placedNeighbors(g *graph.Graph, edges []graph.EdgeHandle, n graph.NodeHandle) []graph.NodeHandle {
	seen := make(map[graph.NodeHandle]bool)
	var out []graph.NodeHandle
	for _, eh := range edges {
		e := g.Edge(eh)
		other := e.Source
		if other == n {
			other = e.Target
		}
		if other == n || seen[other] || !g.Node(other).Placed {
			continue
		}
		seen[other] = true
		out = append(out, other)
	}
	return out
}

// orderedDirections returns the four axis directions in ring order, rotated so the flow's
// principal direction comes first (spec.md §4.4 "reordered by flow direction").
func orderedDirections(flow graph.FlowDirection) []grid.Direction {
	base := []grid.Direction{grid.DirEast, grid.DirSouth, grid.DirWest, grid.DirNorth}
	start := 0
	switch flow {
	case graph.FlowEast:
		start = 0
	case graph.FlowSouth:
		start = 1
	case graph.FlowWest:
		start = 2
	case graph.FlowNorth:
		start = 3
	}
	out := make([]grid.Direction, 4)
	for i := range out {
		out[i] = base[(start+i)%4]
	}
	return out
}

// ring returns the candidate ring around the rectangle [x, x+cx) x [y, y+cy) at grid-distance d,
// one candidate per unit along each face (spec.md §4.4 "Candidate ring"), ordered by flow.
func ring(x, y, cx, cy, d int, flow graph.FlowDirection) []grid.Point {
	var points []grid.Point
	for _, dir := range orderedDirections(flow) {
		switch dir {
		case grid.DirEast:
			for row := 0; row < cy; row++ {
				points = append(points, grid.Point{X: x + cx - 1 + d, Y: y + row})
			}
		case grid.DirSouth:
			for col := 0; col < cx; col++ {
				points = append(points, grid.Point{X: x + col, Y: y + cy - 1 + d})
			}
		case grid.DirWest:
			for row := 0; row < cy; row++ {
				points = append(points, grid.Point{X: x - d, Y: y + row})
			}
		case grid.DirNorth:
			for col := 0; col < cx; col++ {
				points = append(points, grid.Point{X: x + col, Y: y - d})
			}
		}
	}
	return points
}

func chainedCandidates(g *graph.Graph, parent graph.NodeHandle, minlen, cx, cy int) []grid.Point {
	p := g.Node(parent)
	d := minlen + 1
	return ring(p.X, p.Y, p.CX, p.CY, d, g.Attrs.Flow)
}

func predecessorCandidates(g *graph.Graph, preds []graph.NodeHandle) []grid.Point {
	var points []grid.Point
	switch len(preds) {
	case 0:
		return nil
	case 1:
		points = append(points, ringsAround(g, preds[0])...)
	case 2:
		p0, p1 := g.Node(preds[0]), g.Node(preds[1])
		points = append(points, crossingPoints(g, p0, p1)...)
		points = append(points, ringsAround(g, preds[0])...)
		points = append(points, ringsAround(g, preds[1])...)
	default:
		for i := 0; i < len(preds); i++ {
			for j := i + 1; j < len(preds); j++ {
				points = append(points, crossingPoints(g, g.Node(preds[i]), g.Node(preds[j]))...)
			}
		}
		for _, p := range preds {
			points = append(points, ringsAround(g, p)...)
		}
	}
	return points
}

func successorCandidates(g *graph.Graph, succs []graph.NodeHandle) []grid.Point {
	var points []grid.Point
	for _, s := range succs {
		points = append(points, ringsAround(g, s)...)
	}
	return points
}

func ringsAround(g *graph.Graph, anchor graph.NodeHandle) []grid.Point {
	n := g.Node(anchor)
	var points []grid.Point
	for _, d := range ringDistances {
		points = append(points, ring(n.X, n.Y, n.CX, n.CY, d, g.Attrs.Flow)...)
	}
	return points
}

// crossingPoints returns the two axis-crossing points of p0 and p1, or their midpoint if they are
// colinear (spec.md §4.4 "Predecessor-relative" 2-placed case).
func crossingPoints(g *graph.Graph, p0, p1 *graph.Node) []grid.Point {
	if p0.X == p1.X || p0.Y == p1.Y {
		return []grid.Point{{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2}}
	}
	return []grid.Point{
		{X: p0.X, Y: p1.Y},
		{X: p1.X, Y: p0.Y},
	}
}

// columnScanCandidates fixes x to the first placed predecessor's x (or 0) and scans y downward 2
// units at a time, up to limit steps (spec.md §4.4 strategy 5).
func columnScanCandidates(g *graph.Graph, preds []graph.NodeHandle, limit int) []grid.Point {
	x := 0
	if len(preds) > 0 {
		x = g.Node(preds[0]).X
	}
	points := make([]grid.Point, 0, limit)
	for i := 0; i < limit; i++ {
		points = append(points, grid.Point{X: x, Y: 2 * i})
	}
	return points
}
