// Package scout implements the Scout edge router (spec.md §4.5): a three-tier pathfinder —
// straight line, L-bend, penalty-weighted A* — that computes a grid-cell path from a source
// node's exit cell to a target node's entry cell, plus the fixed five-cell self-loop bump.
//
// The A* open list is a concrete (non-generic) min-heap with manual siftUp/siftDown, the same
// shape as internal/rank's heap and grounded on the same source,
// azybler-map_router/pkg/routing/dijkstra.go's MinHeap — kept as a separate type because the two
// heaps order by different keys (|rank| vs. f-score), and a concrete type per use site matches
// dijkstra.go's own style more closely than a single generic heap would.
package scout

import (
	"github.com/asciigraph/layout/graph"
	"github.com/asciigraph/layout/grid"
	"github.com/asciigraph/layout/internal/celltype"
)

// Limits bounds Tier 3's search (spec.md §4.5 "Termination" — required so routing time stays
// bounded under pathological graphs).
type Limits struct {
	VisitedLimit  int
	OpenListLimit int
}

// PathCell is one step of a routed path: a grid position and its fully encoded cell type.
type PathCell struct {
	Pos  grid.Point
	Type grid.CellType
}

// FindPath computes edge e's route over grd. An empty, false result signals routing failure
// (spec.md §4.5 "An empty sequence signals failure") — the caller must not write anything to the
// grid in that case.
func FindPath(g *graph.Graph, grd *grid.Grid, e graph.EdgeHandle, limits Limits) ([]PathCell, bool) {
	edge := g.Edge(e)
	if edge.IsSelfLoop() {
		return selfLoop(g, edge), true
	}

	exit, entry := exitEntry(g, edge)
	dir := flowDirection(g.Attrs.Flow)

	if path, ok := straight(grd, exit, entry, dir); ok {
		return path, true
	}
	if path, ok := lbend(g, grd, edge, exit, entry); ok {
		return path, true
	}
	return astar(g, grd, e, exit, entry, limits)
}

// exitEntry computes the source's exit cell and the target's entry cell, per spec.md §4.5: exit
// is directly outward from the source node along the flow axis at its midline, shifted by the
// edge's parallel offset; entry is the mirror on the target.
func exitEntry(g *graph.Graph, e *graph.Edge) (exit, entry grid.Point) {
	src := g.Node(e.Source)
	dst := g.Node(e.Target)
	flow := g.Attrs.Flow
	off := e.Offset

	switch flow {
	case graph.FlowEast:
		exit = grid.Point{X: src.X + src.CX, Y: midline(src) + off}
		entry = grid.Point{X: dst.X - 1, Y: midline(dst) + off}
	case graph.FlowWest:
		exit = grid.Point{X: src.X - 1, Y: midline(src) + off}
		entry = grid.Point{X: dst.X + dst.CX, Y: midline(dst) + off}
	case graph.FlowSouth:
		exit = grid.Point{X: midcol(src) + off, Y: src.Y + src.CY}
		entry = grid.Point{X: midcol(dst) + off, Y: dst.Y - 1}
	case graph.FlowNorth:
		exit = grid.Point{X: midcol(src) + off, Y: src.Y - 1}
		entry = grid.Point{X: midcol(dst) + off, Y: dst.Y + dst.CY}
	}
	return exit, entry
}

func midline(n *graph.Node) int { return n.Y + (n.CY-1)/2 }
func midcol(n *graph.Node) int  { return n.X + (n.CX-1)/2 }

// flowDirection returns the grid direction a routed edge travels in for the graph's flow.
func flowDirection(flow graph.FlowDirection) grid.Direction {
	switch flow {
	case graph.FlowEast:
		return grid.DirEast
	case graph.FlowWest:
		return grid.DirWest
	case graph.FlowSouth:
		return grid.DirSouth
	default:
		return grid.DirNorth
	}
}

// straight implements Tier 1 (spec.md §4.5): a direct corridor along a single axis, free at every
// cell. Exit and entry landing on the same cell is the "short edge" special case (spec.md
// glossary "Short edge"): a single labeled cell carrying the flow direction.
func straight(grd *grid.Grid, exit, entry grid.Point, dir grid.Direction) ([]PathCell, bool) {
	if exit == entry {
		if !grd.Free(exit) {
			return nil, false
		}
		return []PathCell{{Pos: exit, Type: grid.NewCellType(grid.ShapeShortEdge, dir.Opposite(), dir).WithLabel()}}, true
	}

	dx := entry.X - exit.X
	dy := entry.Y - exit.Y
	if dx != 0 && dy != 0 {
		return nil, false
	}

	points := walkLine(exit, entry)
	for _, p := range points {
		if !grd.Free(p) {
			return nil, false
		}
	}
	return buildPath(points), true
}

// walkLine returns every grid point from a to b inclusive, along whichever single axis they
// differ on.
func walkLine(a, b grid.Point) []grid.Point {
	var points []grid.Point
	switch {
	case a.X == b.X:
		step := 1
		if b.Y < a.Y {
			step = -1
		}
		for y := a.Y; ; y += step {
			points = append(points, grid.Point{X: a.X, Y: y})
			if y == b.Y {
				break
			}
		}
	default:
		step := 1
		if b.X < a.X {
			step = -1
		}
		for x := a.X; ; x += step {
			points = append(points, grid.Point{X: x, Y: a.Y})
			if x == b.X {
				break
			}
		}
	}
	return points
}

// lbend implements Tier 2 (spec.md §4.5): two candidate corners, horizontal-then-vertical and
// vertical-then-horizontal, each tried as a two-segment path free at every cell.
func lbend(g *graph.Graph, grd *grid.Grid, e *graph.Edge, exit, entry grid.Point) ([]PathCell, bool) {
	corners := []grid.Point{
		{X: entry.X, Y: exit.Y}, // horizontal-then-vertical
		{X: exit.X, Y: entry.Y}, // vertical-then-horizontal
	}
	for _, corner := range corners {
		if corner == exit || corner == entry {
			continue
		}
		first := walkLine(exit, corner)
		second := walkLine(corner, entry)
		points := append(first, second[1:]...)
		if allFree(grd, points) {
			return buildPath(points), true
		}
	}
	return nil, false
}

func allFree(grd *grid.Grid, points []grid.Point) bool {
	for _, p := range points {
		if !grd.Free(p) {
			return false
		}
	}
	return true
}

// buildPath computes each cell's entry/exit direction from its neighbors in points and derives
// its shape via [celltype.FromDirections]. The first cell carries the label flag (spec.md §4.5
// "The label flag is OR-ed onto the first cell").
func buildPath(points []grid.Point) []PathCell {
	n := len(points)
	cells := make([]PathCell, n)
	for i, p := range points {
		var in, out grid.Direction
		if i > 0 {
			in = directionTo(points[i], points[i-1])
		}
		if i < n-1 {
			out = directionTo(points[i], points[i+1])
		}
		shape := celltype.FromDirections(in, out)
		ct := grid.NewCellType(shape, in, out)
		if i == 0 {
			ct = ct.WithLabel()
		}
		cells[i] = PathCell{Pos: p, Type: ct}
	}
	return cells
}

// directionTo returns the compass direction from a to b, which must be orthogonally adjacent.
func directionTo(a, b grid.Point) grid.Direction {
	switch {
	case b.X > a.X:
		return grid.DirEast
	case b.X < a.X:
		return grid.DirWest
	case b.Y > a.Y:
		return grid.DirSouth
	default:
		return grid.DirNorth
	}
}

// selfLoop returns the fixed five-cell bump attached to the north-east corner of n (spec.md
// §4.5 "Self-loops"). It uses the dedicated loop-bump shape classes, kept distinct from ordinary
// corners (grid/celltype.go), rather than deriving a shape from [celltype.FromDirections].
func selfLoop(g *graph.Graph, e *graph.Edge) []PathCell {
	n := g.Node(e.Source)
	x, y := n.X+n.CX, n.Y

	p0 := grid.Point{X: x, Y: y}
	p1 := grid.Point{X: x + 1, Y: y}
	p2 := grid.Point{X: x + 1, Y: y - 1}
	p3 := grid.Point{X: x + 1, Y: y - 2}
	p4 := grid.Point{X: x, Y: y - 2}

	return []PathCell{
		{Pos: p0, Type: grid.NewCellType(grid.ShapeHorizontal, grid.DirNone, grid.DirEast).WithLabel()},
		{Pos: p1, Type: grid.NewCellType(celltype.LoopBump(grid.DirWest, grid.DirNorth), grid.DirWest, grid.DirNorth)},
		{Pos: p2, Type: grid.NewCellType(grid.ShapeVertical, grid.DirSouth, grid.DirNorth)},
		{Pos: p3, Type: grid.NewCellType(celltype.LoopBump(grid.DirSouth, grid.DirWest), grid.DirSouth, grid.DirWest)},
		{Pos: p4, Type: grid.NewCellType(grid.ShapeHorizontal, grid.DirEast, grid.DirNone)},
	}
}

const (
	costBase          = 1
	costCrossing      = 30
	costDirectionTurn = 6
)

// astar implements Tier 3 (spec.md §4.5): 4-connected grid A* with a virtual start-inside-source
// parent so the first move's direction is known, and the crossing/direction-change penalties that
// bias the search toward straight, uncontested paths.
func astar(g *graph.Graph, grd *grid.Grid, e graph.EdgeHandle, exit, entry grid.Point, limits Limits) ([]PathCell, bool) {
	edge := g.Edge(e)
	bundle := g.ParallelBundle(e)

	virtualParent := exit.Add(oppositeDelta(entryFlowDelta(g, edge)))

	var open minHeap
	cameFrom := map[grid.Point]grid.Point{exit: virtualParent}
	dirInto := map[grid.Point]grid.Direction{exit: directionTo(virtualParent, exit)}
	bestG := map[grid.Point]int{exit: 0}
	open.Push(item{pos: exit, f: heuristic(exit, entry)})

	visited := 0
	for open.Len() > 0 {
		if open.Len() > limits.OpenListLimit {
			return nil, false
		}
		cur := open.Pop()
		if cur.pos == entry {
			return reconstructAStar(grd, cameFrom, dirInto, exit, entry), true
		}

		visited++
		if visited > limits.VisitedLimit {
			return nil, false
		}

		for _, dir := range []grid.Direction{grid.DirNorth, grid.DirSouth, grid.DirEast, grid.DirWest} {
			dx, dy := dir.Delta()
			next := cur.pos.Add(dx, dy)
			if next != entry && blocked(grd, edge.Source, edge.Target, bundle, next) {
				continue
			}

			step := costBase
			if next != entry && crossesEdge(grd, next) {
				step += costCrossing
			}
			if dirInto[cur.pos] != dir {
				step += costDirectionTurn
			}

			g2 := bestG[cur.pos] + step
			if prev, ok := bestG[next]; ok && prev <= g2 {
				continue
			}
			bestG[next] = g2
			cameFrom[next] = cur.pos
			dirInto[next] = dir
			open.Push(item{pos: next, f: g2 + heuristic(next, entry)})
		}
	}
	return nil, false
}

// entryFlowDelta returns the unit step a move leaving the source node takes, used to construct
// the virtual parent cell "inside" the source (spec.md §4.5 "Start state").
func entryFlowDelta(g *graph.Graph, e *graph.Edge) (dx, dy int) {
	return flowDirection(g.Attrs.Flow).Delta()
}

func oppositeDelta(dx, dy int) (int, int) { return -dx, -dy }

func heuristic(a, b grid.Point) int {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	h := dx + dy
	if dx != 0 && dy != 0 {
		h++
	}
	return h
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// blocked reports whether next is hard-blocked for this edge: a node cell belonging to neither
// endpoint, or an edge cell belonging to another member of the same parallel bundle (spec.md
// §4.5 "Blocking").
func blocked(grd *grid.Grid, source, target graph.NodeHandle, bundle []graph.EdgeHandle, next grid.Point) bool {
	cell, ok := grd.At(next)
	if !ok {
		return false
	}
	switch owner := cell.Owner.(type) {
	case grid.NodeOwner:
		return owner.Node != source && owner.Node != target
	case grid.EdgeOwner:
		for _, eh := range bundle {
			if owner.Edge == eh {
				return true
			}
		}
	}
	return false
}

// crossesEdge reports whether next already carries a (passable) edge cell, incurring the crossing
// penalty.
func crossesEdge(grd *grid.Grid, next grid.Point) bool {
	cell, ok := grd.At(next)
	if !ok {
		return false
	}
	_, isEdge := cell.Owner.(grid.EdgeOwner)
	return isEdge
}

func reconstructAStar(grd *grid.Grid, cameFrom map[grid.Point]grid.Point, dirInto map[grid.Point]grid.Direction, exit, entry grid.Point) []PathCell {
	var points []grid.Point
	for p := entry; ; p = cameFrom[p] {
		points = append(points, p)
		if p == exit {
			break
		}
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return buildPathCrossing(grd, points)
}

// crossingShape derives the shape class for a cell a new path crosses that is already owned by a
// different edge (spec.md §4.5's joint/crossing shapes): the new path's own (in, out) merged with
// the existing occupant's direction set. Three distinct directions form a T-joint, four form a
// full crossing; fewer (the occupant ran the same way the new path does) collapses back to the
// plain shape, since nothing about the cell actually looks different. A* is the only tier this
// applies to — Tier 1 and Tier 2 both require every cell free, so they never write over another
// edge's cell.
func crossingShape(existing grid.CellType, in, out grid.Direction) grid.ShapeClass {
	dirs := map[grid.Direction]bool{}
	if in != grid.DirNone {
		dirs[in] = true
	}
	if out != grid.DirNone {
		dirs[out] = true
	}
	if d := existing.StartDir(); d != grid.DirNone {
		dirs[d] = true
	}
	if d := existing.EndDir(); d != grid.DirNone {
		dirs[d] = true
	}
	switch len(dirs) {
	case 4:
		return grid.ShapeCross
	case 3:
		list := make([]grid.Direction, 0, 3)
		for d := range dirs {
			list = append(list, d)
		}
		return celltype.Joint(list...)
	default:
		return celltype.FromDirections(in, out)
	}
}

// buildPathCrossing is [buildPath] extended with crossing awareness: each cell checks grd for an
// already-owned edge cell and, if found, derives a joint/crossing shape via [crossingShape]
// instead of the plain two-direction shape.
func buildPathCrossing(grd *grid.Grid, points []grid.Point) []PathCell {
	n := len(points)
	cells := make([]PathCell, n)
	for i, p := range points {
		var in, out grid.Direction
		if i > 0 {
			in = directionTo(points[i], points[i-1])
		}
		if i < n-1 {
			out = directionTo(points[i], points[i+1])
		}
		shape := celltype.FromDirections(in, out)
		if cell, ok := grd.At(p); ok {
			if existing, isEdge := cell.Owner.(grid.EdgeOwner); isEdge {
				shape = crossingShape(existing.Type, in, out)
			}
		}
		ct := grid.NewCellType(shape, in, out)
		if i == 0 {
			ct = ct.WithLabel()
		}
		cells[i] = PathCell{Pos: p, Type: ct}
	}
	return cells
}

// item is an A* open-list entry ordered by f-score, min-first.
type item struct {
	pos grid.Point
	f   int
}

// minHeap is a concrete-typed min-heap ordered by f-score — see the package doc comment for why
// this mirrors internal/rank's heap rather than sharing a generic type with it.
type minHeap struct {
	items []item
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(it item) {
	h.items = append(h.items, it)
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() item {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].f >= h.items[parent].f {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].f < h.items[smallest].f {
			smallest = left
		}
		if right < n && h.items[right].f < h.items[smallest].f {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
