package scout

import (
	"testing"

	"github.com/asciigraph/layout/graph"
	"github.com/asciigraph/layout/grid"
	"github.com/teleivo/assertive/assert"
)

var defaultLimits = Limits{VisitedLimit: 500, OpenListLimit: 1000}

func place(g *graph.Graph, grd *grid.Grid, n graph.NodeHandle, x, y, cx, cy int) {
	node := g.Node(n)
	node.X, node.Y, node.CX, node.CY = x, y, cx, cy
	node.Placed = true
	for dy := 0; dy < cy; dy++ {
		for dx := 0; dx < cx; dx++ {
			grd.Set(grid.Point{X: x + dx, Y: y + dy}, grid.NodeOwner{Node: n})
		}
	}
}

func TestFindPathStraightLine(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	e := g.AddEdgeH(a.ID, b.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)
	place(g, grd, b.ID, 4, 0, 1, 1)

	path, ok := FindPath(g, grd, e.ID, defaultLimits)

	assert.Truef(t, ok, "straight routing should succeed")
	assert.EqualValuesf(t, 3, len(path), "corridor between a and b is 3 cells wide")
	assert.Truef(t, path[0].Type.HasLabel(), "first cell carries the label")
	assert.EqualValuesf(t, grid.ShapeHorizontal, path[0].Type.Shape(), "straight cells are horizontal")
}

func TestFindPathShortEdge(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	e := g.AddEdgeH(a.ID, b.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)
	place(g, grd, b.ID, 2, 0, 1, 1)
	// A single empty column between a and b makes its exit cell and b's entry cell the same cell.

	path, ok := FindPath(g, grd, e.ID, defaultLimits)

	assert.Truef(t, ok, "one-gap nodes should route as a short edge")
	assert.EqualValuesf(t, 1, len(path), "one-gap nodes share a single short-edge cell")
	assert.EqualValuesf(t, grid.ShapeShortEdge, path[0].Type.Shape(), "adjacent routing is a short edge")
	assert.Truef(t, path[0].Type.HasLabel(), "short edge carries the label")
}

func TestFindPathLBendWhenNotAxisAligned(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	e := g.AddEdgeH(a.ID, b.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)
	place(g, grd, b.ID, 3, 3, 1, 1)
	// exit (1,0) and entry (2,3) share neither axis, so Tier 1 cannot apply and Tier 2's corner
	// must be used.

	path, ok := FindPath(g, grd, e.ID, defaultLimits)

	assert.Truef(t, ok, "L-bend should find a route")
	assert.Truef(t, len(path) > 2, "an L-bend path spans more than a straight corridor would")
}

func TestFindPathFailsWhenFullyBoxedIn(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	e := g.AddEdgeH(a.ID, b.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)
	place(g, grd, b.ID, 4, 0, 1, 1)
	// Wall off two full columns east of a; any detour around it costs far more than the tiny
	// visited budget below allows.
	for y := -2; y <= 2; y++ {
		grd.Set(grid.Point{X: 1, Y: y}, grid.NodeOwner{Node: graph.NodeHandle(999)})
		grd.Set(grid.Point{X: 2, Y: y}, grid.NodeOwner{Node: graph.NodeHandle(999)})
	}

	_, ok := FindPath(g, grd, e.ID, Limits{VisitedLimit: 3, OpenListLimit: 50})

	assert.Truef(t, !ok, "a tightly bounded detour around the wall should exhaust the search budget")
}

func TestFindPathSelfLoop(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	e := g.AddEdgeH(a.ID, a.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)

	path, ok := FindPath(g, grd, e.ID, defaultLimits)

	assert.Truef(t, ok, "self-loop always succeeds")
	assert.EqualValuesf(t, 5, len(path), "self-loop bump is five cells")
	assert.EqualValuesf(t, grid.ShapeLoopBumpNE, path[1].Type.Shape(), "second bump cell turns north")
	assert.EqualValuesf(t, grid.ShapeLoopBumpSW, path[3].Type.Shape(), "fourth bump cell turns west")
}

func TestAStarAvoidsOtherNodeCells(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	blocker, err := g.AddNode("blocker")
	assert.NoErrorf(t, err, "AddNode blocker")
	e := g.AddEdgeH(a.ID, b.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)
	place(g, grd, b.ID, 4, 0, 1, 1)
	place(g, grd, blocker.ID, 2, 0, 1, 3)

	path, ok := FindPath(g, grd, e.ID, defaultLimits)

	assert.Truef(t, ok, "route should detour around the blocker")
	for _, cell := range path {
		c, found := grd.At(cell.Pos)
		if !found {
			continue
		}
		if no, isNode := c.Owner.(grid.NodeOwner); isNode {
			assert.Truef(t, no.Node == a.ID || no.Node == b.ID, "path never steps onto another node's cell")
		}
	}
}

func TestAStarCrossesExistingEdgeAtAPenalty(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	c, err := g.AddNode("c")
	assert.NoErrorf(t, err, "AddNode c")
	d, err := g.AddNode("d")
	assert.NoErrorf(t, err, "AddNode d")
	existing := g.AddEdgeH(c.ID, d.ID)
	e := g.AddEdgeH(a.ID, b.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)
	place(g, grd, b.ID, 4, 2, 1, 1)
	place(g, grd, c.ID, 2, -2, 1, 1)
	place(g, grd, d.ID, 2, 4, 1, 1)
	// Occupy the straight/L-bend candidates so a crosses the existing edge's cell under A*.
	path, ok := FindPath(g, grd, existing.ID, defaultLimits)
	assert.Truef(t, ok, "existing edge should route first")
	for _, cell := range path {
		grd.Set(cell.Pos, grid.EdgeOwner{Edge: existing.ID, Type: cell.Type})
	}

	blockRoute, ok := FindPath(g, grd, e.ID, defaultLimits)
	assert.Truef(t, ok, "a to b should still find a path, crossing the existing edge if needed")
	assert.Truef(t, len(blockRoute) > 0, "non-empty path")
}

// TestCrossingShapeDerivesJointsAndCrossings exercises crossingShape directly, the step that
// upgrades a cell's shape when A* routes over a cell another edge already owns: three distinct
// directions form a T-joint, four form a full crossing, and an occupant running the same way the
// new path does collapses back to the plain two-direction shape. This is what makes the four
// joints and Cross — not just the straights and corners a single path produces on its own —
// reachable from routed output.
func TestCrossingShapeDerivesJointsAndCrossings(t *testing.T) {
	tests := map[string]struct {
		existing grid.CellType
		in, out  grid.Direction
		want     grid.ShapeClass
	}{
		"missing south forms NEW joint": {
			existing: grid.NewCellType(grid.ShapeHorizontal, grid.DirWest, grid.DirEast),
			in:       grid.DirNorth,
			out:      grid.DirNone,
			want:     grid.ShapeJointNEW,
		},
		"missing east forms NWS joint": {
			existing: grid.NewCellType(grid.ShapeVertical, grid.DirNorth, grid.DirSouth),
			in:       grid.DirWest,
			out:      grid.DirNone,
			want:     grid.ShapeJointNWS,
		},
		"missing west forms ENS joint": {
			existing: grid.NewCellType(grid.ShapeVertical, grid.DirNorth, grid.DirSouth),
			in:       grid.DirEast,
			out:      grid.DirNone,
			want:     grid.ShapeJointENS,
		},
		"missing north forms SEW joint": {
			existing: grid.NewCellType(grid.ShapeHorizontal, grid.DirWest, grid.DirEast),
			in:       grid.DirSouth,
			out:      grid.DirWest,
			want:     grid.ShapeJointSEW,
		},
		"all four directions form a full crossing": {
			existing: grid.NewCellType(grid.ShapeHorizontal, grid.DirWest, grid.DirEast),
			in:       grid.DirNorth,
			out:      grid.DirSouth,
			want:     grid.ShapeCross,
		},
		"same direction as the occupant collapses to the plain shape": {
			existing: grid.NewCellType(grid.ShapeHorizontal, grid.DirWest, grid.DirEast),
			in:       grid.DirWest,
			out:      grid.DirEast,
			want:     grid.ShapeHorizontal,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := crossingShape(test.existing, test.in, test.out)
			assert.EqualValuesf(t, test.want, got, "crossingShape(%v, %v, %v)", test.existing, test.in, test.out)
		})
	}
}

// TestAStarHardBlocksSameParallelBundle routes two edges of the same parallel bundle sharing the
// same offset (so their exit/entry cells coincide, forcing a genuine conflict once the first is
// routed) and asserts the second edge's A* path is forced around, not through, the first's cells —
// astar's blocked() hard-blocks same-bundle edge cells unconditionally, on top of the unconditional
// occupancy checks Tier 1 and Tier 2 already apply.
func TestAStarHardBlocksSameParallelBundle(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	e1 := g.AddEdgeH(a.ID, b.ID)
	e2 := g.AddEdgeH(a.ID, b.ID)
	bundle := g.ParallelBundle(e1.ID)
	assert.EqualValuesf(t, 2, len(bundle), "both parallel edges are in the bundle")

	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, -1, 1, 3)
	place(g, grd, b.ID, 4, -1, 1, 3)
	// Leave both edges at their zero-value Offset so they exit/enter on the same row and would
	// naturally collide without the hard block.

	path1, ok := FindPath(g, grd, e1.ID, defaultLimits)
	assert.Truef(t, ok, "first parallel edge should route straight")
	for _, cell := range path1 {
		grd.Set(cell.Pos, grid.EdgeOwner{Edge: e1.ID, Type: cell.Type})
	}

	path2, ok := FindPath(g, grd, e2.ID, defaultLimits)
	assert.Truef(t, ok, "second parallel edge should still find a route")
	assert.Truef(t, len(path2) > len(path1), "sharing an offset forces the second edge off the direct corridor")

	// Exit and entry cells sit directly against the shared nodes and may legitimately coincide as
	// the two edges fan out/in at the same offset; what the hard block guarantees is that the
	// interior of the route — the corridor itself — never reuses a cell the bundle already owns.
	occupied := make(map[grid.Point]bool, len(path1)-2)
	for _, cell := range path1[1 : len(path1)-1] {
		occupied[cell.Pos] = true
	}
	for _, cell := range path2[1 : len(path2)-1] {
		assert.Truef(t, !occupied[cell.Pos], "second edge's interior path must route around, not through, the first edge's own bundle member")
	}
}

// TestParallelBundleMixedTierStaysDisjoint builds the scenario spec.md's open question flags: one
// member of a parallel bundle routes straight (Tier 1) while another, sharing the same pair of
// nodes, is forced off its own row and must fall back to A* (Tier 3) to get around an obstruction.
// A literal straight+L-bend pairing can't arise within a single bundle here — exitEntry's offset
// shifts both endpoints of a member equally, so it cancels out of the exit/entry alignment test,
// meaning every member of one bundle is either all axis-aligned (Tier 1 eligible) or all diagonal
// (Tier 1 ineligible); see DESIGN.md's open question decision. The achievable mixed-tier pairing —
// straight against an A*-forced detour — is the one that actually needs the post-layout
// disjointness check spec.md asks for, and this asserts it holds.
func TestParallelBundleMixedTierStaysDisjoint(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	e1 := g.AddEdgeH(a.ID, b.ID)
	e2 := g.AddEdgeH(a.ID, b.ID)
	g.Edge(e2.ID).Offset = 1

	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, -1, 1, 3)
	place(g, grd, b.ID, 6, -1, 1, 3)
	// Wall off e2's own row so its straight corridor is unusable; its L-bend corners degenerate to
	// its own exit/entry (aligned bundle), so it must fall through to A*.
	for x := 2; x <= 4; x++ {
		grd.Set(grid.Point{X: x, Y: 1}, grid.NodeOwner{Node: graph.NodeHandle(999)})
	}

	path1, ok := FindPath(g, grd, e1.ID, defaultLimits)
	assert.Truef(t, ok, "first parallel edge should route straight along its own row")
	assert.EqualValuesf(t, grid.ShapeHorizontal, path1[1].Type.Shape(), "first edge is a straight corridor")
	for _, cell := range path1 {
		grd.Set(cell.Pos, grid.EdgeOwner{Edge: e1.ID, Type: cell.Type})
	}

	path2, ok := FindPath(g, grd, e2.ID, defaultLimits)
	assert.Truef(t, ok, "second parallel edge should detour around the wall and the first edge's row")
	assert.Truef(t, len(path2) > 5, "the detour is longer than a direct 5-cell corridor would be")

	occupied := make(map[grid.Point]bool, len(path1))
	for _, cell := range path1 {
		occupied[cell.Pos] = true
	}
	for _, cell := range path2 {
		assert.Truef(t, !occupied[cell.Pos], "the A*-forced detour must stay disjoint from the straight-routed sibling's cells")
	}
}

func TestAStarTerminatesOnVisitedLimit(t *testing.T) {
	g := graph.NewGraph(true)
	a, err := g.AddNode("a")
	assert.NoErrorf(t, err, "AddNode a")
	b, err := g.AddNode("b")
	assert.NoErrorf(t, err, "AddNode b")
	e := g.AddEdgeH(a.ID, b.ID)
	grd := grid.NewGrid()
	place(g, grd, a.ID, 0, 0, 1, 1)
	place(g, grd, b.ID, 4, 0, 1, 1)
	for y := -1; y <= 1; y++ {
		grd.Set(grid.Point{X: 1, Y: y}, grid.NodeOwner{Node: graph.NodeHandle(999)})
	}

	_, ok := FindPath(g, grd, e.ID, Limits{VisitedLimit: 1, OpenListLimit: 1000})

	assert.Truef(t, !ok, "a tiny visited limit should abort the search")
}
