// Package grid provides the sparse cell map the layout core writes into: node-cells and
// edge-cells addressed by integer (x, y) coordinates (spec.md §3). A [Grid] is the contract
// between the layout core and an external renderer: the renderer reads completed cells, the core
// never reads back from anything but its own [Grid].
package grid

import "github.com/asciigraph/layout/graph"

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// Add returns the point offset by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Owner is a tagged variant distinguishing a node-cell from an edge-cell (spec.md §3, Design
// Notes §9: "Model as a tagged variant ... not as a struct with optional fields for both"). The
// only implementations are [NodeOwner] and [EdgeOwner].
type Owner interface {
	owner()
}

// NodeOwner marks a cell as belonging to a node. A node occupying (x, y) with footprint (cx, cy)
// owns every cell in the rectangle [x, x+cx) x [y, y+cy) (spec.md §3 invariant).
type NodeOwner struct {
	Node graph.NodeHandle
}

func (NodeOwner) owner() {}

// EdgeOwner marks a cell as belonging to a routed edge path. Type is this specific cell's
// [CellType]; Label is set on cells with CellType.HasLabel().
type EdgeOwner struct {
	Edge  graph.EdgeHandle
	Type  CellType
	Label string
}

func (EdgeOwner) owner() {}

// Cell is a single occupied grid position. Unoccupied positions are never stored (spec.md §3
// "empty cells are not stored").
type Cell struct {
	Pos   Point
	Owner Owner
}

// Grid is a sparse map from integer coordinates to [Cell]s. At any instant at most one Cell
// exists at a given position (spec.md §3 invariant). The zero value is ready to use.
type Grid struct {
	cells map[Point]*Cell
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[Point]*Cell)}
}

// At returns the cell at p, if any.
func (g *Grid) At(p Point) (*Cell, bool) {
	c, ok := g.cells[p]
	return c, ok
}

// Free reports whether no cell currently occupies p.
func (g *Grid) Free(p Point) bool {
	_, occupied := g.cells[p]
	return !occupied
}

// Set writes a cell at p. It refuses to overwrite an existing node-cell with anything else,
// returning false without mutating the grid (spec.md §3 "Edges may not overwrite node cells; the
// Executor must refuse to"). Overwriting an edge-cell with a node-cell is refused the same way.
// An edge-cell written over an existing edge-cell (a crossing) replaces it.
func (g *Grid) Set(p Point, owner Owner) bool {
	if g.cells == nil {
		g.cells = make(map[Point]*Cell)
	}
	if existing, ok := g.cells[p]; ok {
		if _, isNode := existing.Owner.(NodeOwner); isNode {
			return false
		}
		if _, newIsNode := owner.(NodeOwner); newIsNode {
			return false
		}
	}
	g.cells[p] = &Cell{Pos: p, Owner: owner}
	return true
}

// Remove deletes the cell at p, if any.
func (g *Grid) Remove(p Point) {
	delete(g.cells, p)
}

// Len returns the number of occupied cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// All returns every occupied cell. The order is unspecified; callers that need determinism should
// sort by Pos.
func (g *Grid) All() []*Cell {
	cells := make([]*Cell, 0, len(g.cells))
	for _, c := range g.cells {
		cells = append(cells, c)
	}
	return cells
}

// Clone returns a deep copy of the grid, used by idempotence tests that run layout twice against
// independent cell maps (spec.md §8).
func (g *Grid) Clone() *Grid {
	clone := NewGrid()
	for p, c := range g.cells {
		cp := *c
		clone.cells[p] = &cp
	}
	return clone
}

// RemoveOwnedByNode deletes every cell owned by node n. Used by NodePlacer's undo (spec.md §4.4
// "removeNode").
func (g *Grid) RemoveOwnedByNode(n graph.NodeHandle) {
	for p, c := range g.cells {
		if no, ok := c.Owner.(NodeOwner); ok && no.Node == n {
			delete(g.cells, p)
		}
	}
}

// RemoveOwnedByEdge deletes every cell owned by edge e. Used when un-routing during backtracking.
func (g *Grid) RemoveOwnedByEdge(e graph.EdgeHandle) {
	for p, c := range g.cells {
		if eo, ok := c.Owner.(EdgeOwner); ok && eo.Edge == e {
			delete(g.cells, p)
		}
	}
}
