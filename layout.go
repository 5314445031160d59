// Package layout implements the orthogonal graph layout engine: it assigns integer grid
// coordinates to nodes and routes edges as strictly orthogonal paths over a shared [grid.Grid].
// [Layout] is the package's single entry point; it drives RankAssigner, ChainDetector,
// ActionPlanner, NodePlacer and Scout per spec.md's pipeline, with bounded backtracking on
// placement failure (spec.md §4.6).
package layout

import (
	"errors"
	"log/slog"

	"github.com/asciigraph/layout/graph"
	"github.com/asciigraph/layout/grid"
	"github.com/asciigraph/layout/internal/chain"
	"github.com/asciigraph/layout/internal/plan"
	"github.com/asciigraph/layout/internal/place"
	"github.com/asciigraph/layout/internal/rank"
	"github.com/asciigraph/layout/internal/scout"
)

// ErrNilGraph is returned when Layout is called with a nil graph. This is a caller-contract
// violation, not one of spec.md §7's recoverable failure classes — those only describe a
// well-formed graph's nodes or edges failing to place or route.
var ErrNilGraph = errors.New("layout: graph is nil")

const crossingScorePenalty = 3

// Config carries the bounded-runtime knobs spec.md requires (§4.4, §4.5, §4.6). Layout replaces
// any zero-valued limit field with its [DefaultConfig] value.
type Config struct {
	// TryBudget is the Executor's global backtrack budget (spec.md §4.6, default 16).
	TryBudget int
	// AStarVisitedLimit bounds Scout's Tier 3 visited-node count (spec.md §4.5, default 500).
	AStarVisitedLimit int
	// AStarOpenListLimit bounds Scout's Tier 3 open-list size (spec.md §4.5, default 1000).
	AStarOpenListLimit int
	// ColumnScanLimit bounds NodePlacer's column-scan fallback (spec.md §4.4, default 100).
	ColumnScanLimit int

	// Logger receives debug-level diagnostics for every recoverable failure (spec.md §7). A nil
	// Logger discards output.
	Logger *slog.Logger
	// Debug enables debug-level logging on Logger. When false, Logger is never invoked.
	Debug bool
}

// DefaultConfig returns a Config populated with spec.md's suggested defaults.
func DefaultConfig() Config {
	return Config{
		TryBudget:          16,
		AStarVisitedLimit:  500,
		AStarOpenListLimit: 1000,
		ColumnScanLimit:    100,
	}
}

func (c Config) withDefaults() Config {
	if c.TryBudget == 0 {
		c.TryBudget = 16
	}
	if c.AStarVisitedLimit == 0 {
		c.AStarVisitedLimit = 500
	}
	if c.AStarOpenListLimit == 0 {
		c.AStarOpenListLimit = 1000
	}
	if c.ColumnScanLimit == 0 {
		c.ColumnScanLimit = 100
	}
	return c
}

func (c Config) debug(msg string, args ...any) {
	if !c.Debug || c.Logger == nil {
		return
	}
	c.Logger.Debug(msg, args...)
}

// Result is Layout's output: the populated grid and a diagnostic score.
type Result struct {
	Grid *grid.Grid
	// Score accumulates every successfully routed edge's path length plus 3 per crossed cell
	// (spec.md §4.6 "accumulate its score"). Diagnostic only, not part of the contract.
	Score int
}

// Layout runs the full pipeline over g: rank assignment, chain detection, action planning, then
// the Executor loop driving NodePlacer and Scout with bounded backtracking. It mutates g in place
// (ranks, positions, edge offsets) per spec.md §6 "Output" and returns the resulting grid. A
// partial layout (some nodes unplaced, some edges unrouted) is not an error: spec.md §7 requires
// the engine to never fail for input-data reasons.
func Layout(g *graph.Graph, cfg Config) (*Result, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	cfg = cfg.withDefaults()
	grd := grid.NewGrid()

	if g.NumNodes() == 0 {
		return &Result{Grid: grd}, nil
	}

	rank.Assign(g)
	assignOffsets(g)

	root := chooseRoot(g)
	chain.Detect(g, root)

	actions := plan.Build(g)
	return run(g, grd, actions, cfg), nil
}

// chooseRoot mirrors RankAssigner's own root selection (spec.md §4.1) so ChainDetector starts its
// ordering from the same node: the first node named by the graph's root attribute or carrying a
// truthy node root attribute, else the first node with zero non-self-loop in-edges, else the
// first node in iteration order.
func chooseRoot(g *graph.Graph) graph.NodeHandle {
	for _, h := range g.Nodes() {
		n := g.Node(h)
		if (g.Attrs.Root != "" && n.Name == g.Attrs.Root) || n.Attrs.RootFlag {
			return h
		}
	}
	for _, h := range g.Nodes() {
		if len(nonSelfLoopInEdges(g, h)) == 0 {
			return h
		}
	}
	return g.Nodes()[0]
}

func nonSelfLoopInEdges(g *graph.Graph, n graph.NodeHandle) []graph.EdgeHandle {
	var in []graph.EdgeHandle
	for _, eh := range g.InEdges(n) {
		if !g.Edge(eh).IsSelfLoop() {
			in = append(in, eh)
		}
	}
	return in
}

// assignOffsets stamps each edge's parallel-bundle offset (spec.md §3, §8 "Offset uniqueness"):
// 0, +1, -1, +2, -2, ... across the edges sharing an unordered endpoint pair, in stable edge
// order. Bundles are resolved once up front, before placement or routing begins, since offset
// only depends on graph structure.
func assignOffsets(g *graph.Graph) {
	seen := make(map[graph.EdgeHandle]bool)
	for _, eh := range g.Edges() {
		if seen[eh] {
			continue
		}
		bundle := g.ParallelBundle(eh)
		for _, h := range bundle {
			seen[h] = true
		}
		for i, h := range bundle {
			g.Edge(h).Offset = offsetForIndex(i)
		}
	}
}

// offsetForIndex maps a bundle-local position to the 0, +1, -1, +2, -2, ... sequence.
func offsetForIndex(i int) int {
	if i == 0 {
		return 0
	}
	n := (i + 1) / 2
	if i%2 == 1 {
		return n
	}
	return -n
}

// queueItem is one pending action plus its current retry count, tracked outside [plan.Action] so
// the Executor's bounded backtracking never mutates the planner's output.
type queueItem struct {
	action   plan.Action
	tryCount int
}

func run(g *graph.Graph, grd *grid.Grid, actions []plan.Action, cfg Config) *Result {
	queue := make([]queueItem, len(actions))
	for i, a := range actions {
		queue[i] = queueItem{action: a}
	}

	result := &Result{Grid: grd}
	budget := cfg.TryBudget

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		ok, length := attempt(g, grd, item, cfg)
		if ok {
			result.Score += length
			continue
		}

		switch item.action.Kind {
		case plan.PlaceNode, plan.PlaceChained:
			if budget <= 0 {
				cfg.debug("budget exhausted, abandoning remaining actions", "remaining", len(queue)+1)
				return result
			}
			place.RemoveNode(g, grd, item.action.Node)
			item.tryCount++
			budget--
			cfg.debug("placement failed, retrying",
				"node", g.Node(item.action.Node).Name, "tries", item.tryCount, "budget", budget)
			queue = append([]queueItem{item}, queue...)
		case plan.RouteEdge:
			cfg.debug("routing exhausted, leaving edge unrouted", "edge", int(item.action.Edge))
		}
	}

	return result
}

// attempt dispatches a single queued action. It returns whether the action succeeded and, for a
// successful RouteEdge, the score contribution (path length plus the crossing penalty).
func attempt(g *graph.Graph, grd *grid.Grid, item queueItem, cfg Config) (bool, int) {
	a := item.action
	switch a.Kind {
	case plan.PlaceNode:
		ok := place.PlaceNode(g, grd, a.Node, item.tryCount, graph.InvalidNode, 0, cfg.ColumnScanLimit)
		return ok, 0
	case plan.PlaceChained:
		ok := place.PlaceNode(g, grd, a.Node, item.tryCount, a.Parent, a.Distance, cfg.ColumnScanLimit)
		if !ok {
			return false, 0
		}
		if a.ParentEdge == graph.InvalidEdge {
			return true, 0
		}
		return routeEdge(g, grd, a.ParentEdge, cfg)
	case plan.RouteEdge:
		return routeEdge(g, grd, a.Edge, cfg)
	}
	return false, 0
}

func routeEdge(g *graph.Graph, grd *grid.Grid, e graph.EdgeHandle, cfg Config) (bool, int) {
	limits := scout.Limits{VisitedLimit: cfg.AStarVisitedLimit, OpenListLimit: cfg.AStarOpenListLimit}
	path, ok := scout.FindPath(g, grd, e, limits)
	if !ok {
		return false, 0
	}

	edge := g.Edge(e)
	crossings := 0
	for i, cell := range path {
		label := ""
		if i == 0 {
			label = edge.Label
		}
		if !grd.Free(cell.Pos) {
			crossings++
		}
		if !grd.Set(cell.Pos, grid.EdgeOwner{Edge: e, Type: cell.Type, Label: label}) {
			cfg.debug("invariant violation: edge route blocked by a node cell", "edge", int(e))
			grd.RemoveOwnedByEdge(e)
			return false, 0
		}
	}
	edge.Routed = true
	return true, len(path) + crossings*crossingScorePenalty
}
