// Package plan implements the ActionPlanner (spec.md §4.3): it turns a ranked, chained graph into
// the ordered action list the Executor drives. Chain edges (the spine) are scheduled first so the
// straight-path tier of the router fixes easy routes before chaotic, cross-chain routes compete
// for grid cells.
package plan

import (
	"sort"

	"github.com/asciigraph/layout/graph"
)

// Kind distinguishes the three action shapes spec.md §4.3 defines.
type Kind int

const (
	PlaceNode Kind = iota
	PlaceChained
	RouteEdge
)

// Action is one step of the plan. Parent, ParentEdge, and Distance are only meaningful for
// PlaceChained; Edge is only meaningful for RouteEdge. Build leaves TryCount at zero; the Executor
// counts retries in its own queue entries and does not write this field.
type Action struct {
	Kind       Kind
	Node       graph.NodeHandle
	Parent     graph.NodeHandle
	ParentEdge graph.EdgeHandle
	Distance   int
	Edge       graph.EdgeHandle
	TryCount   int
}

// Build returns the ordered action list for g, which must already have ranks (internal/rank) and
// chains (internal/chain) assigned.
func Build(g *graph.Graph) []Action {
	var actions []Action
	placed := make(map[graph.NodeHandle]bool)
	spine := make(map[graph.EdgeHandle]bool)

	for _, c := range g.Chains {
		actions = append(actions, chainActions(g, c, placed, spine)...)
	}

	// Defensive: cover any node ChainDetector left unassigned (should not happen — every node
	// belongs to exactly one chain — but a partial or hand-built graph might skip ranking/chaining).
	for _, n := range g.Nodes() {
		if !placed[n] {
			actions = append(actions, Action{Kind: PlaceNode, Node: n})
			placed[n] = true
		}
	}

	actions = append(actions, remainingEdgeActions(g, spine)...)

	return actions
}

func chainActions(g *graph.Graph, c graph.Chain, placed map[graph.NodeHandle]bool, spine map[graph.EdgeHandle]bool) []Action {
	if len(c.Nodes) == 0 {
		return nil
	}

	var actions []Action
	actions = append(actions, Action{Kind: PlaceNode, Node: c.Nodes[0]})
	placed[c.Nodes[0]] = true

	for i := 1; i < len(c.Nodes); i++ {
		parent := c.Nodes[i-1]
		n := c.Nodes[i]
		e := spineEdge(g, parent, n)
		dist := 2
		if e != graph.InvalidEdge {
			spine[e] = true
			dist = g.Edge(e).MinLen()
		}
		actions = append(actions, Action{
			Kind: PlaceChained, Node: n, Parent: parent, ParentEdge: e, Distance: dist,
		})
		placed[n] = true
	}

	inChain := make(map[graph.NodeHandle]int, len(c.Nodes))
	for i, n := range c.Nodes {
		inChain[n] = i
	}

	var internal []graph.EdgeHandle
	var selfLoops []graph.EdgeHandle
	for _, eh := range g.Edges() {
		e := g.Edge(eh)
		if spine[eh] {
			continue
		}
		_, sok := inChain[e.Source]
		_, tok := inChain[e.Target]
		if !sok || !tok {
			continue
		}
		if e.IsSelfLoop() {
			selfLoops = append(selfLoops, eh)
			continue
		}
		internal = append(internal, eh)
	}

	sort.SliceStable(internal, func(i, j int) bool {
		di := chainDistance(g, inChain, internal[i])
		dj := chainDistance(g, inChain, internal[j])
		return di < dj
	})

	for _, eh := range internal {
		actions = append(actions, Action{Kind: RouteEdge, Edge: eh})
	}
	for _, eh := range selfLoops {
		actions = append(actions, Action{Kind: RouteEdge, Edge: eh})
	}

	return actions
}

func chainDistance(g *graph.Graph, inChain map[graph.NodeHandle]int, eh graph.EdgeHandle) int {
	e := g.Edge(eh)
	d := inChain[e.Target] - inChain[e.Source]
	if d < 0 {
		return -d
	}
	return d
}

// spineEdge returns the first (lowest-id) non-self-loop edge from parent to child, or
// graph.InvalidEdge if none exists — which can happen when a chain was built by hand without a
// connecting edge.
func spineEdge(g *graph.Graph, parent, child graph.NodeHandle) graph.EdgeHandle {
	for _, eh := range g.OutEdges(parent) {
		e := g.Edge(eh)
		if e.Target == child && !e.IsSelfLoop() {
			return eh
		}
	}
	return graph.InvalidEdge
}

func remainingEdgeActions(g *graph.Graph, spine map[graph.EdgeHandle]bool) []Action {
	handled := make(map[graph.EdgeHandle]bool, len(spine))
	for eh := range spine {
		handled[eh] = true
	}

	// Re-derive which edges the per-chain pass already scheduled as RouteEdge actions by walking
	// chains again: cheaper than threading a second map out of chainActions, and this function
	// only runs once per Build call.
	for _, c := range g.Chains {
		inChain := make(map[graph.NodeHandle]bool, len(c.Nodes))
		for _, n := range c.Nodes {
			inChain[n] = true
		}
		for _, eh := range g.Edges() {
			if handled[eh] {
				continue
			}
			e := g.Edge(eh)
			if inChain[e.Source] && inChain[e.Target] {
				handled[eh] = true
			}
		}
	}

	var actions []Action
	for _, eh := range g.Edges() {
		if handled[eh] {
			continue
		}
		actions = append(actions, Action{Kind: RouteEdge, Edge: eh})
	}
	return actions
}
