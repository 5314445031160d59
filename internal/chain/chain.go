// Package chain implements the ChainDetector (spec.md §4.2): it partitions every node into
// maximal linear chains by following single-successor links, picking the longest branch at each
// fork, and orders the resulting chains deterministically.
package chain

import (
	"sort"

	"github.com/asciigraph/layout/graph"
)

// Detect returns every chain covering each node of g exactly once, in the global ordering spec.md
// §4.2 describes: the chain containing root first, then longer chains before shorter ones, then
// alphabetical by start-node name. It also writes the result to g.Chains and stamps each node's
// ChainID.
func Detect(g *graph.Graph, root graph.NodeHandle) []graph.Chain {
	chained := make(map[graph.NodeHandle]bool)
	var chains []graph.Chain

	for _, n := range g.Nodes() {
		if chained[n] {
			continue
		}
		nodes := buildChain(g, n, chained)
		for _, m := range nodes {
			chained[m] = true
		}
		chains = append(chains, graph.Chain{Nodes: nodes})
	}

	order(g, chains, root)

	for i := range chains {
		chains[i].Index = i
		for _, n := range chains[i].Nodes {
			g.Node(n).ChainID = i
		}
	}
	g.Chains = chains
	return chains
}

// buildChain grows a chain starting at start by repeatedly advancing to the unique successor.
// When a node has multiple unchained successor candidates, each candidate's own chain is built
// recursively and the longest one is spliced in, matching spec.md §4.2's fork resolution.
func buildChain(g *graph.Graph, start graph.NodeHandle, chained map[graph.NodeHandle]bool) []graph.NodeHandle {
	nodes := []graph.NodeHandle{start}
	inChain := map[graph.NodeHandle]bool{start: true}

	cur := start
	for {
		candidates := uniqueSuccessors(g, cur, chained, inChain)
		if len(candidates) == 0 {
			return nodes
		}
		if len(candidates) == 1 {
			nodes = append(nodes, candidates[0])
			inChain[candidates[0]] = true
			cur = candidates[0]
			continue
		}

		// Sub-chains must not reach back into this chain's own nodes, or they would be spliced in
		// a second time.
		exclude := make(map[graph.NodeHandle]bool, len(chained)+len(inChain))
		for m := range chained {
			exclude[m] = true
		}
		for m := range inChain {
			exclude[m] = true
		}
		var best []graph.NodeHandle
		for _, c := range candidates {
			sub := buildChain(g, c, exclude)
			if len(sub) > len(best) {
				best = sub
			}
		}
		nodes = append(nodes, best...)
		return nodes
	}
}

// uniqueSuccessors returns cur's outgoing targets, excluding self-loops, duplicates, nodes
// already placed in this chain, and nodes already claimed by another chain.
func uniqueSuccessors(g *graph.Graph, cur graph.NodeHandle, chained, inChain map[graph.NodeHandle]bool) []graph.NodeHandle {
	seen := make(map[graph.NodeHandle]bool)
	var out []graph.NodeHandle
	for _, eh := range g.OutEdges(cur) {
		e := g.Edge(eh)
		if e.IsSelfLoop() || seen[e.Target] || chained[e.Target] || inChain[e.Target] {
			continue
		}
		seen[e.Target] = true
		out = append(out, e.Target)
	}
	return out
}

// order sorts chains in place: the chain containing root first, then longer chains before
// shorter, then alphabetical by start-node name.
func order(g *graph.Graph, chains []graph.Chain, root graph.NodeHandle) {
	rootChain := -1
outer:
	for i, c := range chains {
		for _, n := range c.Nodes {
			if n == root {
				rootChain = i
				break outer
			}
		}
	}

	// Tag each chain with whether it is the root chain before sorting, since sorting reorders the
	// slice and the root chain's identity must travel with its content, not its starting index.
	type withRoot struct {
		c      graph.Chain
		isRoot bool
	}
	tagged := make([]withRoot, len(chains))
	for i, c := range chains {
		tagged[i] = withRoot{c: c, isRoot: i == rootChain}
	}
	sort.SliceStable(tagged, func(i, j int) bool {
		a, b := tagged[i], tagged[j]
		if a.isRoot != b.isRoot {
			return a.isRoot
		}
		if len(a.c.Nodes) != len(b.c.Nodes) {
			return len(a.c.Nodes) > len(b.c.Nodes)
		}
		return g.Node(a.c.Nodes[0]).Name < g.Node(b.c.Nodes[0]).Name
	})
	for i := range chains {
		chains[i] = tagged[i].c
	}
}
