// Package rank implements the RankAssigner (spec.md §4.1): it assigns every node a signed
// integer rank such that, for every non-self-loop edge (u, v) not part of a cycle,
// |rank(v)| > |rank(u)|.
package rank

import "github.com/asciigraph/layout/graph"

// Assign assigns a rank to every node in g. It never fails: cycles are handled by the island
// seeding fallback at the end of the algorithm (spec.md §4.1 "Failure semantics").
func Assign(g *graph.Graph) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}

	ranked := make(map[graph.NodeHandle]bool, len(nodes))
	root := chooseRoot(g, nodes)

	var pq minHeap
	seed := func(n graph.NodeHandle, r int) {
		if ranked[n] {
			return
		}
		g.Node(n).Rank = r
		ranked[n] = true
		pq.Push(n, r)
	}

	seed(root, -1)
	for _, n := range nodes {
		if n == root || ranked[n] {
			continue
		}
		if len(nonSelfLoopInEdges(g, n)) == 0 {
			seed(n, -1)
		}
	}

	// Seed user-declared ranks. A node with both zero in-degree and a user rank keeps its -1 seed
	// above: the priority queue processes whichever seeded first, which is deterministic because
	// Go map iteration is not used here — nodes are walked in stable order.
	for _, n := range nodes {
		if ranked[n] {
			continue
		}
		if r := g.Node(n).Attrs.Rank; r != nil {
			seed(n, *r)
		}
	}

	drain(g, &pq, ranked)

	// Fallback: any remaining unranked nodes are disconnected islands, seeded one at a time.
	for _, n := range nodes {
		if ranked[n] {
			continue
		}
		seed(n, -1)
		drain(g, &pq, ranked)
	}
}

// drain pops the queue until empty, assigning rank-1 to each yet-unranked successor and
// enqueueing it in turn.
func drain(g *graph.Graph, pq *minHeap, ranked map[graph.NodeHandle]bool) {
	for pq.Len() > 0 {
		popped := pq.Pop()
		u := popped.node
		r := g.Node(u).Rank
		for _, v := range g.Successors(u) {
			if ranked[v] {
				continue
			}
			g.Node(v).Rank = r - 1
			ranked[v] = true
			pq.Push(v, r-1)
		}
	}
}

// chooseRoot picks, in order of preference: the node with a truthy "root" node attribute, the
// first node with zero non-self-loop in-edges, or the first node in stable iteration order.
func chooseRoot(g *graph.Graph, nodes []graph.NodeHandle) graph.NodeHandle {
	rootName := g.Attrs.Root
	for _, n := range nodes {
		node := g.Node(n)
		if rootName != "" && node.Name == rootName {
			return n
		}
		if node.Attrs.RootFlag {
			return n
		}
	}
	for _, n := range nodes {
		if len(nonSelfLoopInEdges(g, n)) == 0 {
			return n
		}
	}
	return nodes[0]
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

// absInt returns the absolute value of n.
func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// item is a priority queue entry ordered by |rank|, min-first.
type item struct {
	node graph.NodeHandle
	rank int
}

// minHeap is a concrete-typed min-heap ordered by |rank|, the same sift-up/sift-down shape as
// azybler-map_router's routing.MinHeap, which avoids the interface-boxing overhead of
// container/heap for a type this small and this hot.
type minHeap struct {
	items []item
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(n graph.NodeHandle, r int) {
	h.items = append(h.items, item{node: n, rank: r})
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
		if absInt(h.items[i].rank) >= absInt(h.items[parent].rank) {
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
		if left < n && absInt(h.items[left].rank) < absInt(h.items[smallest].rank) {
			smallest = left
		}
		if right < n && absInt(h.items[right].rank) < absInt(h.items[smallest].rank) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
