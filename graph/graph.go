// Package graph provides the mutable graph data model the layout core operates on: nodes, edges,
// attribute maps and the layout-populated fields (rank, position, offset) spec.md §3 describes.
//
// Nodes and edges live in arenas owned by the [Graph] and are addressed by stable integer handles
// ([NodeHandle], [EdgeHandle]) rather than pointers, so grid cells can reference them without
// pinning the graph's memory layout and without the back-pointer cycles a pointer-based AST would
// need. A fresh Graph starts its handle counters at zero, which keeps layout deterministic across
// runs on equal inputs (spec.md §5 "Ordering guarantees").
package graph

import "fmt"

// Node is a vertex of the graph. Name and Label are set at construction time; Rank, X, Y, CX, CY
// and ChainID are populated by the layout core and are meaningless before layout runs.
type Node struct {
	ID    NodeHandle
	Name  string // unique identifier
	Label string // display text, defaults to Name
	Attrs NodeAttrs

	// Populated during layout.
	Rank    int // signed rank, see internal/rank
	X, Y    int
	CX, CY  int // grid footprint in columns/rows
	ChainID int // index into Graph.Chains, -1 if unassigned
	Placed  bool
}

// Edge is a directed reference from Source to Target. Style, Arrow and Direction are opaque to
// layout: the router and placer never branch on them. Offset and Routed are populated by the
// layout core.
type Edge struct {
	ID        EdgeHandle
	Source    NodeHandle
	Target    NodeHandle
	Label     string
	Style     EdgeStyle
	Arrow     ArrowStyle
	Direction EdgeDirection
	Attrs     EdgeAttrs

	// Populated during layout.
	Offset int // parallel-edge separation, 0 for the single-edge case
	Routed bool
}

// IsSelfLoop reports whether the edge's source and target are the same node.
func (e *Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}

// MinLen returns the edge's minimum grid-distance hint, defaulting to 2 (spec.md §6) when unset.
func (e *Edge) MinLen() int {
	if e.Attrs.MinLen != nil {
		return *e.Attrs.MinLen
	}
	return 2
}

// Chain is a maximal linear sequence of nodes built by [spec.md §4.2]'s ChainDetector. Index is
// this chain's position in the graph's global chain ordering.
type Chain struct {
	Nodes []NodeHandle
	Index int
}

// Graph is a directed-by-default collection of nodes and edges plus graph-level attributes and
// optional named groups. The zero value is not usable; construct with [NewGraph].
type Graph struct {
	Directed bool
	Attrs    GraphAttrs

	nodes     []Node
	edges     []Edge
	nodeIndex map[string]NodeHandle
	groups    map[string][]NodeHandle

	// Chains is populated by the ChainDetector and consumed by the ActionPlanner and Executor. It
	// is exported because it is as much a part of the layout's intermediate state as Node.Rank is.
	Chains []Chain

	anonCounter int
}

// NewGraph creates an empty graph. directed sets the default reading of the graph's edges;
// individual edges may still override their own [EdgeDirection].
func NewGraph(directed bool) *Graph {
	return &Graph{
		Directed:  directed,
		nodeIndex: make(map[string]NodeHandle),
	}
}

// AddNode creates a new node with the given unique name. Name defaults as the node's Label. It is
// an error to add two nodes with the same name.
func (g *Graph) AddNode(name string) (*Node, error) {
	if _, exists := g.nodeIndex[name]; exists {
		return nil, fmt.Errorf("node %q already exists", name)
	}
	return g.addNode(name, name), nil
}

// AddAnonymousNode creates a node with a blank label and a synthetic, graph-unique name.
// Anonymous nodes are otherwise ordinary (spec.md §3).
func (g *Graph) AddAnonymousNode() *Node {
	for {
		name := fmt.Sprintf("%%anon%d", g.anonCounter)
		g.anonCounter++
		if _, exists := g.nodeIndex[name]; !exists {
			return g.addNode(name, "")
		}
	}
}

func (g *Graph) addNode(name, label string) *Node {
	h := NodeHandle(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		ID:      h,
		Name:    name,
		Label:   label,
		ChainID: -1,
	})
	g.nodeIndex[name] = h
	return &g.nodes[h]
}

// Node returns the node addressed by h. h must be a handle previously returned for this graph.
func (g *Graph) Node(h NodeHandle) *Node {
	return &g.nodes[h]
}

// NodeByName looks up a node by its unique name.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	h, ok := g.nodeIndex[name]
	if !ok {
		return nil, false
	}
	return &g.nodes[h], true
}

// Nodes returns every node handle in stable insertion order.
func (g *Graph) Nodes() []NodeHandle {
	handles := make([]NodeHandle, len(g.nodes))
	for i := range g.nodes {
		handles[i] = NodeHandle(i)
	}
	return handles
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// AddEdge creates a directed edge from src to dst, both identified by name. The edge's Direction
// defaults to EdgeDirected if the graph is directed, EdgeUndirected otherwise.
func (g *Graph) AddEdge(src, dst string) (*Edge, error) {
	s, ok := g.nodeIndex[src]
	if !ok {
		return nil, fmt.Errorf("source node %q does not exist", src)
	}
	t, ok := g.nodeIndex[dst]
	if !ok {
		return nil, fmt.Errorf("target node %q does not exist", dst)
	}
	return g.AddEdgeH(s, t), nil
}

// AddEdgeH creates a directed edge between two node handles. Unlike [Graph.AddEdge] it cannot
// fail: handles are assumed valid.
func (g *Graph) AddEdgeH(src, dst NodeHandle) *Edge {
	dir := EdgeUndirected
	if g.Directed {
		dir = EdgeDirected
	}
	h := EdgeHandle(len(g.edges))
	g.edges = append(g.edges, Edge{
		ID:        h,
		Source:    src,
		Target:    dst,
		Direction: dir,
	})
	return &g.edges[h]
}

// Edge returns the edge addressed by h.
func (g *Graph) Edge(h EdgeHandle) *Edge {
	return &g.edges[h]
}

// Edges returns every edge handle in stable insertion order.
func (g *Graph) Edges() []EdgeHandle {
	handles := make([]EdgeHandle, len(g.edges))
	for i := range g.edges {
		handles[i] = EdgeHandle(i)
	}
	return handles
}

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// OutEdges returns, in stable insertion order, the handles of every edge whose Source is n.
func (g *Graph) OutEdges(n NodeHandle) []EdgeHandle {
	var out []EdgeHandle
	for i := range g.edges {
		if g.edges[i].Source == n {
			out = append(out, EdgeHandle(i))
		}
	}
	return out
}

// InEdges returns, in stable insertion order, the handles of every edge whose Target is n.
func (g *Graph) InEdges(n NodeHandle) []EdgeHandle {
	var in []EdgeHandle
	for i := range g.edges {
		if g.edges[i].Target == n {
			in = append(in, EdgeHandle(i))
		}
	}
	return in
}

// Successors returns the unique set of nodes n has a non-self-loop outgoing edge to, in stable
// order of first occurrence.
func (g *Graph) Successors(n NodeHandle) []NodeHandle {
	seen := make(map[NodeHandle]bool)
	var out []NodeHandle
	for _, eh := range g.OutEdges(n) {
		e := &g.edges[eh]
		if e.IsSelfLoop() || seen[e.Target] {
			continue
		}
		seen[e.Target] = true
		out = append(out, e.Target)
	}
	return out
}

// AddToGroup adds a node to a named group, creating the group if needed.
func (g *Graph) AddToGroup(group string, n NodeHandle) {
	if g.groups == nil {
		g.groups = make(map[string][]NodeHandle)
	}
	g.groups[group] = append(g.groups[group], n)
}

// Groups returns the graph's named groups.
func (g *Graph) Groups() map[string][]NodeHandle {
	return g.groups
}

// ParallelBundle returns the handles, in stable insertion order, of every edge sharing the same
// unordered endpoint pair as e (including e itself).
func (g *Graph) ParallelBundle(e EdgeHandle) []EdgeHandle {
	edge := &g.edges[e]
	a, b := edge.Source, edge.Target
	var bundle []EdgeHandle
	for i := range g.edges {
		o := &g.edges[i]
		if (o.Source == a && o.Target == b) || (o.Source == b && o.Target == a) {
			bundle = append(bundle, EdgeHandle(i))
		}
	}
	return bundle
}
