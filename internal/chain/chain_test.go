package chain

import (
	"testing"

	"github.com/asciigraph/layout/graph"
	"github.com/teleivo/assertive/assert"
)

func buildGraph(t *testing.T, edges [][2]string) (*graph.Graph, map[string]graph.NodeHandle) {
	t.Helper()
	g := graph.NewGraph(true)
	nodes := make(map[string]graph.NodeHandle)
	get := func(name string) graph.NodeHandle {
		if h, ok := nodes[name]; ok {
			return h
		}
		n, err := g.AddNode(name)
		assert.NoErrorf(t, err, "AddNode(%q)", name)
		nodes[name] = n.ID
		return n.ID
	}
	for _, e := range edges {
		src := get(e[0])
		dst := get(e[1])
		g.AddEdgeH(src, dst)
	}
	return g, nodes
}

func chainNames(g *graph.Graph, c graph.Chain) []string {
	names := make([]string, len(c.Nodes))
	for i, n := range c.Nodes {
		names[i] = g.Node(n).Name
	}
	return names
}

func TestDetect(t *testing.T) {
	tests := map[string]struct {
		edges [][2]string
		root  string
		want  [][]string
	}{
		"SingleLinearChain": {
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			root:  "a",
			want:  [][]string{{"a", "b", "c"}},
		},
		"ForkPicksLongestBranch": {
			edges: [][2]string{
				{"a", "b"}, {"b", "c"}, {"c", "d"},
				{"b", "e"},
			},
			root: "a",
			want: [][]string{
				{"a", "b", "c", "d"},
				{"e"},
			},
		},
		"RootChainFirstEvenIfShorter": {
			edges: [][2]string{
				{"a", "b"},
				{"x", "y"}, {"y", "z"}, {"z", "w"},
			},
			root: "a",
			want: [][]string{
				{"a", "b"},
				{"x", "y", "z", "w"},
			},
		},
		"NonRootChainsOrderedByLengthThenName": {
			edges: [][2]string{
				{"a", "a2"},
				{"m", "n"},
				{"x", "y"}, {"y", "z"}, {"z", "w"},
			},
			root: "a",
			want: [][]string{
				{"a", "a2"},
				{"x", "y", "z", "w"},
				{"m", "n"},
			},
		},
		"SingleNode": {
			edges: nil,
			root:  "",
			want:  [][]string{{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var g *graph.Graph
			var nodes map[string]graph.NodeHandle
			if test.edges == nil {
				g = graph.NewGraph(true)
				n, err := g.AddNode("solo")
				assert.NoErrorf(t, err, "AddNode")
				nodes = map[string]graph.NodeHandle{"solo": n.ID}
				test.want = [][]string{{"solo"}}
			} else {
				g, nodes = buildGraph(t, test.edges)
			}

			root := nodes[test.root]
			if test.root == "" {
				root = nodes["solo"]
			}

			chains := Detect(g, root)

			assert.EqualValuesf(t, len(test.want), len(chains), "chain count for %s", name)
			for i, wantNames := range test.want {
				assert.EqualValuesf(t, wantNames, chainNames(g, chains[i]), "chain %d names for %s", i, name)
				assert.EqualValuesf(t, i, chains[i].Index, "chain %d Index for %s", i, name)
			}

			for _, c := range chains {
				for _, n := range c.Nodes {
					assert.EqualValuesf(t, c.Index, g.Node(n).ChainID, "ChainID stamped on node %s", g.Node(n).Name)
				}
			}
		})
	}
}

func TestDetectCoversEveryNodeExactlyOnce(t *testing.T) {
	g, nodes := buildGraph(t, [][2]string{
		{"a", "b"}, {"b", "c"}, {"b", "d"}, {"d", "e"}, {"c", "e"},
	})
	root := nodes["a"]

	chains := Detect(g, root)

	seen := make(map[graph.NodeHandle]int)
	for _, c := range chains {
		for _, n := range c.Nodes {
			seen[n]++
		}
	}
	assert.EqualValuesf(t, g.NumNodes(), len(seen), "every node appears in some chain")
	for n, count := range seen {
		assert.EqualValuesf(t, 1, count, "node %s appears in exactly one chain", g.Node(n).Name)
	}
}
