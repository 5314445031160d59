// Command layoutdemo runs the orthogonal layout engine against a couple of graphs built directly
// via the graph package API and prints the rendered result. It exists only to exercise the
// pipeline end to end (spec.md §1 excludes textual input parsing and final rasterization); it is
// not part of the core this module implements.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/asciigraph/layout"
	"github.com/asciigraph/layout/graph"
	"github.com/asciigraph/layout/internal/version"
	"github.com/asciigraph/layout/render"
)

func main() {
	if err := run(os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(args []string, w io.Writer, wErr io.Writer) error {
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.SetOutput(wErr)
	showVersion := flags.Bool("version", false, "print the layoutdemo version and exit")
	graphName := flags.String("graph", "diamond", "the built-in demo graph to render: 'diamond', 'chain' or 'cyclic'")

	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(w, version.Version())
		return nil
	}

	g, err := buildGraph(*graphName)
	if err != nil {
		return err
	}

	result, err := layout.Layout(g, layout.DefaultConfig())
	if err != nil {
		return fmt.Errorf("layout %q: %w", *graphName, err)
	}

	return render.Render(g, result.Grid, w)
}

// buildGraph constructs one of a few illustrative demo graphs. There is no textual graph format in
// this module (spec.md §1); a real caller builds a *graph.Graph with its own front end and calls
// layout.Layout directly, which is exactly what this function does by hand.
func buildGraph(name string) (*graph.Graph, error) {
	switch name {
	case "diamond":
		return diamondGraph()
	case "chain":
		return chainGraph()
	case "cyclic":
		return cyclicGraph()
	default:
		return nil, fmt.Errorf("unknown demo graph %q: want 'diamond', 'chain' or 'cyclic'", name)
	}
}

func diamondGraph() (*graph.Graph, error) {
	g := graph.NewGraph(true)
	names := []string{"start", "left", "right", "end"}
	nodes := make(map[string]graph.NodeHandle, len(names))
	for _, n := range names {
		node, err := g.AddNode(n)
		if err != nil {
			return nil, err
		}
		nodes[n] = node.ID
	}
	g.AddEdgeH(nodes["start"], nodes["left"])
	g.AddEdgeH(nodes["start"], nodes["right"])
	g.AddEdgeH(nodes["left"], nodes["end"])
	g.AddEdgeH(nodes["right"], nodes["end"])
	return g, nil
}

func chainGraph() (*graph.Graph, error) {
	g := graph.NewGraph(true)
	names := []string{"fetch", "parse", "render", "write"}
	prev := graph.InvalidNode
	for _, n := range names {
		node, err := g.AddNode(n)
		if err != nil {
			return nil, err
		}
		if prev != graph.InvalidNode {
			g.AddEdgeH(prev, node.ID)
		}
		prev = node.ID
	}
	return g, nil
}

func cyclicGraph() (*graph.Graph, error) {
	g := graph.NewGraph(true)
	names := []string{"idle", "running", "done"}
	nodes := make(map[string]graph.NodeHandle, len(names))
	for _, n := range names {
		node, err := g.AddNode(n)
		if err != nil {
			return nil, err
		}
		nodes[n] = node.ID
	}
	g.AddEdgeH(nodes["idle"], nodes["running"])
	g.AddEdgeH(nodes["running"], nodes["done"])
	g.AddEdgeH(nodes["done"], nodes["idle"])
	return g, nil
}
