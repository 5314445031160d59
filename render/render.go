// Package render is a minimal, illustrative consumer of [grid.Grid]: it rasterizes a completed
// layout as plain text using box-drawing runes. It is explicitly not part of the layout core
// (spec.md §1 excludes "final character rasterization"); it exists so cmd/layoutdemo can show a
// layout end to end, the way a formatter's printer package exists to exercise its layout package.
package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/asciigraph/layout/graph"
	"github.com/asciigraph/layout/grid"
)

// glyph maps a ShapeClass to the box-drawing rune that depicts it, grounded on
// other_examples/..._linyows-probe__dag_ascii.go.go's connection-character table. Loop bump
// corners reuse their corresponding ordinary corner glyph: box-drawing has no tighter-radius
// corner rune, so the distinction CellType carries for a renderer with a richer glyph set
// collapses here.
func glyph(t grid.CellType) rune {
	switch t.Shape() {
	case grid.ShapeHorizontal:
		return '─'
	case grid.ShapeVertical:
		return '│'
	case grid.ShapeCross:
		return '┼'
	case grid.ShapeCornerNE, grid.ShapeLoopBumpNE:
		return '└'
	case grid.ShapeCornerNW, grid.ShapeLoopBumpNW:
		return '┘'
	case grid.ShapeCornerSE, grid.ShapeLoopBumpSE:
		return '┌'
	case grid.ShapeCornerSW, grid.ShapeLoopBumpSW:
		return '┐'
	case grid.ShapeJointNEW:
		return '┴'
	case grid.ShapeJointNWS:
		return '┤'
	case grid.ShapeJointENS:
		return '├'
	case grid.ShapeJointSEW:
		return '┬'
	case grid.ShapeShortEdge:
		return shortEdgeGlyph(t)
	default:
		return ' '
	}
}

// shortEdgeGlyph picks horizontal or vertical for the single-cell short-edge shape from the first
// of StartDir/EndDir that is set. Scout's short-edge cell sets both, along the flow axis.
func shortEdgeGlyph(t grid.CellType) rune {
	for _, d := range []grid.Direction{t.StartDir(), t.EndDir()} {
		switch d {
		case grid.DirNorth, grid.DirSouth:
			return '│'
		case grid.DirEast, grid.DirWest:
			return '─'
		}
	}
	return '─'
}

// Render rasterizes g's laid-out nodes and routed edges as plain text and writes it to w, one
// line per grid row. Node cells are filled with the node's label, one rune per cell, wrapped left
// to right then top to bottom across its footprint; a label shorter than its footprint leaves the
// remaining cells blank. Edge-cell labels are overlaid starting at their label cell and running
// rightward, possibly over neighboring glyphs for a multi-rune label: this is an illustrative
// renderer, not a text-layout engine.
func Render(g *graph.Graph, grd *grid.Grid, w io.Writer) error {
	cells := grd.All()
	if len(cells) == 0 {
		return nil
	}

	minX, minY, maxX, maxY := bounds(cells)
	width := maxX - minX + 1
	height := maxY - minY + 1

	buf := make([][]rune, height)
	for y := range buf {
		buf[y] = make([]rune, width)
		for x := range buf[y] {
			buf[y][x] = ' '
		}
	}

	for _, c := range cells {
		x, y := c.Pos.X-minX, c.Pos.Y-minY
		switch owner := c.Owner.(type) {
		case grid.NodeOwner:
			buf[y][x] = nodeGlyph(g, c.Pos, owner)
		case grid.EdgeOwner:
			buf[y][x] = glyph(owner.Type)
		}
	}

	for _, c := range cells {
		eo, ok := c.Owner.(grid.EdgeOwner)
		if !ok || !eo.Type.HasLabel() || eo.Label == "" {
			continue
		}
		y := c.Pos.Y - minY
		x := c.Pos.X - minX
		for _, r := range eo.Label {
			if x < 0 || x >= width {
				break
			}
			buf[y][x] = r
			x++
		}
	}

	out := bufio.NewWriter(w)
	for _, row := range buf {
		if _, err := fmt.Fprintln(out, string(row)); err != nil {
			return err
		}
	}
	return out.Flush()
}

// nodeGlyph returns the rune node owner's label contributes at p: the label rune at p's offset
// into the node's footprint (row-major), or a space once the label runs out.
func nodeGlyph(g *graph.Graph, p grid.Point, owner grid.NodeOwner) rune {
	n := g.Node(owner.Node)
	runes := []rune(n.Label)
	if n.CX <= 0 {
		return ' '
	}
	idx := (p.Y-n.Y)*n.CX + (p.X - n.X)
	if idx < 0 || idx >= len(runes) {
		return ' '
	}
	return runes[idx]
}

func bounds(cells []*grid.Cell) (minX, minY, maxX, maxY int) {
	minX, minY = cells[0].Pos.X, cells[0].Pos.Y
	maxX, maxY = minX, minY
	for _, c := range cells {
		if c.Pos.X < minX {
			minX = c.Pos.X
		}
		if c.Pos.X > maxX {
			maxX = c.Pos.X
		}
		if c.Pos.Y < minY {
			minY = c.Pos.Y
		}
		if c.Pos.Y > maxY {
			maxY = c.Pos.Y
		}
	}
	return
}
