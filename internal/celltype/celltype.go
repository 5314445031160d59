// Package celltype implements the CellTyper (spec.md §4.5): a pure lookup from the direction a
// path entered and left a cell to that cell's [grid.ShapeClass]. The lookup is total — every
// (in, out) pair including the boundary cases (path start, path end) maps to exactly one shape.
//
// The four-flag-to-glyph shape of the table is grounded on
// other_examples' linyows-probe dag_ascii.go flagsToChar, which maps the same
// from-above/to-below/from-left/to-right combinations to box-drawing runes; this package
// generalizes that switch from a fixed "above/below" grid flow to all four directions and adds the
// loop-bump and short-edge variants a straight-line DAG renderer never needs.
package celltype

import "github.com/asciigraph/layout/grid"

// FromDirections returns the shape class of a cell entered from in and left towards out. Either
// direction may be grid.DirNone: at a path's first cell there is no "in", and at its last cell
// there is no "out" (spec.md §4.5 "Boundary cases" — both ends still render as a definite shape,
// never as blank).
func FromDirections(in, out grid.Direction) grid.ShapeClass {
	if in == grid.DirNone && out == grid.DirNone {
		return grid.ShapeShortEdge
	}
	if in == grid.DirNone {
		return fromSingleDirection(out)
	}
	if out == grid.DirNone {
		return fromSingleDirection(in)
	}
	if in == out {
		// A path cannot enter and continue in the same direction through a distinct shape; this
		// only arises from a degenerate zero-length step, which Scout never emits.
		return fromSingleDirection(in)
	}
	if in == out.Opposite() {
		return straight(in)
	}
	return corner(in, out)
}

// fromSingleDirection handles path endpoints: a single direction determines an end-cap shape,
// which renders as the straight shape aligned with that direction (spec.md §4.5).
func fromSingleDirection(d grid.Direction) grid.ShapeClass {
	switch d {
	case grid.DirNorth, grid.DirSouth:
		return grid.ShapeVertical
	case grid.DirEast, grid.DirWest:
		return grid.ShapeHorizontal
	default:
		return grid.ShapeShortEdge
	}
}

func straight(d grid.Direction) grid.ShapeClass {
	switch d {
	case grid.DirNorth, grid.DirSouth:
		return grid.ShapeVertical
	default:
		return grid.ShapeHorizontal
	}
}

// corner returns the right-angle shape joining in and out, which are known to be perpendicular
// and distinct at this point.
func corner(in, out grid.Direction) grid.ShapeClass {
	set := map[grid.Direction]bool{in: true, out: true}
	switch {
	case set[grid.DirNorth] && set[grid.DirEast]:
		return grid.ShapeCornerNE
	case set[grid.DirNorth] && set[grid.DirWest]:
		return grid.ShapeCornerNW
	case set[grid.DirSouth] && set[grid.DirEast]:
		return grid.ShapeCornerSE
	default: // south, west
		return grid.ShapeCornerSW
	}
}

// LoopBump returns the self-loop bump shape class for a bump whose arc bulges towards corner
// direction pair (a, b), used by Scout's fixed five-cell self-loop routing (spec.md §4.5).
func LoopBump(a, b grid.Direction) grid.ShapeClass {
	set := map[grid.Direction]bool{a: true, b: true}
	switch {
	case set[grid.DirNorth] && set[grid.DirEast]:
		return grid.ShapeLoopBumpNE
	case set[grid.DirNorth] && set[grid.DirWest]:
		return grid.ShapeLoopBumpNW
	case set[grid.DirSouth] && set[grid.DirEast]:
		return grid.ShapeLoopBumpSE
	default:
		return grid.ShapeLoopBumpSW
	}
}

// Joint returns the three-way joint shape open towards the three given directions (spec.md §4.5
// joint cases). internal/scout calls this when an A*-routed cell crosses a cell a different edge
// already owns and exactly three directions are open across both paths, merging the new path's own
// direction pair with the existing cell's stored StartDir/EndDir.
func Joint(dirs ...grid.Direction) grid.ShapeClass {
	open := map[grid.Direction]bool{}
	for _, d := range dirs {
		open[d] = true
	}
	switch {
	case !open[grid.DirSouth]:
		return grid.ShapeJointNEW
	case !open[grid.DirEast]:
		return grid.ShapeJointNWS
	case !open[grid.DirWest]:
		return grid.ShapeJointENS
	default:
		return grid.ShapeJointSEW
	}
}
