package graph

// NodeHandle is a stable arena index identifying a [Node] within a [Graph]. Cells in the grid
// package store handles rather than pointers, so a handle stays valid and comparable across the
// mutation that happens during layout.
type NodeHandle int

// InvalidNode is the sentinel for an unset NodeHandle.
const InvalidNode NodeHandle = -1

// EdgeHandle is a stable arena index identifying an [Edge] within a [Graph].
type EdgeHandle int

// InvalidEdge is the sentinel for an unset EdgeHandle.
const InvalidEdge EdgeHandle = -1
