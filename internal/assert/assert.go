// Package assert provides runtime assertion checking for invariants the layout core must never
// violate (spec.md §7 "Invariant violation"). A failing assertion indicates a bug in the core
// itself, not a problem with input data — input-data problems are reported as placement or
// routing exhaustion instead, never as a panic.
package assert

import "fmt"

// That panics if condition is false.
func That(condition bool, msg string, args ...any) {
	if condition {
		return
	}

	if len(args) > 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	panic(msg)
}
