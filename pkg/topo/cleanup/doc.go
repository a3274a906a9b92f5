// Package cleanup normalises a wire graph after structural edits.
//
// # Overview
//
// Interactive editing leaves debris behind: a wire drawn onto an existing
// vertex creates a second node at the same point, a drag can fold a
// segment down to zero length, a wire that doubles back lies on top of
// itself, and straight runs accumulate vertices that no longer turn a
// corner. [Run] removes all of it, to a fixpoint:
//
//   - [MergeCoincident] folds nodes at the same point into one
//   - [DropZeroLength] deletes segments whose endpoints coincide
//   - [SplitOverlaps] cuts back segments that retrace a shorter one
//   - [CollapseCollinear] removes straight pass-through vertices
//
// Pin nodes are special throughout. A merge involving a pin keeps the pin,
// and a pin is never collapsed even when two wires pass straight through
// it, so components keep a stable connection point.
//
// # Usage
//
//	stats := cleanup.Run(store)
//	if stats.Changed() {
//	    // topology was simplified
//	}
//
// The passes can also be applied individually; they are idempotent on
// their own output.
package cleanup
