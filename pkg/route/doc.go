// Package route implements interactive wire editing on a [topo.Store].
//
// An [Engine] consumes pointer events and translates them into topology
// primitives. It has three states:
//
//	Idle ──PointerDown(wire tool)──▶ Drawing ──DoubleClick/Cancel/connect──▶ Idle
//	Idle ──PointerDown(select tool)─▶ Dragging ──PointerUp/Cancel──────────▶ Idle
//
// # Drawing
//
// Each click while drawing lays an L-shaped route from the previous point:
// the longer leg first, with a single bend (see [geom.LPath]). Clicking on
// a pin, a node or a segment connects the wire there and ends the gesture.
//
// # Dragging
//
// A drag snapshots the dragged nodes and their segments. Every pointer
// move restores the snapshot, applies the total displacement and repairs
// any diagonal segment with a bend, so the graph is orthogonal after each
// update and cancelling leaves it exactly as it was. On release, a bend
// next to a junction is replaced by sliding the junction when all of the
// junction's neighbours stay aligned.
//
// [Reroute] applies the same repair to a node moved from outside the
// engine; the pin registry uses it when components move.
package route
