// Package topo provides the orthogonal wire graph behind the schematic
// editor: a store of nodes (points) and segments (axis-aligned edges) with
// the add, remove, query, split and merge primitives the routing engine and
// pin registry build on.
//
// # Basic Usage
//
// Create a store with [New], place nodes with [Store.AddNode] and join them
// with [Store.AddSegment]:
//
//	s := topo.New(0)
//	a := s.AddNode(geom.Pt(0, 0))
//	b := s.AddNode(geom.Pt(40, 0))
//	s.AddSegment(a, b)
//
// AddNode deduplicates: asking for a node at an occupied point returns the
// existing ID. Segments are identified by their endpoint pair ([Segment]),
// so a second AddSegment between the same nodes is a no-op.
//
// # Node Kinds
//
//   - [KindFree]: vertices placed by the user
//   - [KindBend]: vertices inserted to keep segments axis-aligned
//   - [KindPin]: vertices slaved to a component pin ([PinRef])
//
// # Failure Semantics
//
// Mutations never panic and never partially apply. Unknown IDs, self-loops
// and duplicate segments make the call a no-op that returns false or a zero
// value. This lets callers try an edit and inspect the result rather than
// pre-validating every step.
//
// # Dirty Tracking
//
// Every successful mutation sets a dirty flag and bumps [Store.Version].
// Consumers of derived state (the net extractor) recompute only when
// [Store.Dirty] reports a change, then call [Store.MarkClean].
//
// # Related Packages
//
// The [cleanup] subpackage normalises a store after structural edits:
// coincident nodes are merged, zero-length segments dropped and collinear
// pass-through nodes collapsed.
//
// [cleanup]: github.com/matzehuels/wiregraph/pkg/topo/cleanup
package topo
