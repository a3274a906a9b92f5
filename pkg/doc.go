// Package pkg provides the core libraries of wiregraph, a wire topology and
// net extraction engine for schematic capture.
//
// # Overview
//
// A schematic's wires are kept as a graph of nodes and axis-aligned
// segments. Editing gestures change that graph, a cleanup pass keeps it
// minimal, and net extraction turns it into the electrical connectivity
// a netlister or simulator needs:
//
//	pointer input / snapshot file
//	         ↓
//	    [route] (wire drawing, dragging, diagonal repair)
//	         ↓
//	    [topo] store  ←  [pins] registry (component pins)
//	         ↓
//	    [topo/cleanup] (merge, drop, collapse until stable)
//	         ↓
//	    [nets] (connectivity, junctions, net names)
//	         ↓
//	    text / JSON / SVG / DOT / PNG / PDF
//
// # Quick Start
//
//	s := topo.New(geom.Eps)
//	a := s.AddNode(geom.Pt(0, 0))
//	b := s.AddNode(geom.Pt(100, 0))
//	s.AddSegment(a, b)
//	cleanup.Run(s)
//
//	res := nets.Extract(s, pins, nets.Options{GridUnit: 10})
//	for _, n := range res.Nets {
//	    fmt.Println(n.Name, n.Pins)
//	}
//
// # Main Packages
//
// ## Topology
//
// [geom] - Points, tolerance comparison, snapping, segment projection and
// L-shaped routes.
//
// [topo] - The node and segment store with hit testing, splitting and
// merging. Every mutation marks the store dirty.
//
// [topo/cleanup] - The normalisation fixpoint: coincident nodes merge,
// zero-length segments drop, pass-through nodes collapse.
//
// ## Editing
//
// [route] - The interaction state machine (idle, drawing, dragging) that
// turns pointer events into topology edits.
//
// [pins] - Component placements and the registry that keeps pin nodes in
// step with them.
//
// [editor] - One editing session: store, engine and registry wired
// together, with cached net extraction.
//
// ## Connectivity
//
// [nets] - Net extraction by geometry (wires touching anywhere connect) or
// by shared nodes only, with deterministic naming.
//
// ## Serialization and Output
//
// [io] - The JSON snapshot format and its canonical encoding.
//
// [render] - SVG and Graphviz drawings, PDF and PNG conversion.
//
// ## Infrastructure
//
// [pipeline] - parse → cleanup → extract → render, used by the CLI and the
// HTTP API alike. Results are cached by snapshot content.
//
// [cache] - Result caches: file, Redis, or none.
//
// [storage] - Document stores for snapshots: file, MongoDB, or memory.
//
// [api] - The HTTP API.
//
// [config] - TOML settings.
//
// [errors] - Coded errors with HTTP status mapping.
//
// [observability] - Hooks for cache and HTTP metrics.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/nets/...      # Specific package
//	go test -run Example ./...  # Examples only
package pkg
