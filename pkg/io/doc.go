// Package io provides JSON import and export for wire graph snapshots.
//
// # Overview
//
// A snapshot is the persisted form of a schematic's wiring: the nodes and
// segments of a [topo.Store], optionally together with the components whose
// pins the wires attach to. Nets are never stored; they are derived again
// after import.
//
// # JSON Format
//
//	{
//	  "nodes": [
//	    {"id": 1, "x": 0,  "y": 0, "flags": 2, "component": "R1", "pin": "2"},
//	    {"id": 2, "x": 40, "y": 0, "flags": 0}
//	  ],
//	  "segments": [
//	    {"id": 1, "nodeA": 1, "nodeB": 2}
//	  ],
//	  "components": [
//	    {"id": "R1", "origin": {"x": -20, "y": 0}, "pins": [...]}
//	  ]
//	}
//
// # Node Flags
//
//   - 1 ([FlagBend]): the node is a bend inserted for orthogonality
//   - 2 ([FlagPin]): the node anchors the pin named by component and pin
//
// A node with neither flag is a free wire vertex.
//
// # Round Trip
//
// [ReadJSON] allocates fresh node IDs, so IDs in the file and IDs in the
// decoded store may differ. The topology is preserved exactly: the same
// positions, kinds and adjacency. Coincident nodes in the file stay
// distinct until the next cleanup.
//
// # Import and Export
//
//	doc, err := io.ImportJSON("board.json", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.ExportJSON(doc, "copy.json")
package io
