// Package render draws wire topologies.
//
// Two renderers live in subpackages:
//
//   - [svg] writes the schematic directly as SVG: wires, junction dots,
//     pin markers and optional net labels, in canvas coordinates.
//   - [dot] emits Graphviz DOT with every node pinned to its canvas
//     position and renders it in-process with go-graphviz.
//
// This package converts SVG output to PDF or PNG through the external
// rsvg-convert tool:
//
//	out := svg.Render(store, svg.WithNets(result))
//	png, err := render.ToPNG(ctx, out, 2.0)
package render
