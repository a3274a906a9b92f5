// Package dot exports wire topologies as Graphviz DOT and renders them with
// go-graphviz.
//
// Every node is emitted with a pinned position (pos="x,y!"), and the graph
// is laid out with neato in no-op mode, so Graphviz only draws: wires stay
// exactly where the editor put them. Graphviz has y pointing up, canvas
// coordinates have y pointing down, so y is negated on the way out.
//
//	src := dot.ToDOT(store, dot.Options{Result: res, Pins: pins})
//	svg, err := dot.RenderSVG(ctx, src)
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wiregraph/pkg/nets"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// Options configures DOT generation.
type Options struct {
	// Result colours wires by net and adds junction dots. Optional.
	Result *nets.Result
	// Pins are drawn as labelled boxes. Optional.
	Pins []nets.Pin
	// Scale converts canvas units to points; 0 means 1.
	Scale float64
	// Labels attaches the net name to the first wire of every net.
	Labels bool
}

var palette = []string{"#1f77b4", "#d62728", "#2ca02c", "#9467bd", "#ff7f0e", "#17becf"}

// ToDOT converts the topology of s to an undirected DOT graph.
func ToDOT(s *topo.Store, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	pos := func(x, y float64) string {
		return fmt.Sprintf("%s,%s!", fmtNum(x*scale), fmtNum(-y*scale))
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=point, width=0.02, label=\"\"];\n")
	buf.WriteString("  edge [penwidth=2, color=\"#1f4e79\"];\n")
	buf.WriteString("\n")

	var js []nets.Junction
	if opts.Result != nil {
		js = opts.Result.Junctions
	}
	junctions := make(map[string]nets.Junction, len(js))
	for _, j := range js {
		junctions[j.Pos.String()] = j
	}
	colors := netColors(opts.Result)

	for _, n := range s.Nodes() {
		attrs := []string{fmt.Sprintf("pos=%q", pos(n.Pos.X, n.Pos.Y))}
		if j, ok := junctions[n.Pos.String()]; ok {
			attrs = append(attrs, "width=0.08", fmt.Sprintf("color=%q", colors[j.Net]))
			delete(junctions, n.Pos.String())
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(n.ID), strings.Join(attrs, ", "))
	}
	// Junctions formed by crossing wires have no node of their own.
	i := 0
	for _, j := range js {
		if _, pending := junctions[j.Pos.String()]; !pending {
			continue
		}
		fmt.Fprintf(&buf, "  j%d [pos=%q, width=0.08, color=%q];\n", i, pos(j.Pos.X, j.Pos.Y), colors[j.Net])
		i++
	}
	for i, p := range opts.Pins {
		fmt.Fprintf(&buf, "  p%d [pos=%q, shape=box, width=0.1, height=0.1, xlabel=%q, fontsize=8];\n",
			i, pos(p.Pos.X, p.Pos.Y), p.Ref.String())
	}

	buf.WriteString("\n")
	labelled := make(map[string]bool)
	for _, seg := range s.Segments() {
		attrs := []string{}
		if opts.Result != nil {
			if name, ok := opts.Result.NetOfSegment[seg]; ok {
				attrs = append(attrs, fmt.Sprintf("color=%q", colors[name]))
				if opts.Labels && !labelled[name] {
					attrs = append(attrs, fmt.Sprintf("xlabel=%q", name), "fontsize=8")
					labelled[name] = true
				}
			}
		}
		line := fmt.Sprintf("  %s -- %s", nodeName(seg.A), nodeName(seg.B))
		if len(attrs) > 0 {
			line += " [" + strings.Join(attrs, ", ") + "]"
		}
		buf.WriteString(line + ";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id topo.NodeID) string { return "n" + strconv.Itoa(int(id)) }

func netColors(res *nets.Result) map[string]string {
	colors := make(map[string]string)
	if res == nil {
		return colors
	}
	i := 0
	for _, name := range res.NetNames {
		if name == nets.GroundNet {
			colors[name] = "black"
			continue
		}
		colors[name] = palette[i%len(palette)]
		i++
	}
	return colors
}

func fmtNum(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT source produced by [ToDOT] to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, which carries
// absolute sizes in points, with one that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
