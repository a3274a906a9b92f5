// Package svg draws a wire topology as an SVG image in canvas coordinates.
//
// Wires are drawn as lines, junctions as filled dots and dangling wire
// ends as small open circles. With an extraction result attached, each
// net gets its own colour and, optionally, a label at its anchor.
//
//	out := svg.Render(store,
//	    svg.WithNets(result),
//	    svg.WithPins(pins),
//	    svg.WithLabels(),
//	)
package svg

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/nets"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

const (
	wireWidth      = 2.0
	junctionRadius = 3.0
	pinSize        = 6.0
	endRadius      = 2.5
	fontSize       = 9.0

	groundColor = "#222222"
	wireColor   = "#1f4e79"
)

var palette = []string{
	"#1f77b4", "#d62728", "#2ca02c", "#9467bd",
	"#ff7f0e", "#17becf", "#8c564b", "#e377c2",
}

type Option func(*renderer)

func WithNets(res *nets.Result) Option { return func(r *renderer) { r.result = res } }
func WithPins(ps []nets.Pin) Option    { return func(r *renderer) { r.pins = ps } }
func WithLabels() Option               { return func(r *renderer) { r.labels = true } }
func WithMargin(m float64) Option      { return func(r *renderer) { r.margin = m } }

// WithScale sets the ratio of output pixels to canvas units.
func WithScale(k float64) Option {
	return func(r *renderer) {
		if k > 0 {
			r.scale = k
		}
	}
}

type renderer struct {
	result *nets.Result
	pins   []nets.Pin
	labels bool
	margin float64
	scale  float64
	colors map[string]string
}

// Render returns the SVG document for s.
func Render(s *topo.Store, opts ...Option) []byte {
	r := renderer{margin: 20, scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	r.assignColors()

	box := r.bounds(s).Inset(r.margin)
	w, h := box.Width(), box.Height()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(box.Min.X), num(box.Min.Y), num(w), num(h), w*r.scale, h*r.scale)
	fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="white"/>`+"\n",
		num(box.Min.X), num(box.Min.Y), num(w), num(h))

	r.renderWires(&buf, s)
	r.renderEnds(&buf, s)
	r.renderJunctions(&buf)
	r.renderPins(&buf)
	if r.labels {
		r.renderLabels(&buf)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) assignColors() {
	r.colors = make(map[string]string)
	if r.result == nil {
		return
	}
	i := 0
	for _, name := range r.result.NetNames {
		if name == nets.GroundNet {
			r.colors[name] = groundColor
			continue
		}
		r.colors[name] = palette[i%len(palette)]
		i++
	}
}

func (r *renderer) netOf(seg topo.Segment) (string, string) {
	if r.result == nil {
		return "", wireColor
	}
	name, ok := r.result.NetOfSegment[seg]
	if !ok {
		return "", wireColor
	}
	return name, r.colors[name]
}

func (r *renderer) bounds(s *topo.Store) geom.Rect {
	var pts []geom.Point
	for _, n := range s.Nodes() {
		pts = append(pts, n.Pos)
	}
	for _, p := range r.pins {
		pts = append(pts, p.Pos)
	}
	if len(pts) == 0 {
		return geom.Rect{Max: geom.Pt(100, 100)}
	}
	box := geom.Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		box = box.Union(p)
	}
	return box
}

func (r *renderer) renderWires(buf *bytes.Buffer, s *topo.Store) {
	buf.WriteString(`  <g class="wires" stroke-linecap="square">` + "\n")
	for _, seg := range s.Segments() {
		a, b := s.Endpoints(seg)
		name, color := r.netOf(seg)
		fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"`,
			num(a.X), num(a.Y), num(b.X), num(b.Y), color, num(wireWidth))
		if name != "" {
			fmt.Fprintf(buf, ` data-net="%s"`, html.EscapeString(name))
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

// renderEnds marks free nodes with a single wire, which usually indicate
// an unfinished connection.
func (r *renderer) renderEnds(buf *bytes.Buffer, s *topo.Store) {
	buf.WriteString(`  <g class="ends" fill="white" stroke="#999999">` + "\n")
	for _, n := range s.Nodes() {
		if n.Kind != topo.KindFree || s.Degree(n.ID) != 1 || r.pinAt(n.Pos, s.Eps()) {
			continue
		}
		fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s"/>`+"\n", num(n.Pos.X), num(n.Pos.Y), num(endRadius))
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) pinAt(p geom.Point, eps float64) bool {
	for _, pin := range r.pins {
		if pin.Pos.Eq(p, eps) {
			return true
		}
	}
	return false
}

func (r *renderer) renderJunctions(buf *bytes.Buffer) {
	if r.result == nil {
		return
	}
	buf.WriteString(`  <g class="junctions">` + "\n")
	for _, j := range r.result.Junctions {
		fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s" data-net="%s"/>`+"\n",
			num(j.Pos.X), num(j.Pos.Y), num(junctionRadius), r.colors[j.Net], html.EscapeString(j.Net))
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderPins(buf *bytes.Buffer) {
	if len(r.pins) == 0 {
		return
	}
	half := pinSize / 2
	fmt.Fprintf(buf, `  <g class="pins" font-family="monospace" font-size="%s">`+"\n", num(fontSize))
	for _, p := range r.pins {
		stroke := "#555555"
		if p.Ground {
			stroke = groundColor
		}
		fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s"/>`+"\n",
			num(p.Pos.X-half), num(p.Pos.Y-half), num(pinSize), num(pinSize), stroke)
		fmt.Fprintf(buf, `    <text x="%s" y="%s" fill="#555555">%s</text>`+"\n",
			num(p.Pos.X+half+1), num(p.Pos.Y-half-1), html.EscapeString(p.Ref.String()))
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderLabels(buf *bytes.Buffer) {
	if r.result == nil {
		return
	}
	fmt.Fprintf(buf, `  <g class="labels" font-family="monospace" font-size="%s" font-weight="bold">`+"\n", num(fontSize))
	for _, n := range r.result.Nets {
		fmt.Fprintf(buf, `    <text x="%s" y="%s" fill="%s">%s</text>`+"\n",
			num(n.Anchor.X+2), num(n.Anchor.Y+fontSize+2), r.colors[n.Name], html.EscapeString(n.Name))
	}
	buf.WriteString("  </g>\n")
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
