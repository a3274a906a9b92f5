package nets

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/bits"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/observability"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// Options tune an extraction.
type Options struct {
	// GridUnit is the routing grid unit; defaults to 10.
	GridUnit float64
	// CellFactor sets the spatial index cell size as a multiple of
	// GridUnit; defaults to 2.
	CellFactor float64
	// NodeOnly connects wires only where they share a node, ignoring
	// crossings, overlaps and pins lying on a wire.
	NodeOnly bool
	// Logger receives debug output and warnings; nil uses log.Default().
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.GridUnit <= 0 {
		o.GridUnit = 10
	}
	if o.CellFactor <= 0 {
		o.CellFactor = 2
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Extract computes the nets of s with the given pins attached.
func Extract(s *topo.Store, pins []Pin, opts Options) *Result {
	return ExtractContext(context.Background(), s, pins, opts)
}

// ExtractContext is [Extract] with a context for observability hooks.
//
// In the default geometric mode every segment endpoint, every crossing or
// overlap boundary between two segments and every pin lying on a segment
// becomes a point of a union-find forest; each segment unites all points
// on it. Wires therefore connect wherever they touch, whether or not they
// share a node. Each resulting group holding at least one segment, or at
// least two pins, is a net. Nets containing a ground pin are named "0";
// the rest are numbered N001, N002, ... from the leftmost, then topmost,
// point of each net.
func ExtractContext(ctx context.Context, s *topo.Store, pins []Pin, opts Options) *Result {
	opts = opts.withDefaults()
	hooks := observability.Extract()
	hooks.OnExtractStart(ctx, s.SegmentCount(), len(pins))
	start := time.Now()

	var clusters []*cluster
	if opts.NodeOnly {
		clusters = byNode(s, pins)
	} else {
		clusters = byGeometry(s, pins, opts.GridUnit*opts.CellFactor)
	}
	res := assemble(clusters)

	hooks.OnExtractComplete(ctx, len(res.Nets), len(res.Junctions), time.Since(start), nil)
	opts.Logger.Debug("nets extracted",
		"segments", s.SegmentCount(),
		"pins", len(pins),
		"nets", len(res.Nets),
		"junctions", len(res.Junctions),
		"node_only", opts.NodeOnly)
	for _, w := range res.Warnings {
		opts.Logger.Warn(w.Message, "code", w.Code)
	}
	return res
}

// cluster collects everything that ended up under one union-find root.
type cluster struct {
	segs      []topo.Segment
	pins      []Pin
	junctions []geom.Point
	anchor    geom.Point
	anchored  bool
}

func (c *cluster) extend(p geom.Point) {
	if !c.anchored || p.X < c.anchor.X || p.X == c.anchor.X && p.Y < c.anchor.Y {
		c.anchor, c.anchored = p, true
	}
}

type key struct{ x, y int64 }

type wire struct {
	seg  topo.Segment
	a, b geom.Point
	pts  []key
}

// Directions leaving a point along a wire.
const (
	dirLeft uint8 = 1 << iota
	dirRight
	dirUp
	dirDown
)

// dirsAt returns the directions w extends in from p.
func (w *wire) dirsAt(p geom.Point, eps float64) uint8 {
	var d uint8
	switch geom.AxisOf(w.a, w.b, eps) {
	case geom.Horizontal:
		lo, hi := min(w.a.X, w.b.X), max(w.a.X, w.b.X)
		if p.X > lo+eps {
			d |= dirLeft
		}
		if p.X < hi-eps {
			d |= dirRight
		}
	case geom.Vertical:
		lo, hi := min(w.a.Y, w.b.Y), max(w.a.Y, w.b.Y)
		if p.Y > lo+eps {
			d |= dirUp
		}
		if p.Y < hi-eps {
			d |= dirDown
		}
	}
	return d
}

func byGeometry(s *topo.Store, pins []Pin, cellSize float64) []*cluster {
	eps := s.Eps()
	uf := newUnionFind[key]()
	// Points are bucketed in cells of side eps. Each cell holds at most one
	// representative; a point resolves to the representative within eps in
	// its own or a neighbouring cell, so points straddling a cell border
	// still meet.
	pos := make(map[key]geom.Point)
	register := func(p geom.Point) key {
		home := key{int64(math.Floor(p.X / eps)), int64(math.Floor(p.Y / eps))}
		if _, ok := pos[home]; ok {
			return home
		}
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				k := key{home.x + dx, home.y + dy}
				if q, ok := pos[k]; ok && q.Eq(p, eps) {
					return k
				}
			}
		}
		pos[home] = p
		uf.add(home)
		return home
	}

	segs := s.Segments()
	wires := make([]wire, len(segs))
	idx := newGrid(cellSize)
	for i, seg := range segs {
		a, b := s.Endpoints(seg)
		wires[i] = wire{seg: seg, a: a, b: b, pts: []key{register(a), register(b)}}
		idx.insert(i, geom.Bounds(a, b), eps)
	}
	for _, pr := range idx.pairs() {
		wi, wj := &wires[pr[0]], &wires[pr[1]]
		_, pts := geom.Intersect(wi.a, wi.b, wj.a, wj.b, eps)
		for _, p := range pts {
			k := register(p)
			wi.pts = append(wi.pts, k)
			wj.pts = append(wj.pts, k)
		}
	}

	pinKeys := make([]key, len(pins))
	for i, pin := range pins {
		k := register(pin.Pos)
		pinKeys[i] = k
		for _, wi := range idx.near(pin.Pos, eps) {
			w := &wires[wi]
			if geom.OnSegment(pin.Pos, w.a, w.b, eps) {
				w.pts = append(w.pts, k)
			}
		}
	}

	dirs := make(map[key]uint8)
	for i := range wires {
		w := &wires[i]
		for _, k := range w.pts[1:] {
			uf.union(w.pts[0], k)
		}
		for _, k := range w.pts {
			dirs[k] |= w.dirsAt(pos[k], eps)
		}
	}

	byRoot := make(map[key]*cluster)
	get := func(k key) *cluster {
		r := uf.find(k)
		c, ok := byRoot[r]
		if !ok {
			c = &cluster{}
			byRoot[r] = c
		}
		return c
	}
	for _, w := range wires {
		c := get(w.pts[0])
		c.segs = append(c.segs, w.seg)
		c.extend(w.a)
		c.extend(w.b)
	}
	for i, pin := range pins {
		c := get(pinKeys[i])
		c.pins = append(c.pins, pin)
		c.extend(pin.Pos)
	}
	for k, d := range dirs {
		if bits.OnesCount8(d) >= 3 {
			c := get(k)
			c.junctions = append(c.junctions, pos[k])
		}
	}

	out := make([]*cluster, 0, len(byRoot))
	for _, c := range byRoot {
		out = append(out, c)
	}
	return out
}

func byNode(s *topo.Store, pins []Pin) []*cluster {
	uf := newUnionFind[topo.NodeID]()
	for _, seg := range s.Segments() {
		uf.union(seg.A, seg.B)
	}

	byRoot := make(map[topo.NodeID]*cluster)
	get := func(id topo.NodeID) *cluster {
		r := uf.find(id)
		c, ok := byRoot[r]
		if !ok {
			c = &cluster{}
			byRoot[r] = c
		}
		return c
	}
	for _, seg := range s.Segments() {
		c := get(seg.A)
		c.segs = append(c.segs, seg)
		a, b := s.Endpoints(seg)
		c.extend(a)
		c.extend(b)
	}
	for _, pin := range pins {
		id, ok := s.PinNode(pin.Ref)
		if !ok {
			id, ok = s.NodeAt(pin.Pos)
		}
		if !ok {
			continue
		}
		c := get(id)
		c.pins = append(c.pins, pin)
		c.extend(pin.Pos)
	}
	for _, n := range s.Nodes() {
		if s.Degree(n.ID) >= 3 {
			c := get(n.ID)
			c.junctions = append(c.junctions, n.Pos)
		}
	}

	out := make([]*cluster, 0, len(byRoot))
	for _, c := range byRoot {
		out = append(out, c)
	}
	return out
}

func comparePoints(p, q geom.Point) int {
	if c := cmp.Compare(p.X, q.X); c != 0 {
		return c
	}
	return cmp.Compare(p.Y, q.Y)
}

func comparePins(a, b Pin) int {
	if c := cmp.Compare(a.Ref.Component, b.Ref.Component); c != 0 {
		return c
	}
	return cmp.Compare(a.Ref.Pin, b.Ref.Pin)
}

// assemble names the qualifying clusters and builds the result.
func assemble(clusters []*cluster) *Result {
	var nets []*cluster
	for _, c := range clusters {
		if len(c.segs) > 0 || len(c.pins) >= 2 {
			slices.SortFunc(c.segs, topo.CompareSegments)
			slices.SortFunc(c.pins, comparePins)
			nets = append(nets, c)
		}
	}
	slices.SortFunc(nets, func(a, b *cluster) int {
		if c := comparePoints(a.anchor, b.anchor); c != 0 {
			return c
		}
		switch {
		case len(a.segs) > 0 && len(b.segs) > 0:
			return topo.CompareSegments(a.segs[0], b.segs[0])
		case len(a.pins) > 0 && len(b.pins) > 0:
			return comparePins(a.pins[0], b.pins[0])
		}
		return cmp.Compare(len(a.segs), len(b.segs))
	})

	res := &Result{
		NetOfPin:     make(map[topo.PinRef]string),
		NetOfSegment: make(map[topo.Segment]string),
	}
	seq, grounds := 0, 0
	for _, c := range nets {
		ground := slices.ContainsFunc(c.pins, func(p Pin) bool { return p.Ground })
		name := GroundNet
		if ground {
			grounds++
		} else {
			seq++
			name = fmt.Sprintf("N%03d", seq)
		}

		n := Net{Name: name, Ground: ground, Anchor: c.anchor, Segments: c.segs}
		for _, p := range c.pins {
			n.Pins = append(n.Pins, p.Ref)
			res.NetOfPin[p.Ref] = name
		}
		for _, seg := range c.segs {
			res.NetOfSegment[seg] = name
		}
		for _, j := range c.junctions {
			res.Junctions = append(res.Junctions, Junction{Pos: j, Net: name})
		}
		res.Nets = append(res.Nets, n)
		if !slices.Contains(res.NetNames, name) {
			res.NetNames = append(res.NetNames, name)
		}
	}
	slices.SortFunc(res.Junctions, func(a, b Junction) int { return comparePoints(a.Pos, b.Pos) })

	if grounds > 1 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnMultipleGround,
			Message: fmt.Sprintf("%d disjoint ground clusters share net %q", grounds, GroundNet),
		})
	}
	return res
}
