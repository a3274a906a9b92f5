package route

import (
	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

type drawing struct {
	first        topo.NodeID
	firstCreated bool
	last         topo.NodeID
	lastPos      geom.Point
}

// BeginWire starts a wire at p. A pin, node or segment under the pointer
// becomes the start of the wire (a segment is split); otherwise a free
// node is placed at the snapped point.
func (e *Engine) BeginWire(p geom.Point) error {
	if e.state != Idle {
		return ErrBusy
	}
	id, created := e.anchor(p)
	e.draw = &drawing{
		first:        id,
		firstCreated: created,
		last:         id,
		lastPos:      e.store.Pos(id),
	}
	e.state = Drawing
	e.logger.Debug("wire started", "node", id, "at", e.draw.lastPos)
	return nil
}

// anchor returns the node a wire attaches to at p and whether it had to
// be created as a fresh, unconnected node.
func (e *Engine) anchor(p geom.Point) (topo.NodeID, bool) {
	s := e.store
	h := e.hitTest(p)
	switch {
	case h.isNode:
		return h.node, false
	case h.isSeg:
		id, _ := s.SplitSegment(h.seg, e.snap(p))
		return id, false
	}
	n := s.NodeCount()
	id := s.AddNode(e.snap(p))
	return id, s.NodeCount() > n
}

// Click places the next point of the wire in progress. The path from the
// previous point is an L-route with at most one bend. Landing on an
// existing pin, node or segment connects to it and finishes the wire.
func (e *Engine) Click(p geom.Point) error {
	if e.state != Drawing {
		return ErrNotDrawing
	}
	s := e.store
	d := e.draw
	h := e.hitTest(p)

	target := e.snap(p)
	switch {
	case h.isNode:
		target = s.Pos(h.node)
	case h.isSeg:
		a, b := s.Endpoints(h.seg)
		target = geom.Project(target, a, b, s.Eps())
	}
	if target.Eq(d.lastPos, s.Eps()) {
		return nil
	}

	from := d.last
	if _, ok := s.Node(from); !ok {
		from = s.AddNode(d.lastPos)
	}

	var to topo.NodeID
	switch {
	case h.isNode:
		to = h.node
	case h.isSeg:
		to, _ = s.SplitSegment(h.seg, target)
	default:
		to = s.AddNode(target)
	}
	e.lay(from, to)
	e.cleanup()

	if h.isNode || h.isSeg {
		e.logger.Debug("wire connected", "node", to, "at", target)
		e.Finish()
		return nil
	}
	d.last, d.lastPos = to, target
	return nil
}

// Finish ends the wire in progress. A starting node that never received
// a segment is removed again.
func (e *Engine) Finish() {
	if e.state != Drawing {
		return
	}
	d := e.draw
	if d.firstCreated && e.store.Degree(d.first) == 0 {
		e.store.RemoveNode(d.first)
	}
	e.logger.Debug("wire finished")
	e.setIdle()
}

// Preview returns the route a click at p would lay, as a vertex list from
// the last placed point. It returns nil when no wire is in progress.
func (e *Engine) Preview(p geom.Point) []geom.Point {
	if e.state != Drawing {
		return nil
	}
	return geom.LPath(e.draw.lastPos, e.snap(p), e.store.Eps())
}
