package route

import (
	"slices"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// bendRec remembers a bend inserted by diagonal repair. moved is zero when
// both ends of the repaired segment were moving.
type bendRec struct {
	bend   topo.NodeID
	moved  topo.NodeID
	static topo.NodeID
}

type dragging struct {
	anchor geom.Point
	moving []topo.NodeID
	orig   map[topo.NodeID]geom.Point
	segs   []topo.Segment
	lockX  bool // keep x, only y follows the pointer
	lockY  bool
	bends  []bendRec
}

func (d *dragging) moves(id topo.NodeID) bool {
	_, ok := d.orig[id]
	return ok
}

// BeginDrag starts dragging whatever lies under p. A node drag moves the
// node freely. A segment drag moves both endpoints perpendicular to the
// segment; pin endpoints stay where their component put them. Pins
// themselves are not draggable and yield [ErrNoTarget].
func (e *Engine) BeginDrag(p geom.Point) error {
	if e.state != Idle {
		return ErrBusy
	}
	s := e.store
	h := e.hitTest(p)
	switch {
	case h.isPin:
		return ErrNoTarget
	case h.isNode:
		e.beginDrag(p, []topo.NodeID{h.node}, false, false)
		return nil
	case h.isSeg:
		var ids []topo.NodeID
		for _, id := range []topo.NodeID{h.seg.A, h.seg.B} {
			if n, _ := s.Node(id); !n.IsPin() {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return ErrNoTarget
		}
		a, b := s.Endpoints(h.seg)
		ax := geom.AxisOf(a, b, s.Eps())
		e.beginDrag(p, ids, ax == geom.Horizontal, ax == geom.Vertical)
		return nil
	}
	return ErrNoTarget
}

// DragNodes starts a drag of an arbitrary set of nodes anchored at p, as
// used for moving a selection. Pins and unknown IDs are ignored.
func (e *Engine) DragNodes(p geom.Point, ids []topo.NodeID) error {
	if e.state != Idle {
		return ErrBusy
	}
	var keep []topo.NodeID
	for _, id := range ids {
		if n, ok := e.store.Node(id); ok && !n.IsPin() && !slices.Contains(keep, id) {
			keep = append(keep, id)
		}
	}
	if len(keep) == 0 {
		return ErrNoTarget
	}
	e.beginDrag(p, keep, false, false)
	return nil
}

func (e *Engine) beginDrag(p geom.Point, ids []topo.NodeID, lockX, lockY bool) {
	s := e.store
	d := &dragging{
		anchor: e.snap(p),
		moving: ids,
		orig:   make(map[topo.NodeID]geom.Point, len(ids)),
		lockX:  lockX,
		lockY:  lockY,
	}
	for _, id := range ids {
		d.orig[id] = s.Pos(id)
		for _, seg := range s.Incident(id) {
			if !slices.Contains(d.segs, seg) {
				d.segs = append(d.segs, seg)
			}
		}
	}
	e.drag = d
	e.state = Dragging
	e.logger.Debug("drag started", "nodes", ids, "segments", len(d.segs))
}

// DragTo moves the dragged nodes so that they follow the pointer at p.
//
// Every update starts from the snapshot taken when the drag began, so
// the result depends only on the current pointer position and never on
// the path the pointer took. Segments left diagonal by the move are split
// with a bend: at (moved.X, static.Y) when one end moves, at (B.X, A.Y)
// when both do.
func (e *Engine) DragTo(p geom.Point) error {
	if e.state != Dragging {
		return ErrNotDragging
	}
	s := e.store
	d := e.drag
	e.restore()

	delta := e.snap(p).Sub(d.anchor)
	if d.lockX {
		delta.X = 0
	}
	if d.lockY {
		delta.Y = 0
	}
	if delta == (geom.Point{}) {
		return nil
	}
	for _, id := range d.moving {
		s.UpdateNode(id, d.orig[id].Add(delta))
	}

	for _, seg := range d.segs {
		a, b := s.Endpoints(seg)
		if geom.AxisOf(a, b, s.Eps()) != geom.Diagonal {
			continue
		}
		switch am, bm := d.moves(seg.A), d.moves(seg.B); {
		case am && bm:
			s.RemoveSegment(seg.A, seg.B)
			bend := s.InsertNode(bendPoint(s, seg.B, seg.A), topo.KindBend, topo.PinRef{})
			s.AddSegment(seg.A, bend)
			s.AddSegment(bend, seg.B)
			d.bends = append(d.bends, bendRec{bend: bend})
		case am:
			d.bends = append(d.bends, bendRec{bend: insertBend(s, seg.A, seg.B), moved: seg.A, static: seg.B})
		case bm:
			d.bends = append(d.bends, bendRec{bend: insertBend(s, seg.B, seg.A), moved: seg.B, static: seg.A})
		}
	}
	return nil
}

// restore puts the store back into its state at the start of the drag.
func (e *Engine) restore() {
	s := e.store
	d := e.drag
	for _, r := range d.bends {
		s.RemoveNode(r.bend)
	}
	d.bends = d.bends[:0]
	for _, id := range d.moving {
		s.UpdateNode(id, d.orig[id])
	}
	for _, seg := range d.segs {
		s.AddSegment(seg.A, seg.B)
	}
}

// EndDrag commits the drag. Where the repaired topology allows it, bends
// next to junctions are traded for a junction slide, then the store is
// cleaned up.
func (e *Engine) EndDrag() error {
	if e.state != Dragging {
		return ErrNotDragging
	}
	e.settle()
	e.cleanup()
	e.logger.Debug("drag committed", "nodes", e.drag.moving)
	e.setIdle()
	return nil
}

func (e *Engine) settle() {
	s := e.store
	d := e.drag
	if len(d.bends) == 0 {
		return
	}

	if len(d.moving) == 1 && isJunction(s, d.moving[0]) {
		m := d.moving[0]
		var nbs []geom.Point
		for _, seg := range d.segs {
			nbs = append(nbs, s.Pos(seg.Other(m)))
		}
		if to, ok := SlideTarget(d.orig[m], s.Pos(m), nbs, s.Eps()); ok {
			e.restore()
			s.UpdateNode(m, to)
			return
		}
	}

	for _, r := range d.bends {
		if r.moved == 0 {
			continue
		}
		if slide(s, r.static, s.Pos(r.moved), r.bend) {
			s.RemoveNode(r.bend)
			s.AddSegment(r.moved, r.static)
		}
	}
	d.bends = nil
}

// CancelDrag abandons the drag and restores every node position and
// segment exactly as they were when the drag began.
func (e *Engine) CancelDrag() {
	if e.state != Dragging {
		return
	}
	e.restore()
	e.logger.Debug("drag cancelled")
	e.setIdle()
}
