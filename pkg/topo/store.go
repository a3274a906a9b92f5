package topo

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/wiregraph/pkg/geom"
)

// Store owns the nodes and segments of one wire graph.
//
// Nodes and segments live in flat ID-keyed tables. Adjacency is answered
// from an incidence index kept next to the segment table; nodes carry no
// references to their segments.
//
// Every mutating method is total: a failed precondition (unknown ID,
// self-loop, duplicate segment) leaves the store untouched and reports
// failure through its return value instead of an error. The routing engine
// relies on this when it calls primitives speculatively during repair.
//
// The zero value is not usable - use [New]. Store is not safe for
// concurrent use.
type Store struct {
	nodes    map[NodeID]*Node
	segs     map[Segment]struct{}
	incident map[NodeID]map[Segment]struct{}
	next     NodeID
	eps      float64
	dirty    bool
	version  uint64
}

// New creates an empty store. Points closer than eps in both coordinates
// are considered coincident; a non-positive eps selects [geom.Eps].
func New(eps float64) *Store {
	if eps <= 0 {
		eps = geom.Eps
	}
	return &Store{
		nodes:    make(map[NodeID]*Node),
		segs:     make(map[Segment]struct{}),
		incident: make(map[NodeID]map[Segment]struct{}),
		eps:      eps,
	}
}

// Eps returns the coincidence tolerance of the store.
func (s *Store) Eps() float64 { return s.eps }

// Dirty reports whether the store changed since the last [Store.MarkClean].
func (s *Store) Dirty() bool { return s.dirty }

// MarkClean clears the dirty flag. Derived state computed from the store
// (nets, junctions) is valid until the flag is set again.
func (s *Store) MarkClean() { s.dirty = false }

// Version is incremented by every successful mutation.
func (s *Store) Version() uint64 { return s.version }

func (s *Store) touch() {
	s.dirty = true
	s.version++
}

// Touch marks the store changed without editing it. Callers use it when
// data read alongside the store, such as a component's ground flag,
// changed.
func (s *Store) Touch() { s.touch() }

// AddNode returns the ID of the node at p, creating a free node when no
// node lies within the store's tolerance of p.
func (s *Store) AddNode(p geom.Point) NodeID {
	return s.addNode(p, KindFree, PinRef{})
}

// AddBend is [Store.AddNode] for bend vertices.
func (s *Store) AddBend(p geom.Point) NodeID {
	return s.addNode(p, KindBend, PinRef{})
}

// AddPin returns the node anchoring ref at p. An existing non-pin node at p
// is promoted to a pin node; a node already bound to another pin is left
// alone and a new pin node is created beside it.
func (s *Store) AddPin(ref PinRef, p geom.Point) NodeID {
	if id, ok := s.NodeAt(p); ok {
		n := s.nodes[id]
		switch {
		case n.Kind != KindPin:
			n.Kind, n.Pin = KindPin, ref
			s.touch()
			return id
		case n.Pin == ref:
			return id
		}
	}
	return s.InsertNode(p, KindPin, ref)
}

func (s *Store) addNode(p geom.Point, kind NodeKind, ref PinRef) NodeID {
	if id, ok := s.NodeAt(p); ok {
		return id
	}
	return s.InsertNode(p, kind, ref)
}

// InsertNode always allocates a new node, even when another node occupies
// p. Coincident nodes are merged later by the cleanup pass; callers that
// need exact undo (drag repair, snapshot decoding) use this instead of
// [Store.AddNode].
func (s *Store) InsertNode(p geom.Point, kind NodeKind, ref PinRef) NodeID {
	s.next++
	id := s.next
	if kind != KindPin {
		ref = PinRef{}
	}
	s.nodes[id] = &Node{ID: id, Pos: p, Kind: kind, Pin: ref}
	s.touch()
	return id
}

// UpdateNode moves a node. It returns false when id is unknown.
func (s *Store) UpdateNode(id NodeID, p geom.Point) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	if n.Pos != p {
		n.Pos = p
		s.touch()
	}
	return true
}

// SetKind changes the kind of a node. ref is kept only for pin nodes.
func (s *Store) SetKind(id NodeID, kind NodeKind, ref PinRef) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	if kind != KindPin {
		ref = PinRef{}
	}
	if n.Kind != kind || n.Pin != ref {
		n.Kind, n.Pin = kind, ref
		s.touch()
	}
	return true
}

// RemoveNode deletes a node together with exactly the segments incident to
// it. It returns false when id is unknown.
func (s *Store) RemoveNode(id NodeID) bool {
	if _, ok := s.nodes[id]; !ok {
		return false
	}
	for seg := range s.incident[id] {
		s.unlink(seg)
	}
	delete(s.incident, id)
	delete(s.nodes, id)
	s.touch()
	return true
}

// AddSegment joins a and b. It is a no-op returning false when a == b,
// when either endpoint is unknown or when the segment already exists.
func (s *Store) AddSegment(a, b NodeID) (Segment, bool) {
	if a == b {
		return Segment{}, false
	}
	if _, ok := s.nodes[a]; !ok {
		return Segment{}, false
	}
	if _, ok := s.nodes[b]; !ok {
		return Segment{}, false
	}
	seg := NewSegment(a, b)
	if _, exists := s.segs[seg]; exists {
		return Segment{}, false
	}
	s.segs[seg] = struct{}{}
	s.link(seg.A, seg)
	s.link(seg.B, seg)
	s.touch()
	return seg, true
}

// RemoveSegment deletes the segment between a and b if it exists.
func (s *Store) RemoveSegment(a, b NodeID) bool {
	seg := NewSegment(a, b)
	if _, ok := s.segs[seg]; !ok {
		return false
	}
	s.unlink(seg)
	s.touch()
	return true
}

func (s *Store) link(id NodeID, seg Segment) {
	m := s.incident[id]
	if m == nil {
		m = make(map[Segment]struct{})
		s.incident[id] = m
	}
	m[seg] = struct{}{}
}

func (s *Store) unlink(seg Segment) {
	delete(s.segs, seg)
	delete(s.incident[seg.A], seg)
	delete(s.incident[seg.B], seg)
}

// SplitSegment inserts a node on seg at the projection of p onto the
// segment's constant axis, replacing seg by two segments. When the
// projection lands on an endpoint that endpoint is returned and nothing
// changes. It returns false when seg does not exist.
func (s *Store) SplitSegment(seg Segment, p geom.Point) (NodeID, bool) {
	if _, ok := s.segs[seg]; !ok {
		return 0, false
	}
	a, b := s.nodes[seg.A].Pos, s.nodes[seg.B].Pos
	q := geom.Project(p, a, b, s.eps)
	if q.Eq(a, s.eps) {
		return seg.A, true
	}
	if q.Eq(b, s.eps) {
		return seg.B, true
	}
	id := s.InsertNode(q, KindFree, PinRef{})
	s.unlink(seg)
	s.AddSegment(seg.A, id)
	s.AddSegment(id, seg.B)
	return id, true
}

// MergeNodes folds drop into keep: every segment of drop is rewired to
// keep, segments that would become self-loops or duplicates are discarded,
// and drop is deleted. If drop was a pin node, keep becomes that pin node.
// Two nodes bound to different pins are never merged.
func (s *Store) MergeNodes(keep, drop NodeID) bool {
	if keep == drop {
		return false
	}
	k, ok := s.nodes[keep]
	if !ok {
		return false
	}
	d, ok := s.nodes[drop]
	if !ok {
		return false
	}
	if k.IsPin() && d.IsPin() && k.Pin != d.Pin {
		return false
	}

	for _, seg := range s.Incident(drop) {
		other := seg.Other(drop)
		s.unlink(seg)
		if other != keep {
			s.AddSegment(keep, other)
		}
	}
	if d.IsPin() {
		k.Kind, k.Pin = KindPin, d.Pin
	}
	delete(s.incident, drop)
	delete(s.nodes, drop)
	s.touch()
	return true
}

// Node returns a copy of the node with the given ID.
func (s *Store) Node(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Pos returns the position of id; the zero point for unknown IDs.
func (s *Store) Pos(id NodeID) geom.Point {
	if n, ok := s.nodes[id]; ok {
		return n.Pos
	}
	return geom.Point{}
}

// HasSegment reports whether a segment joins a and b.
func (s *Store) HasSegment(a, b NodeID) bool {
	_, ok := s.segs[NewSegment(a, b)]
	return ok
}

// Nodes returns copies of all nodes ordered by ID.
func (s *Store) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, id := range slices.Sorted(maps.Keys(s.nodes)) {
		out = append(out, *s.nodes[id])
	}
	return out
}

// Segments returns all segments ordered by endpoint IDs.
func (s *Store) Segments() []Segment {
	return slices.SortedFunc(maps.Keys(s.segs), CompareSegments)
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// SegmentCount returns the number of segments.
func (s *Store) SegmentCount() int { return len(s.segs) }

// Endpoints returns the positions of both ends of seg.
func (s *Store) Endpoints(seg Segment) (geom.Point, geom.Point) {
	return s.Pos(seg.A), s.Pos(seg.B)
}

// Incident returns the segments touching id, ordered.
func (s *Store) Incident(id NodeID) []Segment {
	return slices.SortedFunc(maps.Keys(s.incident[id]), CompareSegments)
}

// Neighbors returns the IDs at the far end of every incident segment.
func (s *Store) Neighbors(id NodeID) []NodeID {
	segs := s.Incident(id)
	out := make([]NodeID, len(segs))
	for i, seg := range segs {
		out[i] = seg.Other(id)
	}
	slices.Sort(out)
	return out
}

// Degree returns the number of segments touching id.
func (s *Store) Degree(id NodeID) int { return len(s.incident[id]) }

// NodeAt returns the lowest-ID node within the store tolerance of p.
func (s *Store) NodeAt(p geom.Point) (NodeID, bool) {
	var best NodeID
	for id, n := range s.nodes {
		if n.Pos.Eq(p, s.eps) && (best == 0 || id < best) {
			best = id
		}
	}
	return best, best != 0
}

// PinNode returns the lowest-ID node bound to ref.
func (s *Store) PinNode(ref PinRef) (NodeID, bool) {
	var best NodeID
	for id, n := range s.nodes {
		if n.Kind == KindPin && n.Pin == ref && (best == 0 || id < best) {
			best = id
		}
	}
	return best, best != 0
}

// HitTestNode returns the node nearest to p within radius tol.
func (s *Store) HitTestNode(p geom.Point, tol float64) (NodeID, bool) {
	return s.HitTestNodeFunc(p, tol, nil)
}

// HitTestNodeFunc is [Store.HitTestNode] restricted to nodes accepted by
// keep. A nil keep accepts every node.
func (s *Store) HitTestNodeFunc(p geom.Point, tol float64, keep func(Node) bool) (NodeID, bool) {
	var best NodeID
	bestDist := math.Inf(1)
	for id, n := range s.nodes {
		if keep != nil && !keep(*n) {
			continue
		}
		d := math.Hypot(n.Pos.X-p.X, n.Pos.Y-p.Y)
		if d > tol+s.eps {
			continue
		}
		if d < bestDist || d == bestDist && id < best {
			best, bestDist = id, d
		}
	}
	return best, best != 0
}

// HitTestSegment returns the segment nearest to p within distance tol.
func (s *Store) HitTestSegment(p geom.Point, tol float64) (Segment, bool) {
	var (
		best  Segment
		found bool
	)
	bestDist := math.Inf(1)
	for _, seg := range s.Segments() {
		a, b := s.Endpoints(seg)
		d := geom.DistToSegment(p, a, b, s.eps)
		if d > tol+s.eps {
			continue
		}
		if d < bestDist {
			best, bestDist, found = seg, d, true
		}
	}
	return best, found
}

// Orthogonal reports whether every segment is horizontal or vertical.
func (s *Store) Orthogonal() bool {
	for seg := range s.segs {
		a, b := s.Endpoints(seg)
		if ax := geom.AxisOf(a, b, s.eps); ax != geom.Horizontal && ax != geom.Vertical {
			return false
		}
	}
	return true
}
