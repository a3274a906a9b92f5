package route

import (
	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// SlideTarget returns where a junction at j can move so that a neighbour
// now at p is reached without a bend.
//
// The candidates are (p.X, j.Y) and (j.X, p.Y). A candidate is valid when
// every point in neighbours still shares an x or a y coordinate with it;
// among valid candidates the one with the smaller total Manhattan distance
// to the neighbours wins, the first candidate on ties.
func SlideTarget(j, p geom.Point, neighbours []geom.Point, eps float64) (geom.Point, bool) {
	var (
		best     geom.Point
		bestCost float64
		found    bool
	)
	for _, c := range [2]geom.Point{{X: p.X, Y: j.Y}, {X: j.X, Y: p.Y}} {
		cost, ok := 0.0, true
		for _, n := range neighbours {
			if !geom.Aligned(n, c, eps) {
				ok = false
				break
			}
			cost += n.Manhattan(c)
		}
		if ok && (!found || cost < bestCost) {
			best, bestCost, found = c, cost, true
		}
	}
	return best, found
}

// isJunction reports whether id is a non-pin node where three or more
// segments meet.
func isJunction(s *topo.Store, id topo.NodeID) bool {
	n, ok := s.Node(id)
	return ok && !n.IsPin() && s.Degree(id) >= 3
}

// slide moves junction j so that it is aligned with a neighbour at p and
// with all of its other neighbours. skip names a neighbour excluded from
// the check, typically a bend about to be removed. It reports whether j
// moved.
func slide(s *topo.Store, j topo.NodeID, p geom.Point, skip topo.NodeID) bool {
	if !isJunction(s, j) {
		return false
	}
	nbs := []geom.Point{p}
	for _, n := range s.Neighbors(j) {
		if n != skip {
			nbs = append(nbs, s.Pos(n))
		}
	}
	to, ok := SlideTarget(s.Pos(j), p, nbs, s.Eps())
	if !ok {
		return false
	}
	s.UpdateNode(j, to)
	return true
}

// Reroute restores orthogonality around a node that was moved outside of
// a drag gesture, e.g. a pin following its component.
//
// For every diagonal segment at moved, Reroute first tries to slide the
// far endpoint if it is a junction (see [SlideTarget]); otherwise it
// replaces the segment with an L made of a vertical leg from moved and a
// horizontal leg into the far endpoint, or the mirrored L when an
// unrelated pin sits at that corner. It returns the number of segments
// repaired. The store is not cleaned up.
func Reroute(s *topo.Store, moved topo.NodeID) int {
	eps := s.Eps()
	repaired := 0
	for _, seg := range s.Incident(moved) {
		mp := s.Pos(moved)
		other := seg.Other(moved)
		op := s.Pos(other)
		if geom.AxisOf(mp, op, eps) != geom.Diagonal {
			continue
		}
		repaired++
		if slide(s, other, mp, moved) {
			continue
		}
		insertBend(s, moved, other)
	}
	return repaired
}

// insertBend replaces the diagonal segment moved-static by an L whose
// corner sits at (moved.X, static.Y).
func insertBend(s *topo.Store, moved, static topo.NodeID) topo.NodeID {
	at := bendPoint(s, moved, static)
	s.RemoveSegment(moved, static)
	bend := s.InsertNode(at, topo.KindBend, topo.PinRef{})
	s.AddSegment(moved, bend)
	s.AddSegment(bend, static)
	return bend
}

// bendPoint returns the corner of an L from a to b: (a.X, b.Y), or
// (b.X, a.Y) when another pin occupies the first corner and not the
// second. Cleanup would merge a bend into such a pin and short it to the
// wire.
func bendPoint(s *topo.Store, a, b topo.NodeID) geom.Point {
	ap, bp := s.Pos(a), s.Pos(b)
	first, second := geom.Pt(ap.X, bp.Y), geom.Pt(bp.X, ap.Y)
	taken := func(p geom.Point) bool {
		_, ok := s.HitTestNodeFunc(p, s.Eps(), func(n topo.Node) bool {
			return n.IsPin() && n.ID != a && n.ID != b
		})
		return ok
	}
	if taken(first) && !taken(second) {
		return second
	}
	return first
}
