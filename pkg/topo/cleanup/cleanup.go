package cleanup

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// Stats counts what a cleanup run changed.
type Stats struct {
	Merged    int // coincident nodes folded into a survivor
	Dropped   int // zero-length segments removed
	Collapsed int // collinear pass-through nodes removed
	Split     int // overlapping segments cut back to their shorter twin
	Passes    int // outer iterations until the fixpoint
}

// Changed reports whether the run modified the store.
func (st Stats) Changed() bool {
	return st.Merged+st.Dropped+st.Collapsed+st.Split > 0
}

// Run normalises s in place and returns what changed.
//
// Run applies [MergeCoincident], [DropZeroLength], [SplitOverlaps] and
// [CollapseCollinear] in that order and repeats until a full pass changes nothing. Every
// productive pass removes at least one node or segment, so the loop is
// bounded by the size of the store; the explicit cap only guards against
// a broken invariant.
//
// Run is idempotent: calling it on its own output changes nothing.
func Run(s *topo.Store) Stats {
	var st Stats
	limit := s.NodeCount() + s.SegmentCount() + 1
	for st.Passes < limit {
		st.Passes++
		m := MergeCoincident(s)
		d := DropZeroLength(s)
		o := SplitOverlaps(s)
		c := CollapseCollinear(s)
		st.Merged += m
		st.Dropped += d
		st.Split += o
		st.Collapsed += c
		if m+d+o+c == 0 {
			break
		}
	}
	return st
}

// MergeCoincident merges every group of nodes lying within the store's
// tolerance of each other and returns the number of nodes removed.
//
// The survivor of a pair is the pin node if there is one, else the lower
// ID. Segments are rewired to the survivor and self-loops discarded (see
// [topo.Store.MergeNodes]). Nodes bound to two different pins are left
// coincident so neither pin loses its anchor.
func MergeCoincident(s *topo.Store) int {
	eps := s.Eps()
	nodes := s.Nodes()
	slices.SortFunc(nodes, func(a, b topo.Node) int {
		if c := cmp.Compare(a.Pos.X, b.Pos.X); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Pos.Y, b.Pos.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	gone := make(map[topo.NodeID]bool)
	merged := 0
	for i := range nodes {
		if gone[nodes[i].ID] {
			continue
		}
		for j := i + 1; j < len(nodes) && nodes[j].Pos.X-nodes[i].Pos.X <= eps; j++ {
			if gone[nodes[j].ID] || math.Abs(nodes[j].Pos.Y-nodes[i].Pos.Y) > eps {
				continue
			}
			keep, drop := survivor(nodes[i], nodes[j])
			if !s.MergeNodes(keep.ID, drop.ID) {
				continue
			}
			gone[drop.ID] = true
			merged++
			if drop.ID == nodes[i].ID {
				break
			}
		}
	}
	return merged
}

func survivor(a, b topo.Node) (keep, drop topo.Node) {
	switch {
	case a.IsPin() && !b.IsPin():
		return a, b
	case b.IsPin() && !a.IsPin():
		return b, a
	case a.ID < b.ID:
		return a, b
	default:
		return b, a
	}
}

// DropZeroLength removes segments whose endpoints coincide and returns how
// many were removed.
func DropZeroLength(s *topo.Store) int {
	eps := s.Eps()
	dropped := 0
	for _, seg := range s.Segments() {
		a, b := s.Endpoints(seg)
		if a.Eq(b, eps) && s.RemoveSegment(seg.A, seg.B) {
			dropped++
		}
	}
	return dropped
}

// SplitOverlaps removes overlap between segments that leave a node in the
// same direction. Of two such segments n-p and n-q with p nearer to n, the
// longer one is replaced by p-q, so the stretch n-p is covered once. It
// returns the number of segments replaced.
func SplitOverlaps(s *topo.Store) int {
	eps := s.Eps()
	split := 0
	for _, n := range s.Nodes() {
		for {
			p, q, ok := overlapAt(s, n.ID, eps)
			if !ok {
				break
			}
			s.RemoveSegment(n.ID, q)
			s.AddSegment(p, q)
			split++
		}
	}
	return split
}

// overlapAt finds two segments at id running in the same direction and
// returns their far ends, nearer first.
func overlapAt(s *topo.Store, id topo.NodeID, eps float64) (near, far topo.NodeID, ok bool) {
	at := s.Pos(id)
	seen := make(map[[2]int]topo.NodeID)
	for _, nb := range s.Neighbors(id) {
		dir, ok := direction(at, s.Pos(nb), eps)
		if !ok {
			continue
		}
		other, dup := seen[dir]
		if !dup {
			seen[dir] = nb
			continue
		}
		if at.Manhattan(s.Pos(nb)) < at.Manhattan(s.Pos(other)) {
			return nb, other, true
		}
		return other, nb, true
	}
	return 0, 0, false
}

// direction returns the unit axis step from a towards b, or false when the
// two are not on a common axis.
func direction(a, b geom.Point, eps float64) ([2]int, bool) {
	sign := func(d float64) int {
		switch {
		case d > eps:
			return 1
		case d < -eps:
			return -1
		}
		return 0
	}
	dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
	if (dx == 0) == (dy == 0) {
		return [2]int{}, false
	}
	return [2]int{dx, dy}, true
}

// CollapseCollinear removes non-pin nodes that have exactly two segments
// running along the same axis, joining their far endpoints directly. It
// returns the number of nodes removed.
//
// The pass is worklist driven: both far endpoints of every collapse are
// re-enqueued, so chains of pass-through nodes disappear in one call
// without rescanning the whole store.
func CollapseCollinear(s *topo.Store) int {
	eps := s.Eps()
	queue := make([]topo.NodeID, 0, s.NodeCount())
	queued := make(map[topo.NodeID]bool, s.NodeCount())
	for _, n := range s.Nodes() {
		queue = append(queue, n.ID)
		queued[n.ID] = true
	}

	collapsed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		n, ok := s.Node(id)
		if !ok || n.IsPin() || s.Degree(id) != 2 {
			continue
		}
		nb := s.Neighbors(id)
		p, q := s.Pos(nb[0]), s.Pos(nb[1])
		if !passThrough(n.Pos, p, q, eps) {
			continue
		}

		s.RemoveNode(id)
		s.AddSegment(nb[0], nb[1])
		collapsed++
		for _, far := range nb {
			if !queued[far] {
				queue = append(queue, far)
				queued[far] = true
			}
		}
	}
	return collapsed
}

// passThrough reports whether p and q both share n's x or both share n's y.
func passThrough(n, p, q geom.Point, eps float64) bool {
	sameX := math.Abs(p.X-n.X) <= eps && math.Abs(q.X-n.X) <= eps
	sameY := math.Abs(p.Y-n.Y) <= eps && math.Abs(q.Y-n.Y) <= eps
	return sameX || sameY
}
