package geom

import "math"

// OnSegment reports whether p lies on the axis-aligned segment a-b,
// endpoints included.
func OnSegment(p, a, b Point, eps float64) bool {
	switch AxisOf(a, b, eps) {
	case Horizontal:
		return math.Abs(p.Y-a.Y) <= eps && Bounds(a, b).Contains(p, eps)
	case Vertical:
		return math.Abs(p.X-a.X) <= eps && Bounds(a, b).Contains(p, eps)
	case Degenerate:
		return p.Eq(a, eps)
	default:
		return false
	}
}

// Project returns the point of segment a-b closest to p. For an
// axis-aligned segment this keeps the constant coordinate and clamps the
// free one into the segment's extent.
func Project(p, a, b Point, eps float64) Point {
	r := Bounds(a, b)
	switch AxisOf(a, b, eps) {
	case Horizontal:
		return Point{X: clamp(p.X, r.Min.X, r.Max.X), Y: a.Y}
	case Vertical:
		return Point{X: a.X, Y: clamp(p.Y, r.Min.Y, r.Max.Y)}
	case Degenerate:
		return a
	default:
		return projectGeneral(p, a, b)
	}
}

// DistToSegment returns the Euclidean distance from p to segment a-b.
func DistToSegment(p, a, b Point, eps float64) float64 {
	q := Project(p, a, b, eps)
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func projectGeneral(p, a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = clamp(t, 0, 1)
	return Point{a.X + t*dx, a.Y + t*dy}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Relation is how two axis-aligned segments touch.
type Relation int

const (
	// Disjoint segments share no point.
	Disjoint Relation = iota
	// Crossing segments are perpendicular and meet in one point (X or T
	// shaped, or corner-to-corner).
	Crossing
	// Overlapping segments are collinear and share a sub-segment or a
	// single boundary point.
	Overlapping
)

// Intersect classifies segments a0-a1 and b0-b1 and returns the points that
// witness the contact: the single crossing point, or the one or two
// boundary points of a collinear overlap. Diagonal or degenerate inputs
// are reported as Disjoint.
func Intersect(a0, a1, b0, b1 Point, eps float64) (Relation, []Point) {
	ax := AxisOf(a0, a1, eps)
	bx := AxisOf(b0, b1, eps)
	if ax != Horizontal && ax != Vertical || bx != Horizontal && bx != Vertical {
		return Disjoint, nil
	}

	ra, rb := Bounds(a0, a1), Bounds(b0, b1)

	if ax != bx {
		h0, h := a0, ra
		v0, v := b0, rb
		if ax == Vertical {
			h0, h, v0, v = b0, rb, a0, ra
		}
		p := Point{X: v0.X, Y: h0.Y}
		if h.Contains(p, eps) && v.Contains(p, eps) {
			return Crossing, []Point{p}
		}
		return Disjoint, nil
	}

	if ax == Horizontal {
		if math.Abs(a0.Y-b0.Y) > eps {
			return Disjoint, nil
		}
		lo := math.Max(ra.Min.X, rb.Min.X)
		hi := math.Min(ra.Max.X, rb.Max.X)
		if lo > hi+eps {
			return Disjoint, nil
		}
		if hi-lo <= eps {
			return Overlapping, []Point{{X: lo, Y: a0.Y}}
		}
		return Overlapping, []Point{{X: lo, Y: a0.Y}, {X: hi, Y: a0.Y}}
	}

	if math.Abs(a0.X-b0.X) > eps {
		return Disjoint, nil
	}
	lo := math.Max(ra.Min.Y, rb.Min.Y)
	hi := math.Min(ra.Max.Y, rb.Max.Y)
	if lo > hi+eps {
		return Disjoint, nil
	}
	if hi-lo <= eps {
		return Overlapping, []Point{{X: a0.X, Y: lo}}
	}
	return Overlapping, []Point{{X: a0.X, Y: lo}, {X: a0.X, Y: hi}}
}
