// Package geom provides the planar primitives shared by the wire topology:
// grid points, snapping, axis tests, L-shaped routes and the relation between
// two axis-aligned segments.
//
// All coordinates are world units. Comparisons go through an explicit
// tolerance so callers working on a coarse grid and callers receiving
// rotated pin positions agree on what "the same point" means.
package geom

import (
	"fmt"
	"math"
)

// Eps is the default tolerance used for coordinate equality.
const Eps = 1e-6

// Point is a position on the schematic plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Eq reports whether p and q coincide within eps.
func (p Point) Eq(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Manhattan returns |dx|+|dy|.
func (p Point) Manhattan(q Point) float64 {
	return math.Abs(p.X-q.X) + math.Abs(p.Y-q.Y)
}

// Aligned reports whether p and q share an x or a y coordinate.
func Aligned(p, q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps || math.Abs(p.Y-q.Y) <= eps
}

// Snap rounds p to the nearest multiple of unit. A non-positive unit
// returns p unchanged.
func Snap(p Point, unit float64) Point {
	if unit <= 0 {
		return p
	}
	return Point{
		X: math.Round(p.X/unit) * unit,
		Y: math.Round(p.Y/unit) * unit,
	}
}

// Axis is the orientation of a segment.
type Axis int

const (
	// Degenerate marks zero-length segments.
	Degenerate Axis = iota
	Horizontal
	Vertical
	// Diagonal marks segments whose endpoints differ in both coordinates.
	Diagonal
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	default:
		return "degenerate"
	}
}

// AxisOf classifies the segment a-b.
func AxisOf(a, b Point, eps float64) Axis {
	sameX := math.Abs(a.X-b.X) <= eps
	sameY := math.Abs(a.Y-b.Y) <= eps
	switch {
	case sameX && sameY:
		return Degenerate
	case sameY:
		return Horizontal
	case sameX:
		return Vertical
	default:
		return Diagonal
	}
}

// LPath returns the orthogonal route from -> to as a vertex list.
//
// When either delta is within eps the route is the straight pair
// [from, to]. Otherwise the longer leg comes first: |dx| >= |dy| bends at
// (to.X, from.Y), else at (from.X, to.Y).
func LPath(from, to Point, eps float64) []Point {
	dx := math.Abs(to.X - from.X)
	dy := math.Abs(to.Y - from.Y)
	if dx <= eps || dy <= eps {
		return []Point{from, to}
	}
	if dx >= dy {
		return []Point{from, {X: to.X, Y: from.Y}, to}
	}
	return []Point{from, {X: from.X, Y: to.Y}, to}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max Point
}

// Bounds returns the bounding box of the segment a-b.
func Bounds(a, b Point) Rect {
	return Rect{
		Min: Point{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Point{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

// Contains reports whether p lies inside r expanded by eps.
func (r Rect) Contains(p Point, eps float64) bool {
	return p.X >= r.Min.X-eps && p.X <= r.Max.X+eps &&
		p.Y >= r.Min.Y-eps && p.Y <= r.Max.Y+eps
}

// Union returns the smallest box holding r and p.
func (r Rect) Union(p Point) Rect {
	return Rect{
		Min: Point{math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y)},
		Max: Point{math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y)},
	}
}

// Inset grows r by d on every side; a negative d shrinks it.
func (r Rect) Inset(d float64) Rect {
	return Rect{Min: Point{r.Min.X - d, r.Min.Y - d}, Max: Point{r.Max.X + d, r.Max.Y + d}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
