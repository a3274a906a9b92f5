package nets

import (
	"math"
	"slices"

	"github.com/matzehuels/wiregraph/pkg/geom"
)

type cell struct{ x, y int }

// grid buckets segments by the cells their bounding boxes cover, so only
// segments sharing a cell are ever compared.
type grid struct {
	size  float64
	cells map[cell][]int
	order []cell
}

func newGrid(size float64) *grid {
	return &grid{size: size, cells: make(map[cell][]int)}
}

func (g *grid) span(r geom.Rect, eps float64) (x0, y0, x1, y1 int) {
	return int(math.Floor((r.Min.X - eps) / g.size)),
		int(math.Floor((r.Min.Y - eps) / g.size)),
		int(math.Floor((r.Max.X + eps) / g.size)),
		int(math.Floor((r.Max.Y + eps) / g.size))
}

func (g *grid) insert(i int, r geom.Rect, eps float64) {
	x0, y0, x1, y1 := g.span(r, eps)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			c := cell{x, y}
			if _, ok := g.cells[c]; !ok {
				g.order = append(g.order, c)
			}
			g.cells[c] = append(g.cells[c], i)
		}
	}
}

// pairs returns every pair of segment indices sharing at least one cell,
// each pair once with the lower index first.
func (g *grid) pairs() [][2]int {
	seen := make(map[[2]int]bool)
	var out [][2]int
	for _, c := range g.order {
		idx := g.cells[c]
		for a := 0; a < len(idx); a++ {
			for b := a + 1; b < len(idx); b++ {
				pr := [2]int{min(idx[a], idx[b]), max(idx[a], idx[b])}
				if !seen[pr] {
					seen[pr] = true
					out = append(out, pr)
				}
			}
		}
	}
	return out
}

// near returns the segments bucketed in the cells around p.
func (g *grid) near(p geom.Point, eps float64) []int {
	x0, y0, x1, y1 := g.span(geom.Rect{Min: p, Max: p}, eps)
	var out []int
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for _, i := range g.cells[cell{x, y}] {
				if !slices.Contains(out, i) {
					out = append(out, i)
				}
			}
		}
	}
	return out
}
