package nets

import (
	"slices"
	"testing"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// wires builds a store with one segment per {x0, y0, x1, y1} entry.
// Coincident endpoints of different entries share a node.
func wires(ws ...[4]float64) *topo.Store {
	s := topo.New(0)
	for _, w := range ws {
		a := s.AddNode(geom.Pt(w[0], w[1]))
		b := s.AddNode(geom.Pt(w[2], w[3]))
		s.AddSegment(a, b)
	}
	return s
}

func ref(c, p string) topo.PinRef { return topo.PinRef{Component: c, Pin: p} }

func TestCrossingMerge(t *testing.T) {
	s := wires([4]float64{0, 20, 40, 20}, [4]float64{20, 0, 20, 40})
	res := Extract(s, nil, Options{})

	if len(res.Nets) != 1 {
		t.Fatalf("len(Nets) = %d, want 1", len(res.Nets))
	}
	for _, seg := range s.Segments() {
		if got := res.NetOfSegment[seg]; got != "N001" {
			t.Errorf("NetOfSegment[%v] = %q, want N001", seg, got)
		}
	}
	want := []Junction{{Pos: geom.Pt(20, 20), Net: "N001"}}
	if !slices.Equal(res.Junctions, want) {
		t.Errorf("Junctions = %v, want %v", res.Junctions, want)
	}
}

func TestTeeWithoutSharedNode(t *testing.T) {
	s := wires([4]float64{0, 0, 40, 0}, [4]float64{20, 0, 20, 30})
	res := Extract(s, nil, Options{})

	if len(res.Nets) != 1 {
		t.Fatalf("len(Nets) = %d, want 1", len(res.Nets))
	}
	if len(res.Junctions) != 1 || res.Junctions[0].Pos != geom.Pt(20, 0) {
		t.Errorf("Junctions = %v, want one at (20,0)", res.Junctions)
	}
}

func TestCornerAndOverlapAreNotJunctions(t *testing.T) {
	s := wires(
		[4]float64{0, 0, 30, 0},
		[4]float64{20, 0, 50, 0},
		[4]float64{50, 0, 50, 40},
	)
	res := Extract(s, nil, Options{})

	if len(res.Nets) != 1 {
		t.Errorf("len(Nets) = %d, want overlapping wires merged", len(res.Nets))
	}
	if len(res.Junctions) != 0 {
		t.Errorf("Junctions = %v, want none", res.Junctions)
	}
}

func TestGroundPropagation(t *testing.T) {
	s := wires([4]float64{0, 0, 40, 0}, [4]float64{0, 50, 40, 50})
	pins := []Pin{
		{Ref: ref("R1", "1"), Pos: geom.Pt(40, 0)},
		{Ref: ref("GND", "1"), Pos: geom.Pt(20, 0), Ground: true},
		{Ref: ref("R1", "2"), Pos: geom.Pt(40, 50)},
		{Ref: ref("R2", "1"), Pos: geom.Pt(0, 50)},
	}
	res := Extract(s, pins, Options{})

	tests := []struct {
		pin  topo.PinRef
		want string
	}{
		{ref("R1", "1"), "0"},
		{ref("GND", "1"), "0"},
		{ref("R1", "2"), "N001"},
		{ref("R2", "1"), "N001"},
	}
	for _, tt := range tests {
		if got := res.NetOfPin[tt.pin]; got != tt.want {
			t.Errorf("NetOfPin[%v] = %q, want %q", tt.pin, got, tt.want)
		}
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
	if !res.Connected(ref("R1", "2"), ref("R2", "1")) || res.Connected(ref("R1", "1"), ref("R2", "1")) {
		t.Error("Connected() disagrees with NetOfPin")
	}
}

func TestUnconnectedPin(t *testing.T) {
	s := wires([4]float64{0, 0, 40, 0})
	pins := []Pin{
		{Ref: ref("R1", "1"), Pos: geom.Pt(0, 0)},
		{Ref: ref("R9", "1"), Pos: geom.Pt(100, 100)},
	}
	res := Extract(s, pins, Options{})

	if _, ok := res.NetOfPin[ref("R9", "1")]; ok {
		t.Error("unconnected pin should be absent from NetOfPin")
	}
	if got := res.Unconnected(pins); !slices.Equal(got, []topo.PinRef{ref("R9", "1")}) {
		t.Errorf("Unconnected() = %v", got)
	}
}

func TestCoincidentPinsFormNet(t *testing.T) {
	pins := []Pin{
		{Ref: ref("R1", "2"), Pos: geom.Pt(10, 10)},
		{Ref: ref("C1", "1"), Pos: geom.Pt(10, 10)},
	}
	res := Extract(topo.New(0), pins, Options{})

	if len(res.Nets) != 1 || len(res.Nets[0].Segments) != 0 {
		t.Fatalf("Nets = %+v, want one pin-only net", res.Nets)
	}
	if !res.Connected(ref("R1", "2"), ref("C1", "1")) {
		t.Error("touching pins should share a net")
	}
}

func TestMultipleGroundWarns(t *testing.T) {
	s := wires([4]float64{0, 0, 40, 0}, [4]float64{0, 50, 40, 50})
	pins := []Pin{
		{Ref: ref("GND", "1"), Pos: geom.Pt(0, 0), Ground: true},
		{Ref: ref("GND2", "1"), Pos: geom.Pt(0, 50), Ground: true},
	}
	res := Extract(s, pins, Options{})

	if got := res.NetNames; !slices.Equal(got, []string{"0"}) {
		t.Errorf("NetNames = %v, want [0]", got)
	}
	if len(res.Nets) != 2 {
		t.Errorf("len(Nets) = %d, want 2 separate clusters", len(res.Nets))
	}
	if !res.HasWarning(WarnMultipleGround) {
		t.Errorf("Warnings = %v, want %s", res.Warnings, WarnMultipleGround)
	}
}

func TestNamingIsLeftmostTopmost(t *testing.T) {
	s := wires(
		[4]float64{100, 0, 140, 0},
		[4]float64{0, 60, 0, 90},
		[4]float64{0, 10, 30, 10},
	)
	res := Extract(s, nil, Options{})

	want := []geom.Point{geom.Pt(0, 10), geom.Pt(0, 60), geom.Pt(100, 0)}
	for i, n := range res.Nets {
		if n.Anchor != want[i] {
			t.Errorf("Nets[%d] (%s) anchor = %v, want %v", i, n.Name, n.Anchor, want[i])
		}
	}
	if !slices.Equal(res.NetNames, []string{"N001", "N002", "N003"}) {
		t.Errorf("NetNames = %v", res.NetNames)
	}
}

func TestNodeOnlyIgnoresCrossings(t *testing.T) {
	s := wires([4]float64{0, 20, 40, 20}, [4]float64{20, 0, 20, 40})
	res := Extract(s, nil, Options{NodeOnly: true})

	if len(res.Nets) != 2 {
		t.Errorf("len(Nets) = %d, want 2", len(res.Nets))
	}
	if len(res.Junctions) != 0 {
		t.Errorf("Junctions = %v, want none", res.Junctions)
	}
}

func TestNodeOnlyUsesPinNodes(t *testing.T) {
	s := topo.New(0)
	p := s.AddPin(ref("R1", "1"), geom.Pt(0, 0))
	n := s.AddNode(geom.Pt(30, 0))
	m := s.AddNode(geom.Pt(30, 30))
	c := s.AddNode(geom.Pt(60, 0))
	s.AddSegment(p, n)
	s.AddSegment(n, m)
	s.AddSegment(n, c)
	pins := []Pin{{Ref: ref("R1", "1"), Pos: geom.Pt(0, 0)}}

	res := Extract(s, pins, Options{NodeOnly: true})
	if got := res.NetOfPin[ref("R1", "1")]; got != "N001" {
		t.Errorf("NetOfPin = %q, want N001", got)
	}
	if len(res.Junctions) != 1 || res.Junctions[0].Pos != geom.Pt(30, 0) {
		t.Errorf("Junctions = %v, want one at (30,0)", res.Junctions)
	}
}

func TestGridPairsAreUnique(t *testing.T) {
	g := newGrid(10)
	g.insert(0, geom.Bounds(geom.Pt(0, 0), geom.Pt(40, 0)), geom.Eps)
	g.insert(1, geom.Bounds(geom.Pt(0, 0), geom.Pt(40, 0)), geom.Eps)
	g.insert(2, geom.Bounds(geom.Pt(500, 500), geom.Pt(500, 600)), geom.Eps)

	if got := g.pairs(); !slices.Equal(got, [][2]int{{0, 1}}) {
		t.Errorf("pairs() = %v, want [[0 1]]", got)
	}
	if got := g.near(geom.Pt(500, 550), geom.Eps); !slices.Equal(got, []int{2}) {
		t.Errorf("near() = %v, want [2]", got)
	}
}

func TestNearbyEndpointsShareJunction(t *testing.T) {
	// three wire ends within eps of each other, on both sides of x = 1.5
	s := topo.New(1)
	join := func(a, b geom.Point) {
		s.AddSegment(s.InsertNode(a, topo.KindFree, topo.PinRef{}), s.InsertNode(b, topo.KindFree, topo.PinRef{}))
	}
	join(geom.Pt(1.4, 0), geom.Pt(-10, 0))
	join(geom.Pt(1.6, 0), geom.Pt(1.6, 10))
	join(geom.Pt(1.6, 0), geom.Pt(12, 0))

	res := Extract(s, nil, Options{GridUnit: 10})
	if len(res.Nets) != 1 {
		t.Fatalf("len(Nets) = %d, want 1", len(res.Nets))
	}
	if len(res.Junctions) != 1 {
		t.Fatalf("Junctions = %v, want one", res.Junctions)
	}
	if p := res.Junctions[0].Pos; !p.Eq(geom.Pt(1.5, 0), 0.2) {
		t.Errorf("junction at %v, want near (1.5,0)", p)
	}
}
