package route

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

func newEngine(s *topo.Store) *Engine {
	return New(s, DefaultConfig(), nil)
}

func mustNodeAt(t *testing.T, s *topo.Store, p geom.Point) topo.Node {
	t.Helper()
	id, ok := s.NodeAt(p)
	if !ok {
		t.Fatalf("no node at %v; nodes = %v", p, s.Nodes())
	}
	n, _ := s.Node(id)
	return n
}

func TestClickLaysLPath(t *testing.T) {
	s := topo.New(0)
	e := newEngine(s)

	if err := e.BeginWire(geom.Pt(0, 0)); err != nil {
		t.Fatalf("BeginWire() error: %v", err)
	}
	if err := e.Click(geom.Pt(30, 10)); err != nil {
		t.Fatalf("Click() error: %v", err)
	}
	if e.State() != Drawing {
		t.Errorf("State() = %v, want drawing after a free click", e.State())
	}
	if err := e.DoubleClick(); err != nil {
		t.Fatalf("DoubleClick() error: %v", err)
	}

	if s.NodeCount() != 3 || s.SegmentCount() != 2 {
		t.Fatalf("nodes=%d segments=%d, want 3 and 2", s.NodeCount(), s.SegmentCount())
	}
	if bend := mustNodeAt(t, s, geom.Pt(30, 0)); bend.Kind != topo.KindBend {
		t.Errorf("bend kind = %v, want bend", bend.Kind)
	}
	if !s.Orthogonal() {
		t.Error("store is not orthogonal")
	}
}

func TestPreview(t *testing.T) {
	e := newEngine(topo.New(0))
	if got := e.Preview(geom.Pt(10, 10)); got != nil {
		t.Errorf("Preview() while idle = %v, want nil", got)
	}
	_ = e.BeginWire(geom.Pt(0, 0))
	want := []geom.Point{geom.Pt(0, 0), geom.Pt(0, 30), geom.Pt(10, 30)}
	if got := e.Preview(geom.Pt(11, 29)); !slices.Equal(got, want) {
		t.Errorf("Preview() = %v, want %v", got, want)
	}
}

func TestFinishRemovesOrphanStart(t *testing.T) {
	s := topo.New(0)
	e := newEngine(s)
	_ = e.BeginWire(geom.Pt(0, 0))
	e.Cancel()

	if s.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want the unused start node removed", s.NodeCount())
	}
	if !e.Idle() {
		t.Errorf("State() = %v, want idle", e.State())
	}
}

func TestClickOntoSegmentSplitsAndFinishes(t *testing.T) {
	s := topo.New(0)
	a := s.AddNode(geom.Pt(0, 0))
	b := s.AddNode(geom.Pt(40, 0))
	s.AddSegment(a, b)
	e := newEngine(s)

	_ = e.BeginWire(geom.Pt(20, 30))
	if err := e.Click(geom.Pt(20, 1)); err != nil {
		t.Fatalf("Click() error: %v", err)
	}

	if !e.Idle() {
		t.Errorf("State() = %v, want idle after connecting", e.State())
	}
	j := mustNodeAt(t, s, geom.Pt(20, 0))
	if s.Degree(j.ID) != 3 {
		t.Errorf("Degree(junction) = %d, want 3", s.Degree(j.ID))
	}
	if s.SegmentCount() != 3 {
		t.Errorf("SegmentCount() = %d, want 3", s.SegmentCount())
	}
}

func TestClickOntoPin(t *testing.T) {
	s := topo.New(0)
	pin := s.AddPin(topo.PinRef{Component: "R1", Pin: "1"}, geom.Pt(50, 0))
	e := newEngine(s)

	_ = e.BeginWire(geom.Pt(0, 0))
	_ = e.Click(geom.Pt(49, 1))

	start := mustNodeAt(t, s, geom.Pt(0, 0))
	if !s.HasSegment(start.ID, pin) {
		t.Errorf("Segments() = %v, want wire into the pin", s.Segments())
	}
	if !e.Idle() {
		t.Error("clicking a pin should finish the wire")
	}
}

func TestBusy(t *testing.T) {
	s := topo.New(0)
	e := newEngine(s)
	_ = e.BeginWire(geom.Pt(0, 0))

	if err := e.BeginDrag(geom.Pt(0, 0)); !errors.Is(err, ErrBusy) {
		t.Errorf("BeginDrag() while drawing = %v, want ErrBusy", err)
	}
	if err := e.BeginWire(geom.Pt(10, 0)); !errors.Is(err, ErrBusy) {
		t.Errorf("BeginWire() while drawing = %v, want ErrBusy", err)
	}
	if err := e.Connect(PointEndpoint{geom.Pt(0, 0)}, PointEndpoint{geom.Pt(10, 0)}); !errors.Is(err, ErrBusy) {
		t.Errorf("Connect() while drawing = %v, want ErrBusy", err)
	}
}

func TestPinsAreNotDraggable(t *testing.T) {
	s := topo.New(0)
	s.AddPin(topo.PinRef{Component: "U1", Pin: "1"}, geom.Pt(0, 0))
	e := newEngine(s)
	if err := e.BeginDrag(geom.Pt(1, 0)); !errors.Is(err, ErrNoTarget) {
		t.Errorf("BeginDrag(pin) = %v, want ErrNoTarget", err)
	}
	if err := e.BeginDrag(geom.Pt(100, 100)); !errors.Is(err, ErrNoTarget) {
		t.Errorf("BeginDrag(empty) = %v, want ErrNoTarget", err)
	}
}

// corner builds a(0,0) - b(40,0) - c(40,40).
func corner() (*topo.Store, topo.NodeID, topo.NodeID, topo.NodeID) {
	s := topo.New(0)
	a := s.AddNode(geom.Pt(0, 0))
	b := s.AddNode(geom.Pt(40, 0))
	c := s.AddNode(geom.Pt(40, 40))
	s.AddSegment(a, b)
	s.AddSegment(b, c)
	return s, a, b, c
}

func TestDragCancelRestoresExactly(t *testing.T) {
	s, _, _, _ := corner()
	nodes, segs := s.Nodes(), s.Segments()
	e := newEngine(s)

	if err := e.BeginDrag(geom.Pt(40, 0)); err != nil {
		t.Fatalf("BeginDrag() error: %v", err)
	}
	for _, p := range []geom.Point{geom.Pt(50, 10), geom.Pt(60, 20), geom.Pt(20, 30)} {
		if err := e.DragTo(p); err != nil {
			t.Fatalf("DragTo(%v) error: %v", p, err)
		}
		if !s.Orthogonal() {
			t.Fatalf("store not orthogonal after DragTo(%v): %v", p, s.Segments())
		}
	}
	e.CancelDrag()

	if !slices.Equal(nodes, s.Nodes()) {
		t.Errorf("Nodes() = %v, want %v", s.Nodes(), nodes)
	}
	if !slices.Equal(segs, s.Segments()) {
		t.Errorf("Segments() = %v, want %v", s.Segments(), segs)
	}
}

func positions(s *topo.Store) []geom.Point {
	var out []geom.Point
	for _, n := range s.Nodes() {
		out = append(out, n.Pos)
	}
	slices.SortFunc(out, func(p, q geom.Point) int {
		if p.X != q.X {
			if p.X < q.X {
				return -1
			}
			return 1
		}
		switch {
		case p.Y < q.Y:
			return -1
		case p.Y > q.Y:
			return 1
		}
		return 0
	})
	return out
}

func TestDragIsPathIndependent(t *testing.T) {
	direct, _, _, _ := corner()
	e1 := newEngine(direct)
	_ = e1.BeginDrag(geom.Pt(40, 0))
	_ = e1.DragTo(geom.Pt(60, 20))

	wandering, _, _, _ := corner()
	e2 := newEngine(wandering)
	_ = e2.BeginDrag(geom.Pt(40, 0))
	for _, p := range []geom.Point{geom.Pt(10, 10), geom.Pt(90, -30), geom.Pt(60, 20)} {
		_ = e2.DragTo(p)
	}

	if got, want := positions(wandering), positions(direct); !slices.Equal(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	if wandering.SegmentCount() != direct.SegmentCount() {
		t.Errorf("SegmentCount() = %d, want %d", wandering.SegmentCount(), direct.SegmentCount())
	}
}

func TestDragCommit(t *testing.T) {
	s, a, _, c := corner()
	e := newEngine(s)
	_ = e.BeginDrag(geom.Pt(40, 0))
	_ = e.DragTo(geom.Pt(60, 20))
	if err := e.EndDrag(); err != nil {
		t.Fatalf("EndDrag() error: %v", err)
	}

	if !e.Idle() {
		t.Errorf("State() = %v, want idle", e.State())
	}
	if !s.Orthogonal() {
		t.Errorf("store not orthogonal: %v", s.Segments())
	}
	// The dragged node ends up on a straight vertical run between the two
	// repair bends and is collapsed away.
	if s.SegmentCount() != 3 {
		t.Errorf("SegmentCount() = %d, want 3 (%v)", s.SegmentCount(), s.Segments())
	}
	if s.Degree(a) != 1 || s.Degree(c) != 1 {
		t.Error("wire ends lost their connection")
	}
}

func TestSegmentDragMovesPerpendicular(t *testing.T) {
	s := topo.New(0)
	a := s.AddNode(geom.Pt(0, 0))
	b := s.AddNode(geom.Pt(40, 0))
	c := s.AddNode(geom.Pt(0, 40))
	d := s.AddNode(geom.Pt(40, 40))
	s.AddSegment(a, b)
	s.AddSegment(a, c)
	s.AddSegment(b, d)
	e := newEngine(s)

	if err := e.BeginDrag(geom.Pt(20, 0)); err != nil {
		t.Fatalf("BeginDrag() error: %v", err)
	}
	_ = e.DragTo(geom.Pt(35, 20))
	_ = e.EndDrag()

	if got := s.Pos(a); got != geom.Pt(0, 20) {
		t.Errorf("Pos(a) = %v, want (0,20)", got)
	}
	if got := s.Pos(b); got != geom.Pt(40, 20) {
		t.Errorf("Pos(b) = %v, want (40,20)", got)
	}
	if s.NodeCount() != 4 || !s.Orthogonal() {
		t.Errorf("nodes = %v, want 4 nodes and no bends", s.Nodes())
	}
}

func TestSegmentDragKeepsPinEndpoint(t *testing.T) {
	s := topo.New(0)
	pin := s.AddPin(topo.PinRef{Component: "R1", Pin: "2"}, geom.Pt(0, 0))
	b := s.AddNode(geom.Pt(40, 0))
	s.AddSegment(pin, b)
	e := newEngine(s)

	_ = e.BeginDrag(geom.Pt(20, 0))
	_ = e.DragTo(geom.Pt(20, 20))
	_ = e.EndDrag()

	if got := s.Pos(pin); got != geom.Pt(0, 0) {
		t.Errorf("pin moved to %v", got)
	}
	if got := s.Pos(b); got != geom.Pt(40, 20) {
		t.Errorf("Pos(b) = %v, want (40,20)", got)
	}
	if !s.Orthogonal() {
		t.Errorf("store not orthogonal: %v", s.Segments())
	}
}

func TestJunctionSlidesOnRelease(t *testing.T) {
	s := topo.New(0)
	l := s.AddNode(geom.Pt(0, 0))
	j := s.AddNode(geom.Pt(20, 0))
	r := s.AddNode(geom.Pt(40, 0))
	m := s.AddNode(geom.Pt(20, 30))
	s.AddSegment(l, j)
	s.AddSegment(j, r)
	s.AddSegment(j, m)
	e := newEngine(s)

	_ = e.BeginDrag(geom.Pt(20, 30))
	_ = e.DragTo(geom.Pt(30, 30))
	if s.NodeCount() != 5 {
		t.Fatalf("NodeCount() during drag = %d, want a repair bend", s.NodeCount())
	}
	_ = e.EndDrag()

	if got := s.Pos(j); got != geom.Pt(30, 0) {
		t.Errorf("Pos(junction) = %v, want slid to (30,0)", got)
	}
	if !s.HasSegment(j, m) {
		t.Errorf("Segments() = %v, want junction joined to dragged node", s.Segments())
	}
	if s.NodeCount() != 4 || !s.Orthogonal() {
		t.Errorf("nodes = %v", s.Nodes())
	}
}

func TestSlideTarget(t *testing.T) {
	tests := []struct {
		name string
		j, p geom.Point
		nbs  []geom.Point
		want geom.Point
		ok   bool
	}{
		{
			name: "tee slides horizontally",
			j:    geom.Pt(20, 0),
			p:    geom.Pt(30, 30),
			nbs:  []geom.Point{geom.Pt(0, 0), geom.Pt(40, 0), geom.Pt(30, 30)},
			want: geom.Pt(30, 0),
			ok:   true,
		},
		{
			name: "blocked by perpendicular neighbour",
			j:    geom.Pt(20, 0),
			p:    geom.Pt(30, 30),
			nbs:  []geom.Point{geom.Pt(0, 0), geom.Pt(20, -20), geom.Pt(30, 30)},
			ok:   false,
		},
		{
			name: "cheaper candidate wins",
			j:    geom.Pt(0, 0),
			p:    geom.Pt(10, 40),
			nbs:  []geom.Point{geom.Pt(10, 40)},
			want: geom.Pt(0, 40),
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SlideTarget(tt.j, tt.p, tt.nbs, geom.Eps)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("SlideTarget() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestReroute(t *testing.T) {
	s := topo.New(0)
	a := s.AddNode(geom.Pt(0, 0))
	b := s.AddNode(geom.Pt(40, 0))
	s.AddSegment(a, b)
	s.UpdateNode(a, geom.Pt(0, 10))

	if got := Reroute(s, a); got != 1 {
		t.Errorf("Reroute() = %d, want 1", got)
	}
	if !s.Orthogonal() {
		t.Errorf("store not orthogonal: %v", s.Segments())
	}
	bend := mustNodeAt(t, s, geom.Pt(0, 0))
	if !s.HasSegment(a, bend.ID) || !s.HasSegment(bend.ID, b) {
		t.Errorf("Segments() = %v, want a-bend-b", s.Segments())
	}
}

func TestRerouteAvoidsOccupiedCorner(t *testing.T) {
	s := topo.New(0)
	a := s.AddNode(geom.Pt(0, 0))
	b := s.AddNode(geom.Pt(40, 0))
	s.AddSegment(a, b)
	pin := s.AddPin(topo.PinRef{Component: "R1", Pin: "1"}, geom.Pt(20, 0))
	s.UpdateNode(a, geom.Pt(20, 10))

	Reroute(s, a)

	if !s.Orthogonal() {
		t.Errorf("store not orthogonal: %v", s.Segments())
	}
	if s.Degree(pin) != 0 {
		t.Errorf("pin at the first corner got wired: %v", s.Incident(pin))
	}
	bend := mustNodeAt(t, s, geom.Pt(40, 10))
	if !s.HasSegment(a, bend.ID) || !s.HasSegment(bend.ID, b) {
		t.Errorf("Segments() = %v, want a-bend-b through (40,10)", s.Segments())
	}
}

func TestConnect(t *testing.T) {
	s := topo.New(0)
	r1 := topo.PinRef{Component: "R1", Pin: "1"}
	r2 := topo.PinRef{Component: "R2", Pin: "1"}
	s.AddPin(r1, geom.Pt(0, 0))
	s.AddPin(r2, geom.Pt(30, 20))
	e := newEngine(s)

	if err := e.Connect(PinEndpoint{r1}, PinEndpoint{r2}); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if s.SegmentCount() != 2 || !s.Orthogonal() {
		t.Errorf("Segments() = %v, want one L with two legs", s.Segments())
	}

	err := e.Connect(PinEndpoint{topo.PinRef{Component: "X9", Pin: "1"}}, NodeEndpoint{1})
	if !errors.Is(err, ErrUnresolved) {
		t.Errorf("Connect(unknown pin) = %v, want ErrUnresolved", err)
	}
}

func TestPointerDispatch(t *testing.T) {
	s, _, b, _ := corner()
	e := newEngine(s)
	e.SetTool(ToolSelect)
	idle := 0
	e.OnIdle(func() { idle++ })

	if err := e.PointerDown(geom.Pt(40, 0)); err != nil {
		t.Fatalf("PointerDown() error: %v", err)
	}
	if e.State() != Dragging {
		t.Fatalf("State() = %v, want dragging", e.State())
	}
	_ = e.PointerMove(geom.Pt(50, 0))
	if err := e.PointerUp(geom.Pt(50, 0)); err != nil {
		t.Fatalf("PointerUp() error: %v", err)
	}
	if !e.Idle() || idle != 1 {
		t.Errorf("State() = %v, idle hooks = %d", e.State(), idle)
	}
	if got := s.Pos(b); got != geom.Pt(50, 0) {
		t.Errorf("Pos(b) = %v, want (50,0)", got)
	}
}
