package route

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/observability"
	"github.com/matzehuels/wiregraph/pkg/topo"
	"github.com/matzehuels/wiregraph/pkg/topo/cleanup"
)

var (
	// ErrBusy is returned when a draw or drag is requested while another
	// gesture is in progress. The engine never interleaves two gestures.
	ErrBusy = errors.New("routing engine busy")

	// ErrNotDrawing is returned by drawing operations outside a wire gesture.
	ErrNotDrawing = errors.New("no wire in progress")

	// ErrNotDragging is returned by drag operations outside a drag gesture.
	ErrNotDragging = errors.New("no drag in progress")

	// ErrNoTarget is returned by [Engine.BeginDrag] when nothing draggable
	// lies under the pointer. Pins are never draggable.
	ErrNoTarget = errors.New("nothing to drag")
)

// State is the gesture the engine is currently processing.
type State int

const (
	Idle State = iota
	Drawing
	Dragging
)

func (s State) String() string {
	switch s {
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Tool selects what a pointer-down in the Idle state starts.
type Tool int

const (
	// ToolWire starts a new wire.
	ToolWire Tool = iota
	// ToolSelect starts a drag of the node or segment under the pointer.
	ToolSelect
)

// Config holds the interaction tolerances of an engine.
type Config struct {
	Grid          float64 // snap unit for placed points; 0 disables snapping
	NodeRadius    float64 // hit radius for nodes
	SegmentRadius float64 // hit distance for segments
	PinRadius     float64 // hit radius for pins; pins win over everything else
}

// DefaultConfig returns tolerances suited to a 10-unit grid.
func DefaultConfig() Config {
	return Config{
		Grid:          10,
		NodeRadius:    4,
		SegmentRadius: 3,
		PinRadius:     5,
	}
}

// Engine turns pointer-level input into topology edits.
//
// The engine is a three-state machine (Idle, Drawing, Dragging). Wire
// drawing synthesises L-shaped paths between clicks; dragging moves nodes
// or whole segments while diagonal repair keeps every segment horizontal
// or vertical. Every gesture snapshots what it may touch, so cancelling
// restores the store exactly.
//
// Engine is not safe for concurrent use.
type Engine struct {
	store  *topo.Store
	cfg    Config
	tool   Tool
	state  State
	draw   *drawing
	drag   *dragging
	logger *log.Logger
	onIdle []func()
}

// New creates an engine editing s. A nil logger uses log.Default().
func New(s *topo.Store, cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: s, cfg: cfg, logger: logger}
}

// Store returns the topology the engine edits.
func (e *Engine) Store() *topo.Store { return e.store }

// Config returns the engine's tolerances.
func (e *Engine) Config() Config { return e.cfg }

// State returns the current gesture state.
func (e *Engine) State() State { return e.state }

// Idle reports whether no gesture is in progress.
func (e *Engine) Idle() bool { return e.state == Idle }

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }

// SetTool switches the active tool. It has no effect on a gesture already
// in progress.
func (e *Engine) SetTool(t Tool) { e.tool = t }

// OnIdle registers fn to run every time a gesture ends and the engine
// returns to Idle. The pin registry uses this to apply placement updates
// that arrived mid-gesture.
func (e *Engine) OnIdle(fn func()) { e.onIdle = append(e.onIdle, fn) }

func (e *Engine) setIdle() {
	e.state = Idle
	e.draw = nil
	e.drag = nil
	for _, fn := range e.onIdle {
		fn()
	}
}

func (e *Engine) snap(p geom.Point) geom.Point { return geom.Snap(p, e.cfg.Grid) }

func (e *Engine) cleanup() {
	start := time.Now()
	st := cleanup.Run(e.store)
	if st.Changed() {
		observability.Topology().OnCleanup(context.Background(), st.Merged, st.Dropped, st.Split, st.Collapsed, time.Since(start))
		e.logger.Debug("cleanup", "merged", st.Merged, "dropped", st.Dropped, "collapsed", st.Collapsed)
	}
}

// PointerDown dispatches a press: in Idle it starts a wire or a drag
// depending on the tool; while drawing it places the next point.
func (e *Engine) PointerDown(p geom.Point) error {
	switch e.state {
	case Idle:
		if e.tool == ToolSelect {
			return e.BeginDrag(p)
		}
		return e.BeginWire(p)
	case Drawing:
		return e.Click(p)
	default:
		return ErrBusy
	}
}

// PointerMove dispatches pointer motion. Only drags react to it; wire
// previews are pulled with [Engine.Preview].
func (e *Engine) PointerMove(p geom.Point) error {
	if e.state != Dragging {
		return nil
	}
	return e.DragTo(p)
}

// PointerUp ends a drag.
func (e *Engine) PointerUp(p geom.Point) error {
	if e.state != Dragging {
		return nil
	}
	if err := e.DragTo(p); err != nil {
		return err
	}
	return e.EndDrag()
}

// DoubleClick finishes the current wire without connecting further.
func (e *Engine) DoubleClick() error {
	if e.state != Drawing {
		return ErrNotDrawing
	}
	e.Finish()
	return nil
}

// Cancel aborts the current gesture. A wire keeps the segments placed so
// far; a drag is rolled back completely.
func (e *Engine) Cancel() {
	switch e.state {
	case Drawing:
		e.Finish()
	case Dragging:
		e.CancelDrag()
	}
}

// hit is what lies under the pointer, in priority order pin, node,
// segment.
type hit struct {
	node   topo.NodeID
	seg    topo.Segment
	isPin  bool
	isNode bool
	isSeg  bool
}

func (e *Engine) hitTest(p geom.Point) hit {
	s := e.store
	if id, ok := s.HitTestNodeFunc(p, e.cfg.PinRadius, topo.Node.IsPin); ok {
		return hit{node: id, isPin: true, isNode: true}
	}
	if id, ok := s.HitTestNode(p, e.cfg.NodeRadius); ok {
		return hit{node: id, isNode: true}
	}
	if seg, ok := s.HitTestSegment(p, e.cfg.SegmentRadius); ok {
		return hit{seg: seg, isSeg: true}
	}
	return hit{}
}
