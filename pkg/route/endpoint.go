package route

import (
	"errors"
	"fmt"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// ErrUnresolved is returned when an [Endpoint] names a pin or node that is
// not in the store.
var ErrUnresolved = errors.New("endpoint not found")

// Endpoint is one end of a programmatic wire: a component pin, a free
// point on the plane or an existing node. The concrete types are
// [PinEndpoint], [PointEndpoint] and [NodeEndpoint].
type Endpoint interface {
	fmt.Stringer
	endpoint()
}

// PinEndpoint attaches to the node bound to a component pin.
type PinEndpoint struct{ Ref topo.PinRef }

// PointEndpoint attaches at a point. An existing node or segment at the
// point is reused; otherwise a free node is created.
type PointEndpoint struct{ Pos geom.Point }

// NodeEndpoint attaches to an existing node.
type NodeEndpoint struct{ ID topo.NodeID }

func (PinEndpoint) endpoint()   {}
func (PointEndpoint) endpoint() {}
func (NodeEndpoint) endpoint()  {}

func (p PinEndpoint) String() string   { return "pin " + p.Ref.String() }
func (p PointEndpoint) String() string { return "point " + p.Pos.String() }
func (p NodeEndpoint) String() string  { return fmt.Sprintf("node %d", p.ID) }

// resolve materialises ep as a node of the store.
func (e *Engine) resolve(ep Endpoint) (topo.NodeID, error) {
	s := e.store
	switch ep := ep.(type) {
	case PinEndpoint:
		if id, ok := s.PinNode(ep.Ref); ok {
			return id, nil
		}
	case NodeEndpoint:
		if _, ok := s.Node(ep.ID); ok {
			return ep.ID, nil
		}
	case PointEndpoint:
		p := e.snap(ep.Pos)
		if id, ok := s.NodeAt(p); ok {
			return id, nil
		}
		if seg, ok := s.HitTestSegment(p, 0); ok {
			id, _ := s.SplitSegment(seg, p)
			return id, nil
		}
		return s.AddNode(p), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrUnresolved, ep)
}

// Connect routes a wire between two endpoints along the same L-shaped
// path an interactive click would produce, then normalises the store. It
// is the programmatic counterpart of a two-click wire gesture.
func (e *Engine) Connect(from, to Endpoint) error {
	if e.state != Idle {
		return ErrBusy
	}
	a, err := e.resolve(from)
	if err != nil {
		return err
	}
	b, err := e.resolve(to)
	if err != nil {
		return err
	}
	e.lay(a, b)
	e.cleanup()
	e.logger.Debug("connect", "from", from, "to", to)
	return nil
}

// lay adds the L-path from a to b, creating at most one bend.
func (e *Engine) lay(a, b topo.NodeID) {
	s := e.store
	path := geom.LPath(s.Pos(a), s.Pos(b), s.Eps())
	prev := a
	for _, pt := range path[1 : len(path)-1] {
		bend := s.AddBend(pt)
		s.AddSegment(prev, bend)
		prev = bend
	}
	s.AddSegment(prev, b)
}
