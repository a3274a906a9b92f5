package topo

import (
	"fmt"

	"github.com/matzehuels/wiregraph/pkg/geom"
)

// NodeID identifies a node. IDs are allocated sequentially by a [Store] and
// are never reused within that store; zero is never a valid ID.
type NodeID int

// NodeKind distinguishes ordinary wire vertices from bends and pin anchors.
type NodeKind int

const (
	// KindFree is a user-placed wire vertex.
	KindFree NodeKind = iota
	// KindBend is a vertex inserted only to keep two segments axis-aligned.
	KindBend
	// KindPin is a vertex slaved to a component pin. Pin nodes are never
	// collapsed by cleanup and never dragged directly.
	KindPin
)

func (k NodeKind) String() string {
	switch k {
	case KindBend:
		return "bend"
	case KindPin:
		return "pin"
	default:
		return "free"
	}
}

// PinRef names one pin of one placed component.
type PinRef struct {
	Component string `json:"component"`
	Pin       string `json:"pin"`
}

func (r PinRef) String() string { return r.Component + "." + r.Pin }

// IsZero reports whether r names no pin.
func (r PinRef) IsZero() bool { return r.Component == "" && r.Pin == "" }

// Node is a vertex of the wire graph.
type Node struct {
	ID   NodeID     `json:"id"`
	Pos  geom.Point `json:"pos"`
	Kind NodeKind   `json:"kind"`
	Pin  PinRef     `json:"pin,omitzero"` // set only when Kind == KindPin
}

// IsPin reports whether the node is bound to a component pin.
func (n Node) IsPin() bool { return n.Kind == KindPin }

// Segment is an undirected edge between two nodes. Its identity is the
// endpoint pair, normalised so that A < B; use [NewSegment] to build one.
// Two segments between the same nodes therefore cannot coexist.
type Segment struct {
	A NodeID `json:"a"`
	B NodeID `json:"b"`
}

// NewSegment returns the canonical segment joining a and b.
func NewSegment(a, b NodeID) Segment {
	if a > b {
		a, b = b, a
	}
	return Segment{A: a, B: b}
}

func (s Segment) String() string { return fmt.Sprintf("s%d-%d", s.A, s.B) }

// Has reports whether id is one of the segment's endpoints.
func (s Segment) Has(id NodeID) bool { return s.A == id || s.B == id }

// Other returns the endpoint opposite id. The result is meaningless when id
// is not an endpoint.
func (s Segment) Other(id NodeID) NodeID {
	if s.A == id {
		return s.B
	}
	return s.A
}

// CompareSegments orders segments by their endpoint IDs.
func CompareSegments(a, b Segment) int {
	if a.A != b.A {
		return int(a.A - b.A)
	}
	return int(a.B - b.B)
}
