package nets

import (
	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// GroundNet is the name of every net containing a ground pin.
const GroundNet = "0"

// Pin is a component pin as seen by the extractor.
type Pin struct {
	Ref    topo.PinRef `json:"ref"`
	Pos    geom.Point  `json:"pos"`
	Ground bool        `json:"ground,omitempty"`
}

// Net is one electrically connected group of segments and pins.
type Net struct {
	Name     string         `json:"name"`
	Ground   bool           `json:"ground,omitempty"`
	Anchor   geom.Point     `json:"anchor"` // leftmost, then topmost point
	Pins     []topo.PinRef  `json:"pins"`
	Segments []topo.Segment `json:"segments"`
}

// Junction is a point where three or more wire directions meet.
type Junction struct {
	Pos geom.Point `json:"pos"`
	Net string     `json:"net"`
}

// WarningCode classifies a [Warning].
type WarningCode string

const (
	// WarnMultipleGround is raised when more than one disjoint cluster
	// contains a ground pin. All of them are named "0", which shorts them
	// in any netlist built from the result.
	WarnMultipleGround WarningCode = "multiple_ground"
)

// Warning is a non-fatal finding of an extraction.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Result is the connectivity of one topology snapshot. It is valid until
// the next topology or pin change.
type Result struct {
	NetOfPin     map[topo.PinRef]string
	NetOfSegment map[topo.Segment]string
	NetNames     []string // distinct names in naming order
	Junctions    []Junction
	Nets         []Net
	Warnings     []Warning
}

// Net returns the first net called name.
func (r *Result) Net(name string) (Net, bool) {
	for _, n := range r.Nets {
		if n.Name == name {
			return n, true
		}
	}
	return Net{}, false
}

// Connected reports whether two pins are on the same net. Unconnected pins
// are never connected to anything.
func (r *Result) Connected(a, b topo.PinRef) bool {
	na, ok := r.NetOfPin[a]
	if !ok {
		return false
	}
	nb, ok := r.NetOfPin[b]
	return ok && na == nb
}

// Unconnected returns the pins of ps that belong to no net, in input
// order.
func (r *Result) Unconnected(ps []Pin) []topo.PinRef {
	var out []topo.PinRef
	for _, p := range ps {
		if _, ok := r.NetOfPin[p.Ref]; !ok {
			out = append(out, p.Ref)
		}
	}
	return out
}

// HasWarning reports whether the result carries a warning with code.
func (r *Result) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
