package pins

import (
	"github.com/matzehuels/wiregraph/pkg/geom"
)

// PinDef is a pin in component-local coordinates.
type PinDef struct {
	ID     string     `json:"id"`
	Offset geom.Point `json:"offset"`
}

// Component is a placed symbol: a set of pins positioned by an origin, a
// rotation in quarter turns and an optional mirror about the local y axis.
type Component struct {
	ID       string     `json:"id"`
	Origin   geom.Point `json:"origin"`
	Rotation int        `json:"rotation,omitempty"` // quarter turns, clockwise on a y-down canvas
	Mirror   bool       `json:"mirror,omitempty"`
	Ground   bool       `json:"ground,omitempty"` // ground symbol; its nets are named "0"
	Pins     []PinDef   `json:"pins"`
}

// World maps a component-local point to world coordinates. The mirror is
// applied first, then the rotation, then the translation.
func (c Component) World(local geom.Point) geom.Point {
	p := local
	if c.Mirror {
		p.X = -p.X
	}
	for range ((c.Rotation % 4) + 4) % 4 {
		p = geom.Point{X: -p.Y, Y: p.X}
	}
	return c.Origin.Add(p)
}

// Placement returns the component as seen by the pin registry.
func (c Component) Placement() Placement {
	pl := Placement{ID: c.ID, Ground: c.Ground, Pins: make([]PlacedPin, len(c.Pins))}
	for i, pd := range c.Pins {
		pl.Pins[i] = PlacedPin{ID: pd.ID, Pos: c.World(pd.Offset)}
	}
	return pl
}
