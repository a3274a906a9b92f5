// Package pins keeps pin nodes of the wire graph attached to the
// components that own them.
package pins

import (
	"slices"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// PlacedPin is a pin at its current world position.
type PlacedPin struct {
	ID  string
	Pos geom.Point
}

// Placement is one component instance as the registry sees it.
type Placement struct {
	ID     string
	Pins   []PlacedPin
	Ground bool
}

// Ref returns the topology reference of the i-th pin.
func (p Placement) Ref(i int) topo.PinRef {
	return topo.PinRef{Component: p.ID, Pin: p.Pins[i].ID}
}

// Provider supplies component placements. Placements must be returned in
// a stable order.
type Provider interface {
	Placements() []Placement
	Placement(id string) (Placement, bool)
}

// Notifier is implemented by providers that announce placement changes.
// The registry subscribes automatically when its provider implements it.
type Notifier interface {
	Subscribe(fn func(id string))
}

// StaticProvider is an in-memory [Provider] over a list of components.
// Mutating methods notify subscribers with the component ID.
type StaticProvider struct {
	comps []Component
	subs  []func(string)
}

// NewStaticProvider returns a provider holding cs in the given order.
func NewStaticProvider(cs ...Component) *StaticProvider {
	return &StaticProvider{comps: slices.Clone(cs)}
}

func (p *StaticProvider) Subscribe(fn func(id string)) {
	p.subs = append(p.subs, fn)
}

func (p *StaticProvider) notify(id string) {
	for _, fn := range p.subs {
		fn(id)
	}
}

func (p *StaticProvider) index(id string) int {
	return slices.IndexFunc(p.comps, func(c Component) bool { return c.ID == id })
}

// Components returns a copy of all components.
func (p *StaticProvider) Components() []Component { return slices.Clone(p.comps) }

// Component returns the component with the given ID.
func (p *StaticProvider) Component(id string) (Component, bool) {
	if i := p.index(id); i >= 0 {
		return p.comps[i], true
	}
	return Component{}, false
}

// Put adds c or replaces the component with the same ID.
func (p *StaticProvider) Put(c Component) {
	if i := p.index(c.ID); i >= 0 {
		p.comps[i] = c
	} else {
		p.comps = append(p.comps, c)
	}
	p.notify(c.ID)
}

// Remove deletes a component. Wires attached to its pins stay behind.
func (p *StaticProvider) Remove(id string) bool {
	i := p.index(id)
	if i < 0 {
		return false
	}
	p.comps = slices.Delete(p.comps, i, i+1)
	p.notify(id)
	return true
}

func (p *StaticProvider) update(id string, fn func(*Component)) bool {
	i := p.index(id)
	if i < 0 {
		return false
	}
	fn(&p.comps[i])
	p.notify(id)
	return true
}

// Move sets the origin of a component.
func (p *StaticProvider) Move(id string, origin geom.Point) bool {
	return p.update(id, func(c *Component) { c.Origin = origin })
}

// Rotate turns a component by one quarter turn.
func (p *StaticProvider) Rotate(id string) bool {
	return p.update(id, func(c *Component) { c.Rotation = (c.Rotation + 1) % 4 })
}

// Mirror flips a component about its local y axis.
func (p *StaticProvider) Mirror(id string) bool {
	return p.update(id, func(c *Component) { c.Mirror = !c.Mirror })
}

func (p *StaticProvider) Placements() []Placement {
	out := make([]Placement, len(p.comps))
	for i, c := range p.comps {
		out[i] = c.Placement()
	}
	return out
}

func (p *StaticProvider) Placement(id string) (Placement, bool) {
	c, ok := p.Component(id)
	if !ok {
		return Placement{}, false
	}
	return c.Placement(), true
}
