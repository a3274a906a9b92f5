package pins

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/observability"
	"github.com/matzehuels/wiregraph/pkg/route"
	"github.com/matzehuels/wiregraph/pkg/topo"
	"github.com/matzehuels/wiregraph/pkg/topo/cleanup"
)

// Gate reports whether the graph may be edited right now and calls back
// once it may. [route.Engine] implements it.
type Gate interface {
	Idle() bool
	OnIdle(fn func())
}

// Registry binds pin nodes to component pins and keeps them in place when
// components move.
//
// A placement update moves every bound pin node to its new world position,
// reroutes the segments at each pin with [route.Reroute] and then runs a
// single cleanup. Updates that arrive while the gate reports a gesture in
// progress are queued and applied by [Registry.Flush].
type Registry struct {
	store    *topo.Store
	provider Provider
	gate     Gate
	pending  []string
	logger   *log.Logger
}

// NewRegistry creates a registry over s. gate may be nil when no routing
// engine shares the store. If provider implements [Notifier] the registry
// subscribes to it; if gate is non-nil, queued updates are flushed each
// time it becomes idle.
func NewRegistry(s *topo.Store, provider Provider, gate Gate, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{store: s, provider: provider, gate: gate, logger: logger}
	if n, ok := provider.(Notifier); ok {
		n.Subscribe(r.PlacementMoved)
	}
	if gate != nil {
		gate.OnIdle(func() { r.Flush() })
	}
	return r
}

// Provider returns the placement provider.
func (r *Registry) Provider() Provider { return r.provider }

// Sync is [Registry.Bind] followed by a cleanup of the store.
func (r *Registry) Sync() {
	r.Bind()
	r.cleanup()
}

// Bind binds every pin of every placement to a node of the store, creating
// or promoting nodes as needed, and releases pin nodes whose component no
// longer exists (they become free nodes so attached wires survive). It
// leaves the rest of the topology as it is.
func (r *Registry) Bind() {
	live := make(map[topo.PinRef]bool)
	for _, pl := range r.provider.Placements() {
		for i, pin := range pl.Pins {
			ref := pl.Ref(i)
			live[ref] = true
			if id, ok := r.store.PinNode(ref); ok {
				r.store.UpdateNode(id, pin.Pos)
				continue
			}
			r.store.AddPin(ref, pin.Pos)
		}
	}
	for _, n := range r.store.Nodes() {
		if n.IsPin() && !live[n.Pin] {
			r.store.SetKind(n.ID, topo.KindFree, topo.PinRef{})
		}
	}
	r.logger.Debug("pins bound", "pins", len(live))
}

// PlacementMoved notifies the registry that a component moved, rotated or
// was removed. The update is applied at once when the gate is idle and
// queued otherwise.
func (r *Registry) PlacementMoved(id string) {
	if r.gate != nil && !r.gate.Idle() {
		if !slices.Contains(r.pending, id) {
			r.pending = append(r.pending, id)
		}
		observability.Topology().OnPlacementUpdate(context.Background(), id, 0, true)
		r.logger.Debug("placement update queued", "placement", id)
		return
	}
	r.apply(id)
}

// Pending returns the number of queued placement updates.
func (r *Registry) Pending() int { return len(r.pending) }

// Flush applies queued updates in arrival order and returns how many were
// applied. It does nothing while the gate is busy.
func (r *Registry) Flush() int {
	if r.gate != nil && !r.gate.Idle() {
		return 0
	}
	queued := r.pending
	r.pending = nil
	for _, id := range queued {
		r.apply(id)
	}
	return len(queued)
}

func (r *Registry) apply(id string) {
	s := r.store
	pl, ok := r.provider.Placement(id)
	if !ok {
		for _, n := range s.Nodes() {
			if n.IsPin() && n.Pin.Component == id {
				s.SetKind(n.ID, topo.KindFree, topo.PinRef{})
			}
		}
		s.Touch()
		r.logger.Debug("placement removed", "placement", id)
		return
	}

	// Move every pin before rerouting so wires between two pins of the
	// same component see both ends at their final positions.
	bound := make([]topo.NodeID, 0, len(pl.Pins))
	for i, pin := range pl.Pins {
		ref := pl.Ref(i)
		nid, ok := s.PinNode(ref)
		if !ok {
			s.AddPin(ref, pin.Pos)
			continue
		}
		s.UpdateNode(nid, pin.Pos)
		bound = append(bound, nid)
	}
	repaired := 0
	for _, nid := range bound {
		repaired += route.Reroute(s, nid)
	}
	r.cleanup()
	// The ground flag or pin set may have changed even when no node moved.
	s.Touch()

	observability.Topology().OnPlacementUpdate(context.Background(), id, len(pl.Pins), false)
	r.logger.Debug("placement updated", "placement", id, "pins", len(pl.Pins), "repaired", repaired)
}

func (r *Registry) cleanup() {
	start := time.Now()
	if st := cleanup.Run(r.store); st.Changed() {
		observability.Topology().OnCleanup(context.Background(), st.Merged, st.Dropped, st.Split, st.Collapsed, time.Since(start))
	}
}
