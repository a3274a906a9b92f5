// Package editor assembles the wire graph, the routing engine, the pin
// registry and the net extractor into one schematic editing session.
package editor

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/nets"
	"github.com/matzehuels/wiregraph/pkg/pins"
	"github.com/matzehuels/wiregraph/pkg/route"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// Options configures an [Editor].
type Options struct {
	Eps    float64      // coincidence tolerance; 0 uses geom.Eps
	Route  route.Config // interaction tolerances
	Nets   nets.Options // extraction settings
	Logger *log.Logger

	// KeepTopology binds pins without the initial cleanup, so a store
	// decoded from a snapshot keeps its nodes and segments as written.
	// Later edits still clean up.
	KeepTopology bool
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	cfg := route.DefaultConfig()
	return Options{
		Eps:   geom.Eps,
		Route: cfg,
		Nets:  nets.Options{GridUnit: cfg.Grid, CellFactor: 2},
	}
}

// Editor owns one topology store and every component writing to or
// reading from it.
//
// Connectivity is derived on demand: [Editor.Nets] returns the cached
// result until the store reports a change.
type Editor struct {
	store    *topo.Store
	engine   *route.Engine
	registry *pins.Registry
	opts     Options
	cached   *nets.Result
	logger   *log.Logger
}

// New creates an editor with an empty store. Pins of the provider's
// placements are bound immediately.
func New(provider pins.Provider, opts Options) *Editor {
	return NewWithStore(topo.New(opts.Eps), provider, opts)
}

// NewWithStore creates an editor over an existing store, e.g. one decoded
// from a snapshot.
func NewWithStore(s *topo.Store, provider pins.Provider, opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Nets.Logger == nil {
		opts.Nets.Logger = logger
	}
	if provider == nil {
		provider = pins.NewStaticProvider()
	}
	eng := route.New(s, opts.Route, logger)
	reg := pins.NewRegistry(s, provider, eng, logger)
	if opts.KeepTopology {
		reg.Bind()
	} else {
		reg.Sync()
	}
	return &Editor{
		store:    s,
		engine:   eng,
		registry: reg,
		opts:     opts,
		logger:   logger,
	}
}

func (e *Editor) Store() *topo.Store       { return e.store }
func (e *Editor) Engine() *route.Engine    { return e.engine }
func (e *Editor) Registry() *pins.Registry { return e.registry }
func (e *Editor) Provider() pins.Provider  { return e.registry.Provider() }

// Pins returns every placement pin in world coordinates.
func (e *Editor) Pins() []nets.Pin {
	return PinsOf(e.registry.Provider())
}

// PinsOf lists the pins of all placements of p for extraction.
func PinsOf(p pins.Provider) []nets.Pin {
	var out []nets.Pin
	for _, pl := range p.Placements() {
		for i, pin := range pl.Pins {
			out = append(out, nets.Pin{Ref: pl.Ref(i), Pos: pin.Pos, Ground: pl.Ground})
		}
	}
	return out
}

// Nets returns the connectivity of the current topology, extracting it
// again only when the store changed since the last call.
func (e *Editor) Nets() *nets.Result {
	return e.NetsContext(context.Background())
}

// NetsContext is [Editor.Nets] with a context passed to the extraction
// hooks.
func (e *Editor) NetsContext(ctx context.Context) *nets.Result {
	if e.cached != nil && !e.store.Dirty() {
		return e.cached
	}
	e.cached = nets.ExtractContext(ctx, e.store, e.Pins(), e.opts.Nets)
	e.store.MarkClean()
	return e.cached
}

// Invalidate forces the next [Editor.Nets] call to extract again. Placement
// notifications already do this through the registry; Invalidate is for
// providers that change without notifying.
func (e *Editor) Invalidate() { e.cached = nil }
