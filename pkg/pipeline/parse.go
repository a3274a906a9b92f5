package pipeline

import (
	"github.com/matzehuels/wiregraph/pkg/cache"
	"github.com/matzehuels/wiregraph/pkg/editor"
	"github.com/matzehuels/wiregraph/pkg/errors"
	wio "github.com/matzehuels/wiregraph/pkg/io"
	"github.com/matzehuels/wiregraph/pkg/pins"
	"github.com/matzehuels/wiregraph/pkg/route"
	"github.com/matzehuels/wiregraph/pkg/topo/cleanup"
)

// Parsed is the outcome of the parse stage.
type Parsed struct {
	// Editor owns the decoded store with all component pins bound.
	Editor *editor.Editor
	// Components are the placements carried by the snapshot.
	Components []pins.Component
	// Hash identifies the snapshot content independent of formatting and
	// node numbering.
	Hash string
	// Cleanup reports the structural repairs made when Options.Cleanup is
	// set.
	Cleanup cleanup.Stats
}

// Document returns the current topology and components as a snapshot
// document.
func (p *Parsed) Document() wio.Document {
	return wio.Document{Store: p.Editor.Store(), Components: p.Components}
}

// Parse decodes snapshot data and prepares it for extraction.
func Parse(data []byte, opts Options) (*Parsed, error) {
	doc, err := wio.Unmarshal(data, opts.Eps)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	canonical, err := wio.Canonical(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}

	p := &Parsed{Components: doc.Components, Hash: cache.Hash(canonical)}
	if opts.Cleanup {
		p.Cleanup = cleanup.Run(doc.Store)
	}

	rc := route.DefaultConfig()
	rc.Grid = opts.GridUnit
	p.Editor = editor.NewWithStore(doc.Store, pins.NewStaticProvider(doc.Components...), editor.Options{
		Eps:          opts.Eps,
		Route:        rc,
		Nets:         opts.NetsOptions(),
		Logger:       opts.Logger,
		KeepTopology: !opts.Cleanup,
	})
	return p, nil
}
