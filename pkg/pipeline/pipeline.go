// Package pipeline runs the snapshot → nets → artifacts pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode a snapshot, optionally clean it up, and bind the pins
//     of its components to the wire graph
//  2. Extract: compute the nets of the bound topology
//  3. Render: produce the requested output formats
//
// Extraction results and rendered artifacts are cached by the content hash
// of the parsed snapshot, so repeated requests for an unchanged schematic
// skip straight to the cached bytes.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, snapshot, pipeline.Options{
//	    Formats: []string{pipeline.FormatText, pipeline.FormatSVG},
//	})
//	fmt.Print(string(result.Artifacts[pipeline.FormatText]))
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/cache"
	"github.com/matzehuels/wiregraph/pkg/errors"
	wio "github.com/matzehuels/wiregraph/pkg/io"
	"github.com/matzehuels/wiregraph/pkg/nets"
)

// Defaults shared by CLI and API.
const (
	DefaultGridUnit   = 10.0
	DefaultCellFactor = 2.0
	DefaultScale      = 1.0
)

// Format constants for output formats.
const (
	FormatText     = "text"     // netlist, one net per line
	FormatJSON     = "json"     // netlist report as JSON
	FormatSnapshot = "snapshot" // parsed (and cleaned) snapshot
	FormatSVG      = "svg"      // schematic drawing
	FormatDOT      = "dot"      // Graphviz source with pinned positions
	FormatGraphviz = "graphviz" // schematic drawn by Graphviz, as SVG
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{
	FormatText, FormatJSON, FormatSnapshot, FormatSVG,
	FormatDOT, FormatGraphviz, FormatPNG, FormatPDF,
}

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Eps     float64 `json:"eps,omitempty"`
	Cleanup bool    `json:"cleanup,omitempty"`

	// Extract options
	GridUnit   float64 `json:"grid_unit,omitempty"`
	CellFactor float64 `json:"cell_factor,omitempty"`
	NodeOnly   bool    `json:"node_only,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed snapshot with pins bound.
	Document wio.Document

	// Hash is the content hash of the parsed snapshot.
	Hash string

	// Report is the extracted connectivity.
	Report nets.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes       int
	Segments    int
	Pins        int
	Nets        int
	ParseTime   time.Duration
	ExtractTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExtractHit bool // Whether the report came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.GridUnit == 0 {
		o.GridUnit = DefaultGridUnit
	}
	if o.CellFactor == 0 {
		o.CellFactor = DefaultCellFactor
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	switch {
	case o.GridUnit < 0:
		return errors.New(errors.ErrCodeInvalidInput, "grid_unit must be positive")
	case o.CellFactor < 1:
		return errors.New(errors.ErrCodeInvalidInput, "cell_factor must be at least 1")
	case o.Scale < 0:
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive")
	case o.Eps < 0:
		return errors.New(errors.ErrCodeInvalidInput, "eps must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// NetsOptions returns the extraction settings.
func (o *Options) NetsOptions() nets.Options {
	return nets.Options{
		GridUnit:   o.GridUnit,
		CellFactor: o.CellFactor,
		NodeOnly:   o.NodeOnly,
		Logger:     o.Logger,
	}
}

// NetsKeyOpts returns cache key options for extraction.
func (o *Options) NetsKeyOpts() cache.NetsKeyOpts {
	return cache.NetsKeyOpts{
		GridUnit:   o.GridUnit,
		CellFactor: o.CellFactor,
		NodeOnly:   o.NodeOnly,
		Cleanup:    o.Cleanup,
	}
}

// ArtifactKeyOpts returns cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Scale:    o.Scale,
		NodeOnly: o.NodeOnly,
		Cleanup:  o.Cleanup,
		Labels:   o.Labels,
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("grid=%g cell=%g node_only=%v cleanup=%v formats=%v",
		o.GridUnit, o.CellFactor, o.NodeOnly, o.Cleanup, o.Formats)
}
