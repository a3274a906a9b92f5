package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/wiregraph/pkg/pins"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// Node flags in the snapshot format.
const (
	FlagBend = 1 << iota
	FlagPin
)

// Document is a decoded snapshot.
type Document struct {
	Store      *topo.Store
	Components []pins.Component
}

type snapshot struct {
	Nodes      []node           `json:"nodes"`
	Segments   []segment        `json:"segments"`
	Components []pins.Component `json:"components,omitempty"`
}

type node struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Flags     int     `json:"flags"`
	Component string  `json:"component,omitempty"`
	Pin       string  `json:"pin,omitempty"`
}

type segment struct {
	ID    int `json:"id"`
	NodeA int `json:"nodeA"`
	NodeB int `json:"nodeB"`
}

// WriteJSON encodes doc as an indented snapshot and writes it to w.
// Nodes are written in ID order and segments in endpoint order, so equal
// stores produce identical output.
func WriteJSON(doc Document, w io.Writer) error {
	out := snapshot{Components: doc.Components}
	if doc.Store != nil {
		for _, n := range doc.Store.Nodes() {
			nd := node{ID: int(n.ID), X: n.Pos.X, Y: n.Pos.Y}
			switch n.Kind {
			case topo.KindBend:
				nd.Flags = FlagBend
			case topo.KindPin:
				nd.Flags = FlagPin
				nd.Component, nd.Pin = n.Pin.Component, n.Pin.Pin
			}
			out.Nodes = append(out.Nodes, nd)
		}
		for i, seg := range doc.Store.Segments() {
			out.Segments = append(out.Segments, segment{ID: i + 1, NodeA: int(seg.A), NodeB: int(seg.B)})
		}
	}
	if out.Nodes == nil {
		out.Nodes = []node{}
	}
	if out.Segments == nil {
		out.Segments = []segment{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the snapshot encoding of doc.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes doc to a JSON file at path.
func ExportJSON(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}
