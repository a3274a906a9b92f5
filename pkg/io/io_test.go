package io

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/pins"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// shape describes a store independent of node IDs.
func shape(s *topo.Store) []string {
	var out []string
	for _, n := range s.Nodes() {
		out = append(out, fmt.Sprintf("node %v %v %v", n.Pos, n.Kind, n.Pin))
	}
	for _, seg := range s.Segments() {
		a, b := s.Endpoints(seg)
		if b.X < a.X || b.X == a.X && b.Y < a.Y {
			a, b = b, a
		}
		out = append(out, fmt.Sprintf("seg %v %v", a, b))
	}
	slices.Sort(out)
	return out
}

func sample() *topo.Store {
	s := topo.New(0)
	p := s.AddPin(topo.PinRef{Component: "R1", Pin: "2"}, geom.Pt(0, 0))
	gone := s.AddNode(geom.Pt(99, 99))
	b := s.AddBend(geom.Pt(40, 0))
	f := s.AddNode(geom.Pt(40, 30))
	s.AddSegment(p, b)
	s.AddSegment(b, f)
	s.RemoveNode(gone)
	return s
}

func TestRoundTrip(t *testing.T) {
	s := sample()
	comps := []pins.Component{{ID: "R1", Origin: geom.Pt(-20, 0), Pins: []pins.PinDef{{ID: "2", Offset: geom.Pt(20, 0)}}}}

	var buf bytes.Buffer
	if err := WriteJSON(Document{Store: s, Components: comps}, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	doc, err := ReadJSON(&buf, 0)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}

	if got, want := shape(doc.Store), shape(s); !slices.Equal(got, want) {
		t.Errorf("decoded shape = %v, want %v", got, want)
	}
	if len(doc.Components) != 1 || doc.Components[0].ID != "R1" {
		t.Errorf("Components = %+v", doc.Components)
	}

	first, _ := Marshal(doc)
	second, _ := Marshal(Document{Store: mustUnmarshal(t, first).Store, Components: comps})
	if !bytes.Equal(first, second) {
		t.Errorf("re-encoding is not stable:\n%s\n---\n%s", first, second)
	}
}

func mustUnmarshal(t *testing.T, data []byte) Document {
	t.Helper()
	doc, err := Unmarshal(data, 0)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	return doc
}

func TestReadJSONFlags(t *testing.T) {
	in := `{
	  "nodes": [
	    {"id": 7, "x": 0, "y": 0, "flags": 2, "component": "U1", "pin": "3"},
	    {"id": 9, "x": 10, "y": 0, "flags": 1},
	    {"id": 8, "x": 10, "y": 10, "flags": 0}
	  ],
	  "segments": [
	    {"id": 1, "nodeA": 7, "nodeB": 9},
	    {"id": 2, "nodeA": 9, "nodeB": 8},
	    {"id": 3, "nodeA": 8, "nodeB": 9}
	  ]
	}`
	doc, err := ReadJSON(strings.NewReader(in), 0)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	s := doc.Store
	if s.NodeCount() != 3 || s.SegmentCount() != 2 {
		t.Fatalf("nodes=%d segments=%d, want 3 and 2", s.NodeCount(), s.SegmentCount())
	}
	id, ok := s.PinNode(topo.PinRef{Component: "U1", Pin: "3"})
	if !ok || s.Pos(id) != geom.Pt(0, 0) {
		t.Errorf("pin node = %d, %v", id, ok)
	}
	bend, _ := s.NodeAt(geom.Pt(10, 0))
	if n, _ := s.Node(bend); n.Kind != topo.KindBend {
		t.Errorf("node at (10,0) kind = %v, want bend", n.Kind)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"duplicate node", `{"nodes":[{"id":1},{"id":1}],"segments":[]}`},
		{"pin without ref", `{"nodes":[{"id":1,"flags":2}],"segments":[]}`},
		{"unknown node", `{"nodes":[{"id":1}],"segments":[{"id":1,"nodeA":1,"nodeB":2}]}`},
		{"self loop", `{"nodes":[{"id":1}],"segments":[{"id":1,"nodeA":1,"nodeB":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in), 0)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("ReadJSON() error = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := ReadJSON(strings.NewReader("{"), 0); err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("malformed JSON error = %v, want a decode error", err)
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	s := sample()
	if err := ExportJSON(Document{Store: s}, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}
	doc, err := ImportJSON(path, 0)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if !slices.Equal(shape(doc.Store), shape(s)) {
		t.Error("file round trip changed the topology")
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json"), 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ImportJSON(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestCanonicalIgnoresNumbering(t *testing.T) {
	a := `{"nodes":[{"id":1,"x":0,"y":0},{"id":2,"x":10,"y":0},{"id":3,"x":10,"y":10,"flags":1}],
	       "segments":[{"id":1,"nodeA":1,"nodeB":2},{"id":2,"nodeA":2,"nodeB":3}]}`
	b := `{"nodes":[{"id":7,"x":10,"y":10,"flags":1},{"id":3,"x":10,"y":0},{"id":5,"x":0,"y":0}],
	       "segments":[{"id":4,"nodeA":7,"nodeB":3},{"id":9,"nodeA":5,"nodeB":3}]}`

	ca, err := Canonical(mustUnmarshal(t, []byte(a)))
	if err != nil {
		t.Fatalf("Canonical(a): %v", err)
	}
	cb, err := Canonical(mustUnmarshal(t, []byte(b)))
	if err != nil {
		t.Fatalf("Canonical(b): %v", err)
	}
	if !bytes.Equal(ca, cb) {
		t.Errorf("canonical forms differ:\n%s\n---\n%s", ca, cb)
	}
}
