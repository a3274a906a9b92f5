package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/wiregraph/pkg/geom"
	"github.com/matzehuels/wiregraph/pkg/topo"
)

// ErrInvalid is wrapped by every error caused by malformed snapshot
// content, as opposed to I/O or JSON syntax failures.
var ErrInvalid = errors.New("invalid snapshot")

// ReadJSON decodes a snapshot from r into a new store with tolerance eps
// (0 selects [geom.Eps]).
//
// ReadJSON returns an error wrapping [ErrInvalid] if:
//   - two nodes share an ID
//   - a node is flagged as a pin without naming its component and pin
//   - a segment references an unknown node or joins a node to itself
//
// Duplicate segments are ignored. ReadJSON does not close r.
func ReadJSON(r io.Reader, eps float64) (Document, error) {
	var data snapshot
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}

	s := topo.New(eps)
	ids := make(map[int]topo.NodeID, len(data.Nodes))
	nodes := slices.Clone(data.Nodes)
	slices.SortStableFunc(nodes, func(a, b node) int { return a.ID - b.ID })
	for _, n := range nodes {
		if _, dup := ids[n.ID]; dup {
			return Document{}, fmt.Errorf("%w: node %d: duplicate id", ErrInvalid, n.ID)
		}
		kind, ref := topo.KindFree, topo.PinRef{}
		switch {
		case n.Flags&FlagPin != 0:
			if n.Component == "" || n.Pin == "" {
				return Document{}, fmt.Errorf("%w: node %d: pin flag without component and pin", ErrInvalid, n.ID)
			}
			kind, ref = topo.KindPin, topo.PinRef{Component: n.Component, Pin: n.Pin}
		case n.Flags&FlagBend != 0:
			kind = topo.KindBend
		}
		ids[n.ID] = s.InsertNode(geom.Pt(n.X, n.Y), kind, ref)
	}
	for _, seg := range data.Segments {
		a, okA := ids[seg.NodeA]
		b, okB := ids[seg.NodeB]
		switch {
		case !okA || !okB:
			return Document{}, fmt.Errorf("%w: segment %d: unknown node", ErrInvalid, seg.ID)
		case a == b:
			return Document{}, fmt.Errorf("%w: segment %d: self-loop", ErrInvalid, seg.ID)
		}
		s.AddSegment(a, b)
	}

	return Document{Store: s, Components: data.Components}, nil
}

// Unmarshal decodes a snapshot held in memory.
func Unmarshal(data []byte, eps float64) (Document, error) {
	return ReadJSON(bytes.NewReader(data), eps)
}

// ImportJSON reads a snapshot file at path.
func ImportJSON(path string, eps float64) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, eps)
}
