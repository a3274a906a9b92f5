package io

import (
	"cmp"
	"slices"

	"github.com/matzehuels/wiregraph/pkg/topo"
)

// Canonical returns the snapshot encoding of doc with nodes renumbered in
// position order. Two documents describing the same topology encode to the
// same bytes regardless of how their nodes were numbered, which makes the
// result suitable for content hashing.
func Canonical(doc Document) ([]byte, error) {
	if doc.Store == nil {
		return Marshal(doc)
	}
	nodes := doc.Store.Nodes()
	slices.SortFunc(nodes, func(a, b topo.Node) int {
		return cmp.Or(
			cmp.Compare(a.Pos.X, b.Pos.X),
			cmp.Compare(a.Pos.Y, b.Pos.Y),
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Pin.Component, b.Pin.Component),
			cmp.Compare(a.Pin.Pin, b.Pin.Pin),
			cmp.Compare(a.ID, b.ID),
		)
	})

	s := topo.New(doc.Store.Eps())
	ids := make(map[topo.NodeID]topo.NodeID, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = s.InsertNode(n.Pos, n.Kind, n.Pin)
	}
	for _, seg := range doc.Store.Segments() {
		s.AddSegment(ids[seg.A], ids[seg.B])
	}
	return Marshal(Document{Store: s, Components: doc.Components})
}
