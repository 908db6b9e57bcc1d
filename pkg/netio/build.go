// Package netio builds networks from linestrings and reads and writes them as
// GeoJSON feature collections.
package netio

import (
	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
)

// Options sets the network-level flags of a built network.
type Options struct {
	Directed   bool
	Geographic bool
}

// FromLines builds a network with one edge per linestring. Nodes are created
// at edge endpoints; endpoints with identical coordinates share a node.
// Nodes are numbered in order of first appearance. attrs, when not nil, holds
// one attribute row per line.
func FromLines(lines []orb.LineString, attrs []network.Attrs, opts Options) (*network.Network, error) {
	if attrs != nil && len(attrs) != len(lines) {
		return nil, apperror.Newf(apperror.CodeInvalidInput, "%d attribute rows for %d lines", len(attrs), len(lines))
	}

	n := &network.Network{Directed: opts.Directed, Geographic: opts.Geographic}
	nodeSet := make(map[orb.Point]int)
	addNode := func(p orb.Point) int {
		if idx, ok := nodeSet[p]; ok {
			return idx
		}
		idx := len(n.Nodes)
		nodeSet[p] = idx
		n.Nodes = append(n.Nodes, network.Node{Geom: p})
		return idx
	}

	n.Edges = make([]network.Edge, len(lines))
	for i, ls := range lines {
		if len(ls) < 2 {
			return nil, apperror.Newf(apperror.CodeInvalidInput, "line %d has %d coordinates, need at least 2", i, len(ls))
		}
		e := network.Edge{
			From: addNode(ls[0]),
			To:   addNode(ls[len(ls)-1]),
			Geom: ls.Clone(),
		}
		if attrs != nil {
			e.Attrs = attrs[i].Clone()
		}
		n.Edges[i] = e
	}
	n.FillEdgeColumns(network.Columns(n.EdgeAttrs()))
	return n, nil
}
