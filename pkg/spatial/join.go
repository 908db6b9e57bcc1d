package spatial

import (
	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
)

// Join copies the attributes of matching features onto the rows of el.
//
// On nodes the node count never changes: a node without a match gets missing
// values, and a node with several matches takes the first one; a warning is
// raised when that happens. On edges every match produces its own copy of the
// edge, so the edge count can grow; unmatched edges are kept once with
// missing values.
//
// A feature column whose name is already used by el is renamed with
// network.SuffixIncoming, and the existing column with
// network.SuffixExisting.
func Join(n *network.Network, el network.Element, feats []Feature, pred geo.Predicate) (*network.Network, apperror.Warnings, error) {
	if err := checkElement(el); err != nil {
		return nil, nil, err
	}

	featRows := make([]network.Attrs, len(feats))
	geoms := make([]orb.Geometry, len(feats))
	for i, f := range feats {
		featRows[i] = f.Attrs
		geoms[i] = f.Geom
	}
	featCols := network.Columns(featRows)

	m := newMatcher(geoms, pred)
	out := n.Clone()
	var warns apperror.Warnings

	if el == network.NodesElement {
		incoming := make([]network.Attrs, len(out.Nodes))
		multi := 0
		for i := range out.Nodes {
			hits := m.matches(out.Nodes[i].Geom)
			if len(hits) > 0 {
				incoming[i] = featRows[hits[0]]
			}
			if len(hits) > 1 {
				multi++
			}
		}
		if multi > 0 {
			warns.Add(apperror.CodeMultipleMatches, "%d nodes matched more than one feature; the first match was used", multi)
		}
		for i, row := range network.JoinColumns(out.NodeAttrs(), incoming, featCols) {
			out.Nodes[i].Attrs = row
		}
		out.FillNodeColumns(network.Columns(out.NodeAttrs()))
		return out, warns, nil
	}

	var edges []network.Edge
	var base, incoming []network.Attrs
	for _, e := range out.Edges {
		hits := m.matches(e.Geom)
		if len(hits) == 0 {
			edges = append(edges, e)
			base = append(base, e.Attrs)
			incoming = append(incoming, nil)
			continue
		}
		for k, h := range hits {
			dup := e
			if k > 0 {
				dup.Geom = e.Geom.Clone()
			}
			edges = append(edges, dup)
			base = append(base, e.Attrs)
			incoming = append(incoming, featRows[h])
		}
	}
	for i, row := range network.JoinColumns(base, incoming, featCols) {
		edges[i].Attrs = row
	}
	out.Edges = edges
	out.FillEdgeColumns(network.Columns(out.EdgeAttrs()))
	return out, warns, nil
}
