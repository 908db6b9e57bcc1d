// Package spatial filters, joins and crops the nodes or edges of a network
// against external geometries using binary spatial predicates.
package spatial

import (
	"fmt"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
)

// Feature is an external geometry with attributes.
type Feature struct {
	Geom  orb.Geometry
	Attrs network.Attrs
}

// Filter keeps the rows of el whose geometry satisfies pred against at least
// one of geoms. Removing nodes removes their incident edges; removing edges
// never removes nodes. The returned map renumbers the rows of el.
func Filter(n *network.Network, el network.Element, geoms []orb.Geometry, pred geo.Predicate) (*network.Network, network.IndexMap, error) {
	if err := checkElement(el); err != nil {
		return nil, nil, err
	}

	m := newMatcher(geoms, pred)
	rows := rowGeoms(n, el)
	keep := make([]bool, len(rows))
	for i, g := range rows {
		keep[i] = m.any(g)
	}

	if el == network.NodesElement {
		out, nodeMap, _ := n.SelectNodes(keep)
		return out, nodeMap, nil
	}
	out, edgeMap := n.SelectEdges(keep)
	return out, edgeMap, nil
}

func checkElement(el network.Element) error {
	if el != network.NodesElement && el != network.EdgesElement {
		return apperror.NewWithField(apperror.CodeInvalidInput, fmt.Sprintf("unknown element %v", el), "element")
	}
	return nil
}

// rowGeoms returns the geometries of the rows of el.
func rowGeoms(n *network.Network, el network.Element) []orb.Geometry {
	if el == network.NodesElement {
		out := make([]orb.Geometry, len(n.Nodes))
		for i := range n.Nodes {
			out[i] = n.Nodes[i].Geom
		}
		return out
	}
	out := make([]orb.Geometry, len(n.Edges))
	for i := range n.Edges {
		out[i] = n.Edges[i].Geom
	}
	return out
}

// matcher evaluates a predicate between row geometries and a fixed set of
// external geometries, pruning candidates through an rtree where the
// predicate allows it.
type matcher struct {
	geoms []orb.Geometry
	pred  geo.Predicate
	ix    *geo.Index
}

func newMatcher(geoms []orb.Geometry, pred geo.Predicate) *matcher {
	m := &matcher{geoms: geoms, pred: pred}
	if pred.NeedsOverlap() {
		m.ix = geo.NewGeometryIndex(geoms)
	}
	return m
}

// matches returns the indices of the geometries g relates to, ascending.
func (m *matcher) matches(g orb.Geometry) []int {
	var out []int
	for _, j := range m.candidates(g) {
		if geo.Eval(m.pred, g, m.geoms[j]) {
			out = append(out, j)
		}
	}
	return out
}

// any reports whether g relates to at least one geometry.
func (m *matcher) any(g orb.Geometry) bool {
	for _, j := range m.candidates(g) {
		if geo.Eval(m.pred, g, m.geoms[j]) {
			return true
		}
	}
	return false
}

func (m *matcher) candidates(g orb.Geometry) []int {
	if m.ix == nil {
		all := make([]int, len(m.geoms))
		for i := range all {
			all[i] = i
		}
		return all
	}
	if geo.IsEmpty(g) {
		return nil
	}
	return m.ix.Candidates(g.Bound())
}
