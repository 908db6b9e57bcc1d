package spatial

import (
	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
)

// Crop restricts the rows of el to the bounding box b.
//
// On nodes it keeps the nodes inside b, with their incident edges removed as
// in Filter. On edges it clips every edge geometry to b: edges outside are
// dropped, edges that leave and re-enter become one edge per piece, and a
// new node is appended wherever a piece ends on the box boundary. Existing
// nodes are never removed. The returned map sends each old row of el to its
// new index, or for a split edge to the index of its first piece.
func Crop(n *network.Network, el network.Element, b orb.Bound) (*network.Network, network.IndexMap, error) {
	if err := checkElement(el); err != nil {
		return nil, nil, err
	}

	if el == network.NodesElement {
		keep := make([]bool, n.NumNodes())
		for i := range n.Nodes {
			keep[i] = geo.InBound(b, n.Nodes[i].Geom)
		}
		out, nodeMap, _ := n.SelectNodes(keep)
		return out, nodeMap, nil
	}

	out := &network.Network{Directed: n.Directed, Geographic: n.Geographic}
	out.Nodes = make([]network.Node, len(n.Nodes))
	for i, nd := range n.Nodes {
		out.Nodes[i] = network.Node{Name: nd.Name, Geom: nd.Geom, Attrs: nd.Attrs.Clone()}
	}

	// boundary nodes created so far, by coordinate
	created := make(map[orb.Point]int)
	nodeAt := func(p orb.Point, existing int) int {
		if geo.Equal(p, n.Nodes[existing].Geom, network.DefaultTolerance) {
			return existing
		}
		if idx, ok := created[p]; ok {
			return idx
		}
		idx := len(out.Nodes)
		out.Nodes = append(out.Nodes, network.Node{Geom: p})
		created[p] = idx
		return idx
	}

	edgeMap := make(network.IndexMap, len(n.Edges))
	for i, e := range n.Edges {
		pieces := geo.CropLine(e.Geom, b)
		if len(pieces) == 0 {
			edgeMap[i] = network.Removed
			continue
		}
		edgeMap[i] = len(out.Edges)
		for _, piece := range pieces {
			out.Edges = append(out.Edges, network.Edge{
				From:  nodeAt(piece[0], e.From),
				To:    nodeAt(piece[len(piece)-1], e.To),
				Geom:  piece,
				Attrs: e.Attrs.Clone(),
			})
		}
	}

	if len(created) > 0 {
		out.FillNodeColumns(network.Columns(out.NodeAttrs()))
	}
	return out, edgeMap, nil
}
