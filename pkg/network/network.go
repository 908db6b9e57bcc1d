// Package network holds the spatial network model: a node table of point
// geometries and an edge table of linestring geometries whose endpoints
// reference nodes by index.
package network

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// NoIndex marks a missing node or edge index.
const NoIndex = -1

// DefaultTolerance is the coordinate tolerance used when comparing edge
// endpoints with node geometries.
const DefaultTolerance = 1e-9

// Attrs holds the attributes of a node or edge. A nil value is the
// missing-value marker.
type Attrs map[string]any

// Clone returns a shallow copy of a.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Node is a network vertex.
type Node struct {
	Name  string // optional, unique when set
	Geom  orb.Point
	Attrs Attrs
}

// Edge connects node From to node To. Geom starts at From and ends at To.
type Edge struct {
	From  int
	To    int
	Geom  orb.LineString
	Attrs Attrs
}

// Network is a directed or undirected spatial graph. Node and edge indices
// are positions in Nodes and Edges.
type Network struct {
	Directed bool
	// Geographic marks lon/lat coordinates; lengths are then haversine meters.
	Geographic bool
	Nodes      []Node
	Edges      []Edge
}

// Element selects the table an operation addresses.
type Element int

const (
	NodesElement Element = iota
	EdgesElement
)

func (e Element) String() string {
	switch e {
	case NodesElement:
		return "nodes"
	case EdgesElement:
		return "edges"
	default:
		return fmt.Sprintf("Element(%d)", int(e))
	}
}

// ParseElement parses "nodes" or "edges".
func ParseElement(s string) (Element, error) {
	switch s {
	case "nodes":
		return NodesElement, nil
	case "edges":
		return EdgesElement, nil
	}
	return 0, fmt.Errorf("unknown element %q", s)
}

// NumNodes returns the node count.
func (n *Network) NumNodes() int { return len(n.Nodes) }

// NumEdges returns the edge count.
func (n *Network) NumEdges() int { return len(n.Edges) }

// Clone returns a deep copy of n. Attribute values are copied shallowly.
func (n *Network) Clone() *Network {
	out := &Network{
		Directed:   n.Directed,
		Geographic: n.Geographic,
		Nodes:      make([]Node, len(n.Nodes)),
		Edges:      make([]Edge, len(n.Edges)),
	}
	for i, nd := range n.Nodes {
		out.Nodes[i] = Node{Name: nd.Name, Geom: nd.Geom, Attrs: nd.Attrs.Clone()}
	}
	for i, e := range n.Edges {
		out.Edges[i] = e.clone()
	}
	return out
}

func (e Edge) clone() Edge {
	return Edge{From: e.From, To: e.To, Geom: e.Geom.Clone(), Attrs: e.Attrs.Clone()}
}

// NodeIndex returns the index of the node called name.
func (n *Network) NodeIndex(name string) (int, bool) {
	if name == "" {
		return NoIndex, false
	}
	for i := range n.Nodes {
		if n.Nodes[i].Name == name {
			return i, true
		}
	}
	return NoIndex, false
}

// NodePoints returns the node geometries in index order.
func (n *Network) NodePoints() []orb.Point {
	pts := make([]orb.Point, len(n.Nodes))
	for i := range n.Nodes {
		pts[i] = n.Nodes[i].Geom
	}
	return pts
}

// EdgeLines returns the edge geometries in index order.
func (n *Network) EdgeLines() []orb.LineString {
	lines := make([]orb.LineString, len(n.Edges))
	for i := range n.Edges {
		lines[i] = n.Edges[i].Geom
	}
	return lines
}

// Degree returns the number of edge endpoints incident to each node.
// A self loop counts twice.
func (n *Network) Degree() []int {
	deg := make([]int, len(n.Nodes))
	for _, e := range n.Edges {
		deg[e.From]++
		deg[e.To]++
	}
	return deg
}

// Validate checks the topology invariants: every edge references existing
// nodes, has at least two coordinates, and its endpoints match its nodes
// within tol. Node names must be unique.
func (n *Network) Validate(tol float64) error {
	names := make(map[string]int)
	for i, nd := range n.Nodes {
		if nd.Name == "" {
			continue
		}
		if j, ok := names[nd.Name]; ok {
			return fmt.Errorf("node %d: name %q already used by node %d", i, nd.Name, j)
		}
		names[nd.Name] = i
	}
	for i, e := range n.Edges {
		if e.From < 0 || e.From >= len(n.Nodes) || e.To < 0 || e.To >= len(n.Nodes) {
			return fmt.Errorf("edge %d: endpoint (%d, %d) out of range [0, %d)", i, e.From, e.To, len(n.Nodes))
		}
		if len(e.Geom) < 2 {
			return fmt.Errorf("edge %d: linestring has %d coordinates", i, len(e.Geom))
		}
		if !closeTo(e.Geom[0], n.Nodes[e.From].Geom, tol) {
			return fmt.Errorf("edge %d: start %v does not match node %d at %v", i, e.Geom[0], e.From, n.Nodes[e.From].Geom)
		}
		if !closeTo(e.Geom[len(e.Geom)-1], n.Nodes[e.To].Geom, tol) {
			return fmt.Errorf("edge %d: end %v does not match node %d at %v", i, e.Geom[len(e.Geom)-1], e.To, n.Nodes[e.To].Geom)
		}
	}
	return nil
}

func closeTo(a, b orb.Point, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}
