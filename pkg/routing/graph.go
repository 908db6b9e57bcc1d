package routing

import "github.com/ccb2n19/sfnetworks/pkg/network"

// Graph is the traversal view of a network in CSR (Compressed Sparse Row)
// form. Every arc remembers the network edge it walks along; an undirected
// edge contributes one arc in each direction.
type Graph struct {
	NumNodes int
	FirstOut []int // len: NumNodes + 1; FirstOut[u]..FirstOut[u+1] are arcs leaving u
	Head     []int // len: arcs; node each arc points to
	Edge     []int // len: arcs; network edge index of each arc
}

// NewGraph builds the CSR view of n. Arcs leaving a node are ordered by
// edge index, which fixes the order in which searches scan neighbours.
func NewGraph(n *network.Network) *Graph {
	numNodes := n.NumNodes()
	numArcs := n.NumEdges()
	if !n.Directed {
		numArcs *= 2
	}

	// Count arcs per source node, then prefix sum.
	firstOut := make([]int, numNodes+1)
	for _, e := range n.Edges {
		firstOut[e.From+1]++
		if !n.Directed {
			firstOut[e.To+1]++
		}
	}
	for i := 1; i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Fill in edge order so each node's arcs stay sorted by edge index.
	head := make([]int, numArcs)
	edge := make([]int, numArcs)
	next := append([]int(nil), firstOut[:numNodes]...)
	place := func(u, v, e int) {
		head[next[u]] = v
		edge[next[u]] = e
		next[u]++
	}
	for i, e := range n.Edges {
		place(e.From, e.To, i)
		if !n.Directed {
			place(e.To, e.From, i)
		}
	}

	return &Graph{
		NumNodes: numNodes,
		FirstOut: firstOut,
		Head:     head,
		Edge:     edge,
	}
}

// ArcsFrom returns the range of arc indices leaving node u.
func (g *Graph) ArcsFrom(u int) (start, end int) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// cost returns the weight of arc a under w; a nil w costs one per arc.
func (g *Graph) cost(w []float64, a int) float64 {
	if w == nil {
		return 1
	}
	return w[g.Edge[a]]
}
