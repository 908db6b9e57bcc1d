package network

// Removed marks an index that no longer exists after an edit.
const Removed = -1

// IndexMap maps old indices to new ones after a structural edit.
// Entries for dropped rows hold Removed.
type IndexMap []int

// Identity returns the map of a table of n rows that was left unchanged.
func Identity(n int) IndexMap {
	m := make(IndexMap, n)
	for i := range m {
		m[i] = i
	}
	return m
}

// Apply returns the new index of old, or Removed.
func (m IndexMap) Apply(old int) int {
	if old < 0 || old >= len(m) {
		return Removed
	}
	return m[old]
}

// Kept returns the old indices that survived, in new index order.
func (m IndexMap) Kept() []int {
	var kept []int
	for old, nw := range m {
		if nw != Removed {
			kept = append(kept, old)
		}
	}
	return kept
}

func indexMapFromMask(keep []bool) IndexMap {
	m := make(IndexMap, len(keep))
	next := 0
	for i, k := range keep {
		if k {
			m[i] = next
			next++
		} else {
			m[i] = Removed
		}
	}
	return m
}

// SelectNodes returns a new network holding the nodes where keep is true.
// Edges incident to a dropped node are dropped too; the surviving edges have
// their endpoints rewritten through the node map in the same pass.
// len(keep) must equal the node count.
func (n *Network) SelectNodes(keep []bool) (*Network, IndexMap, IndexMap) {
	nodeMap := indexMapFromMask(keep)

	out := &Network{Directed: n.Directed, Geographic: n.Geographic}
	for i, nd := range n.Nodes {
		if keep[i] {
			out.Nodes = append(out.Nodes, Node{Name: nd.Name, Geom: nd.Geom, Attrs: nd.Attrs.Clone()})
		}
	}

	edgeMap := make(IndexMap, len(n.Edges))
	for i, e := range n.Edges {
		from, to := nodeMap[e.From], nodeMap[e.To]
		if from == Removed || to == Removed {
			edgeMap[i] = Removed
			continue
		}
		ne := e.clone()
		ne.From, ne.To = from, to
		edgeMap[i] = len(out.Edges)
		out.Edges = append(out.Edges, ne)
	}
	return out, nodeMap, edgeMap
}

// SelectEdges returns a new network holding the edges where keep is true.
// All nodes are kept, including ones left without edges.
// len(keep) must equal the edge count.
func (n *Network) SelectEdges(keep []bool) (*Network, IndexMap) {
	edgeMap := indexMapFromMask(keep)

	out := &Network{Directed: n.Directed, Geographic: n.Geographic}
	out.Nodes = make([]Node, len(n.Nodes))
	for i, nd := range n.Nodes {
		out.Nodes[i] = Node{Name: nd.Name, Geom: nd.Geom, Attrs: nd.Attrs.Clone()}
	}
	for i, e := range n.Edges {
		if keep[i] {
			out.Edges = append(out.Edges, e.clone())
		}
	}
	return out, edgeMap
}
