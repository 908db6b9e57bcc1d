package network

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []int
	rank   []byte // ranks stay below log2(n)
	size   []int
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	size := make([]int, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y int) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x int) int {
	return uf.size[uf.Find(x)]
}

// Components returns the weakly connected components of n (edge direction
// ignored). Components are ordered by their smallest node index and list
// their nodes in ascending order.
func (n *Network) Components() [][]int {
	uf := NewUnionFind(len(n.Nodes))
	for _, e := range n.Edges {
		uf.Union(e.From, e.To)
	}

	slot := make(map[int]int)
	var comps [][]int
	for i := range n.Nodes {
		root := uf.Find(i)
		c, ok := slot[root]
		if !ok {
			c = len(comps)
			slot[root] = c
			comps = append(comps, nil)
		}
		comps[c] = append(comps[c], i)
	}
	return comps
}

// LargestComponent returns a new network restricted to the largest weakly
// connected component. Ties go to the component with the smallest node index.
func (n *Network) LargestComponent() (*Network, IndexMap) {
	comps := n.Components()
	if len(comps) == 0 {
		return n.Clone(), Identity(0)
	}

	best := 0
	for i, c := range comps {
		if len(c) > len(comps[best]) {
			best = i
		}
	}

	keep := make([]bool, len(n.Nodes))
	for _, v := range comps[best] {
		keep[v] = true
	}
	out, nodeMap, _ := n.SelectNodes(keep)
	return out, nodeMap
}
