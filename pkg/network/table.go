package network

import (
	"slices"
	"sort"
)

// Columns returns the sorted union of attribute names over rows.
func Columns(rows []Attrs) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// FillColumns gives every row an entry for each column, inserting nil where
// a row lacks one. Rows are modified in place; nil rows are allocated.
func FillColumns(rows []Attrs, cols []string) {
	for i := range rows {
		if rows[i] == nil {
			rows[i] = make(Attrs, len(cols))
		}
		for _, c := range cols {
			if _, ok := rows[i][c]; !ok {
				rows[i][c] = nil
			}
		}
	}
}

// NodeAttrs returns the node attribute rows (not copies).
func (n *Network) NodeAttrs() []Attrs {
	rows := make([]Attrs, len(n.Nodes))
	for i := range n.Nodes {
		rows[i] = n.Nodes[i].Attrs
	}
	return rows
}

// EdgeAttrs returns the edge attribute rows (not copies).
func (n *Network) EdgeAttrs() []Attrs {
	rows := make([]Attrs, len(n.Edges))
	for i := range n.Edges {
		rows[i] = n.Edges[i].Attrs
	}
	return rows
}

// HasEdgeAttr reports whether any edge carries an attribute called name.
func (n *Network) HasEdgeAttr(name string) bool {
	for i := range n.Edges {
		if _, ok := n.Edges[i].Attrs[name]; ok {
			return true
		}
	}
	return false
}

// FillNodeColumns gives every node an entry for each of cols.
func (n *Network) FillNodeColumns(cols []string) {
	for i := range n.Nodes {
		if n.Nodes[i].Attrs == nil {
			n.Nodes[i].Attrs = make(Attrs, len(cols))
		}
		for _, c := range cols {
			if _, ok := n.Nodes[i].Attrs[c]; !ok {
				n.Nodes[i].Attrs[c] = nil
			}
		}
	}
}

// FillEdgeColumns gives every edge an entry for each of cols.
func (n *Network) FillEdgeColumns(cols []string) {
	for i := range n.Edges {
		if n.Edges[i].Attrs == nil {
			n.Edges[i].Attrs = make(Attrs, len(cols))
		}
		for _, c := range cols {
			if _, ok := n.Edges[i].Attrs[c]; !ok {
				n.Edges[i].Attrs[c] = nil
			}
		}
	}
}

// Suffixes for a column present on both sides of a join.
const (
	SuffixExisting = ".x"
	SuffixIncoming = ".y"
)

// JoinColumns merges incoming[i] into a copy of base[i] for every row. Each
// of cols is added to every row, with nil where incoming[i] is nil or lacks
// it. A column of cols that base already uses is renamed with
// SuffixIncoming, and the base column with SuffixExisting.
func JoinColumns(base, incoming []Attrs, cols []string) []Attrs {
	clash := make(map[string]bool, len(cols))
	baseCols := Columns(base)
	for _, c := range cols {
		if _, found := slices.BinarySearch(baseCols, c); found {
			clash[c] = true
		}
	}

	out := make([]Attrs, len(base))
	for i, row := range base {
		merged := make(Attrs, len(row)+len(cols))
		for k, v := range row {
			if clash[k] {
				merged[k+SuffixExisting] = v
			} else {
				merged[k] = v
			}
		}
		for _, c := range cols {
			v := incoming[i][c]
			if clash[c] {
				merged[c+SuffixIncoming] = v
			} else {
				merged[c] = v
			}
		}
		out[i] = merged
	}
	return out
}
