package routing

import (
	"context"
	"math"
)

// MinHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Avoids interface boxing overhead of container/heap. Entries are ordered by
// distance, then node index, so equal-cost ties settle deterministically.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node int
	Dist float64
}

func (a PQItem) less(b PQItem) bool {
	return a.Dist < b.Dist || (a.Dist == b.Dist && a.Node < b.Node)
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node int, dist float64) {
	h.items = append(h.items, PQItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].less(h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].less(h.items[smallest]) {
			smallest = left
		}
		if right < n && h.items[right].less(h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// noNode marks the absence of a predecessor.
const noNode = -1

// Tree is a single-source shortest path tree.
type Tree struct {
	Source   int
	Dist     []float64 // +Inf when unreachable
	PredNode []int     // noNode for the source and unreachable nodes
	PredEdge []int     // network edge used to reach each node
}

// ShortestTree runs Dijkstra from src over g with weights w (nil = one per
// arc). A node's predecessor only changes on a strict improvement, so among
// equal-cost paths the one found first, scanning nodes by (cost, index) and
// arcs by edge index, wins.
func ShortestTree(ctx context.Context, g *Graph, w []float64, src int) (*Tree, error) {
	dist := make([]float64, g.NumNodes)
	predNode := make([]int, g.NumNodes)
	predEdge := make([]int, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
		predNode[i] = noNode
		predEdge[i] = noNode
	}
	dist[src] = 0

	var pq MinHeap
	pq.Push(src, 0)

	iterations := 0
	for pq.Len() > 0 {
		// Check context cancellation periodically.
		iterations++
		if iterations%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		item := pq.Pop()
		u := item.Node
		if item.Dist > dist[u] {
			continue // stale entry
		}

		start, end := g.ArcsFrom(u)
		for a := start; a < end; a++ {
			v := g.Head[a]
			newDist := item.Dist + g.cost(w, a)
			if newDist < dist[v] {
				dist[v] = newDist
				predNode[v] = u
				predEdge[v] = g.Edge[a]
				pq.Push(v, newDist)
			}
		}
	}

	return &Tree{Source: src, Dist: dist, PredNode: predNode, PredEdge: predEdge}, nil
}

// PathTo returns the node and edge sequences from the tree's source to t.
// Both are empty when t is unreachable.
func (tr *Tree) PathTo(t int) (nodes, edges []int) {
	if math.IsInf(tr.Dist[t], 1) {
		return []int{}, []int{}
	}
	for v := t; v != tr.Source; v = tr.PredNode[v] {
		nodes = append(nodes, v)
		edges = append(edges, tr.PredEdge[v])
	}
	nodes = append(nodes, tr.Source)
	reverse(nodes)
	reverse(edges)
	if edges == nil {
		edges = []int{}
	}
	return nodes, edges
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
