package routing

import (
	"context"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/resolve"
)

// CostMatrix holds shortest path costs from each From node (rows, duplicates
// kept) to each distinct To node (columns). Unreachable pairs are +Inf.
type CostMatrix struct {
	From  []int
	To    []int
	Costs [][]float64
}

// CostMatrixOf computes the cost matrix of n. A nil from or to means every
// node. Duplicate targets are collapsed, in first occurrence order, with a
// warning, so the column count can be lower than the number of targets given.
func CostMatrixOf(n *network.Network, from, to resolve.Endpoints, weights resolve.Weights) (*CostMatrix, apperror.Warnings, error) {
	return costMatrix(context.Background(), n, NewGraph(n), from, to, weights)
}

func costMatrix(ctx context.Context, n *network.Network, g *Graph, from, to resolve.Endpoints, weights resolve.Weights) (*CostMatrix, apperror.Warnings, error) {
	var warns apperror.Warnings

	src := resolve.All(n)
	if from != nil {
		s, w, err := resolve.Nodes(n, from, resolve.RoleFrom)
		if err != nil {
			return nil, nil, err
		}
		warns.Merge(w)
		src = s
	}

	dst := resolve.All(n)
	if to != nil {
		d, w, err := resolve.Nodes(n, to, resolve.RoleTo)
		if err != nil {
			return nil, nil, err
		}
		warns.Merge(w)
		dst = d
	}
	if uniq := dedupe(dst); len(uniq) < len(dst) {
		warns.Add(apperror.CodeDuplicateTargets, "%d duplicate targets removed", len(dst)-len(uniq))
		dst = uniq
	}

	w, err := resolve.EdgeWeights(n, weights)
	if err != nil {
		return nil, nil, err
	}

	m := &CostMatrix{From: src, To: dst, Costs: make([][]float64, len(src))}
	trees := make(map[int]*Tree)
	for i, s := range src {
		tr, ok := trees[s]
		if !ok {
			tr, err = ShortestTree(ctx, g, w, s)
			if err != nil {
				return nil, nil, err
			}
			trees[s] = tr
		}
		row := make([]float64, len(dst))
		for j, t := range dst {
			row[j] = tr.Dist[t]
		}
		m.Costs[i] = row
	}
	return m, warns, nil
}

func dedupe(s []int) []int {
	seen := make(map[int]struct{}, len(s))
	out := make([]int, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
