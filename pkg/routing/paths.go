package routing

import (
	"context"
	"math"
	"slices"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/resolve"
)

// Mode selects the kind of path enumeration.
type Mode string

const (
	// ModeShortest returns one cheapest path per target, with edges.
	ModeShortest Mode = "shortest"
	// ModeAllShortest returns every cheapest path per target, nodes only.
	ModeAllShortest Mode = "all_shortest"
	// ModeAllSimple returns every cycle-free path from the source to any
	// target, ignoring weights. The number of such paths can grow
	// exponentially with network size.
	ModeAllSimple Mode = "all_simple"
)

// ParseMode parses a mode name. The empty string selects ModeShortest.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeShortest:
		return ModeShortest, nil
	case ModeAllShortest, ModeAllSimple:
		return Mode(s), nil
	}
	return "", apperror.NewWithField(apperror.CodeUnknownMode, "unknown path mode "+s, "mode")
}

// PathRequest describes a path query. A nil To means every node; a nil
// Weights means the default edge length.
type PathRequest struct {
	From    resolve.Endpoints
	To      resolve.Endpoints
	Weights resolve.Weights
	Mode    Mode
}

// Path is one result row. Nodes runs from the source to Target inclusive;
// Edges holds the edge between each pair of consecutive nodes and is only
// filled in ModeShortest. An unreachable target gives empty Nodes.
type Path struct {
	Target int
	Nodes  []int
	Edges  []int
	Cost   float64 // +Inf when unreachable; hop count in ModeAllSimple
}

// PathResult holds the rows of a path query and any advisory warnings.
type PathResult struct {
	Mode     Mode
	Source   int
	Paths    []Path
	Warnings apperror.Warnings
}

// ShortestPaths runs req against n.
func ShortestPaths(n *network.Network, req PathRequest) (*PathResult, error) {
	return paths(context.Background(), n, NewGraph(n), req)
}

func paths(ctx context.Context, n *network.Network, g *Graph, req PathRequest) (*PathResult, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	var warns apperror.Warnings
	from, w, err := resolve.Nodes(n, req.From, resolve.RoleFrom)
	if err != nil {
		return nil, err
	}
	warns.Merge(w)
	if len(from) > 1 {
		warns.Add(apperror.CodeFromNarrowed, "%d source nodes given, using only the first (%d)", len(from), from[0])
	}
	src := from[0]

	to := resolve.All(n)
	if req.To != nil {
		to, w, err = resolve.Nodes(n, req.To, resolve.RoleTo)
		if err != nil {
			return nil, err
		}
		warns.Merge(w)
	}

	var weights []float64
	if mode != ModeAllSimple {
		weights, err = resolve.EdgeWeights(n, req.Weights)
		if err != nil {
			return nil, err
		}
	}

	res := &PathResult{Mode: mode, Source: src}
	switch mode {
	case ModeShortest:
		res.Paths, err = shortest(ctx, g, weights, src, to)
	case ModeAllShortest:
		res.Paths, err = allShortest(ctx, g, weights, src, to)
	case ModeAllSimple:
		res.Paths, err = allSimple(ctx, g, src, to)
	}
	if err != nil {
		return nil, err
	}
	res.Warnings = warns
	return res, nil
}

func shortest(ctx context.Context, g *Graph, w []float64, src int, to []int) ([]Path, error) {
	tr, err := ShortestTree(ctx, g, w, src)
	if err != nil {
		return nil, err
	}
	out := make([]Path, len(to))
	for i, t := range to {
		nodes, edges := tr.PathTo(t)
		out[i] = Path{Target: t, Nodes: nodes, Edges: edges, Cost: tr.Dist[t]}
	}
	return out, nil
}

// allShortest enumerates, for each target, every path whose cost equals the
// shortest distance. Rows for one target are in lexicographic node order; an
// unreachable target yields a single empty row.
func allShortest(ctx context.Context, g *Graph, w []float64, src int, to []int) ([]Path, error) {
	tr, err := ShortestTree(ctx, g, w, src)
	if err != nil {
		return nil, err
	}

	// preds[v] lists the distinct nodes u with a tight arc u -> v.
	preds := make([][]int, g.NumNodes)
	for u := range g.NumNodes {
		if math.IsInf(tr.Dist[u], 1) {
			continue
		}
		start, end := g.ArcsFrom(u)
		for a := start; a < end; a++ {
			v := g.Head[a]
			if v != u && sameCost(tr.Dist[u]+g.cost(w, a), tr.Dist[v]) && !slices.Contains(preds[v], u) {
				preds[v] = append(preds[v], u)
			}
		}
	}

	var out []Path
	onPath := make([]bool, g.NumNodes)
	for _, t := range to {
		if math.IsInf(tr.Dist[t], 1) {
			out = append(out, Path{Target: t, Nodes: []int{}, Cost: tr.Dist[t]})
			continue
		}

		var found [][]int
		var rev []int
		var walk func(v int) error
		walk = func(v int) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rev = append(rev, v)
			onPath[v] = true
			if v == src {
				p := slices.Clone(rev)
				reverse(p)
				found = append(found, p)
			} else {
				for _, u := range preds[v] {
					// Zero-cost cycles make the tight-arc graph cyclic.
					if !onPath[u] {
						if err := walk(u); err != nil {
							return err
						}
					}
				}
			}
			onPath[v] = false
			rev = rev[:len(rev)-1]
			return nil
		}
		if err := walk(t); err != nil {
			return nil, err
		}

		slices.SortFunc(found, slices.Compare[[]int])
		for _, p := range found {
			out = append(out, Path{Target: t, Nodes: p, Cost: tr.Dist[t]})
		}
	}
	return out, nil
}

// allSimple enumerates every simple path from src that ends in a target, in
// depth-first order. Paths continue through targets, parallel edges count
// once and the trivial path from src to itself is not reported.
func allSimple(ctx context.Context, g *Graph, src int, to []int) ([]Path, error) {
	isTarget := make([]bool, g.NumNodes)
	for _, t := range to {
		isTarget[t] = true
	}

	var out []Path
	onPath := make([]bool, g.NumNodes)
	path := []int{src}
	onPath[src] = true
	steps := 0

	var walk func(u int) error
	walk = func(u int) error {
		steps++
		if steps%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		start, end := g.ArcsFrom(u)
		for a := start; a < end; a++ {
			v := g.Head[a]
			if onPath[v] || firstArcTo(g, start, a, v) != a {
				continue
			}
			path = append(path, v)
			onPath[v] = true
			if isTarget[v] {
				out = append(out, Path{Target: v, Nodes: slices.Clone(path), Cost: float64(len(path) - 1)})
			}
			if err := walk(v); err != nil {
				return err
			}
			onPath[v] = false
			path = path[:len(path)-1]
		}
		return nil
	}
	if err := walk(src); err != nil {
		return nil, err
	}
	return out, nil
}

// firstArcTo returns the first arc in [start, upto] pointing at v.
func firstArcTo(g *Graph, start, upto, v int) int {
	for a := start; a <= upto; a++ {
		if g.Head[a] == v {
			return a
		}
	}
	return upto
}

// sameCost compares path costs with a relative tolerance, so sums of
// floating point weights taken in different orders still tie.
func sameCost(a, b float64) bool {
	if a == b {
		return true
	}
	scale := max(1, math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= 1e-9*scale
}
