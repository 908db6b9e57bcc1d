package routing

import (
	"context"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/resolve"
	"go.uber.org/zap"
)

// Router is the interface for path and cost queries.
type Router interface {
	Paths(ctx context.Context, req PathRequest) (*PathResult, error)
	CostMatrix(ctx context.Context, from, to resolve.Endpoints, weights resolve.Weights) (*CostMatrix, apperror.Warnings, error)
}

// Engine implements Router over one network whose traversal graph is built
// once and shared by every query. The network must not be modified after it
// is handed to NewEngine.
type Engine struct {
	net   *network.Network
	graph *Graph
}

// NewEngine creates an engine for n.
func NewEngine(n *network.Network) *Engine {
	g := NewGraph(n)
	zap.L().Debug("routing graph built",
		zap.Int("nodes", g.NumNodes),
		zap.Int("arcs", len(g.Head)),
		zap.Bool("directed", n.Directed))
	return &Engine{net: n, graph: g}
}

// Network returns the network the engine serves.
func (e *Engine) Network() *network.Network { return e.net }

// Paths runs a path query.
func (e *Engine) Paths(ctx context.Context, req PathRequest) (*PathResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths(ctx, e.net, e.graph, req)
}

// CostMatrix computes a cost matrix.
func (e *Engine) CostMatrix(ctx context.Context, from, to resolve.Endpoints, weights resolve.Weights) (*CostMatrix, apperror.Warnings, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return costMatrix(ctx, e.net, e.graph, from, to, weights)
}
