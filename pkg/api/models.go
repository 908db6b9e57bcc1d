package api

import (
	"math"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/routing"
)

// PathsRequest is the JSON body for POST /api/v1/paths.
//
// From and To accept a node index, a node name, an array of either (null
// entries are dropped), an array of [x, y] pairs, or a GeoJSON Point or
// MultiPoint. A missing To means every node. Weights accepts an edge
// attribute name, "none" for hop counts, or an array with one number per
// edge; when missing the server default applies.
type PathsRequest struct {
	From    any    `json:"from"`
	To      any    `json:"to,omitempty"`
	Weights any    `json:"weights,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// PathsResponse is the JSON response for a path query.
type PathsResponse struct {
	Mode     string        `json:"mode"`
	Source   int           `json:"source"`
	Paths    []PathJSON    `json:"paths"`
	Warnings []WarningJSON `json:"warnings,omitempty"`
}

// PathJSON is one path. Cost is null when the target is unreachable, in
// which case Nodes is empty.
type PathJSON struct {
	Target int      `json:"target"`
	Nodes  []int    `json:"nodes"`
	Edges  []int    `json:"edges,omitempty"`
	Cost   *float64 `json:"cost"`
}

// CostMatrixRequest is the JSON body for POST /api/v1/cost-matrix. Missing
// From or To means every node.
type CostMatrixRequest struct {
	From    any `json:"from,omitempty"`
	To      any `json:"to,omitempty"`
	Weights any `json:"weights,omitempty"`
}

// CostMatrixResponse is the JSON response for a cost matrix query. Costs
// holds one row per From entry; null marks an unreachable pair.
type CostMatrixResponse struct {
	From     []int         `json:"from"`
	To       []int         `json:"to"`
	Costs    [][]*float64  `json:"costs"`
	Warnings []WarningJSON `json:"warnings,omitempty"`
}

// WarningJSON is an advisory warning attached to a successful response.
type WarningJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes      int  `json:"num_nodes"`
	NumEdges      int  `json:"num_edges"`
	NumComponents int  `json:"num_components"`
	Directed      bool `json:"directed"`
	Geographic    bool `json:"geographic"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewPathsResponse converts a path query result for encoding.
func NewPathsResponse(res *routing.PathResult) PathsResponse {
	resp := PathsResponse{
		Mode:     string(res.Mode),
		Source:   res.Source,
		Paths:    make([]PathJSON, len(res.Paths)),
		Warnings: newWarnings(res.Warnings),
	}
	for i, p := range res.Paths {
		resp.Paths[i] = PathJSON{Target: p.Target, Nodes: p.Nodes, Edges: p.Edges, Cost: finite(p.Cost)}
	}
	return resp
}

// NewCostMatrixResponse converts a cost matrix for encoding.
func NewCostMatrixResponse(m *routing.CostMatrix, warns apperror.Warnings) CostMatrixResponse {
	resp := CostMatrixResponse{
		From:     m.From,
		To:       m.To,
		Costs:    make([][]*float64, len(m.Costs)),
		Warnings: newWarnings(warns),
	}
	for i, row := range m.Costs {
		resp.Costs[i] = make([]*float64, len(row))
		for j, c := range row {
			resp.Costs[i][j] = finite(c)
		}
	}
	return resp
}

func newWarnings(ws apperror.Warnings) []WarningJSON {
	if len(ws) == 0 {
		return nil
	}
	out := make([]WarningJSON, len(ws))
	for i, w := range ws {
		out[i] = WarningJSON{Code: string(w.Code), Message: w.Message}
	}
	return out
}

// finite returns nil for infinite costs, which JSON cannot encode.
func finite(c float64) *float64 {
	if math.IsInf(c, 0) || math.IsNaN(c) {
		return nil
	}
	return &c
}
