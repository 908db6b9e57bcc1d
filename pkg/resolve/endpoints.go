// Package resolve turns caller-facing endpoint and weight specifications into
// node index sequences and edge weight vectors.
package resolve

import (
	"fmt"
	"math"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
)

// Endpoints specifies a set of path endpoints. It is one of PointSet,
// IndexSet or NameSet.
type Endpoints interface {
	endpoints()
}

// PointSet locates endpoints geometrically; each point snaps to its nearest
// node. A point with a NaN coordinate is empty.
type PointSet []orb.Point

// IndexSet gives node indices directly. network.NoIndex marks a missing entry.
type IndexSet []int

// NameSet gives node names. An empty string marks a missing entry.
type NameSet []string

func (PointSet) endpoints() {}
func (IndexSet) endpoints() {}
func (NameSet) endpoints()  {}

// Role names the side of a request an endpoint set belongs to.
type Role string

const (
	RoleFrom Role = "from"
	RoleTo   Role = "to"
)

// Nodes resolves spec to node indices, in input order. Empty or missing
// entries are dropped with a warning; it is an error if nothing is left.
func Nodes(n *network.Network, spec Endpoints, role Role) ([]int, apperror.Warnings, error) {
	var warns apperror.Warnings

	switch s := spec.(type) {
	case PointSet:
		kept := make([]orb.Point, 0, len(s))
		for _, p := range s {
			if !geo.IsEmptyPoint(p) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			return nil, nil, apperror.NewWithField(apperror.CodeInvalidInput, "all endpoint geometries are empty", string(role))
		}
		if dropped := len(s) - len(kept); dropped > 0 {
			warns.Add(apperror.CodeEmptyEndpointsDropped, "%d empty %s geometries dropped", dropped, role)
		}
		out := geo.NearestFeature(kept, n.NodePoints(), n.Geographic)
		if out[0] < 0 {
			return nil, nil, apperror.NewWithField(apperror.CodeInvalidInput, "network has no nodes to snap to", string(role))
		}
		return out, warns, nil

	case IndexSet:
		out := make([]int, 0, len(s))
		for _, idx := range s {
			if idx == network.NoIndex {
				continue
			}
			if idx < 0 || idx >= n.NumNodes() {
				return nil, nil, apperror.NewWithField(apperror.CodeInvalidInput,
					fmt.Sprintf("node index %d out of range [0, %d)", idx, n.NumNodes()), string(role)).
					WithDetails("index", idx)
			}
			out = append(out, idx)
		}
		if len(out) == 0 {
			return nil, nil, apperror.NewWithField(apperror.CodeInvalidInput, "all endpoint indices are missing", string(role))
		}
		if dropped := len(s) - len(out); dropped > 0 {
			warns.Add(apperror.CodeEmptyEndpointsDropped, "%d missing %s indices dropped", dropped, role)
		}
		return out, warns, nil

	case NameSet:
		out := make([]int, 0, len(s))
		for _, name := range s {
			if name == "" {
				continue
			}
			idx, ok := n.NodeIndex(name)
			if !ok {
				return nil, nil, apperror.NewWithField(apperror.CodeInvalidInput,
					fmt.Sprintf("no node named %q", name), string(role)).
					WithDetails("name", name)
			}
			out = append(out, idx)
		}
		if len(out) == 0 {
			return nil, nil, apperror.NewWithField(apperror.CodeInvalidInput, "all endpoint names are missing", string(role))
		}
		if dropped := len(s) - len(out); dropped > 0 {
			warns.Add(apperror.CodeEmptyEndpointsDropped, "%d missing %s names dropped", dropped, role)
		}
		return out, warns, nil
	}

	return nil, nil, apperror.NewWithField(apperror.CodeUnsupportedType,
		fmt.Sprintf("unsupported endpoint specification %T", spec), string(role))
}

// All returns every node index of n in order.
func All(n *network.Network) []int {
	out := make([]int, n.NumNodes())
	for i := range out {
		out[i] = i
	}
	return out
}

// Parse builds an endpoint specification from a decoded JSON value: a number
// or string, an array of numbers, strings or [x, y] pairs (null entries are
// missing), or a GeoJSON Point or MultiPoint object. A nil value yields a nil
// specification.
func Parse(v any) (Endpoints, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case float64:
		idx, err := toIndex(v)
		if err != nil {
			return nil, err
		}
		return IndexSet{idx}, nil
	case string:
		return NameSet{v}, nil
	case map[string]any:
		return parseGeoJSON(v)
	case []any:
		return parseArray(v)
	}
	return nil, apperror.Newf(apperror.CodeUnsupportedType, "unsupported endpoint specification %T", v)
}

func parseArray(vs []any) (Endpoints, error) {
	var kind string
	for _, e := range vs {
		var k string
		switch e.(type) {
		case nil:
			continue
		case float64:
			k = "index"
		case string:
			k = "name"
		case []any:
			k = "point"
		default:
			return nil, apperror.Newf(apperror.CodeUnsupportedType, "unsupported endpoint entry %T", e)
		}
		if kind != "" && kind != k {
			return nil, apperror.New(apperror.CodeUnsupportedType, "endpoint entries mix kinds")
		}
		kind = k
	}

	switch kind {
	case "", "index":
		out := make(IndexSet, len(vs))
		for i, e := range vs {
			if e == nil {
				out[i] = network.NoIndex
				continue
			}
			idx, err := toIndex(e.(float64))
			if err != nil {
				return nil, err
			}
			out[i] = idx
		}
		return out, nil
	case "name":
		out := make(NameSet, len(vs))
		for i, e := range vs {
			if e != nil {
				out[i] = e.(string)
			}
		}
		return out, nil
	default:
		out := make(PointSet, len(vs))
		for i, e := range vs {
			if e == nil {
				out[i] = geo.EmptyPoint()
				continue
			}
			p, err := toPoint(e.([]any))
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	}
}

func parseGeoJSON(m map[string]any) (Endpoints, error) {
	coords, _ := m["coordinates"].([]any)
	switch m["type"] {
	case "Point":
		if len(coords) == 0 {
			return PointSet{geo.EmptyPoint()}, nil
		}
		p, err := toPoint(coords)
		if err != nil {
			return nil, err
		}
		return PointSet{p}, nil
	case "MultiPoint":
		out := make(PointSet, 0, len(coords))
		for _, c := range coords {
			pc, ok := c.([]any)
			if !ok {
				return nil, apperror.New(apperror.CodeInvalidInput, "malformed MultiPoint coordinates")
			}
			p, err := toPoint(pc)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	}
	return nil, apperror.Newf(apperror.CodeUnsupportedType, "unsupported geometry type %v", m["type"])
}

func toIndex(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, apperror.Newf(apperror.CodeInvalidInput, "node index %v is not an integer", f)
	}
	return int(f), nil
}

func toPoint(c []any) (orb.Point, error) {
	if len(c) < 2 {
		return orb.Point{}, apperror.New(apperror.CodeInvalidInput, "point needs two coordinates")
	}
	x, ok1 := c[0].(float64)
	y, ok2 := c[1].(float64)
	if !ok1 || !ok2 {
		return orb.Point{}, apperror.New(apperror.CodeInvalidInput, "point coordinates must be numbers")
	}
	return orb.Point{x, y}, nil
}
