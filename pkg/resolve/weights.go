package resolve

import (
	"fmt"
	"math"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
)

// WeightAttr is the edge attribute used as weight when none is specified.
const WeightAttr = "weight"

// Weights specifies edge weights. It is one of Explicit, Attribute,
// DefaultLength or Unweighted; a nil Weights means DefaultLength.
type Weights interface {
	weights()
}

// Explicit gives one weight per edge, in edge index order.
type Explicit []float64

// Attribute reads weights from the named edge attribute.
type Attribute string

// DefaultLength uses the "weight" edge attribute when present and the
// geometric edge length otherwise.
type DefaultLength struct{}

// Unweighted makes every edge cost one hop, whatever attributes are stored.
type Unweighted struct{}

func (Explicit) weights()      {}
func (Attribute) weights()     {}
func (DefaultLength) weights() {}
func (Unweighted) weights()    {}

// EdgeWeights resolves spec against n. A nil result with a nil error is the
// unweighted marker.
//
// Explicit weights are used as given; their length must equal the edge
// count. Negative or NaN weights are rejected since the path engines assume
// non-negative costs.
func EdgeWeights(n *network.Network, spec Weights) ([]float64, error) {
	switch s := spec.(type) {
	case Unweighted:
		return nil, nil
	case Explicit:
		if len(s) != n.NumEdges() {
			return nil, apperror.NewWithField(apperror.CodeInvalidInput,
				fmt.Sprintf("got %d weights for %d edges", len(s), n.NumEdges()), "weights")
		}
		if err := checkWeights(s); err != nil {
			return nil, err
		}
		return append([]float64(nil), s...), nil
	case Attribute:
		return attributeWeights(n, string(s))
	case nil, DefaultLength:
		if n.HasEdgeAttr(WeightAttr) {
			return attributeWeights(n, WeightAttr)
		}
		w := make([]float64, n.NumEdges())
		for i := range n.Edges {
			w[i] = geo.Length(n.Edges[i].Geom, n.Geographic)
		}
		return w, nil
	}
	return nil, apperror.NewWithField(apperror.CodeUnsupportedType,
		fmt.Sprintf("unsupported weight specification %T", spec), "weights")
}

func attributeWeights(n *network.Network, name string) ([]float64, error) {
	if !n.HasEdgeAttr(name) {
		return nil, apperror.NewWithField(apperror.CodeAttributeNotFound,
			fmt.Sprintf("edges have no attribute %q", name), "weights")
	}
	w := make([]float64, n.NumEdges())
	for i := range n.Edges {
		f, ok := toFloat(n.Edges[i].Attrs[name])
		if !ok {
			return nil, apperror.NewWithField(apperror.CodeInvalidInput,
				fmt.Sprintf("edge %d: attribute %q is not numeric: %v", i, name, n.Edges[i].Attrs[name]), "weights").
				WithDetails("edge", i)
		}
		w[i] = f
	}
	if err := checkWeights(w); err != nil {
		return nil, err
	}
	return w, nil
}

func checkWeights(w []float64) error {
	for i, f := range w {
		if f < 0 || math.IsNaN(f) {
			return apperror.NewWithField(apperror.CodeInvalidInput,
				fmt.Sprintf("edge %d: weight %v is negative or NaN", i, f), "weights").
				WithDetails("edge", i)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// ParseWeights builds a weight specification from a request field: "" is
// the default, "none" or "unweighted" means Unweighted, any other string is
// an attribute name.
func ParseWeights(s string) Weights {
	switch s {
	case "":
		return DefaultLength{}
	case "none", "unweighted":
		return Unweighted{}
	}
	return Attribute(s)
}
