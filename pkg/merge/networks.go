package merge

import (
	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// JoinNetworks combines x and y into one network. A node collapses into the
// earliest node whose geometry lies within tol of it on both axes; every
// other node is kept. Matches are made against that earliest node only, so
// a run of nodes each within tol of the next does not collapse as a whole. Nodes are numbered by first occurrence, x before y, and
// a collapsed node takes the attributes of its first member, completed by
// columns only later members carry. Edges of x followed by edges of y are
// rewritten into the combined node numbering and never deduplicated.
//
// Both inputs should share directedness; otherwise x's flag is used and a
// warning is raised. Mixing geographic and planar coordinates is an error.
func JoinNetworks(x, y *network.Network, tol float64) (*network.Network, apperror.Warnings, error) {
	if tol < 0 {
		return nil, nil, apperror.Newf(apperror.CodeInvalidInput, "negative tolerance %g", tol).WithField("tolerance")
	}
	if x.Geographic != y.Geographic {
		return nil, nil, apperror.New(apperror.CodeInvalidInput, "cannot join geographic and planar networks")
	}

	var warns apperror.Warnings
	if x.Directed != y.Directed {
		warns.Add(apperror.CodeDirectednessMismatch, "joining networks of different directedness; using directed=%t", x.Directed)
	}

	all := make([]network.Node, 0, len(x.Nodes)+len(y.Nodes))
	all = append(all, x.Nodes...)
	all = append(all, y.Nodes...)
	nodeMap, reps := partitionNodes(all, tol)

	out := &network.Network{Directed: x.Directed, Geographic: x.Geographic}
	names := make(map[string]int)
	conflicts := 0
	for i, nd := range all {
		k := nodeMap[i]
		if k == len(out.Nodes) {
			out.Nodes = append(out.Nodes, network.Node{Geom: nd.Geom, Attrs: nd.Attrs.Clone()})
		} else {
			merged := out.Nodes[k].Attrs
			if merged == nil && len(nd.Attrs) > 0 {
				merged = make(network.Attrs, len(nd.Attrs))
				out.Nodes[k].Attrs = merged
			}
			for c, v := range nd.Attrs {
				if _, ok := merged[c]; !ok {
					merged[c] = v
				}
			}
		}

		if nd.Name == "" {
			continue
		}
		switch owner, used := names[nd.Name]; {
		case !used && out.Nodes[k].Name == "":
			out.Nodes[k].Name = nd.Name
			names[nd.Name] = k
		case used && owner == k:
		default:
			conflicts++
		}
	}
	if conflicts > 0 {
		warns.Add(apperror.CodeNameConflict, "%d node names clashed after the join; the first name was kept", conflicts)
	}
	out.FillNodeColumns(network.Columns(out.NodeAttrs()))

	out.Edges = make([]network.Edge, 0, len(x.Edges)+len(y.Edges))
	for _, part := range []struct {
		edges  []network.Edge
		offset int
	}{{x.Edges, 0}, {y.Edges, len(x.Nodes)}} {
		for _, e := range part.edges {
			out.Edges = append(out.Edges, network.Edge{
				From:  nodeMap[e.From+part.offset],
				To:    nodeMap[e.To+part.offset],
				Geom:  e.Geom.Clone(),
				Attrs: e.Attrs.Clone(),
			})
		}
	}
	out.FillEdgeColumns(network.Columns(out.EdgeAttrs()))

	zap.L().Debug("Joined networks",
		zap.Int("x_nodes", len(x.Nodes)),
		zap.Int("y_nodes", len(y.Nodes)),
		zap.Int("nodes", len(out.Nodes)),
		zap.Int("collapsed", len(all)-reps))
	return out, warns, nil
}

// partitionNodes maps every node to a group, numbered by first occurrence,
// and returns the group count. The first node of a group is its
// representative and a later node joins the first representative it matches
// within tol, so matches never chain through intermediate nodes. Empty
// geometries never group.
func partitionNodes(nodes []network.Node, tol float64) (network.IndexMap, int) {
	pts := make([]orb.Point, len(nodes))
	for i := range nodes {
		pts[i] = nodes[i].Geom
	}
	ix := geo.NewPointIndex(pts)

	m := make(network.IndexMap, len(nodes))
	for i := range m {
		m[i] = network.Removed
	}
	groups := 0
	for i, p := range pts {
		if m[i] != network.Removed {
			continue
		}
		m[i] = groups
		if !geo.IsEmptyPoint(p) {
			b := orb.Bound{Min: orb.Point{p[0] - tol, p[1] - tol}, Max: orb.Point{p[0] + tol, p[1] + tol}}
			ix.Search(b, func(j int) bool {
				if j > i && m[j] == network.Removed && geo.Equal(p, pts[j], tol) {
					m[j] = groups
				}
				return true
			})
		}
		groups++
	}
	return m, groups
}
