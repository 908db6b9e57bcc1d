// Package merge changes the structure of a network by blending external
// points into it or by joining it with another network.
package merge

import (
	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/spatial"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// BlendOptions tunes Blend.
type BlendOptions struct {
	// Tolerance is the distance in coordinate units under which a blended
	// location counts as an existing endpoint. Zero means
	// network.DefaultTolerance.
	Tolerance float64
	// MaxDist skips points farther than this from every edge, in meters for
	// geographic networks. Zero means no limit.
	MaxDist float64
}

// Blend inserts each point feature into n. Points are processed in input
// order: the point is projected onto its nearest edge, and either merged into
// the edge endpoint it coincides with or the edge is split at the projected
// location and a new node is created there. Attributes of a point are joined
// onto the node it ends up at.
//
// A split edge keeps its index for the part leading from its start to the new
// node; the remaining part is appended to the edges. New nodes are appended to
// the nodes. Later points see the edges created by earlier splits, so the
// result depends on the order of feats when several points fall near the same
// edge.
//
// Every feature must hold an orb.Point; anything else fails the whole call
// with UNSUPPORTED_TYPE and n is left untouched.
func Blend(n *network.Network, feats []spatial.Feature, opts BlendOptions) (*network.Network, apperror.Warnings, error) {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = network.DefaultTolerance
	}
	pts := make([]orb.Point, len(feats))
	for i, f := range feats {
		p, ok := f.Geom.(orb.Point)
		if !ok {
			return nil, nil, apperror.Newf(apperror.CodeUnsupportedType, "feature %d: cannot blend %T, only points", i, f.Geom).
				WithField("features")
		}
		pts[i] = p
	}

	out := n.Clone()
	b := &blender{
		net: out,
		ix:  geo.NewLineIndex(out.EdgeLines()),
		tol: tol,
	}

	var warns apperror.Warnings
	var skipped []int
	owner := make(map[int]int) // node -> feature whose attributes it takes
	repeated := 0
	for i, p := range pts {
		node, ok := b.blend(p, opts.MaxDist)
		if !ok {
			skipped = append(skipped, i)
			continue
		}
		if _, taken := owner[node]; taken {
			repeated++
			continue
		}
		owner[node] = i
	}
	if len(skipped) > 0 {
		warns.Add(apperror.CodePointNotBlended, "%d points were not blended: %v", len(skipped), skipped)
	}
	if repeated > 0 {
		warns.Add(apperror.CodeMultipleMatches, "%d points blended onto a node that already took another point's attributes", repeated)
	}

	featRows := make([]network.Attrs, len(feats))
	for i, f := range feats {
		featRows[i] = f.Attrs
	}
	incoming := make([]network.Attrs, len(out.Nodes))
	for node, f := range owner {
		incoming[node] = featRows[f]
	}
	for i, row := range network.JoinColumns(out.NodeAttrs(), incoming, network.Columns(featRows)) {
		out.Nodes[i].Attrs = row
	}
	out.FillNodeColumns(network.Columns(out.NodeAttrs()))

	zap.L().Debug("Blended points into network",
		zap.Int("points", len(feats)),
		zap.Int("skipped", len(skipped)),
		zap.Int("nodes", out.NumNodes()),
		zap.Int("edges", out.NumEdges()))
	return out, warns, nil
}

// blender holds the network under construction and an edge index kept in
// sync with every split.
type blender struct {
	net *network.Network
	ix  *geo.Index
	tol float64
}

// blend places p on the network and returns the node it landed on. ok is
// false when p is empty, the network has no edges, or p lies farther than
// maxDist from the nearest edge.
func (b *blender) blend(p orb.Point, maxDist float64) (node int, ok bool) {
	id, _, found := b.ix.Nearest(p, b.net.Geographic)
	if !found {
		return network.NoIndex, false
	}
	e := b.net.Edges[id]
	pr := geo.Project(e.Geom, p, b.net.Geographic)
	if maxDist > 0 && pr.Dist > maxDist {
		return network.NoIndex, false
	}

	from, to := b.net.Nodes[e.From].Geom, b.net.Nodes[e.To].Geom
	switch {
	case geo.Equal(pr.Point, from, b.tol) || geo.Equal(pr.Point, e.Geom[0], b.tol):
		return e.From, true
	case geo.Equal(pr.Point, to, b.tol) || geo.Equal(pr.Point, e.Geom[len(e.Geom)-1], b.tol):
		return e.To, true
	}
	return b.split(id, pr), true
}

// split cuts edge id at pr and returns the new node.
func (b *blender) split(id int, pr geo.Projection) int {
	e := b.net.Edges[id]
	// pr is not within tol of either end of e.Geom, so both parts keep at
	// least two coordinates.
	first, second, at := geo.Split(e.Geom, pr, b.tol)

	k := len(b.net.Nodes)
	b.net.Nodes = append(b.net.Nodes, network.Node{Geom: at})

	b.net.Edges[id] = network.Edge{From: e.From, To: k, Geom: first, Attrs: e.Attrs.Clone()}
	b.net.Edges = append(b.net.Edges, network.Edge{From: k, To: e.To, Geom: second, Attrs: e.Attrs.Clone()})

	b.ix.Insert(id, first)
	b.ix.Insert(len(b.net.Edges)-1, second)
	return k
}
