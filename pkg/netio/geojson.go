package netio

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Reserved property and member names of the GeoJSON encoding. Node names are
// stored under PropName; edges carry their endpoints under PropFrom and PropTo.
const (
	PropName       = "name"
	PropFrom       = "from"
	PropTo         = "to"
	MemberDirected = "directed"
	MemberGeo      = "geographic"
)

// Write encodes n as a FeatureCollection: one Point feature per node in index
// order, followed by one LineString feature per edge. A node attribute named
// PropName or an edge attribute named PropFrom or PropTo is an error, since
// Read would take it for the name or endpoint.
func Write(w io.Writer, n *network.Network) error {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		MemberDirected: n.Directed,
		MemberGeo:      n.Geographic,
	}
	for i, nd := range n.Nodes {
		if _, ok := nd.Attrs[PropName]; ok {
			return eris.Errorf("node %d: attribute %q is reserved", i, PropName)
		}
		f := geojson.NewFeature(nd.Geom)
		for k, v := range nd.Attrs {
			f.Properties[k] = v
		}
		if nd.Name != "" {
			f.Properties[PropName] = nd.Name
		}
		fc.Append(f)
	}
	for i, e := range n.Edges {
		for _, k := range []string{PropFrom, PropTo} {
			if _, ok := e.Attrs[k]; ok {
				return eris.Errorf("edge %d: attribute %q is reserved", i, k)
			}
		}
		f := geojson.NewFeature(e.Geom)
		for k, v := range e.Attrs {
			f.Properties[k] = v
		}
		f.Properties[PropFrom] = e.From
		f.Properties[PropTo] = e.To
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "failed to encode network")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "failed to write network")
	}
	return nil
}

// Read decodes a network written by Write. A collection without Point
// features is treated as plain linestrings and built with FromLines. Edges
// lacking endpoint properties are attached to the nodes at their end
// coordinates. The result is validated before it is returned.
func Read(r io.Reader) (*network.Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read network")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "failed to decode feature collection")
	}
	opts := Options{
		Directed:   boolMember(fc.ExtraMembers, MemberDirected),
		Geographic: boolMember(fc.ExtraMembers, MemberGeo),
	}

	var nodes, edges []*geojson.Feature
	for i, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Point:
			nodes = append(nodes, f)
		case orb.LineString:
			edges = append(edges, f)
		default:
			return nil, eris.Errorf("feature %d: unsupported geometry %T", i, f.Geometry)
		}
	}

	var n *network.Network
	if len(nodes) == 0 {
		lines := make([]orb.LineString, len(edges))
		attrs := make([]network.Attrs, len(edges))
		for i, f := range edges {
			lines[i] = f.Geometry.(orb.LineString)
			attrs[i] = network.Attrs(f.Properties)
		}
		n, err = FromLines(lines, attrs, opts)
		if err != nil {
			return nil, eris.Wrap(err, "failed to build network from lines")
		}
	} else {
		n, err = fromFeatures(nodes, edges, opts)
		if err != nil {
			return nil, err
		}
	}

	if err := n.Validate(network.DefaultTolerance); err != nil {
		return nil, eris.Wrap(err, "invalid network")
	}
	zap.L().Debug("Read network",
		zap.Int("nodes", n.NumNodes()),
		zap.Int("edges", n.NumEdges()),
		zap.Bool("directed", n.Directed))
	return n, nil
}

func fromFeatures(nodes, edges []*geojson.Feature, opts Options) (*network.Network, error) {
	n := &network.Network{Directed: opts.Directed, Geographic: opts.Geographic}
	n.Nodes = make([]network.Node, len(nodes))
	for i, f := range nodes {
		nd := network.Node{Geom: f.Geometry.(orb.Point), Attrs: network.Attrs(f.Properties.Clone())}
		if name, ok := nd.Attrs[PropName].(string); ok {
			nd.Name = name
			delete(nd.Attrs, PropName)
		}
		n.Nodes[i] = nd
	}

	var ix *geo.Index
	endpoint := func(props geojson.Properties, key string, at orb.Point) (int, error) {
		if v, ok := props[key]; ok {
			idx, err := toIndex(v, len(n.Nodes))
			if err != nil {
				return 0, eris.Wrapf(err, "property %q", key)
			}
			return idx, nil
		}
		if ix == nil {
			ix = geo.NewPointIndex(n.NodePoints())
		}
		idx, dist, ok := ix.Nearest(at, false)
		if !ok || dist > network.DefaultTolerance {
			return 0, eris.Errorf("no node at %v", at)
		}
		return idx, nil
	}

	n.Edges = make([]network.Edge, len(edges))
	for i, f := range edges {
		ls := f.Geometry.(orb.LineString)
		if len(ls) < 2 {
			return nil, eris.Errorf("edge %d: linestring has %d coordinates", i, len(ls))
		}
		from, err := endpoint(f.Properties, PropFrom, ls[0])
		if err != nil {
			return nil, eris.Wrapf(err, "edge %d", i)
		}
		to, err := endpoint(f.Properties, PropTo, ls[len(ls)-1])
		if err != nil {
			return nil, eris.Wrapf(err, "edge %d", i)
		}
		attrs := network.Attrs(f.Properties.Clone())
		delete(attrs, PropFrom)
		delete(attrs, PropTo)
		n.Edges[i] = network.Edge{From: from, To: to, Geom: ls, Attrs: attrs}
	}
	n.FillNodeColumns(network.Columns(n.NodeAttrs()))
	n.FillEdgeColumns(network.Columns(n.EdgeAttrs()))
	return n, nil
}

// toIndex converts a decoded JSON number into a node index.
func toIndex(v any, numNodes int) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("node index %v is %T, not a number", v, v)
	}
	if f != math.Trunc(f) || f < 0 || int(f) >= numNodes {
		return 0, fmt.Errorf("node index %v out of range [0, %d)", v, numNodes)
	}
	return int(f), nil
}

func boolMember(m geojson.Properties, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// ReadFile reads a network from a GeoJSON file.
func ReadFile(path string) (*network.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	n, err := Read(f)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to load %s", path)
	}
	return n, nil
}

// WriteFile writes n to path as GeoJSON, replacing any existing file.
func WriteFile(path string, n *network.Network) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", path)
	}
	if err := Write(f, n); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "failed to close %s", path)
	}
	return nil
}
