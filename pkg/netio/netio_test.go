package netio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLines(t *testing.T) {
	lines := []orb.LineString{
		{{0, 0}, {1, 0}},
		{{1, 0}, {1, 1}, {2, 1}},
		{{2, 1}, {0, 0}},
		{{5, 5}, {6, 5}},
	}
	attrs := []network.Attrs{{"name": "a"}, {"name": "b"}, nil, {"lanes": 2}}

	n, err := FromLines(lines, attrs, Options{Directed: true})
	require.NoError(t, err)

	assert.True(t, n.Directed)
	assert.Equal(t, []orb.Point{{0, 0}, {1, 0}, {2, 1}, {5, 5}, {6, 5}}, n.NodePoints())

	type pair struct{ from, to int }
	var got []pair
	for _, e := range n.Edges {
		got = append(got, pair{e.From, e.To})
	}
	assert.Equal(t, []pair{{0, 1}, {1, 2}, {2, 0}, {3, 4}}, got)

	assert.Equal(t, network.Attrs{"name": nil, "lanes": nil}, n.Edges[2].Attrs)
	assert.Equal(t, network.Attrs{"name": nil, "lanes": 2}, n.Edges[3].Attrs)
	require.NoError(t, n.Validate(0))

	lines[0][0] = orb.Point{9, 9}
	assert.Equal(t, orb.Point{0, 0}, n.Edges[0].Geom[0], "geometry copied")
}

func TestFromLinesErrors(t *testing.T) {
	_, err := FromLines([]orb.LineString{{{0, 0}}}, nil, Options{})
	assert.True(t, apperror.Is(err, apperror.CodeInvalidInput))

	_, err = FromLines([]orb.LineString{{{0, 0}, {1, 1}}}, []network.Attrs{}, Options{})
	assert.True(t, apperror.Is(err, apperror.CodeInvalidInput))
}

func TestRoundTrip(t *testing.T) {
	n := &network.Network{
		Directed:   true,
		Geographic: true,
		Nodes: []network.Node{
			{Name: "depot", Geom: orb.Point{4.9, 52.37}, Attrs: network.Attrs{"kind": "depot"}},
			{Geom: orb.Point{4.91, 52.37}, Attrs: network.Attrs{"kind": nil}},
		},
		Edges: []network.Edge{
			{From: 0, To: 1, Geom: orb.LineString{{4.9, 52.37}, {4.905, 52.371}, {4.91, 52.37}}, Attrs: network.Attrs{"speed": 30.0}},
			{From: 1, To: 0, Geom: orb.LineString{{4.91, 52.37}, {4.9, 52.37}}, Attrs: network.Attrs{"speed": nil}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, n))
	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestWriteRejectsReservedAttrs(t *testing.T) {
	base := func() *network.Network {
		return &network.Network{
			Nodes: []network.Node{{Geom: orb.Point{0, 0}}, {Geom: orb.Point{1, 0}}},
			Edges: []network.Edge{{From: 0, To: 1, Geom: orb.LineString{{0, 0}, {1, 0}}}},
		}
	}

	tests := []struct {
		name   string
		mutate func(n *network.Network)
		want   string
	}{
		{"node name on unnamed node", func(n *network.Network) { n.Nodes[1].Attrs = network.Attrs{"name": "x"} }, `node 1: attribute "name"`},
		{"node name beside Name", func(n *network.Network) {
			n.Nodes[0].Name = "a"
			n.Nodes[0].Attrs = network.Attrs{"name": "b"}
		}, `node 0: attribute "name"`},
		{"edge from", func(n *network.Network) { n.Edges[0].Attrs = network.Attrs{"from": 7} }, `edge 0: attribute "from"`},
		{"edge to", func(n *network.Network) { n.Edges[0].Attrs = network.Attrs{"to": nil} }, `edge 0: attribute "to"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := base()
			tt.mutate(n)
			var buf bytes.Buffer
			err := Write(&buf, n)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, buf.Len())
		})
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, base()))
}

func TestReadPlainLines(t *testing.T) {
	const doc = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 0]]}, "properties": {"highway": "primary"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[1, 0], [1, 1]]}, "properties": {}}
  ]
}`
	n, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.False(t, n.Directed)
	assert.Equal(t, 3, n.NumNodes())
	assert.Equal(t, 2, n.NumEdges())
	assert.Equal(t, 1, n.Edges[1].From)
	assert.Equal(t, network.Attrs{"highway": nil}, n.Edges[1].Attrs)
}

func TestReadSnapsMissingEndpoints(t *testing.T) {
	const doc = `{
  "type": "FeatureCollection",
  "directed": true,
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 0]}, "properties": {"name": "b"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"name": "a"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 0]]}, "properties": {}}
  ]
}`
	n, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, n.Directed)
	require.Equal(t, 1, n.NumEdges())
	assert.Equal(t, 1, n.Edges[0].From)
	assert.Equal(t, 0, n.Edges[0].To)
	idx, ok := n.NodeIndex("a")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"not a collection", `{"type": "Feature", "geometry": null, "properties": {}}`},
		{"polygon", `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}, "properties": {}}]}`},
		{"bad index", `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {}},
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,0]]}, "properties": {"from": 0, "to": 3}}]}`},
		{"no node at end", `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {}},
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,0]]}, "properties": {}}]}`},
		{"endpoint mismatch", `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [5, 5]}, "properties": {}},
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,0]]}, "properties": {"from": 0, "to": 1}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	n, err := FromLines([]orb.LineString{{{0, 0}, {1, 0}}}, nil, Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "net.geojson")
	require.NoError(t, WriteFile(path, n))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, n.NodePoints(), got.NodePoints())
	assert.Equal(t, n.EdgeLines(), got.EdgeLines())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
}
