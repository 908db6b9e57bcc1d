package merge

import (
	"testing"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/spatial"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line builds a network of one straight edge from a to b.
func line(a, b orb.Point) *network.Network {
	return &network.Network{
		Nodes: []network.Node{{Geom: a}, {Geom: b}},
		Edges: []network.Edge{{From: 0, To: 1, Geom: orb.LineString{a, b}, Attrs: network.Attrs{"road": "main"}}},
	}
}

func TestBlendAtEndpointMerges(t *testing.T) {
	n := line(orb.Point{0, 0}, orb.Point{1, 0})
	feats := []spatial.Feature{{Geom: orb.Point{0, 0}, Attrs: network.Attrs{"stop": "A"}}}

	out, warns, err := Blend(n, feats, BlendOptions{})
	require.NoError(t, err)
	assert.Empty(t, warns)

	assert.Equal(t, 2, out.NumNodes())
	assert.Equal(t, 1, out.NumEdges())
	assert.Equal(t, "A", out.Nodes[0].Attrs["stop"])
	assert.Nil(t, out.Nodes[1].Attrs["stop"])
	assert.Nil(t, n.Nodes[0].Attrs, "input untouched")
}

func TestBlendSplitsEdge(t *testing.T) {
	n := line(orb.Point{0, 0}, orb.Point{1, 0})
	feats := []spatial.Feature{{Geom: orb.Point{0.6, 0}, Attrs: network.Attrs{"stop": "B"}}}

	out, warns, err := Blend(n, feats, BlendOptions{})
	require.NoError(t, err)
	assert.Empty(t, warns)

	require.Equal(t, 3, out.NumNodes())
	require.Equal(t, 2, out.NumEdges())
	assert.Equal(t, orb.Point{0.6, 0}, out.Nodes[2].Geom)
	assert.Equal(t, "B", out.Nodes[2].Attrs["stop"])

	assert.Equal(t, network.Edge{From: 0, To: 2, Geom: orb.LineString{{0, 0}, {0.6, 0}}, Attrs: network.Attrs{"road": "main"}}, out.Edges[0])
	assert.Equal(t, network.Edge{From: 2, To: 1, Geom: orb.LineString{{0.6, 0}, {1, 0}}, Attrs: network.Attrs{"road": "main"}}, out.Edges[1])
	require.NoError(t, out.Validate(network.DefaultTolerance))

	assert.Equal(t, 1, n.NumEdges(), "input untouched")
}

func TestBlendOffLineProjects(t *testing.T) {
	n := line(orb.Point{0, 0}, orb.Point{2, 0})
	feats := []spatial.Feature{{Geom: orb.Point{0.5, 0.3}}}

	out, _, err := Blend(n, feats, BlendOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, out.NumNodes())
	assert.Equal(t, orb.Point{0.5, 0}, out.Nodes[2].Geom)
}

func TestBlendSplitsAtInteriorVertex(t *testing.T) {
	n := &network.Network{
		Nodes: []network.Node{{Geom: orb.Point{0, 0}}, {Geom: orb.Point{2, 0}}},
		Edges: []network.Edge{{From: 0, To: 1, Geom: orb.LineString{{0, 0}, {1, 1}, {2, 0}}}},
	}
	out, _, err := Blend(n, []spatial.Feature{{Geom: orb.Point{1, 1.5}}}, BlendOptions{})
	require.NoError(t, err)

	require.Equal(t, 2, out.NumEdges())
	assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, out.Edges[0].Geom)
	assert.Equal(t, orb.LineString{{1, 1}, {2, 0}}, out.Edges[1].Geom)
	require.NoError(t, out.Validate(network.DefaultTolerance))
}

func TestBlendSequentialSplits(t *testing.T) {
	n := line(orb.Point{0, 0}, orb.Point{4, 0})
	feats := []spatial.Feature{
		{Geom: orb.Point{1, 0}, Attrs: network.Attrs{"stop": "a"}},
		{Geom: orb.Point{3, 0}, Attrs: network.Attrs{"stop": "b"}},
		{Geom: orb.Point{2, 0}, Attrs: network.Attrs{"stop": "c"}},
	}

	out, warns, err := Blend(n, feats, BlendOptions{})
	require.NoError(t, err)
	assert.Empty(t, warns)
	require.Equal(t, 5, out.NumNodes())
	require.Equal(t, 4, out.NumEdges())
	require.NoError(t, out.Validate(network.DefaultTolerance))

	// Walk the chain from node 0 to node 1 and check the stops in order.
	next := make(map[int]int)
	for _, e := range out.Edges {
		next[e.From] = e.To
	}
	var stops []any
	for v := next[0]; v != 1; v = next[v] {
		stops = append(stops, out.Nodes[v].Attrs["stop"])
	}
	assert.Equal(t, []any{"a", "c", "b"}, stops)
}

func TestBlendRepeatedPointKeepsFirst(t *testing.T) {
	n := line(orb.Point{0, 0}, orb.Point{1, 0})
	feats := []spatial.Feature{
		{Geom: orb.Point{0.5, 0}, Attrs: network.Attrs{"stop": "first"}},
		{Geom: orb.Point{0.5, 0}, Attrs: network.Attrs{"stop": "second"}},
	}

	out, warns, err := Blend(n, feats, BlendOptions{})
	require.NoError(t, err)
	assert.True(t, warns.Has(apperror.CodeMultipleMatches))
	assert.Equal(t, 3, out.NumNodes())
	assert.Equal(t, "first", out.Nodes[2].Attrs["stop"])
}

func TestBlendMaxDist(t *testing.T) {
	n := line(orb.Point{0, 0}, orb.Point{1, 0})
	feats := []spatial.Feature{
		{Geom: orb.Point{0.5, 5}},
		{Geom: orb.Point{0.5, 0.1}},
	}

	out, warns, err := Blend(n, feats, BlendOptions{MaxDist: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, warns.Count(apperror.CodePointNotBlended))
	assert.Equal(t, 3, out.NumNodes())
}

func TestBlendGeographicNearestEdge(t *testing.T) {
	// Edge 0 runs north-south 8.3 km east of the point; edge 1 runs
	// east-west 13.3 km north of it.
	n := &network.Network{
		Geographic: true,
		Nodes: []network.Node{
			{Geom: orb.Point{0.15, 59.9}}, {Geom: orb.Point{0.15, 60.1}},
			{Geom: orb.Point{-0.5, 60.12}}, {Geom: orb.Point{0.5, 60.12}},
		},
		Edges: []network.Edge{
			{From: 0, To: 1, Geom: orb.LineString{{0.15, 59.9}, {0.15, 60.1}}},
			{From: 2, To: 3, Geom: orb.LineString{{-0.5, 60.12}, {0.5, 60.12}}},
		},
	}

	out, warns, err := Blend(n, []spatial.Feature{{Geom: orb.Point{0, 60}}}, BlendOptions{MaxDist: 10000})
	require.NoError(t, err)
	assert.Empty(t, warns)
	require.Equal(t, 5, out.NumNodes())
	require.Equal(t, 3, out.NumEdges())

	at := out.Nodes[4].Geom
	assert.InDelta(t, 0.15, at[0], 1e-9)
	assert.InDelta(t, 60, at[1], 1e-9)
	assert.Equal(t, 4, out.Edges[0].To, "edge 0 was split")
	assert.Equal(t, 1, out.Edges[2].To)
	require.NoError(t, out.Validate(network.DefaultTolerance))
}

func TestBlendRejectsNonPoints(t *testing.T) {
	n := line(orb.Point{0, 0}, orb.Point{1, 0})
	feats := []spatial.Feature{{Geom: orb.LineString{{0, 0}, {1, 1}}}}

	_, _, err := Blend(n, feats, BlendOptions{})
	assert.True(t, apperror.Is(err, apperror.CodeUnsupportedType))
}

func TestBlendWithoutEdges(t *testing.T) {
	n := &network.Network{Nodes: []network.Node{{Geom: orb.Point{0, 0}}}}
	out, warns, err := Blend(n, []spatial.Feature{{Geom: orb.Point{1, 1}}}, BlendOptions{})
	require.NoError(t, err)
	assert.True(t, warns.Has(apperror.CodePointNotBlended))
	assert.Equal(t, 1, out.NumNodes())
}

func TestJoinNetworksSharedNode(t *testing.T) {
	a, b, c := orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}
	x := line(a, b)
	y := line(b, c)
	y.Edges[0].Attrs = network.Attrs{"lanes": 2}

	out, warns, err := JoinNetworks(x, y, 0)
	require.NoError(t, err)
	assert.Empty(t, warns)

	require.Equal(t, 3, out.NumNodes())
	assert.Equal(t, []orb.Point{a, b, c}, out.NodePoints())
	require.Equal(t, 2, out.NumEdges())
	assert.Equal(t, 1, out.Edges[0].To, "x edge ends at unified B")
	assert.Equal(t, 1, out.Edges[1].From, "y edge starts at unified B")
	assert.Equal(t, 2, out.Edges[1].To)

	assert.Equal(t, network.Attrs{"road": "main", "lanes": nil}, out.Edges[0].Attrs)
	assert.Equal(t, network.Attrs{"road": nil, "lanes": 2}, out.Edges[1].Attrs)
	require.NoError(t, out.Validate(network.DefaultTolerance))
}

func TestJoinNetworksKeepsDuplicateEdges(t *testing.T) {
	x := line(orb.Point{0, 0}, orb.Point{1, 0})
	out, _, err := JoinNetworks(x, x.Clone(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumNodes())
	assert.Equal(t, 2, out.NumEdges())
}

func TestJoinNetworksTolerance(t *testing.T) {
	x := line(orb.Point{0, 0}, orb.Point{1, 0})
	y := line(orb.Point{1.0005, 0}, orb.Point{2, 0})

	out, _, err := JoinNetworks(x, y, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumNodes())

	out, _, err = JoinNetworks(x, y, 0.001)
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumNodes())
	assert.Equal(t, orb.Point{1, 0}, out.Nodes[1].Geom, "first occurrence wins")
}

func TestJoinNetworksToleranceDoesNotChain(t *testing.T) {
	x := line(orb.Point{0, 0}, orb.Point{0.8, 0})
	y := line(orb.Point{1.6, 0}, orb.Point{3, 0})

	out, _, err := JoinNetworks(x, y, 1)
	require.NoError(t, err)
	assert.Equal(t, []orb.Point{{0, 0}, {1.6, 0}, {3, 0}}, out.NodePoints(),
		"(1.6, 0) is within tol of (0.8, 0) but not of its group's first node")
	require.Equal(t, 2, out.NumEdges())
	assert.Equal(t, [2]int{0, 0}, [2]int{out.Edges[0].From, out.Edges[0].To})
	assert.Equal(t, [2]int{1, 2}, [2]int{out.Edges[1].From, out.Edges[1].To})
}

func TestJoinNetworksNodeAttrs(t *testing.T) {
	x := line(orb.Point{0, 0}, orb.Point{1, 0})
	x.Nodes[1].Attrs = network.Attrs{"kind": "x"}
	x.Nodes[1].Name = "B"
	y := line(orb.Point{1, 0}, orb.Point{2, 0})
	y.Nodes[0].Attrs = network.Attrs{"kind": "y", "height": 3}
	y.Nodes[0].Name = "other"
	y.Nodes[1].Name = "B"

	out, warns, err := JoinNetworks(x, y, 0)
	require.NoError(t, err)
	assert.Equal(t, network.Attrs{"kind": "x", "height": 3}, out.Nodes[1].Attrs)
	assert.Equal(t, network.Attrs{"kind": nil, "height": nil}, out.Nodes[0].Attrs)
	assert.Equal(t, "B", out.Nodes[1].Name)
	assert.Equal(t, "", out.Nodes[2].Name)
	assert.Equal(t, 1, warns.Count(apperror.CodeNameConflict), "one aggregated warning")
	require.NoError(t, out.Validate(network.DefaultTolerance))
}

func TestJoinNetworksDirectedness(t *testing.T) {
	x := line(orb.Point{0, 0}, orb.Point{1, 0})
	x.Directed = true
	y := line(orb.Point{1, 0}, orb.Point{2, 0})

	out, warns, err := JoinNetworks(x, y, 0)
	require.NoError(t, err)
	assert.True(t, out.Directed)
	assert.True(t, warns.Has(apperror.CodeDirectednessMismatch))

	y.Geographic = true
	_, _, err = JoinNetworks(x, y, 0)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidInput))
}
