package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/ccb2n19/sfnetworks/pkg/api"
	"github.com/ccb2n19/sfnetworks/pkg/netio"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/resolve"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBound(t *testing.T) {
	b, err := parseBound("103.6,1.15,104.1,1.48")
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{103.6, 1.15}, Max: orb.Point{104.1, 1.48}}, b)

	for _, s := range []string{"", "1,2,3", "a,b,c,d", "2,0,1,1"} {
		_, err := parseBound(s)
		assert.Error(t, err, s)
	}
}

func TestParseEndpoints(t *testing.T) {
	tests := []struct {
		in   string
		want resolve.Endpoints
	}{
		{"", nil},
		{"3", resolve.IndexSet{3}},
		{"[1, 2]", resolve.IndexSet{1, 2}},
		{"depot", resolve.NameSet{"depot"}},
		{`"depot"`, resolve.NameSet{"depot"}},
		{"[[0.5, 1]]", resolve.PointSet{{0.5, 1}}},
	}
	for _, tt := range tests {
		got, err := parseEndpoints("from", tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseEndpoints("from", "1.5")
	assert.Error(t, err)
}

func TestPathsCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "net.geojson")

	n, err := netio.FromLines([]orb.LineString{
		{{0, 0}, {1, 0}},
		{{1, 0}, {3, 0}},
	}, []network.Attrs{{"time": 5.0}, {"time": 1.0}}, netio.Options{})
	require.NoError(t, err)
	require.NoError(t, netio.WriteFile(path, n))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"paths", "--network", path, "--from", "0", "--to", "[2]", "--weights", "time"})
	require.NoError(t, rootCmd.Execute())

	var resp api.PathsResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, []int{0, 1, 2}, resp.Paths[0].Nodes)
	require.NotNil(t, resp.Paths[0].Cost)
	assert.Equal(t, 6.0, *resp.Paths[0].Cost)
}
