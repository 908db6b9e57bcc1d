// Package osm loads road networks from OpenStreetMap PBF extracts.
package osm

import (
	"context"
	"io"
	"strconv"

	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Edge attribute names set by Load.
const (
	AttrWayID    = "osm_id"
	AttrHighway  = "highway"
	AttrName     = "name"
	AttrMaxSpeed = "maxspeed"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	return isOpen(tags)
}

// isOpen rejects area highways and ways closed to the public.
func isOpen(tags osm.Tags) bool {
	if tags.Find("area") == "yes" {
		return false
	}
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		// Time dependent, not routable.
		forward, backward = false, false
	}
	return forward, backward
}

// wayInfo holds the parts of a way kept after the first pass.
type wayInfo struct {
	ID       osm.WayID
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
	Attrs    network.Attrs
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Bound keeps only way segments with both ends inside it. The zero
	// value disables filtering.
	Bound orb.Bound
	// Directed emits one edge per allowed travel direction and honours
	// oneway tags. Otherwise each way piece becomes a single undirected edge.
	Directed bool
	// AnyHighway accepts every open way with a highway tag, not only roads
	// drivable by car.
	AnyHighway bool
}

func (o LoadOptions) useBound() bool {
	return o.Bound != orb.Bound{}
}

// Load reads an OSM PBF extract into a geographic network. Ways are split
// into edges at junctions, the nodes shared by several ways, so edges keep
// the intermediate way geometry. Nodes are named by their OSM id.
//
// The reader is consumed twice, ways first and node coordinates second, so
// it must implement io.ReadSeeker.
func Load(ctx context.Context, rs io.ReadSeeker, opts LoadOptions) (*network.Network, error) {
	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 {
			continue
		}
		info, ok := parseWay(w, opts)
		if !ok {
			continue
		}
		for _, id := range info.NodeIDs {
			referenced[id] = struct{}{}
		}
		ways = append(ways, info)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, eris.Wrap(err, "pass 1 (ways)")
	}
	scanner.Close()
	zap.L().Info("Pass 1 complete", zap.Int("ways", len(ways)), zap.Int("referenced_nodes", len(referenced)))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, eris.Wrap(err, "seek for pass 2")
	}

	coords := make(map[osm.NodeID]orb.Point, len(referenced))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			coords[n.ID] = orb.Point{n.Lon, n.Lat}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, eris.Wrap(err, "pass 2 (nodes)")
	}
	scanner.Close()
	zap.L().Info("Pass 2 complete", zap.Int("coordinates", len(coords)))

	return build(ways, coords, opts), nil
}

// parseWay applies the way filter and collects the tags kept as attributes.
func parseWay(w *osm.Way, opts LoadOptions) (wayInfo, bool) {
	if opts.AnyHighway {
		if w.Tags.Find("highway") == "" || !isOpen(w.Tags) {
			return wayInfo{}, false
		}
	} else if !isCarAccessible(w.Tags) {
		return wayInfo{}, false
	}

	fwd, bwd := true, true
	if opts.Directed {
		fwd, bwd = directionFlags(w.Tags)
		if !fwd && !bwd {
			return wayInfo{}, false
		}
	}

	ids := make([]osm.NodeID, len(w.Nodes))
	for i, wn := range w.Nodes {
		ids[i] = wn.ID
	}
	attrs := network.Attrs{
		AttrWayID:   int64(w.ID),
		AttrHighway: w.Tags.Find("highway"),
	}
	for _, key := range []string{AttrName, AttrMaxSpeed} {
		if v := w.Tags.Find(key); v != "" {
			attrs[key] = v
		}
	}
	return wayInfo{ID: w.ID, NodeIDs: ids, Forward: fwd, Backward: bwd, Attrs: attrs}, true
}

// build turns filtered ways into a network. Segments with an end lacking
// coordinates or outside the bound break a way into separate runs.
func build(ways []wayInfo, coords map[osm.NodeID]orb.Point, opts LoadOptions) *network.Network {
	type run struct {
		way   int
		nodes []osm.NodeID
	}

	var runs []run
	skipped, outside := 0, 0
	usable := func(id osm.NodeID) bool {
		p, ok := coords[id]
		if !ok {
			skipped++
			return false
		}
		if opts.useBound() && !opts.Bound.Contains(p) {
			outside++
			return false
		}
		return true
	}
	for wi, w := range ways {
		var cur []osm.NodeID
		for _, id := range w.NodeIDs {
			if !usable(id) {
				if len(cur) >= 2 {
					runs = append(runs, run{way: wi, nodes: cur})
				}
				cur = nil
				continue
			}
			cur = append(cur, id)
		}
		if len(cur) >= 2 {
			runs = append(runs, run{way: wi, nodes: cur})
		}
	}

	// A node used more than once, or at the end of a run, is a junction.
	uses := make(map[osm.NodeID]int)
	for _, r := range runs {
		for _, id := range r.nodes {
			uses[id]++
		}
		uses[r.nodes[0]]++
		uses[r.nodes[len(r.nodes)-1]]++
	}

	n := &network.Network{Directed: opts.Directed, Geographic: true}
	nodeSet := make(map[osm.NodeID]int)
	addNode := func(id osm.NodeID) int {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := len(n.Nodes)
		nodeSet[id] = idx
		n.Nodes = append(n.Nodes, network.Node{
			Name:  strconv.FormatInt(int64(id), 10),
			Geom:  coords[id],
			Attrs: network.Attrs{AttrWayID: int64(id)},
		})
		return idx
	}

	for _, r := range runs {
		w := ways[r.way]
		start := 0
		for i := 1; i < len(r.nodes); i++ {
			if uses[r.nodes[i]] < 2 && i < len(r.nodes)-1 {
				continue
			}
			piece := r.nodes[start : i+1]
			ls := make(orb.LineString, len(piece))
			for k, id := range piece {
				ls[k] = coords[id]
			}
			from, to := addNode(piece[0]), addNode(piece[len(piece)-1])

			if w.Forward {
				n.Edges = append(n.Edges, network.Edge{From: from, To: to, Geom: ls, Attrs: w.Attrs.Clone()})
			}
			if w.Backward && opts.Directed {
				rev := ls.Clone()
				rev.Reverse()
				n.Edges = append(n.Edges, network.Edge{From: to, To: from, Geom: rev, Attrs: w.Attrs.Clone()})
			}
			start = i
		}
	}
	n.FillEdgeColumns(network.Columns(n.EdgeAttrs()))

	if skipped > 0 {
		zap.L().Warn("Skipped way nodes without coordinates", zap.Int("count", skipped))
	}
	if outside > 0 {
		zap.L().Info("Filtered way nodes outside bounding box", zap.Int("count", outside))
	}
	zap.L().Info("Built OSM network", zap.Int("nodes", n.NumNodes()), zap.Int("edges", n.NumEdges()), zap.Bool("directed", n.Directed))
	return n
}
