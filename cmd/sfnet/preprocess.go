package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ccb2n19/sfnetworks/pkg/osm"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var preprocessFlags struct {
	input      string
	output     string
	bbox       string
	directed   bool
	anyHighway bool
	largest    bool
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Convert an OpenStreetMap PBF extract into a network GeoJSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := preprocessFlags
		opts := osm.LoadOptions{
			Directed:   f.directed || cfg.Network.Directed,
			AnyHighway: f.anyHighway,
		}
		if f.bbox != "" {
			b, err := parseBound(f.bbox)
			if err != nil {
				return err
			}
			opts.Bound = b
			zap.L().Info("Using bounding box filter",
				zap.Float64s("min", b.Min[:]),
				zap.Float64s("max", b.Max[:]))
		}

		start := time.Now()
		in, err := os.Open(f.input)
		if err != nil {
			return eris.Wrapf(err, "open %s", f.input)
		}
		defer in.Close()

		n, err := osm.Load(cmd.Context(), in, opts)
		if err != nil {
			return eris.Wrapf(err, "parse %s", f.input)
		}
		zap.L().Info("Parsed network", zap.Int("nodes", n.NumNodes()), zap.Int("edges", n.NumEdges()))

		if f.largest {
			total := n.NumNodes()
			n, _ = n.LargestComponent()
			zap.L().Info("Kept largest component",
				zap.Int("nodes", n.NumNodes()),
				zap.Int("edges", n.NumEdges()),
				zap.String("share", fmt.Sprintf("%.1f%%", 100*float64(n.NumNodes())/float64(max(total, 1)))))
		}

		if err := writeNetwork(cmd, f.output, n); err != nil {
			return err
		}
		zap.L().Info("Done", zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
		return nil
	},
}

func init() {
	f := preprocessCmd.Flags()
	f.StringVar(&preprocessFlags.input, "input", "", "path to .osm.pbf file")
	f.StringVar(&preprocessFlags.output, "output", "network.geojson", "output GeoJSON file, - for stdout")
	f.StringVar(&preprocessFlags.bbox, "bbox", "", "bounding box filter: minLon,minLat,maxLon,maxLat")
	f.BoolVar(&preprocessFlags.directed, "directed", false, "build a directed network honouring oneway tags")
	f.BoolVar(&preprocessFlags.anyHighway, "any-highway", false, "keep every highway, not only car roads")
	f.BoolVar(&preprocessFlags.largest, "largest", false, "keep only the largest connected component")
	_ = preprocessCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(preprocessCmd)
}

// parseBound parses "minX,minY,maxX,maxY".
func parseBound(s string) (orb.Bound, error) {
	var minX, minY, maxX, maxY float64
	if _, err := fmt.Sscanf(s, "%g,%g,%g,%g", &minX, &minY, &maxX, &maxY); err != nil {
		return orb.Bound{}, eris.Wrapf(err, "invalid bbox %q (expected minX,minY,maxX,maxY)", s)
	}
	if minX > maxX || minY > maxY {
		return orb.Bound{}, eris.Errorf("invalid bbox %q: min exceeds max", s)
	}
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}, nil
}
