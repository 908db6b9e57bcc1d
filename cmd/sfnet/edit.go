package main

import (
	"os"

	"github.com/ccb2n19/sfnetworks/pkg/geo"
	"github.com/ccb2n19/sfnetworks/pkg/merge"
	"github.com/ccb2n19/sfnetworks/pkg/netio"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/spatial"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var editFlags struct {
	output    string
	features  string
	element   string
	predicate string
	bbox      string
	other     string
	maxDist   float64
}

var blendCmd = &cobra.Command{
	Use:   "blend",
	Short: "Insert the points of a GeoJSON file into the network as nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		feats, err := readFeatures(editFlags.features)
		if err != nil {
			return err
		}
		n, err := loadNetwork()
		if err != nil {
			return err
		}
		out, _, err := merge.Blend(n, feats, merge.BlendOptions{
			Tolerance: cfg.Network.Tolerance,
			MaxDist:   editFlags.maxDist,
		})
		if err != nil {
			return err
		}
		return writeNetwork(cmd, editFlags.output, out)
	},
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Merge a second network into the first, unifying coincident nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := loadNetwork()
		if err != nil {
			return err
		}
		other, err := netio.ReadFile(editFlags.other)
		if err != nil {
			return err
		}
		out, _, err := merge.JoinNetworks(n, other, cfg.Network.Tolerance)
		if err != nil {
			return err
		}
		return writeNetwork(cmd, editFlags.output, out)
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep the nodes or edges that satisfy a spatial predicate against a GeoJSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		el, pred, err := elementAndPredicate()
		if err != nil {
			return err
		}
		feats, err := readFeatures(editFlags.features)
		if err != nil {
			return err
		}
		geoms := make([]orb.Geometry, len(feats))
		for i, f := range feats {
			geoms[i] = f.Geom
		}
		n, err := loadNetwork()
		if err != nil {
			return err
		}
		out, _, err := spatial.Filter(n, el, geoms, pred)
		if err != nil {
			return err
		}
		return writeNetwork(cmd, editFlags.output, out)
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Copy the properties of matching GeoJSON features onto nodes or edges",
	RunE: func(cmd *cobra.Command, args []string) error {
		el, pred, err := elementAndPredicate()
		if err != nil {
			return err
		}
		feats, err := readFeatures(editFlags.features)
		if err != nil {
			return err
		}
		n, err := loadNetwork()
		if err != nil {
			return err
		}
		out, _, err := spatial.Join(n, el, feats, pred)
		if err != nil {
			return err
		}
		return writeNetwork(cmd, editFlags.output, out)
	},
}

var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Restrict the network to a bounding box",
	RunE: func(cmd *cobra.Command, args []string) error {
		el, err := network.ParseElement(editFlags.element)
		if err != nil {
			return err
		}
		b, err := parseBound(editFlags.bbox)
		if err != nil {
			return err
		}
		n, err := loadNetwork()
		if err != nil {
			return err
		}
		out, _, err := spatial.Crop(n, el, b)
		if err != nil {
			return err
		}
		return writeNetwork(cmd, editFlags.output, out)
	},
}

func init() {
	for _, c := range []*cobra.Command{blendCmd, joinCmd, filterCmd, attachCmd, cropCmd} {
		c.Flags().StringVarP(&editFlags.output, "output", "o", "-", "output GeoJSON file, - for stdout")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{blendCmd, filterCmd, attachCmd} {
		c.Flags().StringVar(&editFlags.features, "features", "", "GeoJSON feature collection")
		_ = c.MarkFlagRequired("features")
	}
	for _, c := range []*cobra.Command{filterCmd, attachCmd, cropCmd} {
		c.Flags().StringVar(&editFlags.element, "element", "nodes", "nodes or edges")
	}
	for _, c := range []*cobra.Command{filterCmd, attachCmd} {
		c.Flags().StringVar(&editFlags.predicate, "predicate", "intersects", "spatial predicate")
	}
	blendCmd.Flags().Float64Var(&editFlags.maxDist, "max-dist", 0, "skip points farther than this from every edge (0 means no limit)")
	joinCmd.Flags().StringVar(&editFlags.other, "other", "", "network GeoJSON file to merge in")
	_ = joinCmd.MarkFlagRequired("other")
	cropCmd.Flags().StringVar(&editFlags.bbox, "bbox", "", "minX,minY,maxX,maxY")
	_ = cropCmd.MarkFlagRequired("bbox")
}

func elementAndPredicate() (network.Element, geo.Predicate, error) {
	el, err := network.ParseElement(editFlags.element)
	if err != nil {
		return 0, 0, err
	}
	pred, err := geo.ParsePredicate(editFlags.predicate)
	if err != nil {
		return 0, 0, err
	}
	return el, pred, nil
}

// readFeatures loads a GeoJSON feature collection as spatial features.
func readFeatures(path string) ([]spatial.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrapf(err, "decode %s", path)
	}
	feats := make([]spatial.Feature, len(fc.Features))
	for i, f := range fc.Features {
		feats[i] = spatial.Feature{Geom: f.Geometry, Attrs: network.Attrs(f.Properties)}
	}
	return feats, nil
}
