package main

import (
	"encoding/json"

	"github.com/ccb2n19/sfnetworks/pkg/api"
	"github.com/ccb2n19/sfnetworks/pkg/resolve"
	"github.com/ccb2n19/sfnetworks/pkg/routing"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var queryFlags struct {
	from    string
	to      string
	weights string
	mode    string
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the paths from one node to a set of nodes as JSON",
	Example: `  sfnet paths --network city.geojson --from 12 --to '[40, 41]'
  sfnet paths --from '[[4.35, 50.84]]' --weights time --mode all_shortest`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseEndpoints("from", queryFlags.from)
		if err != nil {
			return err
		}
		if from == nil {
			return eris.New("--from is required")
		}
		to, err := parseEndpoints("to", queryFlags.to)
		if err != nil {
			return err
		}

		n, err := loadNetwork()
		if err != nil {
			return err
		}
		res, err := routing.NewEngine(n).Paths(cmd.Context(), routing.PathRequest{
			From:    from,
			To:      to,
			Weights: queryWeights(),
			Mode:    routing.Mode(queryFlags.mode),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, api.NewPathsResponse(res))
	},
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the shortest path cost matrix between two node sets as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseEndpoints("from", queryFlags.from)
		if err != nil {
			return err
		}
		to, err := parseEndpoints("to", queryFlags.to)
		if err != nil {
			return err
		}

		n, err := loadNetwork()
		if err != nil {
			return err
		}
		m, warns, err := routing.NewEngine(n).CostMatrix(cmd.Context(), from, to, queryWeights())
		if err != nil {
			return err
		}
		return printJSON(cmd, api.NewCostMatrixResponse(m, warns))
	},
}

func init() {
	for _, c := range []*cobra.Command{pathsCmd, matrixCmd} {
		f := c.Flags()
		f.StringVar(&queryFlags.from, "from", "", "source endpoints as JSON (index, name, array or GeoJSON point)")
		f.StringVar(&queryFlags.to, "to", "", "target endpoints as JSON; empty means every node")
		f.StringVar(&queryFlags.weights, "weights", "", "edge attribute used as weight, none for hop counts (default network.weight)")
		rootCmd.AddCommand(c)
	}
	pathsCmd.Flags().StringVar(&queryFlags.mode, "mode", "shortest", "shortest, all_shortest or all_simple")
}

// parseEndpoints decodes a JSON endpoint flag. A bare word that is not JSON
// is taken as a node name.
func parseEndpoints(flag, s string) (resolve.Endpoints, error) {
	if s == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		v = s
	}
	spec, err := resolve.Parse(v)
	if err != nil {
		return nil, eris.Wrapf(err, "--%s", flag)
	}
	return spec, nil
}

func queryWeights() resolve.Weights {
	if queryFlags.weights != "" {
		return resolve.ParseWeights(queryFlags.weights)
	}
	return resolve.ParseWeights(cfg.Network.Weight)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
