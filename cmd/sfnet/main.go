package main

import (
	"os"
	"time"

	"github.com/ccb2n19/sfnetworks/pkg/config"
	"github.com/ccb2n19/sfnetworks/pkg/logger"
	"github.com/ccb2n19/sfnetworks/pkg/netio"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg        *config.Config
	configPath string
	netPath    string
)

var rootCmd = &cobra.Command{
	Use:          "sfnet",
	Short:        "Spatial network analysis and routing",
	Long:         "Builds spatial networks from GeoJSON or OpenStreetMap extracts, edits them and answers shortest path queries from the command line or over HTTP.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := logger.Init(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./sfnet.yaml)")
	rootCmd.PersistentFlags().StringVar(&netPath, "network", "", "network GeoJSON file (overrides network.path)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadNetwork reads the configured network. The directed and geographic
// config flags switch those properties on for files that do not carry them.
func loadNetwork() (*network.Network, error) {
	path := netPath
	if path == "" {
		path = cfg.Network.Path
	}
	if path == "" {
		return nil, eris.New("no network given: set --network or network.path")
	}

	start := time.Now()
	n, err := netio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	n.Directed = n.Directed || cfg.Network.Directed
	n.Geographic = n.Geographic || cfg.Network.Geographic

	zap.L().Info("Network loaded",
		zap.String("path", path),
		zap.Int("nodes", n.NumNodes()),
		zap.Int("edges", n.NumEdges()),
		zap.Bool("directed", n.Directed),
		zap.Duration("elapsed", time.Since(start)))
	return n, nil
}

// writeNetwork writes n to path, or to stdout when path is empty or "-".
func writeNetwork(cmd *cobra.Command, path string, n *network.Network) error {
	if path == "" || path == "-" {
		return netio.Write(cmd.OutOrStdout(), n)
	}
	if err := netio.WriteFile(path, n); err != nil {
		return err
	}
	zap.L().Info("Network written",
		zap.String("path", path),
		zap.Int("nodes", n.NumNodes()),
		zap.Int("edges", n.NumEdges()))
	return nil
}
