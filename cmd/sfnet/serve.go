package main

import (
	"time"

	"github.com/ccb2n19/sfnetworks/pkg/api"
	"github.com/ccb2n19/sfnetworks/pkg/resolve"
	"github.com/ccb2n19/sfnetworks/pkg/routing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve path and cost matrix queries over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		n, err := loadNetwork()
		if err != nil {
			return err
		}

		engine := routing.NewEngine(n)
		stats := api.StatsOf(n)
		zap.L().Info("Ready",
			zap.Int("components", stats.NumComponents),
			zap.Duration("elapsed", time.Since(start)))

		srvCfg := cfg.Server
		if serveAddr != "" {
			srvCfg.Addr = serveAddr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := api.NewMetrics(reg)

		handlers := api.NewHandlers(engine, stats,
			api.WithDefaultWeights(resolve.ParseWeights(cfg.Network.Weight)),
			api.WithMaxBodyBytes(srvCfg.MaxBodyBytes),
			api.WithMetrics(metrics))
		srv := api.NewServer(srvCfg, handlers, reg, metrics)
		return api.ListenAndServe(srv)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
