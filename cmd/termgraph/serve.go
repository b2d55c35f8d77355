package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/termgraph/internal/metrics"
	"github.com/matsen/termgraph/internal/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the graph page over HTTP",
	Long: `Build the graph view once and serve it until interrupted.

Routes:
  GET /                      interactive page
  GET /graph.json            nodes, edges, stats and adjacency
  GET /nodes/{id}/neighbors  neighbor ids of one term
  GET /nodes/{id}/state      highlight state with {id} focused
  GET /search?q=             ids whose name contains q
  GET /health                liveness
  GET /metrics               Prometheus metrics

Examples:
  termgraph serve --dataset glossary.json --metadata ./terms
  termgraph serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	m := metrics.NewCollector()
	v := mustLoadView(ctx, cfg, logger, m)

	if humanOutput {
		outputHuman("%s http://%s\n", Heading.Sprint("Serving glossary graph on"), cfg.Server.Addr)
	}

	srv := server.New(v,
		server.WithAddr(cfg.Server.Addr),
		server.WithLogger(logger),
		server.WithMetrics(m),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)
	return srv.Run(ctx)
}
