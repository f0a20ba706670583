package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrammer/internal/server"
	"github.com/matzehuels/diagrammer/pkg/observability"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram to a browser canvas",
		Long: `Serve the diagram over HTTP.

The browser canvas fetches the diagram from /api/diagram and reports drags,
selections and removals to /api/nodes/changes and /api/edges/changes. Every
change is written to the configured storage backend. Metrics are exposed on
/metrics.`,
		Example: `  diagrammer serve
  diagrammer serve --addr :9000 --backend badger`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			// Hooks go in before the diagram is loaded so the load is counted.
			reg := prometheus.NewRegistry()
			metrics := server.NewMetrics(reg)
			observability.SetStoreHooks(metrics)
			observability.SetPersistHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			cfg := sess.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			srv := server.New(server.Config{
				Addr:            cfg.Addr,
				ReadTimeout:     cfg.ReadTimeout,
				WriteTimeout:    cfg.WriteTimeout,
				IdleTimeout:     cfg.IdleTimeout,
				ShutdownTimeout: cfg.ShutdownTimeout,
				AllowedOrigins:  cfg.AllowedOrigins,
			}, server.Deps{
				Store:    sess.store,
				Forms:    sess.forms,
				Status:   sess.persist,
				Logger:   logger,
				Registry: reg,
				Metrics:  metrics,
			})

			stats := sess.store.Snapshot().Stats()
			logger.Info("serving diagram",
				"backend", sess.cfg.Storage.Backend,
				"source", sess.report.Source,
				"nodes", stats.Nodes,
				"edges", stats.Edges,
			)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}
