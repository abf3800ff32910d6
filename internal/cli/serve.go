package cli

import (
	"github.com/spf13/cobra"

	"github.com/timenexus/timenexus/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve exposes the pipeline over HTTP: networks are posted as definitions with
inline tables or as flattened graphs, kept in sessions, extracted and drawn.
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()
			sessions, err := c.openSessions(ctx)
			if err != nil {
				return err
			}
			defer sessions.Close()

			srvCfg := cfg.Server
			if addr != "" {
				srvCfg.Addr = addr
			}
			srv := server.New(runner, sessions, srvCfg, loggerFromContext(ctx))
			srv.SessionTTL = cfg.Session.TTL
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
