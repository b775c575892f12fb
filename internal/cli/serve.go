package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantview/internal/server"
	"github.com/matzehuels/plantview/pkg/config"
)

// newServeCmd creates the serve command that runs the conversion API server.
func newServeCmd(cfg *config.Config) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion API server",
		Long: `Serve exposes the conversion broker over HTTP:

  POST /api/v1/convert   convert diagram source to an image
  GET  /api/v1/health    liveness probe

The server forwards renders to the engine at engine_base_url, bounding
concurrency and classifying every outcome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}

			broker := buildBroker(*cfg, logger)
			logger.Debug("engine configured",
				"base_url", cfg.EngineBaseURL,
				"concurrency", cfg.EngineConcurrencyLimit,
				"timeout", cfg.RequestTimeout())

			return server.New(broker, logger).Run(cmd.Context(), cfg.ListenAddr)
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "bind address (overrides listen_addr)")
	return cmd
}
