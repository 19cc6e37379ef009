package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ridecoach/internal/api"
	"ridecoach/internal/service"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serves profile, goals, rides and analyses over HTTP. On-demand analysis
(POST /api/activities/:id/analyze) needs a stored Strava login; without one
the endpoint answers 503.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			e, err := setupEnv(opts, out, false, true)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var analyzer api.Analyzer
			if err := e.cfg.Validate(); err != nil {
				log.Warn().Err(err).Msg("Strava not configured, on-demand analysis disabled")
			} else if client, err := connectStrava(ctx, e, out, false); err != nil {
				log.Warn().Err(err).Msg("no usable Strava login, on-demand analysis disabled")
			} else {
				analyzer = service.NewAnalysisService(client, e.db, e.cfg)
			}

			if addr == "" {
				addr = e.cfg.Server.Addr
			}

			gin.SetMode(gin.ReleaseMode)
			server := api.NewServer(service.NewQueryService(e.db, e.cfg.Profile()), analyzer)
			return server.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	return cmd
}
