package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/meetingmesh/config"
	"github.com/hupe1980/meetingmesh/runtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the invocation HTTP server",
	Long: `Run the HTTP server exposing the invocation endpoint.

  GET  /ping         liveness probe, answers HEALTHY
  POST /invocations  {"prompt": "<transcript>"} -> plain-text outcome

The server drains in-flight invocations on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		logger := newLogger()
		orc, err := buildOrchestrator(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		srv := runtime.NewServer(orc, func(o *runtime.Options) {
			o.Addr = cfg.Server.Addr
			o.Logger = logger
		})
		return srv.Run(cmd.Context())
	},
}
