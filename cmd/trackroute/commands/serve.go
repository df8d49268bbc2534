package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trackroute/internal/app"
	"trackroute/internal/telemetry"
)

func newServeCommand(logger zerolog.Logger) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route inspector, metrics and diagnostics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), cfg, telemetry.WrapZerolog(logger))
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "trackroute.yaml", "config file path")
	return cmd
}
