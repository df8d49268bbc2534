// Package commands implements the trackroute command line.
package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute(ctx context.Context, version string, logger zerolog.Logger) error {
	return newRootCommand(version, logger).ExecuteContext(ctx)
}

func newRootCommand(version string, logger zerolog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trackroute",
		Short: "Route finding over tile-based rail, road and water networks",
		Long: `trackroute searches for the cheapest route a vehicle can take across a
tile map of rail, road and water networks, following tunnels, bridges,
platforms and depots the way the vehicle would.

Maps are loaded from YAML fixtures. "route" and "follow" answer one query
from the command line; "serve" exposes a websocket inspector, metrics and
diagnostics over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRouteCommand())
	rootCmd.AddCommand(newFollowCommand())
	rootCmd.AddCommand(newServeCommand(logger))

	return rootCmd
}
