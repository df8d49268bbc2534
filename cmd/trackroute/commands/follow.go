package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"trackroute/internal/follow"
	"trackroute/internal/routing"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

type followOptions struct {
	fixture string
	at      string
	no90    bool
	vehicle vehicleFlags
}

func newFollowCommand() *cobra.Command {
	opts := &followOptions{}
	cmd := &cobra.Command{
		Use:     "follow",
		Short:   "Show where a vehicle can go from one tile in one step",
		Example: "  trackroute follow --fixture world.yaml --owner 1 --at 3,1,X_SW",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.fixture, "fixture", "", "map fixture (YAML)")
	cmd.Flags().StringVar(&opts.at, "at", "", "position as x,y,trackdir")
	cmd.Flags().BoolVar(&opts.no90, "no-90", false, "forbid 90 degree turns")
	opts.vehicle.register(cmd)
	cmd.MarkFlagRequired("fixture")
	cmd.MarkFlagRequired("at")
	return cmd
}

func runFollow(cmd *cobra.Command, opts *followOptions) error {
	veh, err := opts.vehicle.vehicle()
	if err != nil {
		return err
	}
	at, err := track.ParseState(opts.at)
	if err != nil {
		return errors.Wrap(err, "--at")
	}
	m, err := world.LoadFixture(opts.fixture)
	if err != nil {
		return err
	}
	cfg := routing.DefaultConfig()
	cfg.Allow90DegreeTurns = !opts.no90
	cfg.SegmentCache.Enabled = false
	svc := routing.NewService(m, cfg)

	res, ok, err := svc.Follow(veh, at)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(w, "%s: %s\n", at, res.Err)
		return nil
	}
	fmt.Fprintf(w, "%s -> %s exit %s trackdirs %s\n", at, res.NewTile, res.ExitDir, res.Trackdirs)
	var notes []string
	if res.Reversed {
		notes = append(notes, "reversed")
	}
	if res.Tunnel {
		notes = append(notes, "tunnel")
	}
	if res.Bridge {
		notes = append(notes, "bridge")
	}
	if res.Station {
		notes = append(notes, "station")
	}
	if res.Skipped > 0 {
		notes = append(notes, fmt.Sprintf("skipped %s tiles", humanize.Comma(int64(res.Skipped))))
	}
	if len(notes) > 0 {
		fmt.Fprintf(w, "  %v\n", notes)
	}
	limit, err := svc.SpeedLimit(veh, at)
	if err == nil && limit != follow.NoSpeedLimit {
		fmt.Fprintf(w, "  speed limit %s\n", humanize.Comma(int64(limit)))
	}
	return nil
}
