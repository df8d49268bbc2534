package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"trackroute/internal/pathfind"
	"trackroute/internal/routing"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

type routeOptions struct {
	fixture        string
	from           string
	to             string
	depot          bool
	reverse        string
	reversePenalty int
	maxNodes       int
	no90           bool
	jsonOutput     bool
	vehicle        vehicleFlags
}

type routeOutput struct {
	Outcome  string        `json:"outcome"`
	Cost     int           `json:"cost"`
	Hops     int           `json:"hops"`
	Reversed bool          `json:"reversed"`
	Expanded int           `json:"expanded"`
	Nearest  *track.State  `json:"nearest,omitempty"`
	Path     []track.State `json:"path"`
	Elapsed  string        `json:"elapsed"`
}

func newRouteCommand() *cobra.Command {
	opts := &routeOptions{}
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Find the cheapest route between two points",
		Example: `  trackroute route --fixture world.yaml --owner 1 --from 0,1,X_SW --to 9,1
  trackroute route --fixture world.yaml --owner 1 --from 3,1,X_SW --reverse 3,1,X_NE --reverse-penalty 100 --to 0,1
  trackroute route --fixture world.yaml --owner 1 --from 3,1,X_SW --depot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.fixture, "fixture", "", "map fixture (YAML)")
	cmd.Flags().StringVar(&opts.from, "from", "", "origin as x,y,trackdir")
	cmd.Flags().StringVar(&opts.to, "to", "", "destination tile as x,y")
	cmd.Flags().BoolVar(&opts.depot, "depot", false, "route to the nearest own depot instead of --to")
	cmd.Flags().StringVar(&opts.reverse, "reverse", "", "alternative origin after turning around, as x,y,trackdir")
	cmd.Flags().IntVar(&opts.reversePenalty, "reverse-penalty", 0, "cost of starting from --reverse")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", pathfind.DefaultMaxSearchNodes, "node budget, 0 for unlimited")
	cmd.Flags().BoolVar(&opts.no90, "no-90", false, "forbid 90 degree turns")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")
	opts.vehicle.register(cmd)
	cmd.MarkFlagRequired("fixture")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagsMutuallyExclusive("to", "depot")
	cmd.MarkFlagsOneRequired("to", "depot")

	return cmd
}

func (o *routeOptions) request() (routing.Request, error) {
	veh, err := o.vehicle.vehicle()
	if err != nil {
		return routing.Request{}, err
	}
	from, err := track.ParseState(o.from)
	if err != nil {
		return routing.Request{}, errors.Wrap(err, "--from")
	}
	req := routing.Request{Vehicle: veh, Origin: pathfind.OriginAt(from)}
	if o.reverse != "" {
		rev, err := track.ParseState(o.reverse)
		if err != nil {
			return routing.Request{}, errors.Wrap(err, "--reverse")
		}
		seed := pathfind.SeedOf(rev)
		req.Origin.Reverse = &seed
		req.Origin.ReversePenalty = o.reversePenalty
	}
	if o.depot {
		req.Destination = routing.DepotTarget()
		return req, nil
	}
	to, err := track.ParseTile(o.to)
	if err != nil {
		return routing.Request{}, errors.Wrap(err, "--to")
	}
	req.Destination = routing.TileTarget(to)
	return req, nil
}

func runRoute(cmd *cobra.Command, opts *routeOptions) error {
	req, err := opts.request()
	if err != nil {
		return err
	}
	m, err := world.LoadFixture(opts.fixture)
	if err != nil {
		return err
	}

	cfg := routing.DefaultConfig()
	cfg.MaxSearchNodes = opts.maxNodes
	cfg.Allow90DegreeTurns = !opts.no90
	cfg.SegmentCache.Enabled = false
	svc := routing.NewService(m, cfg)

	started := time.Now()
	resp, err := svc.Route(cmd.Context(), req)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	out := routeOutput{
		Outcome:  resp.Outcome.String(),
		Cost:     resp.Cost,
		Hops:     resp.Hops(),
		Reversed: resp.Reversed,
		Expanded: resp.Expanded,
		Path:     resp.Path,
		Elapsed:  elapsed.String(),
	}
	if !resp.Found() && len(resp.Path) > 0 {
		nearest := resp.Nearest
		out.Nearest = &nearest
	}
	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printRoute(cmd.OutOrStdout(), out)
	return nil
}

func printRoute(w io.Writer, out routeOutput) {
	fmt.Fprintf(w, "%s: cost %s over %s %s", out.Outcome, humanize.Comma(int64(out.Cost)), humanize.Comma(int64(out.Hops)), plural(out.Hops, "hop", "hops"))
	if out.Reversed {
		fmt.Fprint(w, ", starting reversed")
	}
	fmt.Fprintf(w, " (%s %s expanded in %s)\n", humanize.Comma(int64(out.Expanded)), plural(out.Expanded, "node", "nodes"), out.Elapsed)
	if out.Nearest != nil {
		fmt.Fprintf(w, "closest approach: %s\n", out.Nearest)
	}
	for i, st := range out.Path {
		fmt.Fprintf(w, "%4d  %s\n", i, st)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
