package commands

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"trackroute/internal/track"
	"trackroute/internal/world"
)

type vehicleFlags struct {
	mode      string
	owner     int
	tram      bool
	railTypes string
	roadTypes string
}

func (f *vehicleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "rail", "transport mode: rail, road or water")
	cmd.Flags().IntVar(&f.owner, "owner", 0, "owning company of the vehicle")
	cmd.Flags().BoolVar(&f.tram, "tram", false, "road vehicle runs on tram tracks")
	cmd.Flags().StringVar(&f.railTypes, "rail-types", "", "comma separated rail types the vehicle may use (default all)")
	cmd.Flags().StringVar(&f.roadTypes, "road-types", "", "comma separated road types the vehicle may use (default all)")
}

func (f *vehicleFlags) vehicle() (world.Vehicle, error) {
	mode, ok := track.ParseTransport(f.mode)
	if !ok {
		return world.Vehicle{}, errors.Newf("unknown mode %q", f.mode)
	}
	if f.owner < 0 || f.owner >= int(track.OwnerNone) {
		return world.Vehicle{}, errors.Newf("owner %d out of range", f.owner)
	}
	rail, err := parseTypeSet(f.railTypes)
	if err != nil {
		return world.Vehicle{}, errors.Wrap(err, "rail types")
	}
	road, err := parseTypeSet(f.roadTypes)
	if err != nil {
		return world.Vehicle{}, errors.Wrap(err, "road types")
	}
	veh := world.Vehicle{
		Owner:     track.Owner(f.owner),
		Transport: mode,
		RailTypes: rail,
		RoadTypes: road,
	}
	if f.tram {
		veh.SubType = track.RoadSubTypeTram
	}
	return veh, nil
}

func parseTypeSet(s string) (track.TypeSet, error) {
	if strings.TrimSpace(s) == "" {
		return track.TypeSetAll, nil
	}
	var set track.TypeSet
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id < 0 || id > 63 {
			return 0, errors.Newf("invalid type %q", part)
		}
		set |= track.TypeSetOf(track.TypeID(id))
	}
	return set, nil
}
