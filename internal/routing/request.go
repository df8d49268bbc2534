package routing

import (
	"fmt"

	"trackroute/internal/pathfind"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

// DestinationKind selects the destination policy of a search.
type DestinationKind uint8

const (
	// DestinationTile targets one tile, optionally on given trackdirs.
	DestinationTile DestinationKind = iota
	// DestinationDepot targets the cheapest depot owned by the vehicle's owner.
	DestinationDepot
)

func (k DestinationKind) String() string {
	switch k {
	case DestinationTile:
		return "tile"
	case DestinationDepot:
		return "depot"
	}
	return fmt.Sprintf("destination(%d)", uint8(k))
}

// Destination describes where a search should end.
type Destination struct {
	Kind      DestinationKind
	Tile      track.Tile
	Trackdirs track.TrackdirBits
}

// TileTarget is a destination accepting any trackdir on t.
func TileTarget(t track.Tile) Destination {
	return Destination{Kind: DestinationTile, Tile: t}
}

// DepotTarget is a destination accepting any own depot.
func DepotTarget() Destination {
	return Destination{Kind: DestinationDepot}
}

func (d Destination) String() string {
	if d.Kind == DestinationDepot {
		return "depot"
	}
	if d.Trackdirs.Empty() {
		return d.Tile.String()
	}
	return fmt.Sprintf("%s %s", d.Tile, d.Trackdirs)
}

// Request is one route query.
type Request struct {
	// VehicleID only labels logs and spans.
	VehicleID   string
	Vehicle     world.Vehicle
	Origin      pathfind.Origin
	Destination Destination
}

// Response is a finished search together with the world revision it ran on.
type Response struct {
	pathfind.Result
	Generation uint64
}
