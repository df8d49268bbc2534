package pathfind

import (
	"trackroute/internal/track"
	"trackroute/internal/world"
)

const (
	straightCost = 10
	diagonalCost = 14
)

// DestinationPolicy decides when a search is done and how far a state is
// from being done. Estimate must never exceed the real remaining cost.
type DestinationPolicy interface {
	IsDestination(s track.State) bool
	Estimate(s track.State) int
}

// TileDestination targets one tile, optionally restricted to some trackdirs.
// An empty mask accepts any trackdir.
type TileDestination struct {
	Tile      track.Tile
	Trackdirs track.TrackdirBits
}

// IsDestination implements DestinationPolicy.
func (d TileDestination) IsDestination(s track.State) bool {
	if s.Tile != d.Tile {
		return false
	}
	return d.Trackdirs.Empty() || d.Trackdirs.Has(s.Dir)
}

// Estimate implements DestinationPolicy with the octile distance.
func (d TileDestination) Estimate(s track.State) int {
	return OctileDistance(s.Tile, d.Tile)
}

// OctileDistance is 14 per diagonal and 10 per straight tile.
func OctileDistance(a, b track.Tile) int {
	dx, dy := a.Distance(b)
	lo, hi := min(dx, dy), max(dx, dy)
	return diagonalCost*lo + straightCost*(hi-lo)
}

// DepotDestination accepts any depot of the given network owned by Owner.
// Without a target location the search degrades to uniform cost.
type DepotDestination[O world.Oracle] struct {
	Oracle O
	Mode   track.TransportType
	Owner  track.Owner
}

// IsDestination implements DestinationPolicy.
func (d DepotDestination[O]) IsDestination(s track.State) bool {
	info := d.Oracle.Tile(s.Tile)
	return info.IsDepotOf(d.Mode) && info.Owner == d.Owner
}

// Estimate implements DestinationPolicy.
func (d DepotDestination[O]) Estimate(track.State) int {
	return 0
}
