// Package world describes the read-only tile network the follower walks and
// provides an in-memory implementation backed by YAML fixtures.
package world

import "trackroute/internal/track"

// Oracle answers questions about the tile network. Implementations must be
// safe for concurrent readers and must not change while a search runs.
type Oracle interface {
	// Tile returns everything known about a tile. Tiles outside the map
	// report KindVoid.
	Tile(t track.Tile) TileInfo
	// ReachableTrackdirs lists the trackdirs of the given network present on
	// the tile. entry is the edge crossed to reach it (InvalidDiagDir when
	// asking about the tile a vehicle already occupies).
	ReachableTrackdirs(t track.Tile, mode track.TransportType, sub track.RoadSubType, entry track.DiagDir) track.TrackdirBits
	// PlatformLength counts the station tiles from t onwards in direction dir,
	// t included.
	PlatformLength(t track.Tile, dir track.DiagDir) int
	// TypeSpeed is the top speed of a rail or road type, 0 when unlimited.
	TypeSpeed(mode track.TransportType, id track.TypeID) int
}

// Kind classifies tiles for the follower.
type Kind uint8

const (
	KindVoid Kind = iota
	KindTrack
	KindDepot
	KindStation
	KindRoadStop
	KindTunnel
	KindBridge
)

var kindNames = [...]string{"void", "track", "depot", "station", "roadstop", "tunnel", "bridge"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind accepts the lower-case kind names used in fixtures.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindVoid, false
}

// TileInfo is the per-tile record. Dir means:
//   - depot: the side the depot opens onto
//   - road stop: the side a bay stop opens onto, or the axis of a drive-through stop
//   - station: the platform axis
//   - tunnel/bridge: the direction leading from this end towards OtherEnd
type TileInfo struct {
	Kind         Kind
	Transport    track.TransportType
	Tracks       track.TrackBits
	TramTracks   track.TrackBits
	Owner        track.Owner
	Type         track.TypeID
	Slope        track.Slope
	Dir          track.DiagDir
	OtherEnd     track.Tile
	BridgeSpeed  int
	StationID    int
	DriveThrough bool
}

// IsDepotOf reports whether the tile is a depot serving mode.
func (i TileInfo) IsDepotOf(mode track.TransportType) bool {
	return i.Kind == KindDepot && i.Transport == mode
}

// IsBayStop reports whether the tile is a road stop with a single open side.
func (i TileInfo) IsBayStop() bool {
	return i.Kind == KindRoadStop && !i.DriveThrough
}

// IsTunnelBridge reports whether the tile is a tunnel mouth or bridge ramp.
func (i TileInfo) IsTunnelBridge() bool {
	return i.Kind == KindTunnel || i.Kind == KindBridge
}

// IsPlatform reports whether the tile is part of a multi-tile stop the
// follower skips over in one hop.
func (i TileInfo) IsPlatform(mode track.TransportType) bool {
	switch mode {
	case track.TransportRail:
		return i.Kind == KindStation && i.Transport == mode
	case track.TransportRoad:
		return i.Kind == KindRoadStop && i.DriveThrough && i.Transport == mode
	}
	return false
}

// TunnelBridgeLength is the number of tiles between this end and the other,
// counting the far end but not this one.
func (i TileInfo) TunnelBridgeLength(at track.Tile) int {
	dx, dy := at.Distance(i.OtherEnd)
	return dx + dy
}
