package world

import "trackroute/internal/track"

// Vehicle carries the attributes the follower checks against the network.
type Vehicle struct {
	Owner     track.Owner
	Transport track.TransportType
	SubType   track.RoadSubType
	RailTypes track.TypeSet
	RoadTypes track.TypeSet
}

// IsTram reports whether the vehicle runs on tram tracks.
func (v Vehicle) IsTram() bool {
	return v.Transport == track.TransportRoad && v.SubType == track.RoadSubTypeTram
}
