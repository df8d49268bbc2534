package track

import "fmt"

// TransportType selects which network a follower walks.
type TransportType uint8

const (
	TransportRail TransportType = iota
	TransportRoad
	TransportWater
	TransportEnd

	InvalidTransport TransportType = 0xFF
)

var transportNames = [TransportEnd]string{"rail", "road", "water"}

func (t TransportType) String() string {
	if t >= TransportEnd {
		return fmt.Sprintf("TransportType(%d)", uint8(t))
	}
	return transportNames[t]
}

// ParseTransport accepts "rail", "road" or "water".
func ParseTransport(s string) (TransportType, bool) {
	for i, name := range transportNames {
		if name == s {
			return TransportType(i), true
		}
	}
	return InvalidTransport, false
}

// RoadSubType separates ordinary road vehicles from trams.
type RoadSubType uint8

const (
	RoadSubTypeRoad RoadSubType = iota
	RoadSubTypeTram
)

func (s RoadSubType) String() string {
	if s == RoadSubTypeTram {
		return "tram"
	}
	return "road"
}

// Owner identifies a company. OwnerNone is used for unowned tiles.
type Owner uint8

const OwnerNone Owner = 0xFF

// TypeID is a rail or road type index.
type TypeID uint8

// TypeSet is a set of up to 64 rail or road types.
type TypeSet uint64

// TypeSetOf builds a set from the listed types.
func TypeSetOf(ids ...TypeID) TypeSet {
	var s TypeSet
	for _, id := range ids {
		s |= 1 << (id & 63)
	}
	return s
}

// Has reports whether id is in the set.
func (s TypeSet) Has(id TypeID) bool {
	return s&(1<<(id&63)) != 0
}

// TypeSetAll accepts every type.
const TypeSetAll = ^TypeSet(0)
