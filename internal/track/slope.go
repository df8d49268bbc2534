package track

// Slope records which tile corners are raised.
type Slope uint8

const (
	SlopeFlat Slope = 0
	SlopeW    Slope = 1
	SlopeS    Slope = 2
	SlopeE    Slope = 4
	SlopeN    Slope = 8

	SlopeSW Slope = SlopeS | SlopeW
	SlopeSE Slope = SlopeS | SlopeE
	SlopeNW Slope = SlopeN | SlopeW
	SlopeNE Slope = SlopeN | SlopeE

	slopeCount = 16
)

// uphillTrackdirs lists, per corner combination, the straight trackdirs that
// climb. Steep and three-corner slopes carry foundations and count as flat.
var uphillTrackdirs = [slopeCount]TrackdirBits{
	SlopeFlat:         TrackdirBitsNone,
	SlopeW:            TrackdirXSW.Bit() | TrackdirYNW.Bit(),
	SlopeS:            TrackdirXSW.Bit() | TrackdirYSE.Bit(),
	SlopeSW:           TrackdirXSW.Bit(),
	SlopeE:            TrackdirXNE.Bit() | TrackdirYSE.Bit(),
	SlopeW | SlopeE:   TrackdirBitsNone,
	SlopeSE:           TrackdirYSE.Bit(),
	SlopeW | SlopeSE:  TrackdirBitsNone,
	SlopeN:            TrackdirXNE.Bit() | TrackdirYNW.Bit(),
	SlopeNW:           TrackdirYNW.Bit(),
	SlopeN | SlopeS:   TrackdirBitsNone,
	SlopeNW | SlopeS:  TrackdirBitsNone,
	SlopeNE:           TrackdirXNE.Bit(),
	SlopeNE | SlopeW:  TrackdirBitsNone,
	SlopeNE | SlopeS:  TrackdirBitsNone,
	SlopeNE | SlopeSW: TrackdirBitsNone,
}

// UphillTrackdirs returns the trackdirs that climb on a tile with slope s.
func UphillTrackdirs(s Slope) TrackdirBits {
	if s >= slopeCount {
		return TrackdirBitsNone
	}
	return uphillTrackdirs[s]
}

// IsUphill reports whether travelling td on slope s goes uphill.
func IsUphill(s Slope, td Trackdir) bool {
	return UphillTrackdirs(s).Has(td)
}
