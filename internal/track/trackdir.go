package track

import (
	"fmt"
	"math/bits"
	"strings"
)

// Track is one of the six piece shapes a tile can carry.
type Track uint8

const (
	TrackX Track = iota
	TrackY
	TrackUpper
	TrackLower
	TrackLeft
	TrackRight
	TrackEnd
)

var trackNames = [TrackEnd]string{"X", "Y", "UPPER", "LOWER", "LEFT", "RIGHT"}

func (t Track) String() string {
	if t >= TrackEnd {
		return fmt.Sprintf("Track(%d)", uint8(t))
	}
	return trackNames[t]
}

// TrackBits is a set of tracks present on a tile.
type TrackBits uint8

const (
	TrackBitsNone  TrackBits = 0
	TrackBitX      TrackBits = 1 << TrackX
	TrackBitY      TrackBits = 1 << TrackY
	TrackBitUpper  TrackBits = 1 << TrackUpper
	TrackBitLower  TrackBits = 1 << TrackLower
	TrackBitLeft   TrackBits = 1 << TrackLeft
	TrackBitRight  TrackBits = 1 << TrackRight
	TrackBitsAll   TrackBits = 0x3F
	TrackBitsCross TrackBits = TrackBitX | TrackBitY
)

// Has reports whether t is part of the set.
func (b TrackBits) Has(t Track) bool {
	return b&(1<<t) != 0
}

// Trackdirs expands every track into both of its travel directions.
func (b TrackBits) Trackdirs() TrackdirBits {
	tb := TrackdirBits(b & TrackBitsAll)
	return tb | tb<<8
}

// Trackdir is a track combined with a direction of travel. The numbering
// leaves slots 6, 7, 14 and 15 unused so that reversing flips bit 3.
type Trackdir uint8

const (
	TrackdirXNE    Trackdir = 0
	TrackdirYSE    Trackdir = 1
	TrackdirUpperE Trackdir = 2
	TrackdirLowerE Trackdir = 3
	TrackdirLeftS  Trackdir = 4
	TrackdirRightS Trackdir = 5
	TrackdirXSW    Trackdir = 8
	TrackdirYNW    Trackdir = 9
	TrackdirUpperW Trackdir = 10
	TrackdirLowerW Trackdir = 11
	TrackdirLeftN  Trackdir = 12
	TrackdirRightN Trackdir = 13
	TrackdirEnd    Trackdir = 14

	InvalidTrackdir Trackdir = 0xFF
)

var trackdirNames = map[Trackdir]string{
	TrackdirXNE: "X_NE", TrackdirYSE: "Y_SE", TrackdirUpperE: "UPPER_E", TrackdirLowerE: "LOWER_E",
	TrackdirLeftS: "LEFT_S", TrackdirRightS: "RIGHT_S", TrackdirXSW: "X_SW", TrackdirYNW: "Y_NW",
	TrackdirUpperW: "UPPER_W", TrackdirLowerW: "LOWER_W", TrackdirLeftN: "LEFT_N", TrackdirRightN: "RIGHT_N",
}

// Valid reports whether td names a real trackdir.
func (td Trackdir) Valid() bool {
	return td < TrackdirEnd && td&7 < 6
}

// Reverse returns the same track travelled the other way.
func (td Trackdir) Reverse() Trackdir {
	if !td.Valid() {
		return InvalidTrackdir
	}
	return td ^ 8
}

// Track strips the direction.
func (td Trackdir) Track() Track {
	return Track(td & 7)
}

// Bit returns the single-element set holding td.
func (td Trackdir) Bit() TrackdirBits {
	if !td.Valid() {
		return TrackdirBitsNone
	}
	return 1 << td
}

// ExitDir is the tile edge a vehicle following td leaves through.
func (td Trackdir) ExitDir() DiagDir {
	if !td.Valid() {
		return InvalidDiagDir
	}
	return trackdirExitDir[td]
}

// Diagonal reports whether td runs straight along the X or Y axis.
func (td Trackdir) Diagonal() bool {
	t := td.Track()
	return td.Valid() && (t == TrackX || t == TrackY)
}

// Crossings returns the trackdirs that meet td at a right angle.
func (td Trackdir) Crossings() TrackdirBits {
	if !td.Valid() {
		return TrackdirBitsNone
	}
	return trackCrossings[td.Track()]
}

func (td Trackdir) String() string {
	if name, ok := trackdirNames[td]; ok {
		return name
	}
	return fmt.Sprintf("Trackdir(%d)", uint8(td))
}

// ParseTrackdir accepts names like "X_NE" (case-insensitive).
// MarshalText encodes the trackdir by name.
func (td Trackdir) MarshalText() ([]byte, error) {
	return []byte(td.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (td *Trackdir) UnmarshalText(text []byte) error {
	parsed, ok := ParseTrackdir(string(text))
	if !ok {
		return fmt.Errorf("unknown trackdir %q", text)
	}
	*td = parsed
	return nil
}

func ParseTrackdir(s string) (Trackdir, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for td, name := range trackdirNames {
		if name == s {
			return td, true
		}
	}
	return InvalidTrackdir, false
}

// TrackdirBits is a set of trackdirs, bit n standing for Trackdir(n).
type TrackdirBits uint16

const (
	TrackdirBitsNone TrackdirBits = 0
	TrackdirBitsAll  TrackdirBits = 0x3F3F
)

// Has reports whether td is in the set.
func (b TrackdirBits) Has(td Trackdir) bool {
	return td.Valid() && b&(1<<td) != 0
}

// Count returns the number of trackdirs in the set.
func (b TrackdirBits) Count() int {
	return bits.OnesCount16(uint16(b & TrackdirBitsAll))
}

// Empty reports whether no trackdir is set.
func (b TrackdirBits) Empty() bool {
	return b&TrackdirBitsAll == 0
}

// First returns the lowest trackdir in the set.
func (b TrackdirBits) First() Trackdir {
	b &= TrackdirBitsAll
	if b == 0 {
		return InvalidTrackdir
	}
	return Trackdir(bits.TrailingZeros16(uint16(b)))
}

// Trackdirs lists the members in ascending order.
func (b TrackdirBits) Trackdirs() []Trackdir {
	b &= TrackdirBitsAll
	out := make([]Trackdir, 0, b.Count())
	for b != 0 {
		td := Trackdir(bits.TrailingZeros16(uint16(b)))
		out = append(out, td)
		b &^= 1 << td
	}
	return out
}

// Tracks folds the set down to the tracks it uses.
func (b TrackdirBits) Tracks() TrackBits {
	return TrackBits((b | b>>8) & TrackdirBits(TrackBitsAll))
}

func (b TrackdirBits) String() string {
	tds := b.Trackdirs()
	if len(tds) == 0 {
		return "{}"
	}
	names := make([]string, len(tds))
	for i, td := range tds {
		names[i] = td.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

var trackdirExitDir = [TrackdirEnd]DiagDir{
	TrackdirXNE:    DiagDirNE,
	TrackdirYSE:    DiagDirSE,
	TrackdirUpperE: DiagDirNE,
	TrackdirLowerE: DiagDirSE,
	TrackdirLeftS:  DiagDirSW,
	TrackdirRightS: DiagDirSE,
	6:              InvalidDiagDir,
	7:              InvalidDiagDir,
	TrackdirXSW:    DiagDirSW,
	TrackdirYNW:    DiagDirNW,
	TrackdirUpperW: DiagDirNW,
	TrackdirLowerW: DiagDirSW,
	TrackdirLeftN:  DiagDirNW,
	TrackdirRightN: DiagDirNE,
}

var diagDirReaches = [DiagDirEnd]TrackdirBits{
	DiagDirNE: TrackdirXNE.Bit() | TrackdirLowerE.Bit() | TrackdirLeftN.Bit(),
	DiagDirSE: TrackdirYSE.Bit() | TrackdirUpperE.Bit() | TrackdirLeftS.Bit(),
	DiagDirSW: TrackdirXSW.Bit() | TrackdirUpperW.Bit() | TrackdirRightS.Bit(),
	DiagDirNW: TrackdirYNW.Bit() | TrackdirLowerW.Bit() | TrackdirRightN.Bit(),
}

var trackCrossings = [TrackEnd]TrackdirBits{
	TrackX:     TrackBitY.Trackdirs(),
	TrackY:     TrackBitX.Trackdirs(),
	TrackUpper: (TrackBitLeft | TrackBitRight).Trackdirs(),
	TrackLower: (TrackBitLeft | TrackBitRight).Trackdirs(),
	TrackLeft:  (TrackBitUpper | TrackBitLower).Trackdirs(),
	TrackRight: (TrackBitUpper | TrackBitLower).Trackdirs(),
}

// DiagDirToDiagTrackdir is the straight trackdir leaving through d.
func DiagDirToDiagTrackdir(d DiagDir) Trackdir {
	switch d {
	case DiagDirNE:
		return TrackdirXNE
	case DiagDirSE:
		return TrackdirYSE
	case DiagDirSW:
		return TrackdirXSW
	case DiagDirNW:
		return TrackdirYNW
	}
	return InvalidTrackdir
}
