package track

import "fmt"

// DiagDir is one of the four tile edges a vehicle can leave through.
type DiagDir uint8

const (
	DiagDirNE DiagDir = iota
	DiagDirSE
	DiagDirSW
	DiagDirNW
	DiagDirEnd
)

// InvalidDiagDir marks the absence of a direction.
const InvalidDiagDir DiagDir = 0xFF

var diagDirOffsets = [DiagDirEnd]Tile{
	DiagDirNE: {X: -1, Y: 0},
	DiagDirSE: {X: 0, Y: 1},
	DiagDirSW: {X: 1, Y: 0},
	DiagDirNW: {X: 0, Y: -1},
}

var diagDirNames = [DiagDirEnd]string{"NE", "SE", "SW", "NW"}

// Valid reports whether d is one of the four real directions.
func (d DiagDir) Valid() bool {
	return d < DiagDirEnd
}

// Reverse returns the opposite edge.
func (d DiagDir) Reverse() DiagDir {
	if !d.Valid() {
		return InvalidDiagDir
	}
	return d ^ 2
}

// Offset is the tile delta of one step in direction d.
func (d DiagDir) Offset() Tile {
	if !d.Valid() {
		return Tile{}
	}
	return diagDirOffsets[d]
}

// Reaches returns every trackdir that can be occupied on the next tile after
// leaving the current one through d.
func (d DiagDir) Reaches() TrackdirBits {
	if !d.Valid() {
		return TrackdirBitsNone
	}
	return diagDirReaches[d]
}

func (d DiagDir) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DiagDir(%d)", uint8(d))
	}
	return diagDirNames[d]
}

// ParseDiagDir accepts the two-letter compass names.
func ParseDiagDir(s string) (DiagDir, bool) {
	for i, name := range diagDirNames {
		if name == s {
			return DiagDir(i), true
		}
	}
	return InvalidDiagDir, false
}

// Axis returns the axis a direction travels along: 0 for X, 1 for Y.
func (d DiagDir) Axis() int {
	return int(d & 1)
}
