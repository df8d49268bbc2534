package world

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"trackroute/internal/track"
)

var railPiece = Piece{Transport: track.TransportRail, Owner: 1}

func TestBuilderLineAndTunnel(t *testing.T) {
	m, err := NewBuilder(12, 4).
		Line(track.Tile{X: 0, Y: 1}, track.DiagDirSW, 3, railPiece).
		Tunnel(track.Tile{X: 3, Y: 1}, track.DiagDirSW, 4, railPiece).
		Slope(track.Tile{X: 3, Y: 1}, track.SlopeNE).
		Build()
	require.NoError(t, err)

	line := m.Tile(track.Tile{X: 1, Y: 1})
	require.Equal(t, KindTrack, line.Kind)
	require.Equal(t, track.TrackBitX, line.Tracks)

	mouth := m.Tile(track.Tile{X: 3, Y: 1})
	require.Equal(t, KindTunnel, mouth.Kind)
	require.Equal(t, track.DiagDirSW, mouth.Dir)
	require.Equal(t, track.Tile{X: 7, Y: 1}, mouth.OtherEnd)
	require.Equal(t, 4, mouth.TunnelBridgeLength(track.Tile{X: 3, Y: 1}))

	far := m.Tile(track.Tile{X: 7, Y: 1})
	require.Equal(t, track.DiagDirNE, far.Dir)
	require.Equal(t, track.Tile{X: 3, Y: 1}, far.OtherEnd)

	got := m.ReachableTrackdirs(track.Tile{X: 1, Y: 1}, track.TransportRail, track.RoadSubTypeRoad, track.DiagDirSW)
	require.Equal(t, track.TrackdirXNE.Bit()|track.TrackdirXSW.Bit(), got)
	require.True(t, m.ReachableTrackdirs(track.Tile{X: 1, Y: 1}, track.TransportRoad, track.RoadSubTypeRoad, track.DiagDirSW).Empty())
}

func TestOutOfBoundsIsVoid(t *testing.T) {
	m, err := NewBuilder(2, 2).Build()
	require.NoError(t, err)
	info := m.Tile(track.Tile{X: -1, Y: 0})
	require.Equal(t, KindVoid, info.Kind)
	require.Equal(t, track.OwnerNone, info.Owner)
}

func TestBuilderRejectsOverlap(t *testing.T) {
	_, err := NewBuilder(4, 4).
		Depot(track.Tile{X: 1, Y: 1}, track.DiagDirNE, railPiece).
		Line(track.Tile{X: 0, Y: 1}, track.DiagDirSW, 3, railPiece).
		Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "already holds a depot")
}

func TestPlatformLength(t *testing.T) {
	m, err := NewBuilder(10, 3).
		Station(track.Tile{X: 2, Y: 1}, track.DiagDirSW, 4, 7, railPiece).
		Station(track.Tile{X: 6, Y: 1}, track.DiagDirSW, 2, 8, railPiece).
		Build()
	require.NoError(t, err)
	require.Equal(t, 4, m.PlatformLength(track.Tile{X: 2, Y: 1}, track.DiagDirSW))
	require.Equal(t, 2, m.PlatformLength(track.Tile{X: 3, Y: 1}, track.DiagDirNE))
	require.Equal(t, 1, m.PlatformLength(track.Tile{X: 3, Y: 1}, track.DiagDirSE))
	require.Equal(t, 0, m.PlatformLength(track.Tile{X: 0, Y: 0}, track.DiagDirSW))
}

const sampleFixture = `
width: 8
height: 4
lines:
  - {from: {x: 0, y: 1}, dir: SW, length: 3, transport: rail, owner: 1}
tiles:
  - {at: {x: 3, y: 1}, kind: bridge, dir: SW, length: 3, speed: 96, transport: rail, owner: 1}
  - {at: {x: 7, y: 1}, kind: depot, dir: NE, transport: rail, owner: 1}
  - {at: {x: 0, y: 3}, kind: track, tracks: [X, Y], transport: road, tram: true}
speeds:
  - {transport: rail, type: 0, speed: 160}
`

func TestParseFixture(t *testing.T) {
	m, err := ParseFixture([]byte(sampleFixture))
	require.NoError(t, err)
	require.Equal(t, 8, m.Width())

	ramp := m.Tile(track.Tile{X: 3, Y: 1})
	require.Equal(t, KindBridge, ramp.Kind)
	require.Equal(t, 96, ramp.BridgeSpeed)
	require.Equal(t, track.Tile{X: 6, Y: 1}, ramp.OtherEnd)

	depot := m.Tile(track.Tile{X: 7, Y: 1})
	require.True(t, depot.IsDepotOf(track.TransportRail))
	require.Equal(t, track.Owner(1), depot.Owner)

	road := m.Tile(track.Tile{X: 0, Y: 3})
	require.Equal(t, track.TrackBitsCross, road.Tracks)
	require.Equal(t, track.TrackBitsCross, road.TramTracks)
	require.Equal(t, track.OwnerNone, road.Owner)

	require.Equal(t, 160, m.TypeSpeed(track.TransportRail, 0))
	require.Equal(t, 0, m.TypeSpeed(track.TransportRoad, 0))
}

func TestParseFixtureErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no size", "lines: []"},
		{"bad kind", "width: 2\nheight: 2\ntiles:\n  - {at: {x: 0, y: 0}, kind: castle, transport: rail}"},
		{"depot without dir", "width: 2\nheight: 2\ntiles:\n  - {at: {x: 0, y: 0}, kind: depot, transport: rail}"},
		{"off map", "width: 2\nheight: 2\nlines:\n  - {from: {x: 0, y: 0}, dir: SW, length: 5, transport: rail}"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tc.yaml))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidFixture), "expected invalid fixture, got %v", err)
		})
	}
}
