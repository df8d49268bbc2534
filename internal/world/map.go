package world

import (
	"github.com/cockroachdb/errors"

	"trackroute/internal/track"
)

// MaxDimension bounds either side of a map.
const MaxDimension = 4096

var voidTile = TileInfo{
	Kind:      KindVoid,
	Transport: track.InvalidTransport,
	Owner:     track.OwnerNone,
	Dir:       track.InvalidDiagDir,
}

type speedKey struct {
	mode track.TransportType
	id   track.TypeID
}

// Map is an in-memory Oracle. It is immutable once built.
type Map struct {
	width  int
	height int
	tiles  []TileInfo
	speeds map[speedKey]int
}

var _ Oracle = (*Map)(nil)

// Width returns the number of columns.
func (m *Map) Width() int { return m.width }

// Height returns the number of rows.
func (m *Map) Height() int { return m.height }

// Bounds returns the rectangle covering the whole map.
func (m *Map) Bounds() track.Rect {
	return track.Rect{Max: track.Tile{X: m.width - 1, Y: m.height - 1}}
}

func (m *Map) inBounds(t track.Tile) bool {
	return t.X >= 0 && t.Y >= 0 && t.X < m.width && t.Y < m.height
}

func (m *Map) index(t track.Tile) int {
	return t.Y*m.width + t.X
}

// Tile implements Oracle.
func (m *Map) Tile(t track.Tile) TileInfo {
	if m == nil || !m.inBounds(t) {
		return voidTile
	}
	return m.tiles[m.index(t)]
}

// ReachableTrackdirs implements Oracle.
func (m *Map) ReachableTrackdirs(t track.Tile, mode track.TransportType, sub track.RoadSubType, _ track.DiagDir) track.TrackdirBits {
	info := m.Tile(t)
	if info.Kind == KindVoid || info.Transport != mode {
		return track.TrackdirBitsNone
	}
	tracks := info.Tracks
	if mode == track.TransportRoad && sub == track.RoadSubTypeTram {
		tracks = info.TramTracks
	}
	return tracks.Trackdirs()
}

// PlatformLength implements Oracle.
func (m *Map) PlatformLength(t track.Tile, dir track.DiagDir) int {
	first := m.Tile(t)
	if first.Kind != KindStation && first.Kind != KindRoadStop {
		return 0
	}
	if !dir.Valid() || dir.Axis() != first.Dir.Axis() {
		return 1
	}
	n := 0
	for cur := t; ; cur = cur.Step(dir) {
		info := m.Tile(cur)
		if info.Kind != first.Kind || info.StationID != first.StationID ||
			info.Transport != first.Transport || info.DriveThrough != first.DriveThrough ||
			info.Dir.Axis() != first.Dir.Axis() {
			break
		}
		n++
	}
	return n
}

// TypeSpeed implements Oracle.
func (m *Map) TypeSpeed(mode track.TransportType, id track.TypeID) int {
	if m == nil {
		return 0
	}
	return m.speeds[speedKey{mode: mode, id: id}]
}

// Piece describes who owns a newly built piece of infrastructure and which
// network it belongs to.
type Piece struct {
	Transport track.TransportType
	Owner     track.Owner
	Type      track.TypeID
	// Tram also lays tram track on road pieces.
	Tram bool
}

// Builder assembles a Map. The first failing call is remembered and reported
// by Build; later calls become no-ops.
type Builder struct {
	m   *Map
	err error
}

// NewBuilder starts an empty width x height map.
func NewBuilder(width, height int) *Builder {
	b := &Builder{}
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		b.err = errors.Newf("map size %dx%d outside 1..%d", width, height, MaxDimension)
		return b
	}
	m := &Map{
		width:  width,
		height: height,
		tiles:  make([]TileInfo, width*height),
		speeds: make(map[speedKey]int),
	}
	for i := range m.tiles {
		m.tiles[i] = voidTile
	}
	b.m = m
	return b
}

// Build returns the finished map. The builder must not be used afterwards.
func (b *Builder) Build() (*Map, error) {
	if b.err != nil {
		return nil, b.err
	}
	m := b.m
	b.m = nil
	if m == nil {
		return nil, errors.New("builder already consumed")
	}
	return m, nil
}

func (b *Builder) tile(t track.Tile) *TileInfo {
	if b.err != nil {
		return nil
	}
	if b.m == nil {
		b.err = errors.New("builder already consumed")
		return nil
	}
	if !b.m.inBounds(t) {
		b.err = errors.Newf("tile %s outside %dx%d map", t, b.m.width, b.m.height)
		return nil
	}
	return &b.m.tiles[b.m.index(t)]
}

func (b *Builder) fail(format string, args ...interface{}) *Builder {
	if b.err == nil {
		b.err = errors.Newf(format, args...)
	}
	return b
}

func axisTrack(d track.DiagDir) track.TrackBits {
	return track.TrackBits(1 << track.Track(d.Axis()))
}

func (b *Builder) place(t track.Tile, kind Kind, p Piece, dir track.DiagDir, tracks track.TrackBits) *TileInfo {
	info := b.tile(t)
	if info == nil {
		return nil
	}
	if info.Kind != KindVoid && (info.Kind != KindTrack || kind != KindTrack) {
		b.fail("tile %s already holds a %s", t, info.Kind)
		return nil
	}
	if info.Kind == KindTrack && info.Transport != p.Transport {
		b.fail("tile %s already carries %s track", t, info.Transport)
		return nil
	}
	info.Kind = kind
	info.Transport = p.Transport
	info.Owner = p.Owner
	info.Type = p.Type
	info.Dir = dir
	info.Tracks |= tracks
	if p.Tram && p.Transport == track.TransportRoad {
		info.TramTracks |= tracks
	}
	return info
}

// Track adds track pieces to a plain tile.
func (b *Builder) Track(t track.Tile, p Piece, tracks track.TrackBits) *Builder {
	b.place(t, KindTrack, p, track.InvalidDiagDir, tracks&track.TrackBitsAll)
	return b
}

// Line lays n straight tiles starting at from and heading in dir.
func (b *Builder) Line(from track.Tile, dir track.DiagDir, n int, p Piece) *Builder {
	if !dir.Valid() || n <= 0 {
		return b.fail("invalid line from %s: dir %s length %d", from, dir, n)
	}
	for i := 0; i < n; i++ {
		b.Track(from.StepN(dir, i), p, axisTrack(dir))
	}
	return b
}

// Depot places a depot opening onto exit.
func (b *Builder) Depot(t track.Tile, exit track.DiagDir, p Piece) *Builder {
	if !exit.Valid() {
		return b.fail("depot at %s needs a direction", t)
	}
	b.place(t, KindDepot, p, exit, axisTrack(exit))
	return b
}

// Station places a rail platform of length tiles starting at start.
func (b *Builder) Station(start track.Tile, dir track.DiagDir, length, id int, p Piece) *Builder {
	if !dir.Valid() || length <= 0 {
		return b.fail("invalid station at %s: dir %s length %d", start, dir, length)
	}
	for i := 0; i < length; i++ {
		if info := b.place(start.StepN(dir, i), KindStation, p, dir, axisTrack(dir)); info != nil {
			info.StationID = id
		}
	}
	return b
}

// RoadStop places a bay stop opening onto dir, or a drive-through stop along
// dir's axis.
func (b *Builder) RoadStop(t track.Tile, dir track.DiagDir, driveThrough bool, id int, p Piece) *Builder {
	if !dir.Valid() || p.Transport != track.TransportRoad {
		return b.fail("invalid road stop at %s", t)
	}
	if info := b.place(t, KindRoadStop, p, dir, axisTrack(dir)); info != nil {
		info.StationID = id
		info.DriveThrough = driveThrough
	}
	return b
}

func (b *Builder) tunnelBridge(kind Kind, from track.Tile, dir track.DiagDir, length int, p Piece) (*TileInfo, *TileInfo) {
	if !dir.Valid() || length < 1 {
		b.fail("invalid %s at %s: dir %s length %d", kind, from, dir, length)
		return nil, nil
	}
	to := from.StepN(dir, length)
	a := b.place(from, kind, p, dir, axisTrack(dir))
	z := b.place(to, kind, p, dir.Reverse(), axisTrack(dir))
	if a == nil || z == nil {
		return nil, nil
	}
	a.OtherEnd = to
	z.OtherEnd = from
	return a, z
}

// Tunnel digs a tunnel whose far mouth lies length tiles from from.
func (b *Builder) Tunnel(from track.Tile, dir track.DiagDir, length int, p Piece) *Builder {
	b.tunnelBridge(KindTunnel, from, dir, length, p)
	return b
}

// Bridge spans length tiles from from. speed caps vehicles on it, 0 for none.
func (b *Builder) Bridge(from track.Tile, dir track.DiagDir, length, speed int, p Piece) *Builder {
	a, z := b.tunnelBridge(KindBridge, from, dir, length, p)
	if a != nil {
		a.BridgeSpeed = speed
		z.BridgeSpeed = speed
	}
	return b
}

// Slope sets the raised corners of a tile.
func (b *Builder) Slope(t track.Tile, s track.Slope) *Builder {
	if info := b.tile(t); info != nil {
		info.Slope = s & 0x0F
	}
	return b
}

// TypeSpeed records the top speed of a rail or road type.
func (b *Builder) TypeSpeed(mode track.TransportType, id track.TypeID, speed int) *Builder {
	if b.err == nil && b.m != nil {
		b.m.speeds[speedKey{mode: mode, id: id}] = speed
	}
	return b
}
