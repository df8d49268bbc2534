// Package follow walks the tile network one logical hop at a time.
package follow

import (
	"math"

	"trackroute/internal/track"
	"trackroute/internal/world"
)

// NoSpeedLimit is returned by SpeedLimit when nothing restricts the edge.
const NoSpeedLimit = math.MaxInt

// Result describes one hop. On success Trackdirs is never empty and is always
// a subset of ExitDir.Reaches().
type Result struct {
	Old       track.State
	NewTile   track.Tile
	Trackdirs track.TrackdirBits
	ExitDir   track.DiagDir
	Station   bool
	Bridge    bool
	Tunnel    bool
	Reversed  bool
	// Skipped counts tiles passed over between Old.Tile and NewTile.
	Skipped int
	Err     ErrorCode
}

// Successors expands the result into states in ascending trackdir order.
func (r Result) Successors() []track.State {
	tds := r.Trackdirs.Trackdirs()
	out := make([]track.State, len(tds))
	for i, td := range tds {
		out[i] = track.State{Tile: r.NewTile, Dir: td}
	}
	return out
}

// Options fix the per-follower turn policy.
type Options struct {
	Allow90 bool
}

// Profile is everything about a follower that changes which hops it finds.
// Two followers with equal profiles over the same oracle behave identically.
type Profile struct {
	Transport track.TransportType
	SubType   track.RoadSubType
	Owner     track.Owner
	RailTypes track.TypeSet
	RoadTypes track.TypeSet
	Allow90   bool
}

// Follower computes successors for one vehicle over one oracle.
type Follower[O world.Oracle] struct {
	oracle  O
	veh     world.Vehicle
	allow90 bool
}

// New binds a follower to an oracle and vehicle.
func New[O world.Oracle](oracle O, veh world.Vehicle, opts Options) *Follower[O] {
	return &Follower[O]{oracle: oracle, veh: veh, allow90: opts.Allow90}
}

// Oracle returns the world the follower reads.
func (f *Follower[O]) Oracle() O { return f.oracle }

// Vehicle returns the vehicle the follower checks against.
func (f *Follower[O]) Vehicle() world.Vehicle { return f.veh }

// Profile returns the follower's behavioural identity.
func (f *Follower[O]) Profile() Profile {
	return Profile{
		Transport: f.veh.Transport,
		SubType:   f.veh.SubType,
		Owner:     f.veh.Owner,
		RailTypes: f.veh.RailTypes,
		RoadTypes: f.veh.RoadTypes,
		Allow90:   f.allow90,
	}
}

// Follow computes the hop taken when leaving tile along td.
func (f *Follower[O]) Follow(tile track.Tile, td track.Trackdir) (Result, bool) {
	r := Result{
		Old:     track.State{Tile: tile, Dir: td},
		NewTile: tile,
		ExitDir: td.ExitDir(),
	}
	if !td.Valid() {
		r.Err = ErrNoWay
		return r, false
	}
	mode := f.veh.Transport
	old := f.oracle.Tile(tile)

	if mode != track.TransportWater && old.IsDepotOf(mode) && old.Dir != r.ExitDir {
		r.ExitDir = old.Dir
		r.Trackdirs = td.Reverse().Bit()
		r.Reversed = true
		return r, true
	}

	if mode == track.TransportRoad && old.Transport == mode && (old.IsBayStop() || old.Kind == world.KindDepot) && old.Dir != r.ExitDir {
		return f.fail(r, ErrNoWay)
	}

	if old.IsTunnelBridge() && old.Transport == mode && old.Dir == r.ExitDir {
		r.NewTile = old.OtherEnd
		r.Skipped = old.TunnelBridgeLength(tile) - 1
		r.Tunnel = old.Kind == world.KindTunnel
		r.Bridge = old.Kind == world.KindBridge
	} else {
		r.NewTile = tile.Step(r.ExitDir)
	}
	next := f.oracle.Tile(r.NewTile)
	switch mode {
	case track.TransportRail:
		r.Station = next.Kind == world.KindStation && next.Transport == mode
	case track.TransportRoad:
		r.Station = next.Kind == world.KindRoadStop
	}

	r.Trackdirs = f.oracle.ReachableTrackdirs(r.NewTile, mode, f.veh.SubType, r.ExitDir)
	if r.Trackdirs.Empty() {
		return f.fail(r, ErrNoWay)
	}

	if code := f.canEnter(r, next); code != ErrNone {
		return f.fail(r, code)
	}

	if next.IsPlatform(mode) {
		if n := f.oracle.PlatformLength(r.NewTile, r.ExitDir); n > 1 {
			r.Skipped = n - 1
			r.NewTile = r.NewTile.StepN(r.ExitDir, r.Skipped)
		}
	}

	r.Trackdirs &= r.ExitDir.Reaches()
	if r.Trackdirs.Empty() {
		return f.fail(r, ErrNoWay)
	}

	if !f.allow90 {
		r.Trackdirs &^= td.Crossings()
		if r.Trackdirs.Empty() {
			return f.fail(r, ErrNo90DegreeTurn)
		}
	}
	return r, true
}

// canEnter applies the entry orientation, ownership and type rules for the
// tile just stepped onto. Ownership is checked before orientation.
func (f *Follower[O]) canEnter(r Result, next world.TileInfo) ErrorCode {
	mode := f.veh.Transport
	if mode != track.TransportWater && next.IsDepotOf(mode) {
		if next.Owner != f.veh.Owner {
			return ErrOwnerMismatch
		}
		if next.Dir.Reverse() != r.ExitDir {
			return ErrNoWay
		}
	}
	if mode == track.TransportRoad && next.Transport == mode && next.IsBayStop() && next.Dir.Reverse() != r.ExitDir {
		return ErrNoWay
	}

	switch mode {
	case track.TransportRail:
		if next.Owner != f.veh.Owner {
			return ErrOwnerMismatch
		}
		if !f.veh.RailTypes.Has(next.Type) {
			return ErrRailTypeMismatch
		}
	case track.TransportRoad:
		if !f.veh.RoadTypes.Has(next.Type) {
			return ErrRailTypeMismatch
		}
	}

	if next.IsTunnelBridge() && !r.Tunnel && !r.Bridge && next.Dir != r.ExitDir {
		return ErrNoWay
	}
	return ErrNone
}

// fail records code, first giving ordinary road vehicles the chance to turn
// around on the tile they occupy. A foreign depot is never a reason to turn.
func (f *Follower[O]) fail(r Result, code ErrorCode) (Result, bool) {
	if (code == ErrNoWay || code == ErrRailTypeMismatch) && f.veh.Transport == track.TransportRoad && !f.veh.IsTram() {
		if rev, ok := f.tryReverse(r); ok {
			return rev, true
		}
	}
	r.Trackdirs = track.TrackdirBitsNone
	r.Err = code
	return r, false
}

func (f *Follower[O]) tryReverse(r Result) (Result, bool) {
	exit := r.Old.Dir.ExitDir().Reverse()
	bits := f.oracle.ReachableTrackdirs(r.Old.Tile, f.veh.Transport, f.veh.SubType, track.InvalidDiagDir) & exit.Reaches()
	if bits.Empty() {
		return r, false
	}
	return Result{
		Old:       r.Old,
		NewTile:   r.Old.Tile,
		Trackdirs: bits,
		ExitDir:   exit,
		Reversed:  true,
	}, true
}

// SpeedLimit reports the top speed on the edge leaving tile along td.
func (f *Follower[O]) SpeedLimit(tile track.Tile, _ track.Trackdir) int {
	mode := f.veh.Transport
	info := f.oracle.Tile(tile)
	if info.Transport != mode {
		return NoSpeedLimit
	}
	limit := NoSpeedLimit
	if info.Kind == world.KindBridge && info.BridgeSpeed > 0 {
		speed := info.BridgeSpeed
		if mode == track.TransportRoad {
			speed *= 2
		}
		limit = min(limit, speed)
	}
	if mode != track.TransportWater {
		if speed := f.oracle.TypeSpeed(mode, info.Type); speed > 0 {
			limit = min(limit, speed)
		}
	}
	return limit
}
