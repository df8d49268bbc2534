package pathfind

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"trackroute/internal/follow"
	"trackroute/internal/pathfind/segcache"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

var (
	rail  = world.Piece{Transport: track.TransportRail, Owner: 1}
	train = world.Vehicle{Owner: 1, Transport: track.TransportRail, RailTypes: track.TypeSetOf(0)}
)

type railEngine = Engine[*world.Map, SlopeCost[*world.Map], TileDestination]

func tile(x, y int) track.Tile { return track.Tile{X: x, Y: y} }

func mustBuild(t *testing.T, b *world.Builder) *world.Map {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("build map: %v", err)
	}
	return m
}

func newEngine(m *world.Map, cfg Config, opts ...Option) *railEngine {
	f := follow.New(m, train, follow.Options{Allow90: cfg.Allow90DegreeTurns})
	return NewEngine[*world.Map, SlopeCost[*world.Map], TileDestination](f, NewSlopeCost(m, cfg), cfg, opts...)
}

func search(t *testing.T, e *railEngine, origin Origin, dest TileDestination) Result {
	t.Helper()
	res, err := e.Search(origin, dest)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	return res
}

func TestSearchStraightLine(t *testing.T) {
	const n = 6
	m := mustBuild(t, world.NewBuilder(n+3, 3).Line(tile(0, 1), track.DiagDirSW, n+1, rail))
	res := search(t, newEngine(m, DefaultConfig()), OriginAt(state(0, 1, track.TrackdirXSW)), TileDestination{Tile: tile(n, 1)})

	if !res.Found() {
		t.Fatalf("expected route, got %s", res.Outcome)
	}
	if res.Cost != n*DefaultTileCost {
		t.Fatalf("expected cost %d, got %d", n*DefaultTileCost, res.Cost)
	}
	var want []track.State
	for x := 0; x <= n; x++ {
		want = append(want, state(x, 1, track.TrackdirXSW))
	}
	if diff := cmp.Diff(want, res.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if res.Hops() != n {
		t.Fatalf("expected %d hops, got %d", n, res.Hops())
	}
}

func TestSearchSlopeAndTunnelCosts(t *testing.T) {
	m := mustBuild(t, world.NewBuilder(12, 3).
		Line(tile(0, 1), track.DiagDirSW, 3, rail).
		Slope(tile(2, 1), track.SlopeSW).
		Tunnel(tile(3, 1), track.DiagDirSW, 5, rail).
		Line(tile(9, 1), track.DiagDirSW, 2, rail))
	res := search(t, newEngine(m, DefaultConfig()), OriginAt(state(0, 1, track.TrackdirXSW)), TileDestination{Tile: tile(10, 1)})

	if !res.Found() {
		t.Fatalf("expected route, got %s", res.Outcome)
	}
	// Ten tiles travelled plus one climb.
	if want := 10*DefaultTileCost + DefaultSlopePenalty; res.Cost != want {
		t.Fatalf("expected cost %d, got %d", want, res.Cost)
	}
	want := []track.State{
		state(0, 1, track.TrackdirXSW), state(1, 1, track.TrackdirXSW), state(2, 1, track.TrackdirXSW),
		state(3, 1, track.TrackdirXSW), state(8, 1, track.TrackdirXSW), state(9, 1, track.TrackdirXSW),
		state(10, 1, track.TrackdirXSW),
	}
	if diff := cmp.Diff(want, res.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchThroughDepotReversal(t *testing.T) {
	m := mustBuild(t, world.NewBuilder(8, 3).
		Line(tile(0, 1), track.DiagDirSW, 5, rail).
		Depot(tile(5, 1), track.DiagDirNE, rail))
	res := search(t, newEngine(m, DefaultConfig()), OriginAt(state(2, 1, track.TrackdirXSW)), TileDestination{Tile: tile(0, 1)})

	if !res.Found() || res.Cost != 90 {
		t.Fatalf("expected route of cost 90 through the depot, got %s cost %d", res.Outcome, res.Cost)
	}
	if len(res.Path) != 10 || res.Path[3] != state(5, 1, track.TrackdirXSW) || res.Path[4] != state(5, 1, track.TrackdirXNE) {
		t.Fatalf("expected reversal inside the depot, got %v", res.Path)
	}
}

func TestSearchReverseOrigin(t *testing.T) {
	m := mustBuild(t, world.NewBuilder(8, 3).Line(tile(0, 1), track.DiagDirSW, 7, rail))
	rev := SeedOf(state(3, 1, track.TrackdirXNE))
	origin := Origin{Forward: SeedOf(state(3, 1, track.TrackdirXSW)), Reverse: &rev, ReversePenalty: 100}

	res := search(t, newEngine(m, DefaultConfig()), origin, TileDestination{Tile: tile(0, 1)})
	if !res.Found() || res.Cost != 130 || !res.Reversed {
		t.Fatalf("expected reversed route of cost 130, got %s cost %d reversed %v", res.Outcome, res.Cost, res.Reversed)
	}
	if res.Origin != rev.state() {
		t.Fatalf("expected path to start on the reverse seed, got %v", res.Origin)
	}

	res = search(t, newEngine(m, DefaultConfig()), origin, TileDestination{Tile: tile(6, 1)})
	if !res.Found() || res.Cost != 30 || res.Reversed {
		t.Fatalf("expected forward route of cost 30, got %s cost %d reversed %v", res.Outcome, res.Cost, res.Reversed)
	}

	origin.ReversePenalty = 0
	if _, err := newEngine(m, DefaultConfig()).Search(origin, TileDestination{Tile: tile(0, 1)}); err == nil {
		t.Fatalf("expected missing reverse penalty to be rejected")
	}
}

func (s Seed) state() track.State {
	return track.State{Tile: s.Tile, Dir: s.Trackdirs.First()}
}

func TestSearchUnreachableIsland(t *testing.T) {
	m := mustBuild(t, world.NewBuilder(12, 6).
		Line(tile(0, 1), track.DiagDirSW, 5, rail).
		Line(tile(0, 4), track.DiagDirSW, 5, rail))
	res := search(t, newEngine(m, DefaultConfig()), OriginAt(state(0, 1, track.TrackdirXSW)), TileDestination{Tile: tile(4, 4)})

	if res.Found() || res.Outcome != OutcomeNoPath {
		t.Fatalf("expected no path, got %s", res.Outcome)
	}
	if res.Nearest.Tile != tile(4, 1) {
		t.Fatalf("expected nearest state at the end of the line, got %v", res.Nearest)
	}
	if len(res.Path) != 5 || res.Cost != 40 {
		t.Fatalf("expected partial path of 5 states cost 40, got %d states cost %d", len(res.Path), res.Cost)
	}
}

func fullGrid(t *testing.T, w, h int) *world.Map {
	t.Helper()
	b := world.NewBuilder(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Track(tile(x, y), rail, track.TrackBitsAll)
		}
	}
	return mustBuild(t, b)
}

func TestSearchBudgetExhausted(t *testing.T) {
	m := fullGrid(t, 8, 8)
	cfg := DefaultConfig()
	cfg.MaxSearchNodes = 3
	origin := Origin{Forward: Seed{Tile: tile(0, 0), Trackdirs: track.TrackdirBitsAll}}
	res := search(t, newEngine(m, cfg), origin, TileDestination{Tile: tile(7, 7)})
	if res.Outcome != OutcomeBudgetExhausted || res.Expanded != 3 {
		t.Fatalf("expected budget exhaustion after 3 nodes, got %s after %d", res.Outcome, res.Expanded)
	}
	if len(res.Path) == 0 {
		t.Fatalf("expected a partial path towards the goal")
	}
}

func TestSearchBudgetOfOneExpandsTheSeed(t *testing.T) {
	m := fullGrid(t, 8, 8)
	cfg := DefaultConfig()
	cfg.MaxSearchNodes = 1
	origin := OriginAt(state(0, 0, track.TrackdirXSW))
	res := search(t, newEngine(m, cfg), origin, TileDestination{Tile: tile(7, 7)})
	if res.Outcome != OutcomeBudgetExhausted || res.Expanded != 1 {
		t.Fatalf("expected budget exhaustion after 1 node, got %s after %d", res.Outcome, res.Expanded)
	}
	if res.Created <= 1 {
		t.Fatalf("expected the seed to be followed, got %d nodes created", res.Created)
	}
}

func TestSearchNo90DegreeTurns(t *testing.T) {
	// The only way onto (2,0) is UPPER_W followed by RIGHT_N.
	m := mustBuild(t, world.NewBuilder(6, 6).
		Line(tile(0, 1), track.DiagDirSW, 2, rail).
		Track(tile(2, 1), rail, track.TrackBitX|track.TrackBitUpper).
		Track(tile(2, 0), rail, track.TrackBitRight))

	cfg := DefaultConfig()
	dest := TileDestination{Tile: tile(2, 0)}
	origin := OriginAt(state(0, 1, track.TrackdirXSW))
	if res := search(t, newEngine(m, cfg), origin, dest); !res.Found() {
		t.Fatalf("expected route with 90 degree turns allowed, got %s", res.Outcome)
	}
	cfg.Allow90DegreeTurns = false
	if res := search(t, newEngine(m, cfg), origin, dest); res.Found() {
		t.Fatalf("expected no route without 90 degree turns, got %v", res.Path)
	}
}

// zeroEstimate turns A* into uniform-cost search for reference results.
type zeroEstimate struct {
	TileDestination
}

func (zeroEstimate) Estimate(track.State) int { return 0 }

func randomPairs(w, h, n int, seed int64) [][2]track.Tile {
	rng := rand.New(rand.NewSource(seed))
	pairs := make([][2]track.Tile, 0, n)
	for len(pairs) < n {
		a := tile(rng.Intn(w), rng.Intn(h))
		b := tile(rng.Intn(w), rng.Intn(h))
		if a == b {
			continue
		}
		pairs = append(pairs, [2]track.Tile{a, b})
	}
	return pairs
}

// replayCosts re-follows a path and returns the cost of each hop.
func replayCosts(t *testing.T, f *follow.Follower[*world.Map], cost SlopeCost[*world.Map], path []track.State) []int {
	t.Helper()
	costs := make([]int, 0, len(path))
	for i := 1; i < len(path); i++ {
		prev, next := path[i-1], path[i]
		res, ok := f.Follow(prev.Tile, prev.Dir)
		if !ok || res.NewTile != next.Tile || !res.Trackdirs.Has(next.Dir) {
			t.Fatalf("path hop %v -> %v is not a follower successor (%+v)", prev, next, res)
		}
		costs = append(costs, cost.EdgeCost(&res, next))
	}
	return costs
}

func TestSearchHeuristicAdmissible(t *testing.T) {
	const w, h = 10, 10
	m := fullGrid(t, w, h)
	cfg := DefaultConfig()
	cfg.MaxSearchNodes = 0
	f := follow.New(m, train, follow.Options{Allow90: true})
	cost := NewSlopeCost(m, cfg)
	reference := NewEngine[*world.Map, SlopeCost[*world.Map], zeroEstimate](f, cost, cfg)
	astar := newEngine(m, cfg)

	for _, pair := range randomPairs(w, h, 20, 7) {
		origin := Origin{Forward: Seed{Tile: pair[0], Trackdirs: track.TrackdirBitsAll}}
		dest := TileDestination{Tile: pair[1]}

		res := search(t, astar, origin, dest)
		if !res.Found() {
			t.Fatalf("%s -> %s: expected route, got %s", pair[0], pair[1], res.Outcome)
		}
		ref, err := reference.Search(origin, zeroEstimate{dest})
		if err != nil || !ref.Found() {
			t.Fatalf("%s -> %s: reference search failed: %v %s", pair[0], pair[1], err, ref.Outcome)
		}
		if res.Cost != ref.Cost {
			t.Fatalf("%s -> %s: expected optimal cost %d, got %d", pair[0], pair[1], ref.Cost, res.Cost)
		}

		costs := replayCosts(t, f, cost, res.Path)
		remaining := res.Cost
		for i, s := range res.Path {
			if est := dest.Estimate(s); est > remaining {
				t.Fatalf("%s -> %s: estimate %d exceeds remaining cost %d at %v", pair[0], pair[1], est, remaining, s)
			}
			if i < len(costs) {
				remaining -= costs[i]
			}
		}
		if remaining != 0 {
			t.Fatalf("%s -> %s: hop costs do not add up to %d (left %d)", pair[0], pair[1], res.Cost, remaining)
		}
	}
}

func TestSearchDeterministic(t *testing.T) {
	const w, h = 9, 9
	m := fullGrid(t, w, h)
	pairs := randomPairs(w, h, 20, 11)

	run := func(opts ...Option) []Result {
		e := newEngine(m, DefaultConfig(), opts...)
		out := make([]Result, 0, len(pairs))
		for _, pair := range pairs {
			origin := Origin{Forward: Seed{Tile: pair[0], Trackdirs: track.TrackdirBitsAll}}
			res := search(t, e, origin, TileDestination{Tile: pair[1]})
			res.CacheHits, res.CacheMisses = 0, 0
			out = append(out, res)
		}
		return out
	}

	first := run()
	if diff := cmp.Diff(first, run()); diff != "" {
		t.Fatalf("repeated runs differ (-first +second):\n%s", diff)
	}

	f := follow.New(m, train, follow.Options{Allow90: true})
	cache := segcache.New(0)
	profile := NewProfile(f, NewSlopeCost(m, DefaultConfig()))
	cached := run(WithSegmentCache(cache, profile))
	for i := range first {
		if first[i].Cost != cached[i].Cost || !cmp.Equal(first[i].Path, cached[i].Path) {
			t.Fatalf("pair %d: cached search differs: cost %d vs %d", i, first[i].Cost, cached[i].Cost)
		}
	}
}

func TestSearchCachedSegmentClippedAtDestination(t *testing.T) {
	m := mustBuild(t, world.NewBuilder(12, 6).Line(tile(0, 1), track.DiagDirSW, 9, rail))
	cfg := DefaultConfig()
	f := follow.New(m, train, follow.Options{Allow90: true})
	cache := segcache.New(0)
	e := newEngine(m, cfg, WithSegmentCache(cache, NewProfile(f, NewSlopeCost(m, cfg))))
	origin := OriginAt(state(0, 1, track.TrackdirXSW))

	miss := search(t, e, origin, TileDestination{Tile: tile(5, 5)})
	if miss.Found() || cache.Len() != 1 {
		t.Fatalf("expected the dead-end segment to be cached, got %s with %d cached", miss.Outcome, cache.Len())
	}

	res := search(t, e, origin, TileDestination{Tile: tile(4, 1)})
	if !res.Found() || res.Cost != 40 || len(res.Path) != 5 {
		t.Fatalf("expected clipped route of cost 40 and 5 states, got %s cost %d states %d", res.Outcome, res.Cost, len(res.Path))
	}
	if res.CacheHits != 1 {
		t.Fatalf("expected a cache hit, got %d", res.CacheHits)
	}
}

func TestSearchNearestDepot(t *testing.T) {
	m := mustBuild(t, world.NewBuilder(16, 3).
		Depot(tile(0, 1), track.DiagDirSW, rail).
		Line(tile(1, 1), track.DiagDirSW, 12, rail).
		Depot(tile(13, 1), track.DiagDirNE, rail))
	f := follow.New(m, train, follow.Options{Allow90: true})
	cfg := DefaultConfig()
	e := NewEngine[*world.Map, SlopeCost[*world.Map], DepotDestination[*world.Map]](f, NewSlopeCost(m, cfg), cfg)

	origin := Origin{Forward: Seed{Tile: tile(9, 1), Trackdirs: track.TrackdirXSW.Bit() | track.TrackdirXNE.Bit()}}
	res, err := e.Search(origin, DepotDestination[*world.Map]{Oracle: m, Mode: track.TransportRail, Owner: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !res.Found() || res.Nearest.Tile != tile(13, 1) || res.Cost != 40 {
		t.Fatalf("expected nearest depot at (13,1) cost 40, got %s %v cost %d", res.Outcome, res.Nearest, res.Cost)
	}
}
