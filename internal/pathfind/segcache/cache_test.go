package segcache

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"trackroute/internal/follow"
	"trackroute/internal/track"
)

var profile = Profile{
	Follower: follow.Profile{Transport: track.TransportRail, Owner: 1, RailTypes: 1, Allow90: true},
	TileCost: 10,
}

func st(x, y int, td track.Trackdir) track.State {
	return track.State{Tile: track.Tile{X: x, Y: y}, Dir: td}
}

// straight builds a segment heading SW along row y from x0 over n hops.
func straight(x0, y, n int) Segment {
	seg := Segment{Entry: st(x0, y, track.TrackdirXSW), End: EndChoice}
	for i := 1; i <= n; i++ {
		seg.Steps = append(seg.Steps, Step{State: st(x0+i, y, track.TrackdirXSW), Cost: 10 * i})
	}
	return seg
}

func TestSegmentAccessors(t *testing.T) {
	seg := straight(2, 1, 3)
	if seg.Cost() != 30 || seg.Last() != st(5, 1, track.TrackdirXSW) {
		t.Fatalf("unexpected cost/last %d %v", seg.Cost(), seg.Last())
	}
	if got := len(seg.States()); got != 4 {
		t.Fatalf("expected 4 states, got %d", got)
	}
	cut := seg.Truncate(1)
	if cut.End != EndTarget || cut.Cost() != 10 || len(seg.Steps) != 3 {
		t.Fatalf("unexpected truncation %+v (source now %d steps)", cut, len(seg.Steps))
	}
	empty := Segment{Entry: st(0, 0, track.TrackdirYSE)}
	if empty.Cost() != 0 || empty.Last() != empty.Entry {
		t.Fatalf("expected empty segment to end at its entry")
	}
}

func TestSegmentTilesIncludeSkipped(t *testing.T) {
	seg := Segment{
		Entry: st(1, 1, track.TrackdirXSW),
		Steps: []Step{
			{State: st(2, 1, track.TrackdirXSW), Cost: 10},
			{State: st(6, 1, track.TrackdirXSW), Cost: 50},
			{State: st(6, 1, track.TrackdirXNE), Cost: 60},
		},
		End: EndDeadEnd,
	}
	want := []track.Tile{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}, {X: 5, Y: 1}, {X: 6, Y: 1}}
	if diff := cmp.Diff(want, seg.Tiles()); diff != "" {
		t.Fatalf("tiles mismatch (-want +got):\n%s", diff)
	}
	if b := seg.Bounds(); b.Min != (track.Tile{X: 1, Y: 1}) || b.Max != (track.Tile{X: 6, Y: 1}) {
		t.Fatalf("unexpected bounds %+v", b)
	}
}

func TestCacheStoreLookup(t *testing.T) {
	c := New(8)
	seg := straight(0, 0, 4)
	if !c.Store(profile, seg) {
		t.Fatalf("expected choice segment to be stored")
	}
	if c.Store(profile, Segment{Entry: st(9, 9, track.TrackdirXNE), End: EndTarget}) {
		t.Fatalf("expected target segment to be rejected")
	}
	got, ok := c.Lookup(profile, seg.Entry)
	if !ok {
		t.Fatalf("expected hit")
	}
	if diff := cmp.Diff(seg, got); diff != "" {
		t.Fatalf("segment mismatch (-want +got):\n%s", diff)
	}

	other := profile
	other.SlopePenalty = 5
	if _, ok := c.Lookup(other, seg.Entry); ok {
		t.Fatalf("expected different profile to miss")
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Stores != 1 || s.Segments != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestCacheInvalidateRegion(t *testing.T) {
	c := New(0)
	rows := []Segment{straight(0, 0, 4), straight(0, 2, 4), straight(6, 2, 2)}
	for _, seg := range rows {
		c.Store(profile, seg)
	}

	if n := c.Invalidate(track.RectOf(track.Tile{X: 3, Y: 1}, track.Tile{X: 4, Y: 2})); n != 1 {
		t.Fatalf("expected one segment invalidated, got %d", n)
	}
	if _, ok := c.Lookup(profile, rows[1].Entry); ok {
		t.Fatalf("expected row 2 segment to be gone")
	}
	for _, seg := range []Segment{rows[0], rows[2]} {
		if _, ok := c.Lookup(profile, seg.Entry); !ok {
			t.Fatalf("expected %v to survive", seg.Entry)
		}
	}

	if n := c.Invalidate(track.RectOf(track.Tile{X: 20, Y: 20}, track.Tile{X: 30, Y: 30})); n != 0 {
		t.Fatalf("expected nothing outside the network, got %d", n)
	}
	if n := c.InvalidateAll(); n != 2 || c.Len() != 0 {
		t.Fatalf("expected two segments flushed, got %d (len %d)", n, c.Len())
	}
}

func TestCacheInvalidateUnboundedRegion(t *testing.T) {
	c := New(0)
	far := track.Rect{Min: track.Tile{X: 0, Y: math.MaxInt - 1}, Max: track.Tile{X: 0, Y: math.MaxInt}}
	if n := c.Invalidate(far); n != 0 {
		t.Fatalf("expected nothing to drop from an empty cache, got %d", n)
	}

	for _, seg := range []Segment{straight(0, 0, 4), straight(0, 2, 4), straight(6, 2, 2)} {
		c.Store(profile, seg)
	}
	if n := c.Invalidate(far); n != 0 {
		t.Fatalf("expected nothing under a far-off region, got %d", n)
	}
	everything := track.Rect{
		Min: track.Tile{X: math.MinInt, Y: math.MinInt},
		Max: track.Tile{X: math.MaxInt, Y: math.MaxInt},
	}
	if n := c.Invalidate(everything); n != 3 || c.Len() != 0 {
		t.Fatalf("expected every segment dropped, got %d (len %d)", n, c.Len())
	}
}

func TestCacheInvalidateSkippedTile(t *testing.T) {
	c := New(0)
	seg := Segment{
		Entry: st(1, 1, track.TrackdirXSW),
		Steps: []Step{{State: st(6, 1, track.TrackdirXSW), Cost: 50}},
		End:   EndChoice,
	}
	c.Store(profile, seg)
	if n := c.Invalidate(track.RectOf(track.Tile{X: 4, Y: 1}, track.Tile{X: 4, Y: 1})); n != 1 {
		t.Fatalf("expected tunnel interior edit to invalidate, got %d", n)
	}
}

func TestCacheCapacityFlush(t *testing.T) {
	c := New(2)
	c.Store(profile, straight(0, 0, 1))
	c.Store(profile, straight(0, 1, 1))
	c.Store(profile, straight(0, 2, 1))
	if c.Len() != 1 {
		t.Fatalf("expected flush before third store, got %d segments", c.Len())
	}
	if c.Stats().Flushes != 1 {
		t.Fatalf("expected one flush")
	}
}

func TestCacheReplaceKeepsIndexConsistent(t *testing.T) {
	c := New(0)
	c.Store(profile, straight(0, 0, 5))
	c.Store(profile, straight(0, 0, 2))
	if c.Len() != 1 {
		t.Fatalf("expected replacement, got %d", c.Len())
	}
	if n := c.Invalidate(track.RectOf(track.Tile{X: 4, Y: 0}, track.Tile{X: 5, Y: 0})); n != 0 {
		t.Fatalf("expected stale postings removed, got %d", n)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(0)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Store(profile, straight(i, row, 2))
				c.Lookup(profile, st(i, row, track.TrackdirXSW))
				if i%10 == 0 {
					c.Invalidate(track.RectOf(track.Tile{X: i, Y: row}, track.Tile{X: i + 1, Y: row}))
				}
			}
		}(w)
	}
	wg.Wait()
	if c.Len() == 0 {
		t.Fatalf("expected surviving segments")
	}
}
