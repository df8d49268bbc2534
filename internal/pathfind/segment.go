package pathfind

import (
	"trackroute/internal/follow"
	"trackroute/internal/pathfind/segcache"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

// walkSegment follows forced hops from entry until a destination, a dead end,
// a choice, a loop back to entry, or maxLen hops.
func walkSegment[O world.Oracle, C CostPolicy, D DestinationPolicy](f *follow.Follower[O], cost C, dest D, entry track.State, maxLen int) segcache.Segment {
	seg := segcache.Segment{Entry: entry}
	cur := entry
	total := 0
	for {
		if dest.IsDestination(cur) {
			seg.End = segcache.EndTarget
			return seg
		}
		res, ok := f.Follow(cur.Tile, cur.Dir)
		if !ok {
			seg.End = segcache.EndDeadEnd
			return seg
		}
		if res.Trackdirs.Count() > 1 {
			seg.End = segcache.EndChoice
			return seg
		}
		next := track.State{Tile: res.NewTile, Dir: res.Trackdirs.First()}
		if next == entry {
			seg.End = segcache.EndLoop
			return seg
		}
		total += cost.EdgeCost(&res, next)
		seg.Steps = append(seg.Steps, segcache.Step{State: next, Cost: total})
		cur = next
		if maxLen > 0 && len(seg.Steps) >= maxLen {
			seg.End = segcache.EndTooLong
			return seg
		}
	}
}

// clipAtDestination cuts a cached segment at the first destination state it
// passes through. ok is false when none is on it.
func clipAtDestination[D DestinationPolicy](seg segcache.Segment, dest D) (segcache.Segment, bool) {
	if dest.IsDestination(seg.Entry) {
		return seg.Truncate(0), true
	}
	for i, st := range seg.Steps {
		if dest.IsDestination(st.State) {
			return seg.Truncate(i + 1), true
		}
	}
	return seg, false
}
