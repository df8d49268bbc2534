package segcache

import (
	"trackroute/internal/follow"
	"trackroute/internal/track"
)

// EndReason records why a segment walk stopped.
type EndReason uint8

const (
	EndChoice EndReason = iota
	EndDeadEnd
	EndTarget
	EndLoop
	EndTooLong
)

var endReasonNames = [...]string{"choice", "dead end", "target", "loop", "too long"}

func (r EndReason) String() string {
	if int(r) < len(endReasonNames) {
		return endReasonNames[r]
	}
	return "unknown"
}

// Cacheable reports whether a segment ending this way depends only on the
// network and the follower, never on the query.
func (r EndReason) Cacheable() bool {
	switch r {
	case EndChoice, EndDeadEnd, EndTooLong:
		return true
	}
	return false
}

// Step is one hop inside a segment. Cost is cumulative from the entry state.
type Step struct {
	State track.State
	Cost  int
}

// Segment is a run of forced hops starting at Entry. Segments handed out by a
// Cache share their Steps backing array and must be treated as read-only.
type Segment struct {
	Entry track.State
	Steps []Step
	End   EndReason
}

// Cost is the total cost of every hop after the entry.
func (s Segment) Cost() int {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].Cost
}

// Last is the state the segment finishes on.
func (s Segment) Last() track.State {
	if len(s.Steps) == 0 {
		return s.Entry
	}
	return s.Steps[len(s.Steps)-1].State
}

// States lists the entry followed by every step.
func (s Segment) States() []track.State {
	out := make([]track.State, 0, len(s.Steps)+1)
	out = append(out, s.Entry)
	for _, st := range s.Steps {
		out = append(out, st.State)
	}
	return out
}

// Truncate keeps the entry and the first n steps and marks the segment as
// ending on a target.
func (s Segment) Truncate(n int) Segment {
	n = max(0, min(n, len(s.Steps)))
	return Segment{Entry: s.Entry, Steps: s.Steps[:n:n], End: EndTarget}
}

// Tiles lists every tile the segment passes over, skipped ones included, in
// travel order. Tiles may repeat.
func (s Segment) Tiles() []track.Tile {
	out := []track.Tile{s.Entry.Tile}
	prev := s.Entry.Tile
	for _, st := range s.Steps {
		out = appendSpan(out, prev, st.State.Tile)
		prev = st.State.Tile
	}
	return out
}

// appendSpan appends the tiles after from up to and including to. Hops only
// ever move along one axis.
func appendSpan(out []track.Tile, from, to track.Tile) []track.Tile {
	if from == to {
		return out
	}
	dx, dy := sign(to.X-from.X), sign(to.Y-from.Y)
	if dx != 0 && dy != 0 {
		return append(out, to)
	}
	for cur := from; cur != to; {
		cur = track.Tile{X: cur.X + dx, Y: cur.Y + dy}
		out = append(out, cur)
	}
	return out
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Bounds is the smallest rectangle covering Tiles.
func (s Segment) Bounds() track.Rect {
	r := track.RectOf(s.Entry.Tile, s.Entry.Tile)
	for _, t := range s.Tiles() {
		r = r.Extend(t)
	}
	return r
}

// Profile identifies everything that shapes a segment besides its entry.
type Profile struct {
	Follower     follow.Profile
	TileCost     int
	SlopePenalty int
}

// Key addresses one cached segment.
type Key struct {
	Profile Profile
	Entry   track.State
}
