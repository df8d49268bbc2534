package pathfind

import "trackroute/internal/track"

// Outcome is how a search ended.
type Outcome uint8

const (
	OutcomeFound Outcome = iota
	OutcomeNoPath
	OutcomeBudgetExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNoPath:
		return "no path"
	case OutcomeBudgetExhausted:
		return "budget exhausted"
	}
	return "unknown"
}

// Result reports a finished search. When the destination was not reached,
// Path and Cost describe the route to Nearest, the closed node with the
// smallest remaining estimate.
type Result struct {
	Outcome Outcome
	Cost    int
	// Path holds every state from the origin to the end, one per hop plus the
	// starting state.
	Path    []track.State
	Nearest track.State
	// Origin is the seed state the path starts from.
	Origin      track.State
	Reversed    bool
	Expanded    int
	Created     int
	CacheHits   int
	CacheMisses int
}

// Found reports whether the destination was reached.
func (r Result) Found() bool {
	return r.Outcome == OutcomeFound
}

// Hops returns the number of hops in Path.
func (r Result) Hops() int {
	return max(0, len(r.Path)-1)
}
