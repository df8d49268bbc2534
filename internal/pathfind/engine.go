// Package pathfind runs best-first searches over the hops produced by a
// follow.Follower.
package pathfind

import (
	"trackroute/internal/follow"
	"trackroute/internal/pathfind/segcache"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

type engineOptions struct {
	cache   *segcache.Cache
	profile segcache.Profile
	store   *NodeStore
}

// Option customises an Engine.
type Option func(*engineOptions)

// WithSegmentCache shares segments between searches. profile must describe
// the follower and cost policy the engine runs with.
func WithSegmentCache(cache *segcache.Cache, profile segcache.Profile) Option {
	return func(o *engineOptions) {
		o.cache = cache
		o.profile = profile
	}
}

// WithNodeStore reuses an existing store. It is reset on every search.
func WithNodeStore(store *NodeStore) Option {
	return func(o *engineOptions) {
		o.store = store
	}
}

// NewProfile describes a follower and slope cost for segment caching.
func NewProfile[O world.Oracle](f *follow.Follower[O], cost SlopeCost[O]) segcache.Profile {
	return segcache.Profile{
		Follower:     f.Profile(),
		TileCost:     cost.TileCost,
		SlopePenalty: cost.SlopePenalty,
	}
}

// Engine is an A* search composed from a follower, a cost policy and a
// destination policy. An Engine is not safe for concurrent use.
type Engine[O world.Oracle, C CostPolicy, D DestinationPolicy] struct {
	follower *follow.Follower[O]
	cost     C
	cfg      Config
	cache    *segcache.Cache
	profile  segcache.Profile
	store    *NodeStore
	open     openList

	dest      D
	hits      int
	misses    int
	expanded  int
	best      NodeID
	bestScore int
}

// NewEngine composes an engine.
func NewEngine[O world.Oracle, C CostPolicy, D DestinationPolicy](f *follow.Follower[O], cost C, cfg Config, opts ...Option) *Engine[O, C, D] {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = NewNodeStore()
	}
	return &Engine[O, C, D]{
		follower: f,
		cost:     cost,
		cfg:      cfg.Normalized(),
		cache:    o.cache,
		profile:  o.profile,
		store:    o.store,
	}
}

// Store exposes the node arena of the last search.
func (e *Engine[O, C, D]) Store() *NodeStore {
	return e.store
}

// Search looks for the cheapest route from origin to dest. Failing to find
// one is reported through Result.Outcome; an error means the input was
// unusable.
func (e *Engine[O, C, D]) Search(origin Origin, dest D) (Result, error) {
	if err := origin.Validate(); err != nil {
		return Result{}, err
	}
	e.reset(dest)

	for _, seed := range origin.seeds() {
		e.addNode(seed.state, NoParent, seed.penalty, seed.choice)
	}

	outcome := OutcomeNoPath
	for e.open.Len() > 0 {
		if e.cfg.MaxSearchNodes > 0 && e.expanded >= e.cfg.MaxSearchNodes {
			outcome = OutcomeBudgetExhausted
			break
		}
		id := e.open.pop()
		n := e.store.Node(id)
		n.closed = true
		e.expanded++

		if n.Destination {
			return e.finish(origin, OutcomeFound, id), nil
		}
		e.noteBest(id)

		last, cost := n.Last(), n.Cost
		res, ok := e.follower.Follow(last.Tile, last.Dir)
		if !ok {
			continue
		}
		choice := res.Trackdirs.Count() > 1
		for _, next := range res.Successors() {
			e.addNode(next, id, cost+e.cost.EdgeCost(&res, next), choice)
		}
	}
	return e.finish(origin, outcome, e.best), nil
}

func (e *Engine[O, C, D]) finish(origin Origin, outcome Outcome, end NodeID) Result {
	r := e.result(outcome, end)
	if len(r.Path) > 0 && origin.Reverse != nil {
		start := r.Path[0]
		fwd := start.Tile == origin.Forward.Tile && origin.Forward.Trackdirs.Has(start.Dir)
		r.Reversed = !fwd && start.Tile == origin.Reverse.Tile && origin.Reverse.Trackdirs.Has(start.Dir)
	}
	return r
}

func (e *Engine[O, C, D]) reset(dest D) {
	e.store.Reset()
	e.open.reset(e.store)
	e.dest = dest
	e.hits, e.misses, e.expanded = 0, 0, 0
	e.best = NoParent
	e.bestScore = 0
}

// addNode creates or improves the node keyed by key. base is the cost of the
// path up to and including the hop onto key.
func (e *Engine[O, C, D]) addNode(key track.State, parent NodeID, base int, choice bool) {
	if id, ok := e.store.Lookup(key); ok {
		n := e.store.Node(id)
		if n.closed {
			return
		}
		g := base + n.Segment.Cost()
		if g >= n.Cost {
			return
		}
		n.Estimate += g - n.Cost
		n.Cost = g
		n.Parent = parent
		n.Choice = choice
		e.open.fix(id)
		return
	}

	seg := e.segment(key)
	if seg.End == segcache.EndLoop {
		return
	}
	g := base + seg.Cost()
	id := e.store.Insert(Node{
		Key:         key,
		Parent:      parent,
		Cost:        g,
		Estimate:    g + e.dest.Estimate(seg.Last()),
		Choice:      choice,
		Destination: seg.End == segcache.EndTarget,
		Segment:     seg,
	})
	e.open.push(id)
}

func (e *Engine[O, C, D]) segment(key track.State) segcache.Segment {
	if e.cache != nil {
		if seg, ok := e.cache.Lookup(e.profile, key); ok {
			e.hits++
			if clipped, hit := clipAtDestination(seg, e.dest); hit {
				return clipped
			}
			return seg
		}
		e.misses++
	}
	seg := walkSegment(e.follower, e.cost, e.dest, key, e.cfg.MaxSegmentLength)
	if e.cache != nil {
		e.cache.Store(e.profile, seg)
	}
	return seg
}

// noteBest tracks the closed node closest to the destination, preferring
// cheaper and then older nodes on ties.
func (e *Engine[O, C, D]) noteBest(id NodeID) {
	n := e.store.Node(id)
	score := n.Estimate - n.Cost
	if e.best == NoParent {
		e.best, e.bestScore = id, score
		return
	}
	b := e.store.Node(e.best)
	if score < e.bestScore || (score == e.bestScore && n.Cost < b.Cost) {
		e.best, e.bestScore = id, score
	}
}

func (e *Engine[O, C, D]) result(outcome Outcome, end NodeID) Result {
	r := Result{
		Outcome:     outcome,
		Expanded:    e.expanded,
		Created:     e.store.Len(),
		CacheHits:   e.hits,
		CacheMisses: e.misses,
	}
	if end == NoParent {
		return r
	}
	r.Cost = e.store.Node(end).Cost
	r.Nearest = e.store.Node(end).Last()
	r.Path = e.reconstruct(end)
	if len(r.Path) > 0 {
		r.Origin = r.Path[0]
	}
	return r
}

func (e *Engine[O, C, D]) reconstruct(end NodeID) []track.State {
	var chain []NodeID
	for id := end; id != NoParent; id = e.store.Node(id).Parent {
		chain = append(chain, id)
	}
	var path []track.State
	for i := len(chain) - 1; i >= 0; i-- {
		path = append(path, e.store.Node(chain[i]).Segment.States()...)
	}
	return path
}
