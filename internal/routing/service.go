// Package routing serves route queries over a swappable world, sharing one
// segment cache between searches.
package routing

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trackroute/internal/follow"
	"trackroute/internal/pathfind"
	"trackroute/internal/pathfind/segcache"
	"trackroute/internal/telemetry"
	"trackroute/internal/track"
	"trackroute/internal/world"
	"trackroute/logging"
	loggingpathfinding "trackroute/logging/pathfinding"
)

const tracerName = "trackroute/internal/routing"

var (
	// ErrNoWorld is returned when the service has no world to search.
	ErrNoWorld = errors.New("no world loaded")
	// ErrUnknownDestination is returned for an unsupported destination kind.
	ErrUnknownDestination = errors.New("unknown destination kind")
)

// Option customises a Service.
type Option func(*Service)

// WithMetrics records searches and cache activity.
func WithMetrics(m telemetry.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithPublisher emits routing events.
func WithPublisher(p logging.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Service runs searches against the current world. It is safe for concurrent
// use; searches share the world under a read lock and world swaps take the
// write lock.
type Service struct {
	mu         sync.RWMutex
	world      *world.Map
	generation uint64

	cfg   Config
	cache *segcache.Cache
	nodes sync.Pool

	metrics   telemetry.Metrics
	publisher logging.Publisher
	tracer    trace.Tracer
}

// NewService serves routes over m, which may be nil until SwapWorld.
func NewService(m *world.Map, cfg Config, opts ...Option) *Service {
	s := &Service{
		world:     m,
		cfg:       cfg,
		metrics:   telemetry.NopMetrics{},
		publisher: logging.NopPublisher(),
		tracer:    otel.Tracer(tracerName),
	}
	s.cfg.Config = cfg.Config.Normalized()
	if m != nil {
		s.generation = 1
	}
	if cfg.SegmentCache.Enabled {
		s.cache = segcache.New(cfg.SegmentCache.MaxSegments)
	}
	s.nodes.New = func() any { return pathfind.NewNodeStore() }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// World returns the current world and its generation.
func (s *Service) World() (*world.Map, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world, s.generation
}

// CacheStats reports segment cache counters. The zero value is returned when
// caching is disabled.
func (s *Service) CacheStats() segcache.Stats {
	if s.cache == nil {
		return segcache.Stats{}
	}
	return s.cache.Stats()
}

func (s *Service) follower(m *world.Map, veh world.Vehicle) *follow.Follower[*world.Map] {
	return follow.New(m, veh, follow.Options{Allow90: s.cfg.Allow90DegreeTurns})
}

// Route searches for the cheapest route described by req. A search that
// fails to reach its destination is not an error; see Response.Outcome.
func (s *Service) Route(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	mode := req.Vehicle.Transport.String()
	ctx, span := s.tracer.Start(ctx, "routing.Route", trace.WithAttributes(
		attribute.String("vehicle.id", req.VehicleID),
		attribute.String("vehicle.mode", mode),
		attribute.String("destination", req.Destination.String()),
	))
	defer span.End()

	s.mu.RLock()
	m, gen := s.world, s.generation
	started := time.Now()
	res, err := s.search(m, req)
	elapsed := time.Since(started)
	s.mu.RUnlock()

	actor := logging.EntityRef{ID: req.VehicleID, Kind: logging.EntityKindVehicle}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		loggingpathfinding.RouteRejected(ctx, s.publisher, gen, actor, loggingpathfinding.RejectedPayload{Reason: err.Error()}, nil)
		return Response{Generation: gen}, err
	}

	span.SetAttributes(
		attribute.String("outcome", res.Outcome.String()),
		attribute.Int("cost", res.Cost),
		attribute.Int("expanded", res.Expanded),
		attribute.Int("cache.hits", res.CacheHits),
	)
	s.metrics.ObserveSearch(mode, res.Outcome.String(), res.Expanded, elapsed)
	if s.cache != nil {
		s.metrics.AddCacheLookups(res.CacheHits, res.CacheMisses)
		s.metrics.SetCachedSegments(s.cache.Len())
	}

	payload := loggingpathfinding.RoutePayload{
		Mode:        mode,
		Destination: req.Destination.String(),
		Outcome:     res.Outcome.String(),
		Cost:        res.Cost,
		Hops:        res.Hops(),
		Expanded:    res.Expanded,
		CacheHits:   res.CacheHits,
		CacheMisses: res.CacheMisses,
		Reversed:    res.Reversed,
	}
	extra := map[string]any{"durationMs": float64(elapsed.Microseconds()) / 1000}
	if res.Found() {
		loggingpathfinding.RouteFound(ctx, s.publisher, gen, actor, payload, extra)
	} else {
		loggingpathfinding.RouteUnavailable(ctx, s.publisher, gen, actor, payload, extra)
	}
	return Response{Result: res, Generation: gen}, nil
}

// search must run under the read lock.
func (s *Service) search(m *world.Map, req Request) (pathfind.Result, error) {
	if m == nil {
		return pathfind.Result{}, ErrNoWorld
	}
	f := s.follower(m, req.Vehicle)
	cost := pathfind.NewSlopeCost(m, s.cfg.Config)

	store := s.nodes.Get().(*pathfind.NodeStore)
	defer s.nodes.Put(store)
	opts := []pathfind.Option{pathfind.WithNodeStore(store)}
	if s.cache != nil {
		opts = append(opts, pathfind.WithSegmentCache(s.cache, pathfind.NewProfile(f, cost)))
	}

	switch req.Destination.Kind {
	case DestinationTile:
		e := pathfind.NewEngine[*world.Map, pathfind.SlopeCost[*world.Map], pathfind.TileDestination](f, cost, s.cfg.Config, opts...)
		return e.Search(req.Origin, pathfind.TileDestination{Tile: req.Destination.Tile, Trackdirs: req.Destination.Trackdirs})
	case DestinationDepot:
		e := pathfind.NewEngine[*world.Map, pathfind.SlopeCost[*world.Map], pathfind.DepotDestination[*world.Map]](f, cost, s.cfg.Config, opts...)
		return e.Search(req.Origin, pathfind.DepotDestination[*world.Map]{Oracle: m, Mode: req.Vehicle.Transport, Owner: req.Vehicle.Owner})
	}
	return pathfind.Result{}, errors.Wrapf(ErrUnknownDestination, "%s", req.Destination.Kind)
}

// Follow runs the track follower once for veh from s.
func (s *Service) Follow(veh world.Vehicle, st track.State) (follow.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.world == nil {
		return follow.Result{}, false, ErrNoWorld
	}
	res, ok := s.follower(s.world, veh).Follow(st.Tile, st.Dir)
	return res, ok, nil
}

// SpeedLimit returns the speed cap for veh on st, follow.NoSpeedLimit when
// nothing restricts it.
func (s *Service) SpeedLimit(veh world.Vehicle, st track.State) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.world == nil {
		return 0, ErrNoWorld
	}
	return s.follower(s.world, veh).SpeedLimit(st.Tile, st.Dir), nil
}

// Invalidate drops cached segments touching r and returns how many went.
func (s *Service) Invalidate(ctx context.Context, r track.Rect) int {
	if s.cache == nil {
		return 0
	}
	removed := s.cache.Invalidate(r)
	s.noteInvalidated(ctx, r.String(), removed)
	return removed
}

// InvalidateAll empties the segment cache.
func (s *Service) InvalidateAll(ctx context.Context) int {
	if s.cache == nil {
		return 0
	}
	removed := s.cache.InvalidateAll()
	s.noteInvalidated(ctx, "all", removed)
	return removed
}

func (s *Service) noteInvalidated(ctx context.Context, region string, removed int) {
	s.metrics.AddInvalidated(removed)
	s.metrics.SetCachedSegments(s.cache.Len())
	_, gen := s.World()
	loggingpathfinding.SegmentsInvalidated(ctx, s.publisher, gen, loggingpathfinding.InvalidatedPayload{
		Region:  region,
		Removed: removed,
	}, nil)
}

// SwapWorld replaces the world, empties the cache and returns the new
// generation. No search observes a mix of old segments and the new world.
func (s *Service) SwapWorld(ctx context.Context, m *world.Map, source string) (uint64, error) {
	if m == nil {
		return 0, ErrNoWorld
	}
	s.mu.Lock()
	s.world = m
	s.generation++
	gen := s.generation
	removed := 0
	if s.cache != nil {
		removed = s.cache.InvalidateAll()
	}
	s.mu.Unlock()

	if s.cache != nil {
		s.metrics.AddInvalidated(removed)
		s.metrics.SetCachedSegments(0)
	}
	loggingpathfinding.WorldReloaded(ctx, s.publisher, gen, loggingpathfinding.WorldReloadedPayload{
		Source: source,
		Width:  m.Width(),
		Height: m.Height(),
	}, map[string]any{"segmentsDropped": removed})
	return gen, nil
}
