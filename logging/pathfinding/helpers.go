package pathfinding

import (
	"context"

	"trackroute/logging"
)

const (
	// EventRouteFound is emitted when a search reaches its destination.
	EventRouteFound logging.EventType = "pathfinding.route_found"
	// EventRouteUnavailable is emitted when a search ends without reaching the destination.
	EventRouteUnavailable logging.EventType = "pathfinding.route_unavailable"
	// EventRouteRejected is emitted when a request cannot be searched at all.
	EventRouteRejected logging.EventType = "pathfinding.route_rejected"
	// EventSegmentsInvalidated is emitted when cached segments are dropped.
	EventSegmentsInvalidated logging.EventType = "pathfinding.segments_invalidated"
	// EventWorldReloaded is emitted when a new world replaces the current one.
	EventWorldReloaded logging.EventType = "pathfinding.world_reloaded"
)

// RoutePayload summarises a finished search.
type RoutePayload struct {
	Mode        string `json:"mode"`
	Destination string `json:"destination"`
	Outcome     string `json:"outcome"`
	Cost        int    `json:"cost"`
	Hops        int    `json:"hops"`
	Expanded    int    `json:"expanded"`
	CacheHits   int    `json:"cacheHits"`
	CacheMisses int    `json:"cacheMisses"`
	Reversed    bool   `json:"reversed,omitempty"`
}

// RejectedPayload explains why a request was refused.
type RejectedPayload struct {
	Reason string `json:"reason"`
}

// InvalidatedPayload describes a cache invalidation.
type InvalidatedPayload struct {
	Region  string `json:"region"`
	Removed int    `json:"removed"`
}

// WorldReloadedPayload describes the world that was swapped in.
type WorldReloadedPayload struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryRouting
	pub.Publish(ctx, event)
}

// RouteFound publishes a successful search.
func RouteFound(ctx context.Context, pub logging.Publisher, generation uint64, actor logging.EntityRef, payload RoutePayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:       EventRouteFound,
		Generation: generation,
		Actor:      actor,
		Severity:   logging.SeverityDebug,
		Payload:    payload,
		Extra:      extra,
	})
}

// RouteUnavailable publishes a search that ran out of nodes or options.
func RouteUnavailable(ctx context.Context, pub logging.Publisher, generation uint64, actor logging.EntityRef, payload RoutePayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:       EventRouteUnavailable,
		Generation: generation,
		Actor:      actor,
		Severity:   logging.SeverityInfo,
		Payload:    payload,
		Extra:      extra,
	})
}

// RouteRejected publishes a request that failed validation.
func RouteRejected(ctx context.Context, pub logging.Publisher, generation uint64, actor logging.EntityRef, payload RejectedPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:       EventRouteRejected,
		Generation: generation,
		Actor:      actor,
		Severity:   logging.SeverityWarn,
		Payload:    payload,
		Extra:      extra,
	})
}

// SegmentsInvalidated publishes a cache invalidation.
func SegmentsInvalidated(ctx context.Context, pub logging.Publisher, generation uint64, payload InvalidatedPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:       EventSegmentsInvalidated,
		Generation: generation,
		Actor:      logging.EntityRef{Kind: logging.EntityKindCache},
		Severity:   logging.SeverityInfo,
		Payload:    payload,
		Extra:      extra,
	})
}

// WorldReloaded publishes a world swap.
func WorldReloaded(ctx context.Context, pub logging.Publisher, generation uint64, payload WorldReloadedPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:       EventWorldReloaded,
		Generation: generation,
		Actor:      logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity:   logging.SeverityInfo,
		Payload:    payload,
		Extra:      extra,
	})
}
