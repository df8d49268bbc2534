package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig controls metric export.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"omitempty,alphanum"`
}

// DefaultMetricsConfig enables export under the trackroute namespace.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true, Namespace: "trackroute"}
}

// Prometheus implements Metrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	nodesExpanded  *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	invalidated    prometheus.Counter
	cachedSegments prometheus.Gauge
}

var _ Metrics = (*Prometheus)(nil)

// NewPrometheus registers the routing metrics. A disabled config yields a
// collector whose methods do nothing and whose handler returns 404.
func NewPrometheus(cfg MetricsConfig) *Prometheus {
	if !cfg.Enabled {
		return &Prometheus{}
	}
	ns := cfg.Namespace
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "searches_total",
			Help:      "Searches run, by transport mode and outcome.",
		}, []string{"mode", "outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "search_duration_seconds",
			Help:      "Wall time spent per search.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
		}, []string{"mode"}),
		nodesExpanded: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "search_nodes_expanded",
			Help:      "Nodes closed per search.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}, []string{"mode"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "segment_cache_lookups_total",
			Help:      "Segment cache lookups, by result.",
		}, []string{"result"}),
		invalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "segment_cache_invalidated_total",
			Help:      "Cached segments dropped by invalidation.",
		}),
		cachedSegments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "segment_cache_segments",
			Help:      "Segments currently cached.",
		}),
	}
	p.registry.MustRegister(p.searches, p.searchDuration, p.nodesExpanded, p.cacheLookups, p.invalidated, p.cachedSegments)
	return p
}

func (p *Prometheus) enabled() bool {
	return p != nil && p.registry != nil
}

func (p *Prometheus) ObserveSearch(mode, outcome string, expanded int, elapsed time.Duration) {
	if !p.enabled() {
		return
	}
	p.searches.WithLabelValues(mode, outcome).Inc()
	p.searchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	p.nodesExpanded.WithLabelValues(mode).Observe(float64(expanded))
}

func (p *Prometheus) AddCacheLookups(hits, misses int) {
	if !p.enabled() {
		return
	}
	if hits > 0 {
		p.cacheLookups.WithLabelValues("hit").Add(float64(hits))
	}
	if misses > 0 {
		p.cacheLookups.WithLabelValues("miss").Add(float64(misses))
	}
}

func (p *Prometheus) AddInvalidated(segments int) {
	if !p.enabled() || segments <= 0 {
		return
	}
	p.invalidated.Add(float64(segments))
}

func (p *Prometheus) SetCachedSegments(segments int) {
	if !p.enabled() {
		return
	}
	p.cachedSegments.Set(float64(segments))
}

// Registry exposes the underlying registry, nil when disabled.
func (p *Prometheus) Registry() *prometheus.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

// Handler serves the metrics in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	if !p.enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
