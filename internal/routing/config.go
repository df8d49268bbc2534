package routing

import (
	"trackroute/internal/pathfind"
	"trackroute/internal/pathfind/segcache"
)

// CacheConfig sizes the shared segment cache.
type CacheConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	MaxSegments int  `json:"maxSegments" yaml:"maxSegments" validate:"min=0"`
}

// Config tunes the service. The embedded search config applies to every
// route request.
type Config struct {
	pathfind.Config `yaml:",inline"`
	SegmentCache    CacheConfig `json:"segmentCache" yaml:"segmentCache"`
}

// DefaultConfig returns the standard search tuning with caching enabled.
func DefaultConfig() Config {
	return Config{
		Config: pathfind.DefaultConfig(),
		SegmentCache: CacheConfig{
			Enabled:     true,
			MaxSegments: segcache.DefaultMaxSegments,
		},
	}
}
