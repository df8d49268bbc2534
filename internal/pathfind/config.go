package pathfind

const (
	DefaultMaxSearchNodes   = 10000
	DefaultMaxSegmentLength = 1024
	DefaultTileCost         = 10
	DefaultSlopePenalty     = 2 * DefaultTileCost

	// MinTileCost keeps the octile estimate admissible: every hop moves at
	// least one tile and must cost no less than a straight step.
	MinTileCost = 10
)

// Config tunes a search.
type Config struct {
	// MaxSearchNodes caps closed nodes per search. Zero means unlimited.
	MaxSearchNodes     int  `json:"maxSearchNodes" yaml:"maxSearchNodes" validate:"min=0"`
	MaxSegmentLength   int  `json:"maxSegmentLength" yaml:"maxSegmentLength" validate:"min=0"`
	TileCost           int  `json:"tileCost" yaml:"tileCost" validate:"omitempty,min=10"`
	SlopePenalty       int  `json:"slopePenalty" yaml:"slopePenalty" validate:"min=0"`
	Allow90DegreeTurns bool `json:"allow90DegreeTurns" yaml:"allow90DegreeTurns"`
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		MaxSearchNodes:     DefaultMaxSearchNodes,
		MaxSegmentLength:   DefaultMaxSegmentLength,
		TileCost:           DefaultTileCost,
		SlopePenalty:       DefaultSlopePenalty,
		Allow90DegreeTurns: true,
	}
}

// Normalized fills unset or out-of-range fields with usable values.
func (cfg Config) Normalized() Config {
	normalized := cfg
	if normalized.MaxSearchNodes < 0 {
		normalized.MaxSearchNodes = 0
	}
	if normalized.MaxSegmentLength <= 0 {
		normalized.MaxSegmentLength = DefaultMaxSegmentLength
	}
	if normalized.TileCost < MinTileCost {
		normalized.TileCost = DefaultTileCost
	}
	if normalized.SlopePenalty < 0 {
		normalized.SlopePenalty = 0
	}
	return normalized
}
