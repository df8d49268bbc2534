package pathfind

import (
	"trackroute/internal/follow"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

// CostPolicy prices one hop. next is the state the hop lands on.
type CostPolicy interface {
	EdgeCost(res *follow.Result, next track.State) int
}

// SlopeCost charges a flat price per tile travelled and a penalty for
// climbing straight track.
type SlopeCost[O world.Oracle] struct {
	Oracle       O
	TileCost     int
	SlopePenalty int
}

// NewSlopeCost builds the policy from a search config.
func NewSlopeCost[O world.Oracle](oracle O, cfg Config) SlopeCost[O] {
	cfg = cfg.Normalized()
	return SlopeCost[O]{Oracle: oracle, TileCost: cfg.TileCost, SlopePenalty: cfg.SlopePenalty}
}

// EdgeCost implements CostPolicy. Skipped tiles are charged once as part of
// the hop.
func (c SlopeCost[O]) EdgeCost(res *follow.Result, next track.State) int {
	cost := c.TileCost * (1 + res.Skipped)
	if c.SlopePenalty > 0 && next.Dir.Diagonal() {
		info := c.Oracle.Tile(next.Tile)
		if !info.IsTunnelBridge() && track.IsUphill(info.Slope, next.Dir) {
			cost += c.SlopePenalty
		}
	}
	return cost
}
