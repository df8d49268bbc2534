package pathfind

import (
	"github.com/cockroachdb/errors"

	"trackroute/internal/track"
)

var (
	// ErrNoOrigin is returned when the forward seed offers no trackdir.
	ErrNoOrigin = errors.New("origin has no trackdirs")
	// ErrReversePenaltyRequired is returned when a reverse seed is supplied
	// without a positive penalty.
	ErrReversePenaltyRequired = errors.New("reverse origin needs a positive penalty")
)

// Seed is a tile and the trackdirs a vehicle may start on there.
type Seed struct {
	Tile      track.Tile         `json:"tile"`
	Trackdirs track.TrackdirBits `json:"trackdirs"`
}

// SeedOf starts from exactly one state.
func SeedOf(s track.State) Seed {
	return Seed{Tile: s.Tile, Trackdirs: s.Dir.Bit()}
}

// Origin lists where a search may start. Reverse seeds model turning the
// vehicle around before departing and cost ReversePenalty.
type Origin struct {
	Forward        Seed
	Reverse        *Seed
	ReversePenalty int
}

// OriginAt is a forward-only origin from one state.
func OriginAt(s track.State) Origin {
	return Origin{Forward: SeedOf(s)}
}

// Validate checks the origin can seed a search.
func (o Origin) Validate() error {
	if (o.Forward.Trackdirs & track.TrackdirBitsAll).Empty() {
		return ErrNoOrigin
	}
	if o.Reverse != nil && !(o.Reverse.Trackdirs & track.TrackdirBitsAll).Empty() && o.ReversePenalty <= 0 {
		return errors.Wrapf(ErrReversePenaltyRequired, "penalty %d", o.ReversePenalty)
	}
	return nil
}

type seedNode struct {
	state   track.State
	penalty int
	choice  bool
}

// seeds expands the origin into start states, forward ones first.
func (o Origin) seeds() []seedNode {
	var out []seedNode
	add := func(seed Seed, penalty int) {
		choice := seed.Trackdirs.Count() > 1
		for _, td := range seed.Trackdirs.Trackdirs() {
			out = append(out, seedNode{
				state:   track.State{Tile: seed.Tile, Dir: td},
				penalty: penalty,
				choice:  choice,
			})
		}
	}
	add(o.Forward, 0)
	if o.Reverse != nil {
		add(*o.Reverse, o.ReversePenalty)
	}
	return out
}
