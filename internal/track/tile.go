package track

import (
	"fmt"
	"strconv"
	"strings"
)

// Tile is a map coordinate.
type Tile struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add moves the tile by the given delta.
func (t Tile) Add(d Tile) Tile {
	return Tile{X: t.X + d.X, Y: t.Y + d.Y}
}

// Step returns the neighbour across edge d.
func (t Tile) Step(d DiagDir) Tile {
	return t.Add(d.Offset())
}

// StepN moves n tiles in direction d.
func (t Tile) StepN(d DiagDir, n int) Tile {
	off := d.Offset()
	return Tile{X: t.X + off.X*n, Y: t.Y + off.Y*n}
}

// Distance returns the absolute deltas between two tiles.
func (t Tile) Distance(o Tile) (dx, dy int) {
	dx, dy = t.X-o.X, t.Y-o.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx, dy
}

func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.X, t.Y)
}

// State is a position on the network: a tile plus the trackdir occupied on it.
type State struct {
	Tile Tile     `json:"tile"`
	Dir  Trackdir `json:"trackdir"`
}

func (s State) String() string {
	return fmt.Sprintf("%s/%s", s.Tile, s.Dir)
}

// Rect is an inclusive tile region.
type Rect struct {
	Min Tile `json:"min"`
	Max Tile `json:"max"`
}

// RectOf returns the smallest rectangle holding both tiles.
func RectOf(a, b Tile) Rect {
	r := Rect{Min: a, Max: a}
	return r.Extend(b)
}

// Extend grows r to include t.
func (r Rect) Extend(t Tile) Rect {
	r.Min.X = min(r.Min.X, t.X)
	r.Min.Y = min(r.Min.Y, t.Y)
	r.Max.X = max(r.Max.X, t.X)
	r.Max.Y = max(r.Max.Y, t.Y)
	return r
}

// Contains reports whether t lies within r.
func (r Rect) Contains(t Tile) bool {
	return t.X >= r.Min.X && t.X <= r.Max.X && t.Y >= r.Min.Y && t.Y <= r.Max.Y
}

// Intersects reports whether the two regions share a tile.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X && r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Normalize swaps corners so Min <= Max on both axes.
func (r Rect) Normalize() Rect {
	return RectOf(r.Min, r.Max)
}

func (r Rect) String() string {
	return fmt.Sprintf("%s-%s", r.Min, r.Max)
}

// ParseTile reads "x,y".
func ParseTile(s string) (Tile, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Tile{}, fmt.Errorf("tile %q: want x,y", s)
	}
	return parseTile(parts)
}

// ParseState reads "x,y,trackdir", for example "3,1,X_SW".
func ParseState(s string) (State, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return State{}, fmt.Errorf("state %q: want x,y,trackdir", s)
	}
	t, err := parseTile(parts[:2])
	if err != nil {
		return State{}, err
	}
	td, ok := ParseTrackdir(parts[2])
	if !ok {
		return State{}, fmt.Errorf("state %q: unknown trackdir %q", s, parts[2])
	}
	return State{Tile: t, Dir: td}, nil
}

func parseTile(parts []string) (Tile, error) {
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Tile{}, fmt.Errorf("tile x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Tile{}, fmt.Errorf("tile y: %w", err)
	}
	return Tile{X: x, Y: y}, nil
}
