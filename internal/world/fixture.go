package world

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"trackroute/internal/track"
)

// ErrInvalidFixture marks fixtures that parse but describe an impossible map.
var ErrInvalidFixture = errors.New("invalid fixture")

// Fixture is the YAML form of a map.
type Fixture struct {
	Width  int            `yaml:"width" validate:"required,min=1,max=4096"`
	Height int            `yaml:"height" validate:"required,min=1,max=4096"`
	Lines  []FixtureLine  `yaml:"lines" validate:"dive"`
	Tiles  []FixtureTile  `yaml:"tiles" validate:"dive"`
	Speeds []FixtureSpeed `yaml:"speeds" validate:"dive"`
}

// FixturePiece is embedded by every placed object.
type FixturePiece struct {
	Transport string `yaml:"transport" validate:"required,oneof=rail road water"`
	Owner     *int   `yaml:"owner" validate:"omitempty,min=0,max=254"`
	Type      int    `yaml:"type" validate:"min=0,max=63"`
	Tram      bool   `yaml:"tram"`
}

// FixtureLine lays straight track.
type FixtureLine struct {
	FixturePiece `yaml:",inline"`
	From         track.Tile `yaml:"from"`
	Dir          string     `yaml:"dir" validate:"required,oneof=NE SE SW NW"`
	Length       int        `yaml:"length" validate:"required,min=1"`
}

// FixtureTile places one object.
type FixtureTile struct {
	FixturePiece `yaml:",inline"`
	At           track.Tile `yaml:"at"`
	Kind         string     `yaml:"kind" validate:"required,oneof=track depot station roadstop tunnel bridge"`
	Tracks       []string   `yaml:"tracks" validate:"dive,oneof=X Y UPPER LOWER LEFT RIGHT"`
	Dir          string     `yaml:"dir" validate:"omitempty,oneof=NE SE SW NW"`
	Length       int        `yaml:"length" validate:"min=0"`
	Speed        int        `yaml:"speed" validate:"min=0"`
	Station      int        `yaml:"station"`
	DriveThrough bool       `yaml:"driveThrough"`
	Slope        int        `yaml:"slope" validate:"min=0,max=15"`
}

// FixtureSpeed sets the top speed of a track type.
type FixtureSpeed struct {
	Transport string `yaml:"transport" validate:"required,oneof=rail road"`
	Type      int    `yaml:"type" validate:"min=0,max=63"`
	Speed     int    `yaml:"speed" validate:"required,min=1"`
}

var fixtureValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadFixture reads and builds a map from a YAML file.
func LoadFixture(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s", path)
	}
	m, err := ParseFixture(data)
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", path)
	}
	return m, nil
}

// ParseFixture builds a map from YAML bytes.
func ParseFixture(data []byte) (*Map, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, errors.Wrap(err, "decode fixture")
	}
	return fx.Build()
}

// Build validates the fixture and constructs the map it describes.
func (fx Fixture) Build() (*Map, error) {
	if err := fixtureValidator.Struct(fx); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "validate fixture"), ErrInvalidFixture)
	}
	b := NewBuilder(fx.Width, fx.Height)
	for _, line := range fx.Lines {
		dir, _ := track.ParseDiagDir(line.Dir)
		b.Line(line.From, dir, line.Length, line.piece())
	}
	for i, tile := range fx.Tiles {
		if err := tile.apply(b); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "tile %d", i), ErrInvalidFixture)
		}
	}
	for _, sp := range fx.Speeds {
		mode, _ := track.ParseTransport(sp.Transport)
		b.TypeSpeed(mode, track.TypeID(sp.Type), sp.Speed)
	}
	m, err := b.Build()
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidFixture)
	}
	return m, nil
}

func (p FixturePiece) piece() Piece {
	mode, _ := track.ParseTransport(p.Transport)
	owner := track.OwnerNone
	if p.Owner != nil {
		owner = track.Owner(*p.Owner)
	}
	return Piece{Transport: mode, Owner: owner, Type: track.TypeID(p.Type), Tram: p.Tram}
}

func (ft FixtureTile) apply(b *Builder) error {
	dir := track.InvalidDiagDir
	if ft.Dir != "" {
		dir, _ = track.ParseDiagDir(ft.Dir)
	}
	p := ft.piece()
	needsDir := ft.Kind != "track"
	if needsDir && !dir.Valid() {
		return errors.Newf("%s at %s needs dir", ft.Kind, ft.At)
	}
	switch ft.Kind {
	case "track":
		var bits track.TrackBits
		for _, name := range ft.Tracks {
			bits |= trackBitByName(name)
		}
		if bits == track.TrackBitsNone {
			return errors.Newf("track at %s lists no tracks", ft.At)
		}
		b.Track(ft.At, p, bits)
	case "depot":
		b.Depot(ft.At, dir, p)
	case "station":
		b.Station(ft.At, dir, max(ft.Length, 1), ft.Station, p)
	case "roadstop":
		b.RoadStop(ft.At, dir, ft.DriveThrough, ft.Station, p)
	case "tunnel":
		if ft.Length < 1 {
			return errors.Newf("tunnel at %s needs length", ft.At)
		}
		b.Tunnel(ft.At, dir, ft.Length, p)
	case "bridge":
		if ft.Length < 1 {
			return errors.Newf("bridge at %s needs length", ft.At)
		}
		b.Bridge(ft.At, dir, ft.Length, ft.Speed, p)
	}
	if ft.Slope != 0 {
		b.Slope(ft.At, track.Slope(ft.Slope))
	}
	return nil
}

func trackBitByName(name string) track.TrackBits {
	for t := track.TrackX; t < track.TrackEnd; t++ {
		if strings.EqualFold(t.String(), name) {
			return track.TrackBits(1 << t)
		}
	}
	return track.TrackBitsNone
}
