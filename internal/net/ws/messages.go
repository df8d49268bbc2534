package ws

import (
	"github.com/cockroachdb/errors"

	"trackroute/internal/pathfind"
	"trackroute/internal/routing"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

const (
	msgRoute      = "route"
	msgFollow     = "follow"
	msgInvalidate = "invalidate"

	replyRoute       = "routeResult"
	replyFollow      = "followResult"
	replyInvalidated = "invalidated"
	replyError       = "error"
)

type vehicleMessage struct {
	ID        string `json:"id,omitempty"`
	Mode      string `json:"mode"`
	Tram      bool   `json:"tram,omitempty"`
	Owner     int    `json:"owner"`
	RailTypes []int  `json:"railTypes,omitempty"`
	RoadTypes []int  `json:"roadTypes,omitempty"`
}

type stateMessage struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Trackdir string `json:"trackdir"`
}

type clientMessage struct {
	Type string `json:"type"`
	// RequestID is echoed back; a fresh one is assigned when empty.
	RequestID string `json:"requestId,omitempty"`

	Vehicle        vehicleMessage `json:"vehicle"`
	From           *stateMessage  `json:"from,omitempty"`
	Reverse        *stateMessage  `json:"reverse,omitempty"`
	ReversePenalty int            `json:"reversePenalty,omitempty"`
	To             *track.Tile    `json:"to,omitempty"`
	Depot          bool           `json:"depot,omitempty"`

	At *stateMessage `json:"at,omitempty"`

	// Region limits an invalidate; nil drops every cached segment.
	Region *track.Rect `json:"region,omitempty"`
}

type routeResultMessage struct {
	Type       string         `json:"type"`
	RequestID  string         `json:"requestId"`
	Generation uint64         `json:"generation"`
	Outcome    string         `json:"outcome"`
	Cost       int            `json:"cost"`
	Path       []stateMessage `json:"path"`
	Nearest    *stateMessage  `json:"nearest,omitempty"`
	Reversed   bool           `json:"reversed,omitempty"`
	Expanded   int            `json:"expanded"`
	CacheHits  int            `json:"cacheHits"`
}

type followResultMessage struct {
	Type       string     `json:"type"`
	RequestID  string     `json:"requestId"`
	OK         bool       `json:"ok"`
	Error      string     `json:"error,omitempty"`
	Tile       track.Tile `json:"tile"`
	Trackdirs  []string   `json:"trackdirs"`
	ExitDir    string     `json:"exitDir"`
	Skipped    int        `json:"skipped,omitempty"`
	Station    bool       `json:"station,omitempty"`
	Bridge     bool       `json:"bridge,omitempty"`
	Tunnel     bool       `json:"tunnel,omitempty"`
	Reversed   bool       `json:"reversed,omitempty"`
	SpeedLimit *int       `json:"speedLimit,omitempty"`
}

type invalidatedMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Removed   int    `json:"removed"`
}

type errorMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Error     string `json:"error"`
}

func (s stateMessage) state() (track.State, error) {
	td, ok := track.ParseTrackdir(s.Trackdir)
	if !ok {
		return track.State{}, errors.Newf("unknown trackdir %q", s.Trackdir)
	}
	return track.State{Tile: track.Tile{X: s.X, Y: s.Y}, Dir: td}, nil
}

func stateOf(st track.State) stateMessage {
	return stateMessage{X: st.Tile.X, Y: st.Tile.Y, Trackdir: st.Dir.String()}
}

func (v vehicleMessage) vehicle() (world.Vehicle, error) {
	mode, ok := track.ParseTransport(v.Mode)
	if !ok {
		return world.Vehicle{}, errors.Newf("unknown transport %q", v.Mode)
	}
	if v.Owner < 0 || v.Owner >= int(track.OwnerNone) {
		return world.Vehicle{}, errors.Newf("owner %d out of range", v.Owner)
	}
	veh := world.Vehicle{
		Owner:     track.Owner(v.Owner),
		Transport: mode,
		RailTypes: typeSet(v.RailTypes),
		RoadTypes: typeSet(v.RoadTypes),
	}
	if v.Tram {
		veh.SubType = track.RoadSubTypeTram
	}
	return veh, nil
}

// typeSet treats an empty list as every type.
func typeSet(ids []int) track.TypeSet {
	if len(ids) == 0 {
		return track.TypeSetAll
	}
	var s track.TypeSet
	for _, id := range ids {
		s |= track.TypeSetOf(track.TypeID(id))
	}
	return s
}

func (m clientMessage) routeRequest() (routing.Request, error) {
	veh, err := m.Vehicle.vehicle()
	if err != nil {
		return routing.Request{}, err
	}
	if m.From == nil {
		return routing.Request{}, errors.New("route needs from")
	}
	from, err := m.From.state()
	if err != nil {
		return routing.Request{}, errors.Wrap(err, "from")
	}
	req := routing.Request{
		VehicleID: m.Vehicle.ID,
		Vehicle:   veh,
		Origin:    pathfind.OriginAt(from),
	}
	if m.Reverse != nil {
		rev, err := m.Reverse.state()
		if err != nil {
			return routing.Request{}, errors.Wrap(err, "reverse")
		}
		seed := pathfind.SeedOf(rev)
		req.Origin.Reverse = &seed
		req.Origin.ReversePenalty = m.ReversePenalty
	}
	switch {
	case m.Depot:
		req.Destination = routing.DepotTarget()
	case m.To != nil:
		req.Destination = routing.TileTarget(*m.To)
	default:
		return routing.Request{}, errors.New("route needs to or depot")
	}
	return req, nil
}

func routeReply(id string, resp routing.Response) routeResultMessage {
	reply := routeResultMessage{
		Type:       replyRoute,
		RequestID:  id,
		Generation: resp.Generation,
		Outcome:    resp.Outcome.String(),
		Cost:       resp.Cost,
		Path:       make([]stateMessage, 0, len(resp.Path)),
		Reversed:   resp.Reversed,
		Expanded:   resp.Expanded,
		CacheHits:  resp.CacheHits,
	}
	for _, st := range resp.Path {
		reply.Path = append(reply.Path, stateOf(st))
	}
	if len(resp.Path) > 0 {
		nearest := stateOf(resp.Nearest)
		reply.Nearest = &nearest
	}
	return reply
}
