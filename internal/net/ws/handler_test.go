package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"trackroute/internal/pathfind"
	"trackroute/internal/routing"
	"trackroute/internal/track"
	"trackroute/internal/world"
	"trackroute/logging"
	"trackroute/logging/network"
)

var rail = world.Piece{Transport: track.TransportRail, Owner: 1}

func newService(t *testing.T) *routing.Service {
	t.Helper()
	m, err := world.NewBuilder(10, 3).
		Line(track.Tile{X: 0, Y: 1}, track.DiagDirSW, 7, rail).
		Depot(track.Tile{X: 7, Y: 1}, track.DiagDirNE, rail).
		Build()
	require.NoError(t, err)
	return routing.NewService(m, routing.DefaultConfig())
}

func websocketURL(t *testing.T, base string) string {
	t.Helper()
	parsed, err := url.Parse(base)
	require.NoError(t, err)
	parsed.Scheme = "ws"
	parsed.RawQuery = url.Values{"id": {"inspector"}}.Encode()
	return parsed.String()
}

func dial(t *testing.T, handler *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL), nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	return conn
}

func TestInspectorRoute(t *testing.T) {
	conn := dial(t, NewHandler(newService(t), HandlerConfig{}))

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":      "route",
		"requestId": "r1",
		"vehicle":   map[string]any{"mode": "rail", "owner": 1},
		"from":      map[string]any{"x": 0, "y": 1, "trackdir": "X_SW"},
		"to":        map[string]any{"x": 5, "y": 1},
	}))
	var reply routeResultMessage
	require.NoError(t, conn.ReadJSON(&reply))

	require.Equal(t, replyRoute, reply.Type)
	require.Equal(t, "r1", reply.RequestID)
	require.Equal(t, "found", reply.Outcome)
	require.Equal(t, 50, reply.Cost)
	require.Len(t, reply.Path, 6)
	require.Equal(t, stateMessage{X: 5, Y: 1, Trackdir: "X_SW"}, reply.Path[5])
}

func TestInspectorFollowAndErrors(t *testing.T) {
	conn := dial(t, NewHandler(newService(t), HandlerConfig{}))

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "follow",
		"vehicle": map[string]any{"mode": "rail", "owner": 1},
		"at":      map[string]any{"x": 7, "y": 1, "trackdir": "X_SW"},
	}))
	var follow followResultMessage
	require.NoError(t, conn.ReadJSON(&follow))
	require.Equal(t, replyFollow, follow.Type)
	require.NotEmpty(t, follow.RequestID)
	require.True(t, follow.OK)
	require.True(t, follow.Reversed)
	require.Equal(t, []string{"X_NE"}, follow.Trackdirs)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "route",
		"vehicle": map[string]any{"mode": "hovercraft"},
		"from":    map[string]any{"x": 0, "y": 1, "trackdir": "X_SW"},
		"to":      map[string]any{"x": 5, "y": 1},
	}))
	var failure errorMessage
	require.NoError(t, conn.ReadJSON(&failure))
	require.Equal(t, replyError, failure.Type)
	require.Contains(t, failure.Error, "hovercraft")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	failure = errorMessage{}
	require.NoError(t, conn.ReadJSON(&failure))
	require.Equal(t, "malformed message", failure.Error)
}

func TestInspectorInvalidate(t *testing.T) {
	svc := newService(t)
	conn := dial(t, NewHandler(svc, HandlerConfig{}))

	_, err := svc.Route(context.Background(), routing.Request{
		Vehicle:     world.Vehicle{Owner: 1, Transport: track.TransportRail, RailTypes: track.TypeSetAll},
		Origin:      pathfind.OriginAt(track.State{Tile: track.Tile{X: 0, Y: 1}, Dir: track.TrackdirXSW}),
		Destination: routing.TileTarget(track.Tile{X: 9, Y: 1}),
	})
	require.NoError(t, err)
	require.Positive(t, svc.CacheStats().Segments)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":   "invalidate",
		"region": map[string]any{"min": map[string]any{"x": 3, "y": 3}, "max": map[string]any{"x": 3, "y": 0}},
	}))
	var reply invalidatedMessage
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, replyInvalidated, reply.Type)
	require.Positive(t, reply.Removed)
	require.Zero(t, svc.CacheStats().Segments)
}

func TestDispatchUnknownType(t *testing.T) {
	h := NewHandler(newService(t), HandlerConfig{})
	reply := h.Dispatch(context.Background(), clientMessage{Type: "teleport", RequestID: "x"})
	failure, ok := reply.(errorMessage)
	require.True(t, ok)
	require.Equal(t, "x", failure.RequestID)
}

func TestInspectorPublishesConnectionEvents(t *testing.T) {
	var events []logging.EventType
	done := make(chan struct{})
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		events = append(events, event.Type)
		if event.Type == network.EventClientDisconnected {
			close(done)
		}
	})
	conn := dial(t, NewHandler(newService(t), HandlerConfig{Publisher: pub}))
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	<-done
	require.Equal(t, []logging.EventType{network.EventClientConnected, network.EventClientDisconnected}, events)
}
