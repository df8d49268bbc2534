// Package ws serves the route inspector: a websocket where clients ask the
// routing service for routes and single follower steps.
package ws

import (
	"context"
	"encoding/json"
	nethttp "net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trackroute/internal/follow"
	"trackroute/internal/routing"
	"trackroute/internal/telemetry"
	"trackroute/logging"
	"trackroute/logging/network"
)

const maxMessageBytes = 64 << 10

type HandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
}

type Handler struct {
	service   *routing.Service
	logger    telemetry.Logger
	publisher logging.Publisher
	upgrader  websocket.Upgrader
}

func NewHandler(service *routing.Service, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(nil)
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		service:   service,
		logger:    logger,
		publisher: publisher,
		upgrader:  upgrader,
	}
}

// Handle upgrades the request and serves the connection until it closes.
// The optional id query parameter names the client in logs.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	clientID := r.URL.Query().Get("id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", clientID, err)
		return
	}
	h.Serve(r.Context(), clientID, conn)
}

// Serve answers messages on conn until it fails or closes.
func (h *Handler) Serve(ctx context.Context, clientID string, conn *websocket.Conn) {
	if h == nil || conn == nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	actor := logging.EntityRef{ID: clientID, Kind: logging.EntityKindClient}
	network.ClientConnected(ctx, h.publisher, actor, map[string]any{"remote": conn.RemoteAddr().String()})

	handled := 0
	reason := "closed"
	defer func() {
		network.ClientDisconnected(ctx, h.publisher, actor, network.DisconnectPayload{Reason: reason, Messages: handled}, nil)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				reason = err.Error()
			}
			return
		}
		handled++

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			network.BadMessage(ctx, h.publisher, actor, network.BadMessagePayload{Error: err.Error()}, nil)
			if !h.write(conn, clientID, errorMessage{Type: replyError, Error: "malformed message"}) {
				reason = "write failed"
				return
			}
			continue
		}
		if msg.RequestID == "" {
			msg.RequestID = uuid.NewString()
		}

		reply := h.Dispatch(logging.WithRequestID(ctx, msg.RequestID), msg)
		if !h.write(conn, clientID, reply) {
			reason = "write failed"
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, clientID string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("failed to marshal response for %s: %v", clientID, err)
		return true
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false
	}
	return true
}

// Dispatch answers one decoded message.
func (h *Handler) Dispatch(ctx context.Context, msg clientMessage) any {
	fail := func(err error) any {
		return errorMessage{Type: replyError, RequestID: msg.RequestID, Error: err.Error()}
	}

	switch msg.Type {
	case msgRoute:
		req, err := msg.routeRequest()
		if err != nil {
			return fail(err)
		}
		resp, err := h.service.Route(ctx, req)
		if err != nil {
			return fail(err)
		}
		return routeReply(msg.RequestID, resp)

	case msgFollow:
		veh, err := msg.Vehicle.vehicle()
		if err != nil {
			return fail(err)
		}
		if msg.At == nil {
			return errorMessage{Type: replyError, RequestID: msg.RequestID, Error: "follow needs at"}
		}
		at, err := msg.At.state()
		if err != nil {
			return fail(err)
		}
		res, ok, err := h.service.Follow(veh, at)
		if err != nil {
			return fail(err)
		}
		reply := followResultMessage{
			Type:      replyFollow,
			RequestID: msg.RequestID,
			OK:        ok,
			Tile:      res.NewTile,
			Trackdirs: make([]string, 0, res.Trackdirs.Count()),
			ExitDir:   res.ExitDir.String(),
			Skipped:   res.Skipped,
			Station:   res.Station,
			Bridge:    res.Bridge,
			Tunnel:    res.Tunnel,
			Reversed:  res.Reversed,
		}
		for _, td := range res.Trackdirs.Trackdirs() {
			reply.Trackdirs = append(reply.Trackdirs, td.String())
		}
		if !ok {
			reply.Error = res.Err.Error()
		}
		if limit, err := h.service.SpeedLimit(veh, at); err == nil && limit != follow.NoSpeedLimit {
			reply.SpeedLimit = &limit
		}
		return reply

	case msgInvalidate:
		var removed int
		if msg.Region != nil {
			removed = h.service.Invalidate(ctx, msg.Region.Normalize())
		} else {
			removed = h.service.InvalidateAll(ctx)
		}
		return invalidatedMessage{Type: replyInvalidated, RequestID: msg.RequestID, Removed: removed}
	}

	return errorMessage{Type: replyError, RequestID: msg.RequestID, Error: "unknown message type " + msg.Type}
}
