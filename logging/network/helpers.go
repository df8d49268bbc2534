package network

import (
	"context"

	"trackroute/logging"
)

const (
	// EventClientConnected is emitted when an inspector client opens a socket.
	EventClientConnected logging.EventType = "network.client_connected"
	// EventClientDisconnected is emitted when an inspector client goes away.
	EventClientDisconnected logging.EventType = "network.client_disconnected"
	// EventBadMessage is emitted when a client sends something unparseable.
	EventBadMessage logging.EventType = "network.bad_message"
)

// DisconnectPayload records why a client left.
type DisconnectPayload struct {
	Reason   string `json:"reason"`
	Messages int    `json:"messages"`
}

// BadMessagePayload records a rejected client message.
type BadMessagePayload struct {
	Error string `json:"error"`
}

// ClientConnected publishes a new inspector connection.
func ClientConnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventClientConnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Extra:    extra,
	})
}

// ClientDisconnected publishes a closed inspector connection.
func ClientDisconnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload DisconnectPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventClientDisconnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// BadMessage publishes a malformed client message.
func BadMessage(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload BadMessagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBadMessage,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
