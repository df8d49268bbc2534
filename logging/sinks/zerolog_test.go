package sinks

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"trackroute/logging"
)

func TestZerologSinkWritesLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerolog(&buf, logging.ZerologConfig{})
	err := sink.Write(logging.Event{
		Type:       "pathfinding.route_rejected",
		Generation: 2,
		Time:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Actor:      logging.EntityRef{ID: "9", Kind: logging.EntityKindVehicle},
		Severity:   logging.SeverityWarn,
		Category:   logging.CategoryRouting,
		RequestID:  "req-1",
		Payload:    map[string]string{"reason": "bad origin"},
		Extra:      map[string]any{"mode": "rail"},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	checks := map[string]any{
		"level":      "warn",
		"message":    "pathfinding.route_rejected",
		"actor":      "vehicle:9",
		"category":   "routing",
		"request_id": "req-1",
		"mode":       "rail",
		"component":  "trackroute",
	}
	for key, want := range checks {
		if line[key] != want {
			t.Fatalf("expected %s=%v, got %v", key, want, line[key])
		}
	}
}

func TestConsoleSinkFormatsExtraSorted(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)
	_ = sink.Write(logging.Event{Type: "x", Severity: logging.SeverityInfo, Extra: map[string]any{"b": 2, "a": 1}})
	if !bytes.Contains(buf.Bytes(), []byte("[x] gen=0 actor= severity=info a=1 b=2")) {
		t.Fatalf("unexpected console line %q", buf.String())
	}
}
