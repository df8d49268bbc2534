package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trackroute/internal/routing"
	"trackroute/internal/telemetry"
	"trackroute/internal/track"
	"trackroute/internal/world"
)

func newService(t *testing.T) *routing.Service {
	t.Helper()
	m, err := world.NewBuilder(12, 4).Line(track.Tile{X: 0, Y: 1}, track.DiagDirSW, 10, world.Piece{Transport: track.TransportRail}).Build()
	if err != nil {
		t.Fatalf("build map: %v", err)
	}
	return routing.NewService(m, routing.DefaultConfig())
}

func TestHealth(t *testing.T) {
	handler := NewHTTPHandler(newService(t), HTTPHandlerConfig{})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("expected ok, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestDiagnostics(t *testing.T) {
	handler := NewHTTPHandler(newService(t), HTTPHandlerConfig{})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/diagnostics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	var payload diagnosticsPayload
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics: %v", err)
	}
	if payload.Generation != 1 || payload.Width != 12 || payload.Height != 4 {
		t.Fatalf("unexpected diagnostics %+v", payload)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/diagnostics", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	withoutMetrics := NewHTTPHandler(newService(t), HTTPHandlerConfig{})
	resp := httptest.NewRecorder()
	withoutMetrics.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics, got %d", resp.Code)
	}

	metrics := telemetry.NewPrometheus(telemetry.DefaultMetricsConfig())
	metrics.SetCachedSegments(3)
	handler := NewHTTPHandler(newService(t), HTTPHandlerConfig{Metrics: metrics.Handler()})
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "trackroute_segment_cache_segments 3") {
		t.Fatalf("expected exposition, got %d:\n%s", resp.Code, resp.Body.String())
	}
}
