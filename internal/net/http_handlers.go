// Package net exposes the routing service over HTTP.
package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"trackroute/internal/net/ws"
	"trackroute/internal/routing"
	"trackroute/internal/telemetry"
	"trackroute/logging"
)

type HTTPHandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	// Metrics serves /metrics when set.
	Metrics nethttp.Handler
}

type diagnosticsPayload struct {
	Status     string        `json:"status"`
	ServerTime int64         `json:"serverTime"`
	Generation uint64        `json:"generation"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Cache      cacheSnapshot `json:"cache"`
}

type cacheSnapshot struct {
	Segments    int    `json:"segments"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Invalidated uint64 `json:"invalidated"`
	Flushes     uint64 `json:"flushes"`
}

func NewHTTPHandler(service *routing.Service, cfg HTTPHandlerConfig) nethttp.Handler {
	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		m, generation := service.World()
		stats := service.CacheStats()
		payload := diagnosticsPayload{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Generation: generation,
			Cache: cacheSnapshot{
				Segments:    stats.Segments,
				Hits:        stats.Hits,
				Misses:      stats.Misses,
				Invalidated: stats.Invalidated,
				Flushes:     stats.Flushes,
			},
		}
		if m != nil {
			payload.Width, payload.Height = m.Width(), m.Height()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	inspector := ws.NewHandler(service, ws.HandlerConfig{Logger: cfg.Logger, Publisher: cfg.Publisher})
	mux.HandleFunc("/ws", inspector.Handle)

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
