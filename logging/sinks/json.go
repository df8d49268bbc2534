package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"trackroute/logging"
)

// JSON emits newline-delimited structured events.
type JSON struct {
	mu        sync.Mutex
	writer    *bufio.Writer
	encoder   *json.Encoder
	autoFlush bool
	done      chan struct{}
	closeOnce sync.Once
}

type jsonRecord struct {
	Type       logging.EventType `json:"type"`
	Generation uint64            `json:"generation"`
	Time       string            `json:"time"`
	Severity   string            `json:"severity"`
	Category   string            `json:"category,omitempty"`
	Actor      logging.EntityRef `json:"actor"`
	Payload    any               `json:"payload,omitempty"`
	Extra      map[string]any    `json:"extra,omitempty"`
	TraceID    string            `json:"traceId,omitempty"`
	RequestID  string            `json:"requestId,omitempty"`
}

// NewJSON writes to w, flushing every flushInterval or after every event
// when the interval is not positive.
func NewJSON(w io.Writer, flushInterval time.Duration) *JSON {
	if w == nil {
		w = io.Discard
	}
	buf := bufio.NewWriter(w)
	sink := &JSON{
		writer:    buf,
		encoder:   json.NewEncoder(buf),
		autoFlush: flushInterval <= 0,
		done:      make(chan struct{}),
	}
	if flushInterval > 0 {
		go sink.periodicFlush(flushInterval)
	}
	return sink
}

// Write satisfies logging.Sink.
func (s *JSON) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := jsonRecord{
		Type:       event.Type,
		Generation: event.Generation,
		Time:       event.Time.Format(time.RFC3339Nano),
		Severity:   event.Severity.String(),
		Category:   event.Category,
		Actor:      event.Actor,
		Payload:    event.Payload,
		Extra:      event.Extra,
		TraceID:    event.TraceID,
		RequestID:  event.RequestID,
	}
	if err := s.encoder.Encode(record); err != nil {
		return err
	}
	if s.autoFlush {
		return s.writer.Flush()
	}
	return nil
}

// Close stops the flush loop and flushes buffers.
func (s *JSON) Close(context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Flush()
}

func (s *JSON) periodicFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.writer.Flush()
			s.mu.Unlock()
		}
	}
}
