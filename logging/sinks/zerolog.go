package sinks

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"trackroute/logging"
)

// Zerolog forwards events to a zerolog logger, mapping severities onto
// zerolog levels.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog writes JSON lines to w, or coloured console output when pretty.
func NewZerolog(w io.Writer, cfg logging.ZerologConfig) *Zerolog {
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return &Zerolog{logger: zerolog.New(w).With().Str("component", "trackroute").Logger()}
}

// NewZerologFrom wraps an existing logger.
func NewZerologFrom(logger zerolog.Logger) *Zerolog {
	return &Zerolog{logger: logger}
}

func (s *Zerolog) Write(event logging.Event) error {
	entry := s.logger.WithLevel(zerologLevel(event.Severity)).
		Time(zerolog.TimestampFieldName, event.Time).
		Uint64("generation", event.Generation).
		Str("actor", formatEntity(event.Actor))
	if event.Category != "" {
		entry = entry.Str("category", event.Category)
	}
	if event.TraceID != "" {
		entry = entry.Str("trace_id", event.TraceID)
	}
	if event.RequestID != "" {
		entry = entry.Str("request_id", event.RequestID)
	}
	if event.Payload != nil {
		entry = entry.Interface("payload", event.Payload)
	}
	if len(event.Extra) > 0 {
		entry = entry.Fields(event.Extra)
	}
	entry.Msg(string(event.Type))
	return nil
}

func (s *Zerolog) Close(context.Context) error {
	return nil
}

func zerologLevel(sev logging.Severity) zerolog.Level {
	switch sev {
	case logging.SeverityDebug:
		return zerolog.DebugLevel
	case logging.SeverityWarn:
		return zerolog.WarnLevel
	case logging.SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
