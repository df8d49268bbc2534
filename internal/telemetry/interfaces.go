package telemetry

import (
	"fmt"
	"log"
	"time"

	"github.com/rs/zerolog"
)

// Logger exposes the logging capabilities required by service components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return LoggerFunc(func(format string, args ...any) {
		if logger != nil {
			logger.Printf(format, args...)
		}
	})
}

// WrapZerolog adapts a zerolog logger; lines are written at info level.
func WrapZerolog(logger zerolog.Logger) Logger {
	return LoggerFunc(func(format string, args ...any) {
		logger.Info().Msg(fmt.Sprintf(format, args...))
	})
}

// Metrics receives routing measurements.
type Metrics interface {
	ObserveSearch(mode, outcome string, expanded int, elapsed time.Duration)
	AddCacheLookups(hits, misses int)
	AddInvalidated(segments int)
	SetCachedSegments(segments int)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) ObserveSearch(string, string, int, time.Duration) {}
func (NopMetrics) AddCacheLookups(int, int)                         {}
func (NopMetrics) AddInvalidated(int)                               {}
func (NopMetrics) SetCachedSegments(int)                            {}
