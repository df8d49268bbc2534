package app

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"trackroute/logging"
	"trackroute/logging/sinks"
)

// fileSink closes the file behind a sink once the sink is done with it.
type fileSink struct {
	logging.Sink
	file *os.File
}

func (s fileSink) Close(ctx context.Context) error {
	err := s.Sink.Close(ctx)
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func buildSinks(cfg logging.Config, stdout io.Writer) ([]logging.NamedSink, error) {
	var named []logging.NamedSink
	for _, name := range cfg.EnabledSinks {
		var sink logging.Sink
		switch name {
		case logging.SinkConsole:
			sink = sinks.NewConsoleSink(stdout)
		case logging.SinkJSON:
			if cfg.JSON.FilePath == "" {
				sink = sinks.NewJSON(stdout, cfg.JSON.FlushInterval)
				break
			}
			file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				closeSinks(named)
				return nil, errors.Wrapf(err, "open json log %s", cfg.JSON.FilePath)
			}
			sink = fileSink{Sink: sinks.NewJSON(file, cfg.JSON.FlushInterval), file: file}
		case logging.SinkZerolog:
			sink = sinks.NewZerolog(stdout, cfg.Zerolog)
		case logging.SinkMemory:
			sink = sinks.NewMemorySink()
		default:
			closeSinks(named)
			return nil, errors.Newf("unknown log sink %q", name)
		}
		named = append(named, logging.NamedSink{Name: name, Sink: sink})
	}
	return named, nil
}

func closeSinks(named []logging.NamedSink) {
	for _, n := range named {
		n.Sink.Close(context.Background())
	}
}
