package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNone   = "none"
)

// TracingConfig selects where spans go.
type TracingConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Exporter     string        `yaml:"exporter" validate:"omitempty,oneof=stdout otlp none"`
	Endpoint     string        `yaml:"endpoint" validate:"required_if=Exporter otlp"`
	Insecure     bool          `yaml:"insecure"`
	SamplingRate float64       `yaml:"samplingRate" validate:"min=0,max=1"`
	BatchTimeout time.Duration `yaml:"batchTimeout" validate:"min=0"`
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Exporter:     ExporterStdout,
		SamplingRate: 1,
		BatchTimeout: 5 * time.Second,
	}
}

// NewTracerProvider builds and installs the global tracer provider. Stdout
// spans are written to w. A disabled config returns a provider that records
// nothing and leaves the global provider alone.
func NewTracerProvider(ctx context.Context, cfg TracingConfig, serviceName string, w io.Writer) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample())), nil
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.Exporter {
	case "", ExporterStdout:
		if w == nil {
			w = io.Discard
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case ExporterNone:
	default:
		return nil, errors.Newf("unsupported trace exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "create %s trace exporter", cfg.Exporter)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
	}
	if exporter != nil {
		var batch []sdktrace.BatchSpanProcessorOption
		if cfg.BatchTimeout > 0 {
			batch = append(batch, sdktrace.WithBatchTimeout(cfg.BatchTimeout))
		}
		opts = append(opts, sdktrace.WithBatcher(exporter, batch...))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return provider, nil
}
