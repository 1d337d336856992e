package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"aqiclean/internal/config"
	"aqiclean/pkg/contracts"
)

const (
	ServiceName = "aqiclean"
	TracerName  = "aqiclean"
)

// TracingProviders holds the tracer used by the pipeline and whatever must
// be flushed when the run ends.
type TracingProviders struct {
	TracerProvider *sdktrace.TracerProvider // nil when tracing is disabled
	Tracer         trace.Tracer
	Logger         *slog.Logger

	out io.Closer
}

// InitializeTracing sets up OpenTelemetry tracing for one run. With the
// "none" exporter a no-op tracer is returned so callers never branch.
func InitializeTracing(cfg config.TracingConfig, logger *slog.Logger) (*TracingProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}
	providers := &TracingProviders{Logger: logger}

	if !cfg.Enabled || cfg.Exporter == "none" || cfg.Exporter == "" {
		providers.Tracer = noop.NewTracerProvider().Tracer(TracerName)
		return providers, nil
	}

	var w io.Writer = os.Stdout
	switch cfg.Exporter {
	case "stdout":
		if cfg.FilePath != "" {
			f, err := openLogFile(cfg.FilePath)
			if err != nil {
				return nil, fmt.Errorf("failed to open trace file: %w", err)
			}
			providers.out = f
			w = f
		}
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}

	tp, err := newTracerProvider(w)
	if err != nil {
		if providers.out != nil {
			providers.out.Close()
		}
		return nil, err
	}

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(TracerName, trace.WithInstrumentationVersion(contracts.Version))
	otel.SetTracerProvider(tp)

	logger.Info("Tracing initialized",
		slog.String("exporter", cfg.Exporter),
		slog.String("file_path", cfg.FilePath))

	return providers, nil
}

// newTracerProvider builds a synchronous stdout-style provider writing to w.
// A batch job ends right after its last span, so spans are exported as they end.
func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(createResource()),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

// createResource creates the OpenTelemetry resource
func createResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("service.instance.id", GenerateRunID()),
	)
}

// Shutdown flushes pending spans and releases the trace file
func (p *TracingProviders) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var err error
	if p.TracerProvider != nil {
		if shutdownErr := p.TracerProvider.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("tracer provider shutdown: %w", shutdownErr)
		}
	}
	if p.out != nil {
		if closeErr := p.out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		p.out = nil
	}
	return err
}

// TraceIDFromContext returns the OpenTelemetry trace ID of the active span
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
