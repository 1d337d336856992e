package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqiclean/internal/config"
)

func TestInitializeTracingDisabled(t *testing.T) {
	providers, err := InitializeTracing(config.TracingConfig{Exporter: "none"}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	require.NotNil(t, providers.Tracer)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeTracingStdoutToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "run.json")
	providers, err := InitializeTracing(config.TracingConfig{
		Enabled:  true,
		Exporter: "stdout",
		FilePath: path,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "aqiclean.run")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "aqiclean.run")
}

func TestInitializeTracingUnknownExporter(t *testing.T) {
	_, err := InitializeTracing(config.TracingConfig{Enabled: true, Exporter: "otlp"}, nil)
	assert.Error(t, err)
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestLoggerCarriesSpanTraceID(t *testing.T) {
	providers, err := InitializeTracing(config.TracingConfig{
		Enabled:  true,
		Exporter: "stdout",
		FilePath: filepath.Join(t.TempDir(), "trace.json"),
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, "info")

	logger.InfoContext(context.Background(), "outside span")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "otel_trace_id")

	buf.Reset()
	ctx, span := providers.Tracer.Start(context.Background(), "aqiclean.step.clean")
	defer span.End()
	logger.InfoContext(ctx, "inside span")
	entry = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["otel_trace_id"])
}
