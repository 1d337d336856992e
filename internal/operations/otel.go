package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"aqiclean/pkg/contracts/domain"
)

// StepTracer provides OpenTelemetry instrumentation for pipeline runs
type StepTracer struct {
	tracer trace.Tracer
}

// NewStepTracer wraps tracer; nil gives a no-op tracer
func NewStepTracer(tracer trace.Tracer) *StepTracer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("aqiclean")
	}
	return &StepTracer{tracer: tracer}
}

// TraceRun creates the root span of a run
func (t *StepTracer) TraceRun(ctx context.Context, runID, rootDir, output string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "aqiclean.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.root_dir", rootDir),
			attribute.String("run.output", output),
		),
	)
}

// TraceStep creates a child span for one step
func (t *StepTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("aqiclean.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion sets the status and counters of a step span
func (t *StepTracer) RecordStepCompletion(span trace.Span, state *StepState, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("step.status", string(state.Status)),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	for key, value := range state.Metadata {
		if n, ok := value.(int); ok {
			span.SetAttributes(attribute.Int("step."+key, n))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// RecordRunCompletion sets the status and summary of the root span
func (t *StepTracer) RecordRunCompletion(span trace.Span, state *RunState) {
	s := state.Summary
	span.SetAttributes(
		attribute.String("run.status", string(state.Status)),
		attribute.Int("run.cities", s.Cities),
		attribute.Int("run.sheets_read", s.SheetsRead),
		attribute.Int("run.long_records", s.LongRecords),
		attribute.Int("run.output_rows", s.OutputRows),
		attribute.Bool("run.no_data", s.NoData),
		attribute.Float64("run.duration_seconds", s.Duration.Seconds()),
	)
	if state.Error != nil {
		span.RecordError(state.Error)
		span.SetStatus(codes.Error, state.Error.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// summaryAttrs is the run summary as log attributes
func summaryAttrs(s domain.RunSummary) []any {
	return []any{
		"run_id", s.RunID,
		"cities", s.Cities,
		"files_discovered", s.FilesDiscovered,
		"files_skipped", s.FilesSkipped,
		"files_failed", s.FilesFailed,
		"sheets_read", s.SheetsRead,
		"long_records", s.LongRecords,
		"missing_aqi_dropped", s.MissingAQIDropped,
		"invalid_dates", s.InvalidDates,
		"gaps_inserted", s.GapsInserted,
		"gaps_filled", s.GapsFilled,
		"edge_rows_dropped", s.EdgeRowsDropped,
		"values_clipped", s.ValuesClipped,
		"output_rows", s.OutputRows,
		"output_path", s.OutputPath,
		"no_data", s.NoData,
		"duration", s.Duration,
	}
}
