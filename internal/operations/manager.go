package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	"aqiclean/internal/config"
	"aqiclean/internal/dataprocessing"
	"aqiclean/internal/exporter"
	"aqiclean/internal/files"
	"aqiclean/internal/infrastructure"
	"aqiclean/internal/validation"
)

// Dependencies lets callers replace the collaborators of a run. Nil
// fields get the production implementation.
type Dependencies struct {
	Parser  SheetParser
	Remover OutputRemover
	Writer  TableWriter
	Mirror  TableMirror
	Tracer  trace.Tracer
	Metrics *infrastructure.RunMetrics
	Logger  *slog.Logger
}

// Manager runs the pipeline steps in order
type Manager struct {
	steps       []Step
	validator   *validation.Validator
	tracer      *StepTracer
	metrics     *infrastructure.RunMetrics
	logger      *slog.Logger
	rootDir     string
	outputPath  string
	metricsFile string
}

// NewManager builds the discover, reshape, merge, clean and persist steps
// from cfg
func NewManager(cfg *config.Config, deps Dependencies) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "pipeline")

	metrics := deps.Metrics
	if metrics == nil {
		metrics = infrastructure.NewRunMetrics()
	}

	remover := deps.Remover
	if remover == nil {
		remover = files.NewManager(cfg.Retry.Attempts, cfg.Retry.Delay, logger)
	}
	writer := deps.Writer
	if writer == nil {
		writer = exporter.NewCSVWriter(logger)
	}

	p := cfg.Pipeline
	discovery := files.NewDiscovery(p.SheetExtension, p.LockFilePrefix, logger)
	processor := dataprocessing.NewCleanProcessor(dataprocessing.ProcessingOptions{
		ReindexDaily: p.ReindexDaily,
	}, logger)

	return &Manager{
		steps: []Step{
			NewDiscoverStep(discovery, p.RootDir, metrics),
			NewReshapeStep(deps.Parser, p.SkipBadFiles, metrics, logger),
			NewMergeStep(metrics),
			NewCleanStep(processor, metrics),
			NewPersistStep(remover, writer, deps.Mirror, p.OutputFile,
				exporter.WriteOptions{BOMPrefix: p.WriteBOM}, metrics),
		},
		validator:   validation.NewValidator(logger),
		tracer:      NewStepTracer(deps.Tracer),
		metrics:     metrics,
		logger:      logger,
		rootDir:     p.RootDir,
		outputPath:  p.OutputFile,
		metricsFile: cfg.Metrics.Textfile,
	}
}

// Steps returns the steps in execution order
func (m *Manager) Steps() []Step {
	return m.steps
}

// Metrics returns the collectors of this manager's runs
func (m *Manager) Metrics() *infrastructure.RunMetrics {
	return m.metrics
}

// Execute runs every step once. A run that finds no data completes without
// writing anything and reports Summary.NoData. On failure the summary
// collected so far is returned together with the error.
func (m *Manager) Execute(ctx context.Context) (*RunState, error) {
	ctx, runID := infrastructure.EnsureRunID(ctx)
	state := NewRunState(runID)
	for _, step := range m.steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceRun(ctx, runID, m.rootDir, m.outputPath)
	defer span.End()

	state.Start()
	m.logger.InfoContext(ctx, "run_start",
		slog.String("run_id", runID),
		slog.String("root_dir", m.rootDir),
		slog.String("output", m.outputPath),
		slog.Int("step_count", len(m.steps)))

	err := m.executeSequential(ctx, state)
	switch {
	case err == nil && state.Summary.NoData:
		state.CompleteNoData()
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.finish(ctx, span, state)
	return state, err
}

func (m *Manager) executeSequential(ctx context.Context, state *RunState) error {
	if err := m.validator.ValidateOutputPath(m.outputPath); err != nil {
		m.skipRemaining(state, 0, "output path rejected")
		return &OperationError{
			Type:    ErrorTypeValidation,
			Step:    StepPersist,
			Message: "output path rejected",
			Cause:   err,
		}
	}

	for i, step := range m.steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("step", step.ID()))
			m.skipRemaining(state, i, "run cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_stage",
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(m.steps)))

		err := m.executeStep(ctx, state, step)
		if errors.Is(err, dataprocessing.ErrNoData) {
			m.logger.InfoContext(ctx, "no_data",
				slog.String("step", step.ID()),
				slog.Int("files_failed", state.Summary.FilesFailed),
				slog.Int("files_skipped", state.Summary.FilesSkipped))
			state.Summary.NoData = true
			m.skipRemaining(state, i+1, "no data processed")
			return nil
		}
		if err != nil {
			m.skipRemaining(state, i+1, fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *RunState, step Step) error {
	stepState := state.GetStep(step.ID())
	stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	start := time.Now()
	err := runStep(stepCtx, state, step)
	duration := time.Since(start)
	m.metrics.ObserveStage(step.ID(), duration)

	switch {
	case err == nil, errors.Is(err, dataprocessing.ErrNoData):
		stepState.Complete()
		m.tracer.RecordStepCompletion(span, stepState, duration, nil)
		m.logger.InfoContext(ctx, "stage_completed_successfully",
			append([]any{
				slog.String("step", step.ID()),
				slog.Duration("duration", duration),
			}, metadataAttrs(stepState)...)...)
		return err
	default:
		wrapped := WrapError(err, step.ID(), "step execution failed")
		stepState.Fail(wrapped)
		m.tracer.RecordStepCompletion(span, stepState, duration, wrapped)
		m.logger.ErrorContext(ctx, "stage_execution_failed",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error_type", string(wrapped.Type)),
			slog.Any("context", wrapped.Context),
			slog.String("error", wrapped.Error()))
		return wrapped
	}
}

// runStep executes step, turning a panic into a fatal error
func runStep(ctx context.Context, state *RunState, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewFatalError(fmt.Sprintf("step panicked: %v", r), nil)
		}
	}()
	return step.Execute(ctx, state)
}

func (m *Manager) skipRemaining(state *RunState, from int, reason string) {
	for _, step := range m.steps[from:] {
		state.GetStep(step.ID()).Skip(reason)
	}
}

func (m *Manager) finish(ctx context.Context, span trace.Span, state *RunState) {
	if m.metrics != nil {
		if state.Succeeded() {
			m.metrics.LastRunSuccess.Set(1)
		} else {
			m.metrics.LastRunSuccess.Set(0)
		}
	}
	if err := m.metrics.WriteTextfile(m.metricsFile); err != nil {
		m.logger.WarnContext(ctx, "metrics_textfile_failed",
			slog.String("path", m.metricsFile),
			slog.String("error", err.Error()))
	}

	m.tracer.RecordRunCompletion(span, state)

	attrs := append([]any{slog.String("status", string(state.Status))}, summaryAttrs(state.Summary)...)
	if state.Succeeded() {
		m.logger.InfoContext(ctx, "run_completed", attrs...)
	} else {
		m.logger.ErrorContext(ctx, "run_failed", append(attrs, slog.String("error", state.Error.Error()))...)
	}
}

func metadataAttrs(s *StepState) []any {
	attrs := make([]any, 0, len(s.Metadata))
	for _, k := range slices.Sorted(maps.Keys(s.Metadata)) {
		attrs = append(attrs, slog.Any(k, s.Metadata[k]))
	}
	return attrs
}
