package operations

import (
	"context"
	"fmt"
	"log/slog"

	"aqiclean/internal/dataprocessing"
	"aqiclean/internal/exporter"
	"aqiclean/internal/files"
	"aqiclean/internal/infrastructure"
	"aqiclean/internal/validation"
	"aqiclean/pkg/contracts/domain"
)

// DiscoverStep finds the city directories and their yearly workbooks
type DiscoverStep struct {
	BaseStage
	discovery *files.Discovery
	rootDir   string
	metrics   *infrastructure.RunMetrics
}

// NewDiscoverStep creates the discovery step
func NewDiscoverStep(discovery *files.Discovery, rootDir string, metrics *infrastructure.RunMetrics) *DiscoverStep {
	return &DiscoverStep{
		BaseStage: NewBaseStage(StepDiscover, "Discover source workbooks"),
		discovery: discovery,
		rootDir:   rootDir,
		metrics:   metrics,
	}
}

// Execute lists the source workbooks under the root directory
func (s *DiscoverStep) Execute(ctx context.Context, state *RunState) error {
	result, err := s.discovery.Discover(s.rootDir)
	if err != nil {
		return NewExecutionError(s.ID(), err).WithContext("root_dir", s.rootDir)
	}

	state.Discovery = result
	state.Summary.FilesDiscovered = len(result.Sheets) + len(result.Skipped)
	state.Summary.FilesSkipped = len(result.Skipped)
	s.metrics.AddFiles("skipped", len(result.Skipped))

	step := state.GetStep(s.ID())
	step.SetMetadata("cities", len(result.Cities))
	step.SetMetadata("sheets", len(result.Sheets))
	step.SetMetadata("skipped", len(result.Skipped))
	return nil
}

// ReshapeStep turns every discovered workbook into long records
type ReshapeStep struct {
	BaseStage
	parse        SheetParser
	validator    *validation.Validator
	skipBadFiles bool
	metrics      *infrastructure.RunMetrics
	logger       *slog.Logger
}

// NewReshapeStep creates the reshape step. With skipBadFiles a workbook
// that cannot be read is logged and counted instead of failing the run.
func NewReshapeStep(parse SheetParser, skipBadFiles bool, metrics *infrastructure.RunMetrics, logger *slog.Logger) *ReshapeStep {
	if parse == nil {
		parse = dataprocessing.ParseYearSheet
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ReshapeStep{
		BaseStage:    NewBaseStage(StepReshape, "Reshape year sheets"),
		parse:        parse,
		validator:    validation.NewValidator(logger),
		skipBadFiles: skipBadFiles,
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute reads and reshapes each workbook in discovery order
func (s *ReshapeStep) Execute(ctx context.Context, state *RunState) error {
	if state.Discovery == nil {
		return NewValidationError(s.ID(), "discovery has not run")
	}

	var total dataprocessing.ReshapeStats
	for _, sheetFile := range state.Discovery.Sheets {
		if err := ctx.Err(); err != nil {
			return NewCancellationError(s.ID(), err)
		}

		records, stats, err := s.reshapeFile(sheetFile.Path, sheetFile.City, sheetFile.Year)
		if err != nil {
			if !s.skipBadFiles {
				return NewExecutionError(s.ID(), err).
					WithContext("file", sheetFile.Path).
					WithContext("city", sheetFile.City)
			}
			s.logger.ErrorContext(ctx, "sheet_failed",
				slog.String("file", sheetFile.Path),
				slog.String("city", sheetFile.City),
				slog.String("error", err.Error()))
			state.Summary.FilesFailed++
			s.metrics.AddFiles("failed", 1)
			continue
		}

		s.logger.DebugContext(ctx, "sheet_reshaped",
			slog.String("file", sheetFile.Path),
			slog.String("city", sheetFile.City),
			slog.Int("year", sheetFile.Year),
			slog.Int("records", stats.Emitted))

		state.Fragments = append(state.Fragments, records)
		state.Summary.SheetsRead++
		s.metrics.AddFiles("read", 1)
		total.Add(stats)
	}

	state.Summary.MissingAQIDropped = total.MissingAQI
	state.Summary.InvalidDates = total.InvalidDates
	s.metrics.AddRows(s.ID(), "emitted", total.Emitted)
	s.metrics.AddRows(s.ID(), "missing_aqi", total.MissingAQI)
	s.metrics.AddRows(s.ID(), "invalid_date", total.InvalidDates)

	step := state.GetStep(s.ID())
	step.SetMetadata("sheets_read", state.Summary.SheetsRead)
	step.SetMetadata("sheets_failed", state.Summary.FilesFailed)
	step.SetMetadata("records", total.Emitted)
	return nil
}

func (s *ReshapeStep) reshapeFile(path, city string, year int) ([]domain.LongRecord, dataprocessing.ReshapeStats, error) {
	sheet, err := s.parse(path, city, year)
	if err != nil {
		return nil, dataprocessing.ReshapeStats{}, err
	}
	if err := s.validator.ValidateSheet(sheet); err != nil {
		return nil, dataprocessing.ReshapeStats{}, err
	}
	return dataprocessing.Reshape(sheet)
}

// MergeStep concatenates the fragments into one sorted sequence
type MergeStep struct {
	BaseStage
	metrics *infrastructure.RunMetrics
}

// NewMergeStep creates the merge step
func NewMergeStep(metrics *infrastructure.RunMetrics) *MergeStep {
	return &MergeStep{
		BaseStage: NewBaseStage(StepMerge, "Merge and sort"),
		metrics:   metrics,
	}
}

// Execute merges the fragments. dataprocessing.ErrNoData is returned
// unwrapped when nothing was read.
func (s *MergeStep) Execute(ctx context.Context, state *RunState) error {
	merged, err := dataprocessing.Merge(state.Fragments)
	if err != nil {
		return err
	}

	state.Merged = merged
	state.Fragments = nil
	state.Summary.LongRecords = len(merged)
	s.metrics.AddRows(s.ID(), "merged", len(merged))
	state.GetStep(s.ID()).SetMetadata("records", len(merged))
	return nil
}

// CleanStep fills gaps, clips outliers and derives the labels
type CleanStep struct {
	BaseStage
	processor dataprocessing.Processor
	metrics   *infrastructure.RunMetrics
}

// NewCleanStep creates the clean and enrich step
func NewCleanStep(processor dataprocessing.Processor, metrics *infrastructure.RunMetrics) *CleanStep {
	return &CleanStep{
		BaseStage: NewBaseStage(StepClean, "Clean and enrich"),
		processor: processor,
		metrics:   metrics,
	}
}

// Execute builds the consolidated table from the merged records
func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	table, stats, err := s.processor.Process(ctx, state.Merged)
	if err != nil {
		return WrapError(err, s.ID(), "clean failed")
	}

	state.Table = table
	state.Merged = nil

	sum := &state.Summary
	sum.Cities = stats.Cities
	sum.GapsInserted = stats.GapsInserted
	sum.GapsFilled = stats.GapsFilled
	sum.EdgeRowsDropped = stats.EdgeRowsDropped
	sum.ValuesClipped = stats.ValuesClipped

	if s.metrics != nil {
		s.metrics.GapsFilled.Add(float64(stats.GapsFilled))
		s.metrics.ValuesClipped.Add(float64(stats.ValuesClipped))
	}
	s.metrics.AddRows(s.ID(), "edge_dropped", stats.EdgeRowsDropped)
	s.metrics.AddRows(s.ID(), "output", stats.OutputRows)

	step := state.GetStep(s.ID())
	step.SetMetadata("cities", stats.Cities)
	step.SetMetadata("gaps_filled", stats.GapsFilled)
	step.SetMetadata("values_clipped", stats.ValuesClipped)
	step.SetMetadata("rows", stats.OutputRows)
	return nil
}

// PersistStep replaces the output file with the consolidated table
type PersistStep struct {
	BaseStage
	remover    OutputRemover
	writer     TableWriter
	mirror     TableMirror
	outputPath string
	options    exporter.WriteOptions
	metrics    *infrastructure.RunMetrics
}

// NewPersistStep creates the persist step. mirror may be nil.
func NewPersistStep(remover OutputRemover, writer TableWriter, mirror TableMirror, outputPath string, options exporter.WriteOptions, metrics *infrastructure.RunMetrics) *PersistStep {
	return &PersistStep{
		BaseStage:  NewBaseStage(StepPersist, "Persist output"),
		remover:    remover,
		writer:     writer,
		mirror:     mirror,
		outputPath: outputPath,
		options:    options,
		metrics:    metrics,
	}
}

// Execute removes the previous output, writes the table and, when
// configured, mirrors it
func (s *PersistStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.remover.RemoveExisting(ctx, s.outputPath); err != nil {
		return WrapError(err, s.ID(), "failed to remove previous output").
			WithContext("output", s.outputPath)
	}

	if err := s.writer.WriteTable(s.outputPath, state.Table, s.options); err != nil {
		return NewExecutionError(s.ID(), fmt.Errorf("write %s: %w", s.outputPath, err))
	}

	state.Summary.OutputRows = len(state.Table)
	state.Summary.OutputPath = s.outputPath
	s.metrics.AddRows(s.ID(), "written", len(state.Table))

	if s.mirror != nil {
		if err := s.mirror.ReplaceTable(ctx, state.ID, state.Table); err != nil {
			return NewExecutionError(s.ID(), err).WithContext("mirror", "sqlite")
		}
		state.GetStep(s.ID()).SetMetadata("mirrored", len(state.Table))
	}

	state.GetStep(s.ID()).SetMetadata("rows", len(state.Table))
	return nil
}
