package dataprocessing

import (
	"context"
	"log/slog"

	"aqiclean/internal/infrastructure"
	"aqiclean/pkg/contracts/domain"
)

// CleanProcessor fills gaps, clips outliers and derives labels per city
type CleanProcessor struct {
	opts   ProcessingOptions
	logger *slog.Logger
}

// NewCleanProcessor creates a new clean processor
func NewCleanProcessor(opts ProcessingOptions, logger *slog.Logger) *CleanProcessor {
	return &CleanProcessor{
		opts:   opts,
		logger: infrastructure.WithComponent(logger, "cleaner"),
	}
}

// Process runs, for every city independently: optional daily reindex, gap
// filling, removal of edge points that could not be filled, IQR clipping
// and enrichment. Gap filling always happens before the quartiles are
// computed. The input must be ordered by city then date, as Merge returns
// it; the output keeps that order.
func (p *CleanProcessor) Process(ctx context.Context, records []domain.LongRecord) (domain.ConsolidatedTable, CleanStats, error) {
	stats := CleanStats{Bounds: make(map[string]Bounds)}
	cities, groups := Partition(records)
	stats.Cities = len(cities)

	table := make(domain.ConsolidatedTable, 0, len(records))
	for _, city := range cities {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		series := groups[city]
		if p.opts.ReindexDaily {
			var inserted int
			series, inserted = Reindex(series)
			stats.GapsInserted += inserted
		}

		series, filled := FillGaps(series)
		stats.GapsFilled += filled

		series, dropped := DropInvalid(series)
		if dropped > 0 {
			p.logger.WarnContext(ctx, "Dropping readings that could not be interpolated",
				slog.String("city", city),
				slog.Int("dropped", dropped))
			stats.EdgeRowsDropped += dropped
		}
		if len(series) == 0 {
			continue
		}

		values := make([]float64, len(series))
		for i, r := range series {
			values[i] = r.AQI
		}
		bounds := OutlierBounds(values)
		clipped := ClipOutliers(values, bounds)
		stats.ValuesClipped += clipped
		stats.Bounds[city] = bounds

		for i := range series {
			series[i].AQI = values[i]
		}
		table = append(table, Enrich(city, series)...)

		p.logger.DebugContext(ctx, "City cleaned",
			slog.String("city", city),
			slog.Int("rows", len(series)),
			slog.Int("gaps_filled", filled),
			slog.Int("clipped", clipped),
			slog.Float64("q1", bounds.Q1),
			slog.Float64("q3", bounds.Q3),
			slog.Float64("lower", bounds.Lower),
			slog.Float64("upper", bounds.Upper))
	}

	stats.OutputRows = len(table)
	return table, stats, nil
}

// Enrich derives the calendar fields and both category labels from the
// final AQI of every reading. Readings must all be valid.
func Enrich(city string, series []domain.Reading) []domain.EnrichedRecord {
	out := make([]domain.EnrichedRecord, len(series))
	for i, r := range series {
		out[i] = domain.NewEnrichedRecord(city, r.Date, r.AQI)
	}
	return out
}
