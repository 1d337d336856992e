package dataprocessing

import (
	"context"

	"aqiclean/pkg/contracts/domain"
)

// Processor defines the interface for the clean and enrich stage
type Processor interface {
	// Process turns merged long records into the final consolidated table
	Process(ctx context.Context, records []domain.LongRecord) (domain.ConsolidatedTable, CleanStats, error)
}

// ProcessingOptions configures processing behavior
type ProcessingOptions struct {
	// ReindexDaily inserts every missing calendar day of a city's span as a
	// gap before interpolation
	ReindexDaily bool
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		ReindexDaily: false,
	}
}

// CleanStats summarizes one clean and enrich pass
type CleanStats struct {
	Cities          int
	GapsInserted    int
	GapsFilled      int
	EdgeRowsDropped int
	ValuesClipped   int
	OutputRows      int
	Bounds          map[string]Bounds
}
