package operations

import (
	"context"

	"aqiclean/internal/exporter"
	"aqiclean/pkg/contracts/domain"
)

// SheetParser loads one source workbook
type SheetParser func(path, city string, year int) (*domain.RawYearSheet, error)

// OutputRemover clears the previous output before it is rewritten
type OutputRemover interface {
	RemoveExisting(ctx context.Context, path string) error
}

// TableWriter writes the consolidated table to a file
type TableWriter interface {
	WriteTable(path string, table domain.ConsolidatedTable, options exporter.WriteOptions) error
}

// TableMirror keeps a secondary copy of the consolidated table
type TableMirror interface {
	ReplaceTable(ctx context.Context, runID string, table domain.ConsolidatedTable) error
}
