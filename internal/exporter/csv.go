package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"aqiclean/internal/files"
	"aqiclean/internal/infrastructure"
	"aqiclean/pkg/contracts/domain"
)

// TableHeader is the column layout of the consolidated output
var TableHeader = []string{
	"City", "Date", "AQI", "AQI_Bucket", "Year", "Month", "Day", "Global_AQI_Bucket",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: infrastructure.WithComponent(logger, "csv_writer")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteTable writes the consolidated table to filePath, truncating any
// existing file. Parent directories are created.
func (w *CSVWriter) WriteTable(filePath string, table domain.ConsolidatedTable, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(table)))

	sw, err := w.CreateStreamWriter(filePath, TableHeader, options)
	if err != nil {
		return err
	}

	for i, r := range table {
		if err := sw.WriteRecord(tableRow(r)); err != nil {
			sw.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return sw.Close()
}

func tableRow(r domain.EnrichedRecord) []string {
	return []string{
		r.City,
		r.Date.Format(domain.DateLayout),
		formatAQI(r.AQI),
		string(r.AQIBucket),
		formatInt(r.Year),
		formatInt(r.Month),
		formatInt(r.Day),
		string(r.GlobalAQIBucket),
	}
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, options WriteOptions) (*StreamWriter, error) {
	if err := files.EnsureDirectory(filepath.Dir(filePath)); err != nil {
		return nil, err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
