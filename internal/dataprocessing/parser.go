package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "aqiclean/internal/errors"
	"aqiclean/pkg/contracts/domain"
)

// DayColumn is the canonical name of the day-of-month column
const DayColumn = "Day"

// ParseYearSheet reads the first worksheet of a city's year workbook. The
// first row is the header: one day-index column ("Day" or "Date", else the
// first column) and one column per month.
func ParseYearSheet(filePath, city string, year int) (*domain.RawYearSheet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).
			WithContext("file", filePath)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read rows", err).
			WithContext("file", filePath).
			WithContext("sheet", sheets[0])
	}

	sheet, err := sheetFromRows(rows, city, year)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			appErr.WithContext("file", filePath)
		}
		return nil, err
	}
	sheet.SourcePath = filePath

	slog.Debug("Parsed year sheet",
		slog.String("file", filePath),
		slog.String("sheet_name", sheets[0]),
		slog.String("city", city),
		slog.Int("year", year),
		slog.Int("rows", len(sheet.Rows)),
		slog.Int("months", len(sheet.Months)))

	return sheet, nil
}

// sheetFromRows builds a RawYearSheet from the string grid of a worksheet
func sheetFromRows(rows [][]string, city string, year int) (*domain.RawYearSheet, error) {
	sheet := &domain.RawYearSheet{City: city, Year: year}
	if len(rows) == 0 {
		return sheet, nil
	}

	header := rows[0]
	dayIdx := findDayColumn(header)
	if dayIdx < 0 {
		return nil, apperrors.NewParsingError("sheet has an empty header row", nil)
	}

	// month columns in header order; a repeated header keeps its first column
	var cols []int
	seen := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == dayIdx || name == "" {
			continue
		}
		key := strings.ToLower(name)
		if first, dup := seen[key]; dup {
			slog.Warn("Ignoring duplicate month column",
				slog.String("city", city),
				slog.Int("year", year),
				slog.String("header", name),
				slog.Int("column", i+1),
				slog.Int("kept_column", first+1))
			continue
		}
		seen[key] = i
		cols = append(cols, i)
		sheet.Months = append(sheet.Months, name)
	}

	for _, row := range rows[1:] {
		if dayIdx >= len(row) {
			continue
		}
		day, ok := parseDay(row[dayIdx])
		if !ok {
			continue
		}

		cells := make([]domain.Cell, len(cols))
		for j, idx := range cols {
			if idx < len(row) {
				cells[j] = parseCell(row[idx])
			}
		}
		sheet.Rows = append(sheet.Rows, domain.RawDayRow{Day: day, Cells: cells})
	}

	return sheet, nil
}

// findDayColumn returns the index of the Day/Date column, falling back to
// the first non-empty header cell.
func findDayColumn(header []string) int {
	first := -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if first < 0 {
			first = i
		}
		if name == "day" || name == "date" {
			return i
		}
	}
	return first
}

// parseDay accepts integral numbers written as "1" or "1.0"
func parseDay(s string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// parseCell converts a month cell; blank or non-numeric text is missing
func parseCell(s string) domain.Cell {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return domain.Cell{}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Cell{}
	}
	return domain.Cell{Value: v, Present: true}
}

// monthNumbers is the fixed English month lookup
var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// MonthNumber maps an English month name to 1..12
func MonthNumber(name string) (int, bool) {
	m, ok := monthNumbers[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

func unknownMonthError(header string) error {
	return apperrors.NewParsingError(fmt.Sprintf("unknown month header %q", header), nil).
		WithContext("header", header)
}
