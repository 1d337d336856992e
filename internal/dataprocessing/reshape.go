package dataprocessing

import (
	"time"

	"aqiclean/pkg/contracts/domain"
)

// ReshapeStats counts what happened to the candidate cells of one sheet
type ReshapeStats struct {
	Candidates   int
	Emitted      int
	MissingAQI   int
	InvalidDates int
}

// Add accumulates other into s
func (s *ReshapeStats) Add(other ReshapeStats) {
	s.Candidates += other.Candidates
	s.Emitted += other.Emitted
	s.MissingAQI += other.MissingAQI
	s.InvalidDates += other.InvalidDates
}

// Reshape unpivots a wide year sheet into long records. Every (day, month)
// cell is a candidate: cells without a value are dropped, and so are
// day/month combinations that are not a real calendar date. A header that
// is not an English month name fails the whole sheet when its column holds
// values; an all-blank column such as an empty "Notes" is ignored.
func Reshape(sheet *domain.RawYearSheet) ([]domain.LongRecord, ReshapeStats, error) {
	var stats ReshapeStats
	if sheet == nil {
		return nil, stats, nil
	}

	// zero month marks an ignored column
	months := make([]time.Month, len(sheet.Months))
	for i, name := range sheet.Months {
		m, ok := MonthNumber(name)
		if ok {
			months[i] = time.Month(m)
			continue
		}
		if columnHasValues(sheet, i) {
			return nil, stats, unknownMonthError(name)
		}
	}

	records := make([]domain.LongRecord, 0, len(sheet.Rows)*len(sheet.Months))
	for _, row := range sheet.Rows {
		for i, month := range months {
			if month == 0 {
				continue
			}
			stats.Candidates++

			cell := row.Cell(i)
			if !cell.Present {
				stats.MissingAQI++
				continue
			}

			date, ok := calendarDate(sheet.Year, month, row.Day)
			if !ok {
				stats.InvalidDates++
				continue
			}

			records = append(records, domain.LongRecord{
				City: sheet.City,
				Date: date,
				AQI:  cell.Value,
			})
		}
	}

	stats.Emitted = len(records)
	return records, stats, nil
}

func columnHasValues(sheet *domain.RawYearSheet, col int) bool {
	for _, row := range sheet.Rows {
		if row.Cell(col).Present {
			return true
		}
	}
	return false
}

// calendarDate builds a UTC midnight date, rejecting combinations that
// time.Date would silently normalize (31 April, 29 February 2021, day 0).
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
