package domain

import (
	"time"
)

// DateLayout is the calendar date format used in the consolidated output
const DateLayout = "2006-01-02"

// Cell is a single month cell of a wide year sheet
type Cell struct {
	Value   float64 `json:"value"`
	Present bool    `json:"present"`
}

// RawDayRow is one row of a wide year sheet: a day of month and its month cells
type RawDayRow struct {
	Day   int    `json:"day"`
	Cells []Cell `json:"cells"` // parallel to RawYearSheet.Months
}

// Cell returns the cell of the i-th month column; a short row reads as missing
func (r RawDayRow) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[i]
}

// RawYearSheet represents one city's readings for one year as laid out in
// the source workbook (rows = day of month, columns = month names).
type RawYearSheet struct {
	City       string      `json:"city" validate:"required"`
	Year       int         `json:"year" validate:"min=1,max=9999"`
	SourcePath string      `json:"source_path"`
	Months     []string    `json:"months" validate:"dive,required"` // month headers in column order
	Rows       []RawDayRow `json:"rows"`
}

// LongRecord is a single (city, date) observation produced by reshaping
type LongRecord struct {
	City string    `json:"city" db:"city"`
	Date time.Time `json:"date" db:"date"`
	AQI  float64   `json:"aqi" db:"aqi"`
}

// Reading is one point of a per-city series. Valid is false for a gap.
type Reading struct {
	Date  time.Time `json:"date"`
	AQI   float64   `json:"aqi"`
	Valid bool      `json:"valid"`
}

// EnrichedRecord is a cleaned observation with its derived fields.
// AQI is always a real value at this stage.
type EnrichedRecord struct {
	City            string         `json:"city" db:"city"`
	Date            time.Time      `json:"date" db:"date"`
	AQI             float64        `json:"aqi" db:"aqi"`
	AQIBucket       NationalBucket `json:"aqi_bucket" db:"aqi_bucket"`
	Year            int            `json:"year" db:"year"`
	Month           int            `json:"month" db:"month"`
	Day             int            `json:"day" db:"day"`
	GlobalAQIBucket GlobalBucket   `json:"global_aqi_bucket" db:"global_aqi_bucket"`
}

// NewEnrichedRecord derives the calendar fields and both buckets from a
// cleaned reading.
func NewEnrichedRecord(city string, date time.Time, aqi float64) EnrichedRecord {
	return EnrichedRecord{
		City:            city,
		Date:            date,
		AQI:             aqi,
		AQIBucket:       NationalBucketFor(aqi),
		Year:            date.Year(),
		Month:           int(date.Month()),
		Day:             date.Day(),
		GlobalAQIBucket: GlobalBucketFor(aqi),
	}
}

// ConsolidatedTable is the final dataset, sorted by city then date
type ConsolidatedTable []EnrichedRecord

// Cities returns the distinct cities in table order
func (t ConsolidatedTable) Cities() []string {
	var cities []string
	for i, r := range t {
		if i == 0 || t[i-1].City != r.City {
			cities = append(cities, r.City)
		}
	}
	return cities
}

// SheetFile is a discovered source workbook with its resolved year
type SheetFile struct {
	City string `json:"city"`
	Path string `json:"path"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

// RunSummary collects the counters of one pipeline run
type RunSummary struct {
	RunID             string        `json:"run_id"`
	Cities            int           `json:"cities"`
	FilesDiscovered   int           `json:"files_discovered"`
	FilesSkipped      int           `json:"files_skipped"`
	FilesFailed       int           `json:"files_failed"`
	SheetsRead        int           `json:"sheets_read"`
	LongRecords       int           `json:"long_records"`
	MissingAQIDropped int           `json:"missing_aqi_dropped"`
	InvalidDates      int           `json:"invalid_dates"`
	GapsInserted      int           `json:"gaps_inserted"`
	GapsFilled        int           `json:"gaps_filled"`
	EdgeRowsDropped   int           `json:"edge_rows_dropped"`
	ValuesClipped     int           `json:"values_clipped"`
	OutputRows        int           `json:"output_rows"`
	OutputPath        string        `json:"output_path"`
	NoData            bool          `json:"no_data"`
	Duration          time.Duration `json:"duration"`
}
