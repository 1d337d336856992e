// Package dataprocessing turns per-city year workbooks into the cleaned,
// consolidated AQI table.
//
// # Architecture
//
// The package is organized into four steps, each usable on its own:
//
// 1. Parser: ParseYearSheet reads the first worksheet of a workbook (days as
// rows, months as columns) into a RawYearSheet
// 2. Reshape: unpivots a sheet into long (City, Date, AQI) records, dropping
// empty cells and impossible dates
// 3. Merge: concatenates all fragments ordered by city then date
// 4. Processor: per city, fills gaps by time interpolation, clips values to
// the 1.5*IQR fences and derives the national and global buckets
//
// # Usage
//
//	sheet, err := dataprocessing.ParseYearSheet("Delhi/Delhi_2021.xlsx", "Delhi", 2021)
//	records, stats, err := dataprocessing.Reshape(sheet)
//	merged, err := dataprocessing.Merge([][]domain.LongRecord{records})
//	if errors.Is(err, dataprocessing.ErrNoData) {
//	    // nothing to write
//	}
//	table, cleanStats, err := dataprocessing.NewCleanProcessor(dataprocessing.DefaultOptions(), logger).
//	    Process(ctx, merged)
//
// # Quantiles
//
// Quartiles use linear interpolation between closest ranks (h = p*(n-1)),
// the same convention as spreadsheet PERCENTILE.INC and pandas.
package dataprocessing
