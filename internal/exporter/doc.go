// Package exporter writes the consolidated AQI table as CSV.
//
// CSVWriter.WriteTable emits the header
//
//	City,Date,AQI,AQI_Bucket,Year,Month,Day,Global_AQI_Bucket
//
// followed by one row per record, in table order. Dates use ISO 8601
// (2006-01-02); AQI values are written with the shortest representation
// that round-trips and at least one decimal place. A UTF-8 BOM can be
// prepended for spreadsheet programs that need it.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(logger)
//	err := writer.WriteTable("AQI_Data_Cleaned.csv", table, exporter.WriteOptions{})
package exporter
