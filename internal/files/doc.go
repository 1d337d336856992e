// Package files provides file system discovery and output file handling
// for the aqiclean batch job.
//
// This package contains two main components:
//
// Discovery: Walks the input root. Every non-hidden subdirectory is a city,
// every workbook inside it is one year of readings; the year comes from the
// first four-digit run in the file name (ExtractYear). Workbooks without a
// year are skipped and reported.
//
// Manager: Removes a previous output file before a new one is written. If
// the file is held open by another program the removal is retried with a
// constant delay, then ErrOutputLocked is returned.
//
// Example usage:
//
//	discovery := files.NewDiscovery(".xlsx", "~$", logger)
//	result, err := discovery.Discover("data")
//
//	manager := files.NewManager(3, 2*time.Second, logger)
//	if err := manager.RemoveExisting(ctx, "AQI_Data_Cleaned.csv"); err != nil {
//	    // errors.Is(err, files.ErrOutputLocked)
//	}
package files
