package exporter

import (
	"strconv"
	"strings"
)

// formatAQI writes the shortest decimal that round-trips, always with a
// fractional part: 10 -> "10.0", 20.5 -> "20.5"
func formatAQI(f float64) string {
	if f == 0 {
		f = 0 // drop the sign of negative zero
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
