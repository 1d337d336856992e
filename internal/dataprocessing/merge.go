package dataprocessing

import (
	"errors"
	"sort"

	"aqiclean/pkg/contracts/domain"
)

// ErrNoData is returned when no sheet produced a single record
var ErrNoData = errors.New("no data processed")

// Merge concatenates the per-sheet fragments and orders them by city, then
// date. The sort is stable, so duplicate (city, date) rows keep their
// discovery order.
func Merge(fragments [][]domain.LongRecord) ([]domain.LongRecord, error) {
	total := 0
	for _, f := range fragments {
		total += len(f)
	}
	if total == 0 {
		return nil, ErrNoData
	}

	merged := make([]domain.LongRecord, 0, total)
	for _, f := range fragments {
		merged = append(merged, f...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].City != merged[j].City {
			return merged[i].City < merged[j].City
		}
		return merged[i].Date.Before(merged[j].Date)
	})

	return merged, nil
}
