package dataprocessing

import (
	"math"
	"sort"
	"time"

	"aqiclean/pkg/contracts/domain"
)

const day = 24 * time.Hour

// Partition groups records by city, keeping the input order inside each
// group. The returned keys are in order of first appearance, which is
// lexical once the records come out of Merge.
func Partition(records []domain.LongRecord) ([]string, map[string][]domain.Reading) {
	var cities []string
	groups := make(map[string][]domain.Reading)

	for _, r := range records {
		if _, seen := groups[r.City]; !seen {
			cities = append(cities, r.City)
		}
		groups[r.City] = append(groups[r.City], domain.Reading{
			Date:  r.Date,
			AQI:   r.AQI,
			Valid: true,
		})
	}

	return cities, groups
}

// Reindex expands a date-ordered series to one point per calendar day
// between its first and last date. Inserted days are invalid. Returns the
// number of inserted points.
func Reindex(series []domain.Reading) ([]domain.Reading, int) {
	if len(series) < 2 {
		return series, 0
	}

	out := make([]domain.Reading, 0, len(series))
	inserted := 0
	for i, r := range series {
		if i > 0 {
			prev := series[i-1].Date
			for d := prev.Add(day); d.Before(r.Date); d = d.Add(day) {
				out = append(out, domain.Reading{Date: d})
				inserted++
			}
		}
		out = append(out, r)
	}

	return out, inserted
}

// FillGaps replaces every invalid point that has a valid neighbour on both
// sides with the time-weighted linear interpolation between them:
//
//	v = vL + (vR - vL) * (t - tL) / (tR - tL)
//
// Distances are elapsed time, not row positions. When tR == tL the left
// value is used. Leading and trailing invalid points are left invalid.
// Returns a new series and the number of filled points.
func FillGaps(series []domain.Reading) ([]domain.Reading, int) {
	out := make([]domain.Reading, len(series))
	copy(out, series)

	n := len(out)
	if n == 0 {
		return out, 0
	}

	// nearest valid index at or after i
	next := make([]int, n)
	following := -1
	for i := n - 1; i >= 0; i-- {
		if series[i].Valid {
			following = i
		}
		next[i] = following
	}

	filled := 0
	left := -1
	for i := 0; i < n; i++ {
		if series[i].Valid {
			left = i
			continue
		}
		right := next[i]
		if left < 0 || right < 0 {
			continue
		}

		l, r := series[left], series[right]
		span := r.Date.Sub(l.Date)
		v := l.AQI
		if span > 0 {
			frac := float64(series[i].Date.Sub(l.Date)) / float64(span)
			v = l.AQI + (r.AQI-l.AQI)*frac
		}

		out[i].AQI = v
		out[i].Valid = true
		filled++
	}

	return out, filled
}

// DropInvalid removes points that are still invalid and returns how many
// were removed.
func DropInvalid(series []domain.Reading) ([]domain.Reading, int) {
	out := series[:0:0]
	for _, r := range series {
		if r.Valid {
			out = append(out, r)
		}
	}
	return out, len(series) - len(out)
}

// Quantile returns the p-quantile of an ascending slice using linear
// interpolation between closest ranks, h = p*(n-1). Empty input yields 0.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower] + weight*(sorted[upper]-sorted[lower])
}

// Bounds are the Tukey fences of one city's AQI values
type Bounds struct {
	Q1    float64
	Q3    float64
	IQR   float64
	Lower float64
	Upper float64
}

// OutlierBounds computes Q1, Q3 and the 1.5*IQR fences of values
func OutlierBounds(values []float64) Bounds {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1

	return Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - 1.5*iqr,
		Upper: q3 + 1.5*iqr,
	}
}

// ClipOutliers replaces, in place, every value outside [Lower, Upper] with
// the nearest bound. No value is removed. Returns the number clipped.
func ClipOutliers(values []float64, b Bounds) int {
	clipped := 0
	for i, v := range values {
		switch {
		case v < b.Lower:
			values[i] = b.Lower
			clipped++
		case v > b.Upper:
			values[i] = b.Upper
			clipped++
		}
	}
	return clipped
}
