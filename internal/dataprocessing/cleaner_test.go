package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqiclean/pkg/contracts/domain"
)

func valid(d time.Time, v float64) domain.Reading {
	return domain.Reading{Date: d, AQI: v, Valid: true}
}

func gap(d time.Time) domain.Reading {
	return domain.Reading{Date: d}
}

func TestPartition(t *testing.T) {
	records := []domain.LongRecord{
		rec("Agra", date(2021, 1, 1), 1),
		rec("Agra", date(2021, 1, 2), 2),
		rec("Delhi", date(2021, 1, 1), 3),
	}

	cities, groups := Partition(records)
	assert.Equal(t, []string{"Agra", "Delhi"}, cities)
	require.Len(t, groups["Agra"], 2)
	assert.Equal(t, 2.0, groups["Agra"][1].AQI)
	assert.True(t, groups["Delhi"][0].Valid)
}

func TestFillGapsEquallySpaced(t *testing.T) {
	series := []domain.Reading{
		valid(date(2021, 1, 1), 10),
		gap(date(2021, 1, 2)),
		valid(date(2021, 1, 3), 30),
	}

	filled, n := FillGaps(series)
	assert.Equal(t, 1, n)
	assert.True(t, filled[1].Valid)
	assert.InDelta(t, 20.0, filled[1].AQI, 1e-9)
	assert.False(t, series[1].Valid, "input is not modified")
}

func TestFillGapsUsesElapsedTime(t *testing.T) {
	// t=0 -> 10, gap at day 1, t=4 -> 50: the gap sits a quarter of the way
	series := []domain.Reading{
		valid(date(2021, 1, 1), 10),
		gap(date(2021, 1, 2)),
		valid(date(2021, 1, 5), 50),
	}

	filled, n := FillGaps(series)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 20.0, filled[1].AQI, 1e-9)
}

func TestFillGapsConsecutive(t *testing.T) {
	series := []domain.Reading{
		valid(date(2021, 1, 1), 0),
		gap(date(2021, 1, 2)),
		gap(date(2021, 1, 3)),
		gap(date(2021, 1, 4)),
		valid(date(2021, 1, 5), 40),
	}

	filled, n := FillGaps(series)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 10.0, filled[1].AQI, 1e-9)
	assert.InDelta(t, 20.0, filled[2].AQI, 1e-9)
	assert.InDelta(t, 30.0, filled[3].AQI, 1e-9)
}

func TestFillGapsLeavesEdges(t *testing.T) {
	series := []domain.Reading{
		gap(date(2021, 1, 1)),
		valid(date(2021, 1, 2), 10),
		gap(date(2021, 1, 3)),
		valid(date(2021, 1, 4), 30),
		gap(date(2021, 1, 5)),
	}

	filled, n := FillGaps(series)
	assert.Equal(t, 1, n)
	assert.False(t, filled[0].Valid)
	assert.False(t, filled[4].Valid)

	kept, dropped := DropInvalid(filled)
	assert.Equal(t, 2, dropped)
	assert.Len(t, kept, 3)
}

func TestFillGapsDuplicateDatesUseLeftValue(t *testing.T) {
	d := date(2021, 1, 1)
	series := []domain.Reading{valid(d, 10), gap(d), valid(d, 30)}

	filled, n := FillGaps(series)
	assert.Equal(t, 1, n)
	assert.Equal(t, 10.0, filled[1].AQI)
}

func TestFillGapsNoValidPoints(t *testing.T) {
	filled, n := FillGaps([]domain.Reading{gap(date(2021, 1, 1))})
	assert.Zero(t, n)
	assert.False(t, filled[0].Valid)

	filled, n = FillGaps(nil)
	assert.Zero(t, n)
	assert.Empty(t, filled)
}

func TestReindex(t *testing.T) {
	series := []domain.Reading{
		valid(date(2021, 2, 27), 1),
		valid(date(2021, 3, 2), 4),
		valid(date(2021, 3, 2), 5),
	}

	out, inserted := Reindex(series)
	assert.Equal(t, 2, inserted, "28 Feb and 1 Mar")
	require.Len(t, out, 5)
	assert.Equal(t, date(2021, 2, 28), out[1].Date)
	assert.False(t, out[1].Valid)
	assert.Equal(t, date(2021, 3, 1), out[2].Date)
	assert.Equal(t, 5.0, out[4].AQI, "duplicates are kept")

	filled, n := FillGaps(out)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 2.0, filled[1].AQI, 1e-9)
	assert.InDelta(t, 3.0, filled[2].AQI, 1e-9)
}

func TestQuantileType7(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{7}, 0.25, 7},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"q1 of 1..4", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"q3 of 1..4", []float64{1, 2, 3, 4}, 0.75, 3.25},
		{"q1 of 1..5", []float64{1, 2, 3, 4, 5}, 0.25, 2},
		{"q3 of 1..5", []float64{1, 2, 3, 4, 5}, 0.75, 4},
		{"q1 of 1..10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.25, 3.25},
		{"q3 of 1..10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.75, 7.75},
		{"p=0", []float64{1, 5, 9}, 0, 1},
		{"p=1", []float64{1, 5, 9}, 1, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.sorted, tt.p), 1e-9)
		})
	}
}

func TestOutlierBoundsAndClip(t *testing.T) {
	values := []float64{10, 12, 11, 13, 12, 11, 10, 500}
	b := OutlierBounds(values)

	// sorted: 10 10 11 11 12 12 13 500
	assert.InDelta(t, 10.75, b.Q1, 1e-9)
	assert.InDelta(t, 12.25, b.Q3, 1e-9)
	assert.InDelta(t, 1.5, b.IQR, 1e-9)
	assert.InDelta(t, 8.5, b.Lower, 1e-9)
	assert.InDelta(t, 14.5, b.Upper, 1e-9)

	n := ClipOutliers(values, b)
	assert.Equal(t, 1, n)
	assert.Len(t, values, 8, "rows are preserved")
	assert.Equal(t, b.Upper, values[7])
	for _, v := range values {
		assert.GreaterOrEqual(t, v, b.Lower)
		assert.LessOrEqual(t, v, b.Upper)
	}
}

func TestClipOutliersLowSide(t *testing.T) {
	values := []float64{-400, 100, 101, 102, 103}
	b := OutlierBounds(values)
	n := ClipOutliers(values, b)

	assert.Equal(t, 1, n)
	assert.Equal(t, b.Lower, values[0])
	assert.Equal(t, []float64{100, 101, 102, 103}, values[1:])
}

func TestClipOutliersConstantSeries(t *testing.T) {
	values := []float64{42, 42, 42}
	n := ClipOutliers(values, OutlierBounds(values))
	assert.Zero(t, n)
	assert.Equal(t, []float64{42, 42, 42}, values)
}
