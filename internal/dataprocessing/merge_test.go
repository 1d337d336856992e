package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqiclean/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(city string, d time.Time, aqi float64) domain.LongRecord {
	return domain.LongRecord{City: city, Date: d, AQI: aqi}
}

func TestMergeOrdersByCityThenDate(t *testing.T) {
	fragments := [][]domain.LongRecord{
		{rec("Delhi", date(2021, 1, 2), 5), rec("Delhi", date(2021, 1, 1), 4)},
		{rec("Agra", date(2020, 6, 1), 3)},
		{rec("Delhi", date(2020, 12, 31), 2), rec("Agra", date(2019, 1, 1), 1)},
	}

	merged, err := Merge(fragments)
	require.NoError(t, err)
	require.Len(t, merged, 5)

	want := []domain.LongRecord{
		rec("Agra", date(2019, 1, 1), 1),
		rec("Agra", date(2020, 6, 1), 3),
		rec("Delhi", date(2020, 12, 31), 2),
		rec("Delhi", date(2021, 1, 1), 4),
		rec("Delhi", date(2021, 1, 2), 5),
	}
	assert.Equal(t, want, merged)
}

func TestMergeKeepsDuplicatesInDiscoveryOrder(t *testing.T) {
	d := date(2021, 3, 1)
	merged, err := Merge([][]domain.LongRecord{
		{rec("Delhi", d, 1)},
		{rec("Delhi", d, 2)},
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, 1.0, merged[0].AQI)
	assert.Equal(t, 2.0, merged[1].AQI)
}

func TestMergeByteLexicalCityOrder(t *testing.T) {
	merged, err := Merge([][]domain.LongRecord{
		{rec("agra", date(2021, 1, 1), 1), rec("Zirakpur", date(2021, 1, 1), 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Zirakpur", merged[0].City, "upper case sorts before lower case")
}

func TestMergeNoData(t *testing.T) {
	_, err := Merge(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Merge([][]domain.LongRecord{{}, nil})
	assert.ErrorIs(t, err, ErrNoData)
}
