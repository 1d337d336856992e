package files

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aqiclean/internal/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		wantYear int
		wantOK   bool
	}{
		{"plain", "City_2020.xlsx", 2020, true},
		{"no year", "no_year_here.xlsx", 0, false},
		{"leftmost wins", "report_1999_v2.xlsx", 1999, true},
		{"two years", "AQI_2018_2019.xlsx", 2018, true},
		{"first four of longer run", "data123456.xlsx", 1234, true},
		{"three digits only", "v123.xlsx", 0, false},
		{"empty", "", 0, false},
		{"zero year", "Agra_0000.xlsx", 0, false},
		{"leftmost zero year wins", "0000_2021.xlsx", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := ExtractYear(tt.file)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestListCities(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"Delhi", "Agra", ".git", "Mumbai"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	touch(t, filepath.Join(root, "README.txt"))

	d := NewDiscovery(".xlsx", "~$", quietLogger())
	cities, err := d.ListCities(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Agra", "Delhi", "Mumbai"}, cities)
}

func TestListCitiesMissingRoot(t *testing.T) {
	d := NewDiscovery(".xlsx", "~$", quietLogger())
	root := filepath.Join(t.TempDir(), "absent")
	_, err := d.ListCities(root)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Contains(t, err.Error(), "root directory "+root+" not found")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, root, appErr.Context["path"])
}

func TestFindSheets(t *testing.T) {
	cityDir := filepath.Join(t.TempDir(), "Delhi")
	for _, name := range []string{
		"Delhi_2021.xlsx",
		"Delhi_2020.XLSX",
		"~$Delhi_2021.xlsx",
		"notes.csv",
		"Delhi_2019.xls",
	} {
		touch(t, filepath.Join(cityDir, name))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(cityDir, "archive.xlsx"), 0755))

	d := NewDiscovery(".xlsx", "~$", quietLogger())
	sheets, err := d.FindSheets(cityDir)
	require.NoError(t, err)

	var names []string
	for _, s := range sheets {
		names = append(names, s.Name)
		assert.Equal(t, filepath.Join(cityDir, s.Name), s.Path)
	}
	assert.Equal(t, []string{"Delhi_2020.XLSX", "Delhi_2021.xlsx"}, names)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Delhi", "Delhi_2021.xlsx"))
	touch(t, filepath.Join(root, "Delhi", "Delhi_2020.xlsx"))
	touch(t, filepath.Join(root, "Delhi", "summary.xlsx"))
	touch(t, filepath.Join(root, "Delhi", "Delhi_0000.xlsx"))
	touch(t, filepath.Join(root, "Agra", "AQI-2019-Agra.xlsx"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Empty"), 0755))

	d := NewDiscovery(".xlsx", "~$", quietLogger())
	result, err := d.Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"Agra", "Delhi", "Empty"}, result.Cities)
	require.Len(t, result.Sheets, 3)

	assert.Equal(t, "Agra", result.Sheets[0].City)
	assert.Equal(t, 2019, result.Sheets[0].Year)
	assert.Equal(t, "Delhi", result.Sheets[1].City)
	assert.Equal(t, 2020, result.Sheets[1].Year)
	assert.Equal(t, 2021, result.Sheets[2].Year)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "Delhi_0000.xlsx", result.Skipped[0].Name)
	assert.Equal(t, "summary.xlsx", result.Skipped[1].Name)
}

func TestDiscoverEmptyRoot(t *testing.T) {
	d := NewDiscovery(".xlsx", "~$", quietLogger())
	result, err := d.Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.Cities)
	assert.Empty(t, result.Sheets)
}
