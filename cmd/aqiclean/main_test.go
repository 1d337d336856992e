package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqiclean/internal/infrastructure"
	"aqiclean/internal/shared/testutil"
	"aqiclean/internal/store"
)

// setupRun points the job at a fresh root directory and quiets logging
func setupRun(t *testing.T) (root string) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	root = t.TempDir()
	t.Setenv("AQI_PIPELINE_ROOT_DIR", root)
	t.Setenv("AQI_LOGGING_LEVEL", "error")
	t.Setenv("AQI_RETRY_DELAY", "1ms")
	return root
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := execute(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "aqiclean v")
}

func TestRunTooManyArguments(t *testing.T) {
	code, _, stderr := execute(t, "a.csv", "b.csv")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRunNoData(t *testing.T) {
	setupRun(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	code, stdout, _ := execute(t, out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "No data processed.\n", stdout)
	assert.NoFileExists(t, out)
}

func TestRunWritesOutput(t *testing.T) {
	root := setupRun(t)
	testutil.WriteYearWorkbook(t, filepath.Join(root, "Agra", "Agra_2021.xlsx"),
		[]string{"January", "February"},
		map[string][]any{
			"January":  {10, nil},
			"February": {nil, 20},
		})
	out := filepath.Join(t.TempDir(), "reports", "aqi.csv")

	code, stdout, stderr := execute(t, out)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Data restructuring and cleaning complete. Saved to '"+out+"'.\n", stdout)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"City,Date,AQI,AQI_Bucket,Year,Month,Day,Global_AQI_Bucket",
		"Agra,2021-01-01,10.0,Good,2021,1,1,Good",
		"Agra,2021-02-02,20.0,Good,2021,2,2,Moderate",
	}, "\n")+"\n", string(content))
}

func TestRunMirrorsToSQLite(t *testing.T) {
	root := setupRun(t)
	testutil.WriteYearWorkbook(t, filepath.Join(root, "Agra", "Agra_2021.xlsx"),
		[]string{"March"}, map[string][]any{"March": {60, 70, 80}})
	dbPath := filepath.Join(t.TempDir(), "aqi.db")
	t.Setenv("AQI_STORE_SQLITE_PATH", dbPath)

	code, _, stderr := execute(t, filepath.Join(t.TempDir(), "out.csv"))
	require.Equal(t, 0, code, stderr)

	db, err := store.Open(context.Background(), dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Readings(context.Background(), "Agra")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2021-03-01", rows[0].Date)
	assert.Equal(t, "Satisfactory", rows[0].AQIBucket)
}

func TestRunInvalidConfig(t *testing.T) {
	setupRun(t)
	t.Setenv("AQI_RETRY_ATTEMPTS", "0")

	code, _, stderr := execute(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRunMissingRoot(t *testing.T) {
	setupRun(t)
	t.Setenv("AQI_PIPELINE_ROOT_DIR", filepath.Join(t.TempDir(), "missing"))

	code, stdout, stderr := execute(t, filepath.Join(t.TempDir(), "out.csv"))
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "missing")
}
