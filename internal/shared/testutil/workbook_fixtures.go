package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// MonthHeaders is the twelve month columns in calendar order
var MonthHeaders = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// WriteWorkbook saves a single-sheet workbook at path. header is written to
// row 1 and each row below it; a nil cell is left blank.
func WriteWorkbook(t *testing.T, path string, header []string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, h := range header {
		cell := cellName(t, col, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("failed to set header %s: %v", cell, err)
		}
	}

	for r, row := range rows {
		for col, v := range row {
			if v == nil {
				continue
			}
			cell := cellName(t, col, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("failed to set %s: %v", cell, err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook %s: %v", path, err)
	}
}

// WriteYearWorkbook saves a Day x Month workbook. values[m] holds the
// readings of month m for days 1..len(values[m]); nil entries become blank
// cells.
func WriteYearWorkbook(t *testing.T, path string, months []string, values map[string][]any) {
	t.Helper()

	days := 0
	for _, v := range values {
		if len(v) > days {
			days = len(v)
		}
	}

	header := append([]string{"Day"}, months...)
	rows := make([][]any, days)
	for d := 0; d < days; d++ {
		row := make([]any, len(header))
		row[0] = d + 1
		for i, m := range months {
			if d < len(values[m]) {
				row[i+1] = values[m][d]
			}
		}
		rows[d] = row
	}

	WriteWorkbook(t, path, header, rows)
}

func cellName(t *testing.T, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		t.Fatalf("invalid cell coordinates (%d,%d): %v", col, row, err)
	}
	return name
}
