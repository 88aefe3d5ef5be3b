package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/performance-signup/internal/model"
)

// seedWorkbook creates a workbook with the header and the given data rows.
// A time.Time in the first column is written as a native date cell.
func seedWorkbook(t *testing.T, sheet string, data ...[]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	tbl := NewWorkbookTable(path, sheet)
	if err := tbl.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for i, cols := range data {
		cols := cols
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(tbl.sheet, cell, &cols); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Save(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWorkbookTable_MissingFileIsEmpty(t *testing.T) {
	tbl := NewWorkbookTable(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	rows, err := tbl.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty table, got %d rows", len(rows))
	}
}

func TestWorkbookTable_EnsureHeader(t *testing.T) {
	path := seedWorkbook(t, "")
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for i, want := range model.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		got, _ := f.GetCellValue(DefaultSheetName, cell)
		if got != want {
			t.Errorf("header %s: expected %q, got %q", cell, want, got)
		}
	}
	if idx, _ := f.GetSheetIndex("Sheet1"); idx >= 0 {
		t.Errorf("default sheet should have been removed")
	}
	// Running it again must not disturb the workbook.
	if err := NewWorkbookTable(path, "").EnsureHeader(context.Background()); err != nil {
		t.Errorf("second EnsureHeader failed: %v", err)
	}
}

func TestWorkbookTable_ReadRows(t *testing.T) {
	path := seedWorkbook(t, "",
		[]interface{}{"Oct 18", "HOST", "Vincent Pham", "Violin", "Sibelius", "14'", ""},
		[]interface{}{"", "", "Henrik Stephenson", "Cello"},
		[]interface{}{time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC), "Kim"},
	)
	rows, err := NewWorkbookTable(path, "").ReadTable(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Line != 2 || rows[0].Date.String() != "Oct 18" || rows[0].Name != "Vincent Pham" {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if !rows[1].Date.IsEmpty() || rows[1].Instrument != "Cello" || rows[1].Piece != "" {
		t.Errorf("unexpected second row %+v", rows[1])
	}
	if rows[2].Date.Kind != model.CellDate || rows[2].Date.String() != "Nov 8" {
		t.Errorf("expected native date Nov 8, got %+v", rows[2].Date)
	}
}

func TestWorkbookTable_ConditionalWrite(t *testing.T) {
	ctx := context.Background()
	path := seedWorkbook(t, "",
		[]interface{}{"Dec 6", "HOST", "", "", "", "", "bring stand"},
	)
	tbl := NewWorkbookTable(path, "")
	rows, err := tbl.ReadTable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	filled := rows[0]
	filled.Name, filled.Instrument, filled.Piece, filled.Duration = "Ana", "Flute", "Ibert", "7'"
	if err := tbl.WriteRow(ctx, rows[0].Line, rows[0], filled); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := tbl.WriteRow(ctx, rows[0].Line, rows[0], filled); !errors.Is(err, ErrRowChanged) {
		t.Fatalf("stale write should fail with ErrRowChanged, got %v", err)
	}

	again, err := tbl.ReadTable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := again[0]
	if got.Name != "Ana" || got.Duration != "7'" || got.Remarks != "bring stand" || got.Date.String() != "Dec 6" {
		t.Errorf("unexpected row after write %+v", got)
	}
}
