package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/performance-signup/internal/model"
)

// DefaultSheetName is the sheet that holds the performance schedule.
const DefaultSheetName = "Performance Schedule"

// Excel stores dates as day serials.  Values in this range found in the
// Date column are treated as native date cells rather than typed labels.
const (
	minDateSerial = 1
	maxDateSerial = 2958465 // 9999-12-31
)

// WorkbookTable reads and writes the schedule from an .xlsx workbook.  The
// file is reopened on every call so edits made by organisers in a
// spreadsheet application are picked up immediately.  All access goes
// through one mutex; a read-compare-write therefore cannot interleave with
// another writer in this process.
type WorkbookTable struct {
	path  string
	sheet string
	mu    sync.Mutex
}

// NewWorkbookTable returns a table backed by the workbook at path.  An empty
// sheet name selects DefaultSheetName.
func NewWorkbookTable(path, sheet string) *WorkbookTable {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &WorkbookTable{path: path, sheet: sheet}
}

// ReadTable returns every data row below the header.  A missing file or
// sheet yields an empty table.
func (t *WorkbookTable) ReadTable(ctx context.Context) ([]model.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(t.sheet); err != nil || idx < 0 {
		return nil, nil
	}
	grid, err := f.GetRows(t.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", t.sheet, err)
	}
	if len(grid) <= model.HeaderLines {
		return nil, nil
	}
	rows := make([]model.Row, 0, len(grid)-model.HeaderLines)
	for i, cells := range grid[model.HeaderLines:] {
		rows = append(rows, rowFromCells(cells, i+model.HeaderLines+1))
	}
	return rows, nil
}

// rowFromCells maps raw sheet values onto a Row.  Short rows are padded.
func rowFromCells(cells []string, line int) model.Row {
	get := func(col int) string {
		if col < len(cells) {
			return cells[col]
		}
		return ""
	}
	return model.Row{
		Line:        line,
		Date:        dateCell(get(model.ColDate)),
		GuestArtist: model.TextCell(get(model.ColGuestArtist)),
		Name:        get(model.ColName),
		Instrument:  get(model.ColInstrument),
		Piece:       get(model.ColPiece),
		Duration:    get(model.ColDuration),
		Remarks:     get(model.ColRemarks),
	}
}

// dateCell recognises an Excel date serial in the Date column.
func dateCell(raw string) model.Cell {
	s := strings.TrimSpace(raw)
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minDateSerial && serial <= maxDateSerial {
		if tm, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return model.DateCell(tm)
		}
	}
	return model.TextCell(raw)
}

// WriteRow rewrites the Name..Remarks cells on line when they still hold
// the values in expect, then saves the workbook.
func (t *WorkbookTable) WriteRow(ctx context.Context, line int, expect, values model.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrRowNotFound
		}
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	current := make([]string, model.ColumnCount)
	for col := model.ColName; col < model.ColumnCount; col++ {
		cell, err := excelize.CoordinatesToCellName(col+1, line)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		v, err := f.GetCellValue(t.sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("read %s: %w", cell, err)
		}
		current[col] = v
	}
	if !rowFromCells(current, line).SlotEqual(expect) {
		return ErrRowChanged
	}

	updates := map[int]string{
		model.ColName:       values.Name,
		model.ColInstrument: values.Instrument,
		model.ColPiece:      values.Piece,
		model.ColDuration:   values.Duration,
		model.ColRemarks:    values.Remarks,
	}
	for col, v := range updates {
		cell, err := excelize.CoordinatesToCellName(col+1, line)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(t.sheet, cell, v); err != nil {
			return fmt.Errorf("write %s: %w", cell, err)
		}
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// EnsureHeader creates the workbook, the schedule sheet and its header row
// as needed.  Existing data is left untouched.
func (t *WorkbookTable) EnsureHeader(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var f *excelize.File
	created := false
	if _, err := os.Stat(t.path); errors.Is(err, fs.ErrNotExist) {
		f = excelize.NewFile()
		created = true
	} else {
		f, err = excelize.OpenFile(t.path)
		if err != nil {
			return fmt.Errorf("open workbook: %w", err)
		}
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(t.sheet)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	if idx < 0 {
		if idx, err = f.NewSheet(t.sheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if created {
			f.SetActiveSheet(idx)
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return fmt.Errorf("drop default sheet: %w", err)
			}
		}
	}

	first, err := f.GetCellValue(t.sheet, "A1")
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if strings.TrimSpace(first) == "" {
		header := make([]interface{}, len(model.Header))
		for i, h := range model.Header {
			header[i] = h
		}
		if err := f.SetSheetRow(t.sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if created {
		return f.SaveAs(t.path)
	}
	return f.Save()
}
