package model

import (
	"strings"
	"time"
)

// CellKind tags the value stored in a Cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota // no value
	CellText                  // free text as typed into the sheet
	CellDate                  // native date value (spreadsheet date cell)
)

// shortDateLayout is the canonical "Mon D" form used when a native date
// cell becomes a session label, e.g. "Oct 4".
const shortDateLayout = "Jan 2"

// Cell is a single schedule cell.  The Date and Guest Artist columns of a
// spreadsheet can hold either typed text or a native date value, so the
// two cases are kept apart here and resolved only by the normalizer.
//
// Fields:
//
//	Kind – which of Text/Date is meaningful.
//	Text – raw text for CellText.
//	Date – calendar date for CellDate (time of day is ignored).
type Cell struct {
	Kind CellKind
	Text string
	Date time.Time
}

// TextCell wraps s as a text cell.  An empty string yields an empty cell.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// DateCell wraps t as a native date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Date: t}
}

// IsEmpty reports whether the cell carries no usable value.  Whitespace-only
// text counts as empty, mirroring how a blank merged cell reads back.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	case CellDate:
		return c.Date.IsZero()
	default:
		return true
	}
}

// String renders the cell the way the schedule keys on it: trimmed text,
// or "Mon D" for native dates.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellDate:
		if c.Date.IsZero() {
			return ""
		}
		return c.Date.Format(shortDateLayout)
	default:
		return ""
	}
}
