package model

import "strings"

// Header is the column layout of the performance schedule sheet.
var Header = []string{"Date", "Guest Artist", "Name", "Instrument", "Piece", "Duration", "Remarks"}

// Column positions within Header.
const (
	ColDate = iota
	ColGuestArtist
	ColName
	ColInstrument
	ColPiece
	ColDuration
	ColRemarks
	ColumnCount
)

// HeaderLines is the number of sheet lines occupied by the header.  The
// first data row therefore lives on line HeaderLines+1.
const HeaderLines = 1

// Row is one data row of the schedule.  Date and GuestArtist may be empty,
// meaning "same as the nearest row above" (merged cells).  Line is the
// 1-based sheet line the row was read from; zero means unknown.
type Row struct {
	Line        int
	Date        Cell
	GuestArtist Cell
	Name        string
	Instrument  string
	Piece       string
	Duration    string
	Remarks     string
}

// LineAt returns the row's sheet line, falling back to the position it
// holds in a header-prefixed table when the store did not record one.
func (r Row) LineAt(pos int) int {
	if r.Line > 0 {
		return r.Line
	}
	return pos + HeaderLines + 1
}

// SlotEqual reports whether two rows hold the same slot values.  The
// Date/GuestArtist cells are layout and never written by a claim.
func (r Row) SlotEqual(o Row) bool {
	return strings.TrimSpace(r.Name) == strings.TrimSpace(o.Name) &&
		strings.TrimSpace(r.Instrument) == strings.TrimSpace(o.Instrument) &&
		strings.TrimSpace(r.Piece) == strings.TrimSpace(o.Piece) &&
		strings.TrimSpace(r.Duration) == strings.TrimSpace(o.Duration) &&
		strings.TrimSpace(r.Remarks) == strings.TrimSpace(o.Remarks)
}

// Performer is the public view of an occupied slot.
type Performer struct {
	Name       string `json:"name"`
	Instrument string `json:"instrument,omitempty"`
	Piece      string `json:"piece,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
}
