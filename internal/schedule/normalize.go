package schedule

import "github.com/iliyamo/performance-signup/internal/model"

// SessionGroup is the set of rows sharing one forward-filled date label.
// GuestArtist is the guest in effect when the label was first seen.
type SessionGroup struct {
	RawDateLabel string
	GuestArtist  string
	Slots        []model.Row
}

// forwardFill walks rows once, resolving the empty Date and Guest Artist
// cells to the nearest non-empty value above them.  fn is called for every
// row that has a date in effect; rows before the first date are skipped.
func forwardFill(rows []model.Row, fn func(pos int, date, guest string)) {
	var currentDate, currentGuest string
	for i, r := range rows {
		if !r.Date.IsEmpty() {
			currentDate = r.Date.String()
		}
		if !r.GuestArtist.IsEmpty() {
			currentGuest = r.GuestArtist.String()
		}
		if currentDate == "" {
			continue
		}
		fn(i, currentDate, currentGuest)
	}
}

// Normalize groups rows into sessions keyed by their raw date label, in the
// order each label is first encountered.  Identical labels that reappear
// further down the sheet join the existing group.
func Normalize(rows []model.Row) []SessionGroup {
	var groups []SessionGroup
	index := make(map[string]int)
	forwardFill(rows, func(pos int, date, guest string) {
		gi, ok := index[date]
		if !ok {
			gi = len(groups)
			index[date] = gi
			groups = append(groups, SessionGroup{RawDateLabel: date, GuestArtist: guest})
		}
		groups[gi].Slots = append(groups[gi].Slots, rows[pos])
	})
	return groups
}

// EffectiveLabels returns the forward-filled date label of every row, with
// "" for rows that precede the first date.
func EffectiveLabels(rows []model.Row) []string {
	labels := make([]string, len(rows))
	forwardFill(rows, func(pos int, date, _ string) {
		labels[pos] = date
	})
	return labels
}
