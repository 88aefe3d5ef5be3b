package schedule

import (
	"strings"

	"github.com/iliyamo/performance-signup/internal/model"
)

// Claim describes a slot chosen for a registration.  Before and After are
// the row images used for the store's conditional write.
type Claim struct {
	Pos    int // index into the rows slice
	Line   int // 1-based sheet line, header included
	Before model.Row
	After  model.Row
}

// IsClaimable reports whether a row can receive a new registration: no
// performer (blank or "N/A") and no leftover instrument or piece.
func IsClaimable(r model.Row) bool {
	return !IsOccupied(r.Name) &&
		strings.TrimSpace(r.Instrument) == "" &&
		strings.TrimSpace(r.Piece) == ""
}

// ClaimSlot fills the first claimable row of the session labelled reg.Date
// and returns its position.  Row membership is recomputed from rows with
// the same forward-fill as Normalize so a claim never relies on an earlier
// listing.  rows is modified in place on success.
func ClaimSlot(rows []model.Row, reg model.Registration) (Claim, error) {
	reg = reg.Trimmed()
	labels := EffectiveLabels(rows)
	for pos, label := range labels {
		if label == "" || label != reg.Date {
			continue
		}
		if !IsClaimable(rows[pos]) {
			continue
		}
		before := rows[pos]
		after := before
		after.Name = reg.Name
		after.Instrument = reg.Instrument
		after.Piece = reg.Piece
		after.Duration = reg.Duration
		if reg.Remarks != "" {
			after.Remarks = reg.Remarks
		}
		rows[pos] = after
		return Claim{
			Pos:    pos,
			Line:   before.LineAt(pos),
			Before: before,
			After:  after,
		}, nil
	}
	return Claim{}, ErrNoAvailableSlot
}
