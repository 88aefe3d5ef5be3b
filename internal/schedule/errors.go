// Package schedule turns the performance schedule sheet into bookable
// sessions and claims free slots for new registrations.  Everything in
// this package is pure: it operates on rows already read from a store and
// never performs I/O itself.
package schedule

import (
	"errors"
	"fmt"
)

// ErrNoAvailableSlot is returned when the requested session has no free
// slot left.  Handlers should translate this into a 409 response.
var ErrNoAvailableSlot = errors.New("no available slot")

// ErrSlotAlreadyTaken is returned when the slot chosen for a claim was
// modified between the read and the conditional write.
var ErrSlotAlreadyTaken = errors.New("slot already taken")

// ErrBackingStoreUnavailable wraps read/write failures of the schedule
// store.  Listing degrades to an empty result; claims surface it.
var ErrBackingStoreUnavailable = errors.New("schedule store unavailable")

// ParseError reports a session label that could not be turned into a date.
type ParseError struct {
	Label string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable session date %q", e.Label)
}

// Message maps a claim error onto the text shown to the registrant.
func Message(err error) string {
	switch {
	case err == nil:
		return "Registration submitted successfully!"
	case errors.Is(err, ErrNoAvailableSlot):
		return "No available slots for the selected date. Please choose a different date."
	case errors.Is(err, ErrSlotAlreadyTaken):
		return "This slot was just taken by another registration. Please try again or choose a different date."
	default:
		return "Error finding available slot. Please try again."
	}
}
