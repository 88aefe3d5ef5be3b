package service

import (
	"context"
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/iliyamo/performance-signup/internal/schedule"
)

const calendarName = "Performance Schedule"

// CalendarFeed renders every dated session as an all-day iCalendar event.
// Sessions whose label cannot be parsed are left out.
func (s *BookingService) CalendarFeed(ctx context.Context) ([]byte, error) {
	sessions, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//performance-signup//schedule//EN")
	cal.SetXWRCalName(calendarName)

	stamp := s.now().UTC()
	for i, ov := range sessions {
		if !ov.DateKnown {
			continue
		}
		ev := cal.AddEvent(eventUID(i, ov))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(ov.Date)
		ev.SetAllDayEndAt(ov.Date.AddDate(0, 0, 1))
		ev.SetSummary(ov.Label)
		ev.SetDescription(describe(ov))
		ev.SetProperty(ics.ComponentPropertyCategories, string(ov.Category))
	}
	return []byte(cal.Serialize()), nil
}

// eventUID is stable as long as the session keeps its position in the sheet.
func eventUID(pos int, ov schedule.SessionOverview) string {
	return fmt.Sprintf("%s-%d@performance-signup", ov.Date.Format("20060102"), pos)
}

func describe(ov schedule.SessionOverview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d slots taken", ov.OccupiedSlots, ov.TotalSlots)
	for _, p := range ov.Performers {
		fmt.Fprintf(&b, "\n%s (%s): %s", p.Name, p.Instrument, p.Piece)
		if p.Duration != "" {
			fmt.Fprintf(&b, " [%s]", p.Duration)
		}
	}
	return b.String()
}
