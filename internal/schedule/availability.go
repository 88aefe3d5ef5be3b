package schedule

import (
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/model"
)

// BookableSession is a future session with at least one free slot.
type BookableSession struct {
	RawDateLabel   string
	Label          string
	Date           time.Time
	TotalSlots     int
	OccupiedSlots  int
	AvailableSlots int
}

// SessionOverview describes any session, bookable or not.  DateKnown is
// false when the label could not be parsed; Date and Label are then empty.
type SessionOverview struct {
	RawDateLabel  string
	GuestArtist   string
	Label         string
	Category      Category
	Date          time.Time
	DateKnown     bool
	Past          bool
	TotalSlots    int
	OccupiedSlots int
	Performers    []model.Performer
}

// IsOccupied reports whether a slot with the given name is taken.  Blank
// names and the "N/A" placeholder leave the slot open.
func IsOccupied(name string) bool {
	n := strings.TrimSpace(name)
	return n != "" && !strings.EqualFold(n, "N/A")
}

// Count returns the total and occupied slot counts of a group.
func (g SessionGroup) Count() (total, occupied int) {
	for _, r := range g.Slots {
		if IsOccupied(r.Name) {
			occupied++
		}
	}
	return len(g.Slots), occupied
}

// Calculator computes availability from normalized session groups.
type Calculator struct {
	Parser DateParser
	Logger *zap.Logger
}

func (c Calculator) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Compute returns the sessions that are on or after today and still have
// free slots, sorted by date.  Sessions sharing a date keep their sheet
// order.  Unparseable labels are logged and skipped.
func (c Calculator) Compute(groups []SessionGroup, today time.Time) []BookableSession {
	log := c.logger()
	cutoff := StartOfDay(today, c.Parser.loc())

	out := make([]BookableSession, 0, len(groups))
	for _, g := range groups {
		total, occupied := g.Count()
		date, err := c.Parser.Parse(g.RawDateLabel)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				log.Warn("skipping session with unparseable date", zap.String("label", g.RawDateLabel))
			}
			continue
		}
		if date.Before(cutoff) {
			log.Debug("skipping past session", zap.String("label", g.RawDateLabel))
			continue
		}
		if occupied >= total {
			log.Debug("session fully booked", zap.String("label", g.RawDateLabel), zap.Int("total", total))
			continue
		}
		out = append(out, BookableSession{
			RawDateLabel:   g.RawDateLabel,
			Label:          FormatLabel(date, g.RawDateLabel, g.GuestArtist),
			Date:           date,
			TotalSlots:     total,
			OccupiedSlots:  occupied,
			AvailableSlots: total - occupied,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Overview describes every session group in sheet order, including past,
// full and unparseable ones.
func (c Calculator) Overview(groups []SessionGroup, today time.Time) []SessionOverview {
	cutoff := StartOfDay(today, c.Parser.loc())
	out := make([]SessionOverview, 0, len(groups))
	for _, g := range groups {
		total, occupied := g.Count()
		ov := SessionOverview{
			RawDateLabel:  g.RawDateLabel,
			GuestArtist:   g.GuestArtist,
			TotalSlots:    total,
			OccupiedSlots: occupied,
		}
		remarks := make([]string, 0, len(g.Slots))
		for _, r := range g.Slots {
			remarks = append(remarks, r.Remarks)
			if IsOccupied(r.Name) {
				ov.Performers = append(ov.Performers, model.Performer{
					Name:       strings.TrimSpace(r.Name),
					Instrument: strings.TrimSpace(r.Instrument),
					Piece:      strings.TrimSpace(r.Piece),
					Duration:   strings.TrimSpace(r.Duration),
					Remarks:    strings.TrimSpace(r.Remarks),
				})
			}
		}
		ov.Category = Classify(g.GuestArtist, remarks...)
		if date, err := c.Parser.Parse(g.RawDateLabel); err == nil {
			ov.Date = date
			ov.DateKnown = true
			ov.Past = date.Before(cutoff)
			ov.Label = FormatLabel(date, g.RawDateLabel, g.GuestArtist)
		}
		out = append(out, ov)
	}
	return out
}
