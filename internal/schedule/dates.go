package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultProgramYear is used for labels such as "Oct 18" that carry no year.
const DefaultProgramYear = 2025

var monthAbbrevs = [12]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// monthDay matches "<word> <day>" with an optional 4-digit year anywhere
// after the day, e.g. "Oct 18", "Sept 13", "November 8, 2025".
var monthDay = regexp.MustCompile(`(\w+)\s+(\d{1,2})(?:.*?(\d{4}))?`)

// fallbackLayouts are tried when no month name is present.
var fallbackLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
}

// DateParser resolves session labels to calendar dates.
type DateParser struct {
	// Year applied to labels without an explicit year.  Zero means
	// DefaultProgramYear.
	Year int
	// Location in which dates are constructed.  Nil means time.Local.
	Location *time.Location
}

func (p DateParser) year() int {
	if p.Year > 0 {
		return p.Year
	}
	return DefaultProgramYear
}

func (p DateParser) loc() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

// Parse returns midnight of the date named by label.  "Sept" and "Sep" map
// to September; any other month is recognised by its three-letter prefix
// appearing anywhere in the label.  A *ParseError is returned otherwise.
func (p DateParser) Parse(label string) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return time.Time{}, &ParseError{Label: label}
	}

	if strings.Contains(s, "sept") || strings.HasPrefix(s, "sep ") {
		if t, ok := p.fromMatch(s, time.September); ok {
			return t, nil
		}
	}
	for i, abbr := range monthAbbrevs {
		if !strings.Contains(s, abbr) {
			continue
		}
		if t, ok := p.fromMatch(s, time.Month(i+1)); ok {
			return t, nil
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(label), p.loc()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Label: label}
}

func (p DateParser) fromMatch(s string, month time.Month) (time.Time, bool) {
	m := monthDay.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}
	year := p.year()
	if m[3] != "" {
		if y, err := strconv.Atoi(m[3]); err == nil {
			year = y
		}
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, p.loc())
	// time.Date normalises "Feb 30" into March; such labels are rejected.
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
