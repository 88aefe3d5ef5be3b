package schedule

import (
	"fmt"
	"strings"
	"time"
)

// HostGuest marks a locally run performance class rather than a guest
// masterclass.
const HostGuest = "HOST"

// Category classifies a session for calendar display.
type Category string

const (
	CategoryPerformanceClass Category = "performance-class"
	CategoryMasterclass      Category = "masterclass"
	CategorySpecial          Category = "special"
)

const performanceClassSuffix = " - Performance Class"

// coachSuffixes maps resident coaches to the kind of masterclass they
// teach.  Matching is by case-insensitive substring, first entry wins.
var coachSuffixes = []struct {
	needles []string
	suffix  string
}{
	{[]string{"mercer"}, " - Cello Masterclass"},
	{[]string{"chooi", "kim", "roseman"}, " - Violin Masterclass"},
	{[]string{"thies"}, " - Viola Masterclass"},
	{[]string{"harrison"}, " - Cello Masterclass"},
	{[]string{"van der sloot", "sloot"}, " - Violin/Viola Masterclass"},
}

// specialRemarks flag sessions that are neither a class nor a masterclass.
var specialRemarks = []string{"thanksgiving", "rehearsal", "improvisation"}

// FormatLabel renders "{Month} {Day}, {Year}" followed by the session type
// derived from guestArtist.  The raw label argument is the session key and
// does not affect the output.
func FormatLabel(date time.Time, _, guestArtist string) string {
	base := fmt.Sprintf("%s %d, %d", date.Month().String(), date.Day(), date.Year())
	return base + labelSuffix(guestArtist)
}

func labelSuffix(guestArtist string) string {
	guest := strings.TrimSpace(guestArtist)
	lower := strings.ToLower(guest)
	switch {
	case lower == "", lower == "n/a", lower == "host":
		return performanceClassSuffix
	}
	for _, c := range coachSuffixes {
		for _, n := range c.needles {
			if strings.Contains(lower, n) {
				return c.suffix
			}
		}
	}
	return " - Masterclass with " + guest
}

// Classify reports the category of a session from its guest artist and the
// remarks of its slots.  Special remarks take precedence.
func Classify(guestArtist string, remarks ...string) Category {
	for _, r := range remarks {
		lower := strings.ToLower(r)
		for _, kw := range specialRemarks {
			if strings.Contains(lower, kw) {
				return CategorySpecial
			}
		}
	}
	if labelSuffix(guestArtist) == performanceClassSuffix {
		return CategoryPerformanceClass
	}
	return CategoryMasterclass
}
