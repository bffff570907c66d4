package interchange

import (
	"regexp"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// fhirPartialDate matches the reduced-precision forms a FHIR dateTime allows
// without a time part: YYYY, YYYY-MM, YYYY-MM-DD.
var fhirPartialDate = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)

var strictLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// now fills parts missing from the input (the date of "10:30", everything
// but the hour of "12") from a reference time. Input that parses differently
// against these two references is incomplete and rejected.
var (
	lenientRefA = time.Date(2001, 2, 3, 4, 5, 6, 7, time.UTC)
	lenientRefB = time.Date(2012, 11, 10, 9, 8, 7, 6, time.UTC)
)

// parseTime reads a caller-supplied date or timestamp. ISO-8601 forms are
// tried first; anything else goes through now's lenient formats
// ("2006/01/02", "1/2/2006 15:4:5", ...) and must name a full calendar date.
// Zone-less input is taken as UTC. The wall clock is never consulted.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range strictLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	a, err := lenientParser(lenientRefA).Parse(s)
	if err != nil {
		return time.Time{}, false
	}
	b, err := lenientParser(lenientRefB).Parse(s)
	if err != nil || !a.Equal(b) {
		return time.Time{}, false
	}
	return a, true
}

func lenientParser(ref time.Time) *now.Now {
	return (&now.Config{TimeLocation: time.UTC}).With(ref)
}

// calendarDate normalises s to YYYY-MM-DD in the zone it was written in.
func calendarDate(s string) (string, bool) {
	t, ok := parseTime(s)
	if !ok {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// instant converts s to a zone-aware UTC timestamp.
func instant(s string) (*time.Time, bool) {
	t, ok := parseTime(s)
	if !ok {
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

// effectiveDateTime keeps valid FHIR dateTime strings verbatim, rewrites
// other parseable input as RFC 3339, and reports false for anything else.
func effectiveDateTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if fhirPartialDate.MatchString(s) {
		return s, true
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return s, true
	}
	t, ok := parseTime(s)
	if !ok {
		return "", false
	}
	return t.UTC().Format(time.RFC3339Nano), true
}
