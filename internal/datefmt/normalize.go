// Package datefmt converts the free-form dates found in interchange files to
// timestamps and renders timestamps back for export.
//
// Normalization never fails. Input is tried, in order, against a set of
// unambiguous machine layouts, then against the day-first pattern
// D/M/YYYY[ H:MM[:SS]], and finally falls back to the current instant.
// Slash dates are only ever read day-first.
package datefmt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// layouts tried before the day-first pattern. Zone-less layouts are
// interpreted in the Normalizer's Location.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.RubyDate,
	time.UnixDate,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.ANSIC,
}

// A bare ISO date is midnight UTC.
const isoDate = "2006-01-02"

var dayFirst = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})(?:,?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)

// Normalizer parses date text of unknown format.
type Normalizer struct {
	Now      func() time.Time
	Location *time.Location
}

// NewNormalizer returns a Normalizer for loc using the wall clock.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{Now: time.Now, Location: loc}
}

var defaultNormalizer = NewNormalizer(time.Local)

// Normalize parses text in the local time zone.
func Normalize(text string) time.Time {
	return defaultNormalizer.Normalize(text)
}

// Normalize returns the instant described by text, or the current instant
// when text is empty or unparsable.
func (n *Normalizer) Normalize(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return n.now()
	}

	if t, ok := n.parseGeneral(text); ok {
		return t
	}
	if t, ok := n.parseDayFirst(text); ok {
		return t
	}
	return n.now()
}

func (n *Normalizer) parseGeneral(text string) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, text, n.location()); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(isoDate, text); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (n *Normalizer) parseDayFirst(text string) (time.Time, bool) {
	m := dayFirst.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	day := atoi(m[1])
	month := atoi(m[2])
	year := atoi(m[3])
	hour := atoi(m[4])
	minute := atoi(m[5])
	second := atoi(m[6])

	// Out-of-range fields roll over the way time.Date normalizes them.
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, n.location()), true
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.Local
	}
	return n.Location
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}
