package pipeline

import (
	"regexp"
	"time"
)

// staleCutoff is the maximum distance from now, in either direction, for
// an extracted date to still count as a live pressure event.
const staleCutoff = 730 * 24 * time.Hour

// dateLayouts are the calendar formats the date field is parsed with.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate attempts to parse an extracted date candidate. A value that
// matches none of the known layouts reports ok=false; unparseable dates
// are handled by field-level absence, not by the staleness filter.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsStale reports whether a parsed date is more than 24 months from now
// in either direction.
func IsStale(t time.Time, now time.Time) bool {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	return diff > staleCutoff
}

// urgencyTiers maps temporal-urgency phrasing to the ordinal scale,
// highest first. Classification scans the whole corpus and the first tier
// with a match wins, so overlapping phrasing resolves to the most urgent
// reading.
var urgencyTiers = []struct {
	level int
	re    *regexp.Regexp
}{
	{5, regexp.MustCompile(`(?i)\b(?:90\s*days|this\s*quarter|next\s*quarter|immediate|near[- ]term)\b`)},
	{4, regexp.MustCompile(`(?i)\b(?:180\s*days|six\s*months|half[- ]year)\b`)},
	{3, regexp.MustCompile(`(?i)\b(?:12\s*months|one\s*year|annual)\b`)},
	{2, regexp.MustCompile(`(?i)\b(?:24\s*months|two\s*years)\b`)},
}

// Urgency classifies the deployment-timing urgency of the corpus on a
// 1-5 ordinal scale. 1 is the default when no temporal phrasing appears.
func Urgency(corpus string) int {
	for _, tier := range urgencyTiers {
		if tier.re.MatchString(corpus) {
			return tier.level
		}
	}
	return 1
}
