package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_KnownLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"January 5, 2026": time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		"Jan 5, 2026":     time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		"January 5 2026":  time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		"5 January 2026":  time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		"2026-01-05":      time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		"01/05/2026":      time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, ok := ParseDate(input)
		require.True(t, ok, "input %q", input)
		assert.True(t, want.Equal(got), "input %q", input)
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	_, ok := ParseDate("sometime next spring")
	assert.False(t, ok)
}

func TestIsStale_Boundary(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsStale(now.Add(-731*24*time.Hour), now))
	assert.False(t, IsStale(now.Add(-729*24*time.Hour), now))
	assert.False(t, IsStale(now.Add(-730*24*time.Hour), now))
}

func TestIsStale_FutureDates(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

	// Far-future dates are as suspect as far-past ones.
	assert.True(t, IsStale(now.Add(731*24*time.Hour), now))
	assert.False(t, IsStale(now.Add(30*24*time.Hour), now))
}

func TestUrgency_Tiers(t *testing.T) {
	cases := []struct {
		corpus string
		want   int
	}{
		{"capital will be deployed within 90 days", 5},
		{"deployment planned for this quarter", 5},
		{"we expect commitments next quarter", 5},
		{"immediate deployment of the mandate", 5},
		{"near-term allocation targets", 5},
		{"a 180 days deployment window", 4},
		{"within six months of close", 4},
		{"over the next 12 months", 3},
		{"the annual allocation review", 3},
		{"phased over 24 months", 2},
		{"a two years investment horizon", 2},
		{"no timing language at all", 1},
		{"", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Urgency(tc.corpus), "corpus %q", tc.corpus)
	}
}

func TestUrgency_HighestTierWins(t *testing.T) {
	// Both tier-5 and tier-3 phrasing present; the most urgent reading wins.
	corpus := "deployment over 12 months, starting this quarter"
	assert.Equal(t, 5, Urgency(corpus))
}
