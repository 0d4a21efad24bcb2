package pipeline

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyer-signals/internal/model"
)

func TestFirstMatch_OrderWins(t *testing.T) {
	corpus := "second comes before first in this text"
	a := regexp.MustCompile(`first`)
	b := regexp.MustCompile(`second`)

	// Pattern order decides, not position in the corpus.
	got := FirstMatch(corpus, a, b)
	require.True(t, got.Found)
	assert.Equal(t, "first", got.Value)
}

func TestFirstMatch_CaptureGroupIsValue(t *testing.T) {
	corpus := "allocated to the Asia-Pacific region last week"
	re := regexp.MustCompile(`allocated to the ([A-Za-z-]+) region`)

	got := FirstMatch(corpus, re)
	require.True(t, got.Found)
	assert.Equal(t, "Asia-Pacific", got.Value)
	// Evidence still surrounds the full match.
	assert.Contains(t, got.Evidence, "allocated to the Asia-Pacific region")
}

func TestFirstMatch_EvidenceClippedAtBounds(t *testing.T) {
	corpus := "short $100 million text"
	got := FirstMatch(corpus, capitalAmountRes...)
	require.True(t, got.Found)
	assert.Equal(t, corpus, got.Evidence)
}

func TestFirstMatch_EvidenceWindow(t *testing.T) {
	pad := strings.Repeat("x", 200)
	corpus := pad + " $500 million " + pad
	got := FirstMatch(corpus, capitalAmountRes...)
	require.True(t, got.Found)

	// 80 chars each side of the match, well inside the padding.
	assert.Len(t, got.Evidence, len(got.Value)+2*evidenceRadius)
	assert.Contains(t, got.Evidence, "$500 million")
}

func TestFirstMatch_NoMatch(t *testing.T) {
	got := FirstMatch("nothing relevant here", capitalAmountRes...)
	assert.False(t, got.Found)
	assert.Empty(t, got.Value)
	assert.Empty(t, got.Evidence)
}

func TestFirstMatch_SkipsNilPatterns(t *testing.T) {
	got := FirstMatch("infrastructure news", nil, sectorRe)
	require.True(t, got.Found)
	assert.Equal(t, "infrastructure", got.Value)
}

func TestExtractFields_BuyerDatePatternsFirst(t *testing.T) {
	corpus := "Published 2026-03-01. Also mentioned: January 5, 2026."
	rule := model.ExtractionRule{
		CompiledDates: []*regexp.Regexp{regexp.MustCompile(`(?i)\b\d{4}-\d{2}-\d{2}\b`)},
	}

	f := ExtractFields(corpus, rule)
	require.True(t, f.Date.Found)
	assert.Equal(t, "2026-03-01", f.Date.Value)
}

func TestExtractFields_GenericDateFallback(t *testing.T) {
	corpus := "The announcement of March 14, 2026 covered infrastructure."
	f := ExtractFields(corpus, model.ExtractionRule{})
	require.True(t, f.Date.Found)
	assert.Equal(t, "March 14, 2026", f.Date.Value)
}

func TestExtractFields_GeographyRequiresHints(t *testing.T) {
	corpus := "A mandate for Australia and the chairman's $1 billion plan."

	noRule := ExtractFields(corpus, model.ExtractionRule{})
	assert.False(t, noRule.Geography.Found)

	withRule := ExtractFields(corpus, model.ExtractionRule{
		GeographyRe: regexp.MustCompile(`(?i)\b(Australia|New Zealand)\b`),
	})
	require.True(t, withRule.Geography.Found)
	assert.Equal(t, "Australia", withRule.Geography.Value)
}

func TestExtractFields_AllSixFields(t *testing.T) {
	corpus := "On June 1, 2026 the board confirmed a $2.5 billion allocation to " +
		"renewable projects across Australia, the chairman said."
	rule := model.ExtractionRule{
		GeographyRe: regexp.MustCompile(`(?i)\b(Australia)\b`),
	}

	f := ExtractFields(corpus, rule)
	assert.Equal(t, "June 1, 2026", f.Date.Value)
	assert.Equal(t, "$2.5 billion", f.CapitalAmount.Value)
	assert.Equal(t, "renewable", f.Sector.Value)
	assert.Equal(t, "Australia", f.Geography.Value)
	assert.Equal(t, "allocation", f.MandateLanguage.Value)
	assert.Equal(t, "chairman", f.LeadershipStatement.Value)
}

func TestExtractFields_EmptyCorpus(t *testing.T) {
	f := ExtractFields("", model.ExtractionRule{})
	assert.False(t, f.Date.Found)
	assert.False(t, f.CapitalAmount.Found)
	assert.False(t, f.Sector.Found)
	assert.False(t, f.Geography.Found)
	assert.False(t, f.MandateLanguage.Found)
	assert.False(t, f.LeadershipStatement.Found)
}
