package pipeline

import (
	"regexp"
	"strings"

	"github.com/sells-group/buyer-signals/internal/model"
)

// evidenceRadius is how much surrounding context is captured on each side
// of a match.
const evidenceRadius = 80

// Global default pattern lists. Order is the business rule: the first
// pattern with a match wins, so more specific patterns come first.
var (
	genericDateRe = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2},\s+\d{4}\b`)

	capitalAmountRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$\s?[\d,.]+\s?(?:bn|billion|m|million)?`),
		regexp.MustCompile(`(?i)\b[\d,.]+\s?(?:bn|billion|m|million)\b`),
	}

	sectorRe = regexp.MustCompile(`(?i)\b(infrastructure|renewable|energy|real estate|housing|transport|digital)\b`)

	mandateRe = regexp.MustCompile(`(?i)\b(mandate|allocation|commitment|deploy(?:ment)?|investment\s+strategy|platform|fund\s+launch)\b`)

	leadershipRe = regexp.MustCompile(`(?i)\b(chairman|ceo|leadership|governor|president|chief executive)\b`)
)

// FirstMatch applies patterns in order and returns the first match as an
// Extraction. If a pattern has a capture group, the group is the value,
// otherwise the whole match. Evidence is the match plus up to
// evidenceRadius characters of context on each side, clipped to corpus
// bounds. No merging across patterns, no best-match scoring.
func FirstMatch(corpus string, patterns ...*regexp.Regexp) model.Extraction {
	for _, re := range patterns {
		if re == nil {
			continue
		}
		loc := re.FindStringSubmatchIndex(corpus)
		if loc == nil {
			continue
		}

		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		value := strings.TrimSpace(corpus[start:end])

		snipStart := loc[0] - evidenceRadius
		if snipStart < 0 {
			snipStart = 0
		}
		snipEnd := loc[0] + len(value) + evidenceRadius
		if snipEnd > len(corpus) {
			snipEnd = len(corpus)
		}

		return model.Extraction{
			Found:    true,
			Value:    value,
			Evidence: corpus[snipStart:snipEnd],
		}
	}
	return model.Extraction{}
}

// Fields holds the six raw field extractions for one buyer, before
// temporal filtering.
type Fields struct {
	Date                model.Extraction
	CapitalAmount       model.Extraction
	Sector              model.Extraction
	Geography           model.Extraction
	MandateLanguage     model.Extraction
	LeadershipStatement model.Extraction
}

// ExtractFields runs every field's ordered pattern list over the corpus.
// Buyer-specific date patterns take priority over the generic month-name
// pattern. Geography only resolves when the buyer has hints configured:
// an absent rule means the field is always absent, which tells a reviewer
// "no geography rule for this buyer" rather than "no geography text found".
func ExtractFields(corpus string, rule model.ExtractionRule) Fields {
	datePatterns := append(append([]*regexp.Regexp{}, rule.CompiledDates...), genericDateRe)

	f := Fields{
		Date:                FirstMatch(corpus, datePatterns...),
		CapitalAmount:       FirstMatch(corpus, capitalAmountRes...),
		Sector:              FirstMatch(corpus, sectorRe),
		MandateLanguage:     FirstMatch(corpus, mandateRe),
		LeadershipStatement: FirstMatch(corpus, leadershipRe),
	}
	if rule.GeographyRe != nil {
		f.Geography = FirstMatch(corpus, rule.GeographyRe)
	}
	return f
}
