package model

import "regexp"

// BuyerSource is the static source configuration for one tracked buyer.
// Immutable for the duration of a run.
type BuyerSource struct {
	ID            string   `json:"id" yaml:"id"`
	PressURL      string   `json:"press" yaml:"press"`
	LeadershipURL string   `json:"leadership,omitempty" yaml:"leadership,omitempty"`
	Fallbacks     []string `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
}

// Candidates returns the ordered, de-duplicated URL list to try for this
// buyer: the press URL first, then each fallback not equal to it, in
// configured order.
func (s BuyerSource) Candidates() []string {
	urls := []string{s.PressURL}
	for _, u := range s.Fallbacks {
		if u != s.PressURL {
			urls = append(urls, u)
		}
	}
	return urls
}

// ExtractionRule holds per-buyer extraction overrides. DatePatterns are
// tried before the global date pattern; GeographyHints are literal terms
// compiled into a single alternation. A buyer without hints never resolves
// a geography value.
type ExtractionRule struct {
	DatePatterns   []string `json:"datePatterns,omitempty"`
	GeographyHints []string `json:"geographyHints,omitempty"`

	// compiled at registry load
	CompiledDates []*regexp.Regexp `json:"-"`
	GeographyRe   *regexp.Regexp   `json:"-"`
}
