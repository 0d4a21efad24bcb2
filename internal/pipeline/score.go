package pipeline

import (
	"math"

	"github.com/sells-group/buyer-signals/internal/model"
)

// presenceScore is the per-field contribution to the composite: presence
// counts, match quality does not.
func presenceScore(value string) float64 {
	if value == model.Missing {
		return 1
	}
	return 3
}

// SignalScore combines the four decision-relevant field presences and the
// urgency ordinal into one composite, rounded to two decimals. Date and
// sector are deliberately excluded: they are contextual fields, and
// urgency already carries the temporal signal from the corpus itself.
func SignalScore(rec *model.BuyerSignalRecord) float64 {
	sum := presenceScore(rec.CapitalAmount) +
		presenceScore(rec.MandateLanguage) +
		presenceScore(rec.Geography) +
		presenceScore(rec.LeadershipStatement) +
		float64(rec.UrgencyIndicator)
	return math.Round(sum/5*100) / 100
}
