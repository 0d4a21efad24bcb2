package pipeline

import (
	"strconv"

	"github.com/sells-group/buyer-signals/internal/model"
)

// baselineFields is the fixed comparison set for run-over-run diffs.
// Values are compared stringified, after stale filtering and provenance
// so the diff reflects final, cleaned values only.
var baselineFields = []string{
	"date",
	"capitalAmount",
	"sector",
	"geography",
	"mandateLanguage",
	"leadershipStatement",
	"urgencyIndicator",
	"signalScore",
}

// ChangedFields lists the baseline fields whose value differs from the
// prior run's record. A buyer with no prior record gets the NEW_BASELINE
// sentinel.
func ChangedFields(curr *model.BuyerSignalRecord, prev *model.BuyerSignalRecord) []string {
	if prev == nil {
		return []string{model.NewBaseline}
	}

	changed := []string{}
	for _, f := range baselineFields {
		if diffValue(curr, f) != diffValue(prev, f) {
			changed = append(changed, f)
		}
	}
	return changed
}

func diffValue(rec *model.BuyerSignalRecord, field string) string {
	switch field {
	case "urgencyIndicator":
		return strconv.Itoa(rec.UrgencyIndicator)
	case "signalScore":
		return strconv.FormatFloat(rec.SignalScore, 'f', -1, 64)
	default:
		return rec.FieldValue(field)
	}
}
