package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/buyer-signals/internal/model"
)

func fullRecord() model.BuyerSignalRecord {
	return model.BuyerSignalRecord{
		Date:                "June 1, 2026",
		CapitalAmount:       "$2.5 billion",
		Sector:              "infrastructure",
		Geography:           "Australia",
		MandateLanguage:     "mandate",
		LeadershipStatement: "chairman",
		UrgencyIndicator:    5,
	}
}

func TestSignalScore_AllPresent(t *testing.T) {
	rec := fullRecord()
	// (3+3+3+3+5)/5
	assert.Equal(t, 3.4, SignalScore(&rec))
}

func TestSignalScore_AllMissing(t *testing.T) {
	rec := model.BuyerSignalRecord{
		Date:                model.Missing,
		CapitalAmount:       model.Missing,
		Sector:              model.Missing,
		Geography:           model.Missing,
		MandateLanguage:     model.Missing,
		LeadershipStatement: model.Missing,
		UrgencyIndicator:    1,
	}
	// (1+1+1+1+1)/5
	assert.Equal(t, 1.0, SignalScore(&rec))
}

func TestSignalScore_OneFieldDelta(t *testing.T) {
	with := fullRecord()
	without := fullRecord()
	without.Geography = model.Missing

	// One scored field flipping presence moves the composite by 0.4.
	assert.InDelta(t, 0.4, SignalScore(&with)-SignalScore(&without), 1e-9)
}

func TestSignalScore_DateAndSectorDoNotCount(t *testing.T) {
	rec := fullRecord()
	base := SignalScore(&rec)

	rec.Date = model.Missing
	rec.Sector = model.Missing
	assert.Equal(t, base, SignalScore(&rec))
}

func TestSignalScore_UrgencyContribution(t *testing.T) {
	low := fullRecord()
	low.UrgencyIndicator = 1
	high := fullRecord()
	high.UrgencyIndicator = 5

	assert.Equal(t, 2.6, SignalScore(&low))
	assert.Equal(t, 3.4, SignalScore(&high))
}
