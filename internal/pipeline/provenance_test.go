package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/buyer-signals/internal/model"
)

func TestClassifyProvenance(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		directOK bool
		searchOK bool
		want     model.Provenance
	}{
		{"missing value always missing", model.Missing, true, true, model.ProvenanceMissing},
		{"direct fetch wins", "$1 billion", true, true, model.ProvenanceVerified},
		{"search when direct failed", "$1 billion", false, true, model.ProvenanceSearch},
		{"unverified when both failed", "$1 billion", false, false, model.ProvenanceUnverified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyProvenance(tc.value, tc.directOK, tc.searchOK))
		})
	}
}

func TestRollupConfidence(t *testing.T) {
	assert.Equal(t, model.ConfidenceHigh, RollupConfidence(map[string]model.Provenance{
		"date":          model.ProvenanceMissing,
		"capitalAmount": model.ProvenanceVerified,
	}))

	assert.Equal(t, model.ConfidenceMedium, RollupConfidence(map[string]model.Provenance{
		"date":          model.ProvenanceMissing,
		"capitalAmount": model.ProvenanceSearch,
		"sector":        model.ProvenanceUnverified,
	}))

	assert.Equal(t, model.ConfidenceLow, RollupConfidence(map[string]model.Provenance{
		"date":   model.ProvenanceMissing,
		"sector": model.ProvenanceUnverified,
	}))

	assert.Equal(t, model.ConfidenceLow, RollupConfidence(nil))
}
