package pipeline

import "github.com/sells-group/buyer-signals/internal/model"

// ClassifyProvenance grades how one field value was obtained. A missing
// value is graded missing regardless of source health; a present value is
// attributed to the strongest source that was actually live for this
// buyer: the direct fetch, then search enrichment, then unverifiable.
func ClassifyProvenance(value string, directOK, searchOK bool) model.Provenance {
	switch {
	case value == model.Missing:
		return model.ProvenanceMissing
	case directOK:
		return model.ProvenanceVerified
	case searchOK:
		return model.ProvenanceSearch
	default:
		return model.ProvenanceUnverified
	}
}

// RollupConfidence derives the record-level confidence purely from field
// provenance: high when anything came from a verified source, medium when
// the best grade is search-derived, low otherwise.
func RollupConfidence(prov map[string]model.Provenance) model.Confidence {
	best := model.Confidence("")
	for _, p := range prov {
		switch p {
		case model.ProvenanceVerified:
			return model.ConfidenceHigh
		case model.ProvenanceSearch:
			best = model.ConfidenceMedium
		}
	}
	if best == model.ConfidenceMedium {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}
