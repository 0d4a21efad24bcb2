package model

import "time"

// Missing is the output-boundary sentinel for a field that resolved to no
// value. Internally absence is represented by Extraction.Found; the string
// appears only in serialized records for dashboard compatibility.
const Missing = "MISSING"

// NewBaseline is the changedFields sentinel for a buyer with no prior record.
const NewBaseline = "NEW_BASELINE"

// StaleDateEvidence replaces the date evidence when an extracted date was
// rejected as too old to indicate a live pressure event. A found-but-stale
// date is operationally different from a never-found one, and the record
// keeps that distinction visible to reviewers.
const StaleDateEvidence = "Filtered as stale (>24m old) for pressure events"

// SignalFields lists the six extractable fields in output order.
var SignalFields = []string{
	"date",
	"capitalAmount",
	"sector",
	"geography",
	"mandateLanguage",
	"leadershipStatement",
}

// Extraction is the internal optional type for one extracted field: either
// a value with its evidence snippet, or absent.
type Extraction struct {
	Found    bool
	Value    string
	Evidence string
}

// OrMissing returns the field value, or the Missing sentinel when absent.
func (e Extraction) OrMissing() string {
	if !e.Found {
		return Missing
	}
	return e.Value
}

// EvidenceOrMissing returns the evidence snippet, or the Missing sentinel
// when absent.
func (e Extraction) EvidenceOrMissing() string {
	if !e.Found {
		return Missing
	}
	return e.Evidence
}

// Provenance grades how a field value was obtained.
type Provenance string

const (
	ProvenanceVerified   Provenance = "verified_source"
	ProvenanceSearch     Provenance = "search_derived"
	ProvenanceUnverified Provenance = "unverified"
	ProvenanceMissing    Provenance = "missing"
)

// Confidence is the record-level roll-up of field provenance.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// BuyerSignalRecord is the per-buyer output row of a run.
type BuyerSignalRecord struct {
	Buyer            string   `json:"buyer"`
	SourceTried      []string `json:"sourceTried"`
	SourceUsed       string   `json:"sourceUsed"`
	LeadershipSource string   `json:"leadershipSource,omitempty"`
	FetchStatus      string   `json:"fetchStatus"`
	BraveStatus      string   `json:"braveStatus"`

	Date                string `json:"date"`
	CapitalAmount       string `json:"capitalAmount"`
	Sector              string `json:"sector"`
	Geography           string `json:"geography"`
	MandateLanguage     string `json:"mandateLanguage"`
	LeadershipStatement string `json:"leadershipStatement"`

	UrgencyIndicator  int               `json:"urgencyIndicator"`
	StaleDateFiltered bool              `json:"staleDateFiltered"`
	Evidence          map[string]string `json:"evidence"`

	SignalScore       float64               `json:"signalScore"`
	FieldProvenance   map[string]Provenance `json:"fieldProvenance"`
	OverallConfidence Confidence            `json:"overallConfidence"`
	MissingInputs     []string              `json:"missingInputs"`
	ChangedFields     []string              `json:"changedFields"`
}

// FieldValue returns the current value of one of the six signal fields by
// its JSON name.
func (r *BuyerSignalRecord) FieldValue(name string) string {
	switch name {
	case "date":
		return r.Date
	case "capitalAmount":
		return r.CapitalAmount
	case "sector":
		return r.Sector
	case "geography":
		return r.Geography
	case "mandateLanguage":
		return r.MandateLanguage
	case "leadershipStatement":
		return r.LeadershipStatement
	}
	return ""
}

// ComputeMissingInputs fills MissingInputs from the six signal fields.
func (r *BuyerSignalRecord) ComputeMissingInputs() {
	r.MissingInputs = []string{}
	for _, f := range SignalFields {
		if r.FieldValue(f) == Missing {
			r.MissingInputs = append(r.MissingInputs, f)
		}
	}
}

// Run is one immutable execution result: every configured buyer in source
// registry order, persisted once and never mutated.
type Run struct {
	ID          string              `json:"-"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Rows        []BuyerSignalRecord `json:"rows"`
}

// RowsByBuyer indexes the run's rows by buyer id.
func (r *Run) RowsByBuyer() map[string]*BuyerSignalRecord {
	m := make(map[string]*BuyerSignalRecord, len(r.Rows))
	for i := range r.Rows {
		m[r.Rows[i].Buyer] = &r.Rows[i]
	}
	return m
}
