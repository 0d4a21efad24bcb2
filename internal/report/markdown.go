// Package report renders the human-readable run summary.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/buyer-signals/internal/model"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// Summary renders the Markdown companion artifact for a run: one section
// per buyer with the signal score, what changed since the baseline, the
// missing inputs and the primary source.
func Summary(run *model.Run) string {
	var b strings.Builder
	b.WriteString("# Pressure Surface Changes (auto-generated)\n\n")

	for _, r := range run.Rows {
		missing := "None"
		if len(r.MissingInputs) > 0 {
			missing = strings.Join(r.MissingInputs, ", ")
		}

		fmt.Fprintf(&b, "## %s\n", titleCaser.String(r.Buyer))
		fmt.Fprintf(&b, "- Signal Score: %.2f\n", r.SignalScore)
		fmt.Fprintf(&b, "- Confidence: %s\n", r.OverallConfidence)
		fmt.Fprintf(&b, "- What changed: %s\n", strings.Join(r.ChangedFields, ", "))
		fmt.Fprintf(&b, "- Missing inputs: %s\n", missing)
		fmt.Fprintf(&b, "- Source: %s\n", r.SourceTried[0])
		b.WriteString("\n")
	}

	return b.String()
}
