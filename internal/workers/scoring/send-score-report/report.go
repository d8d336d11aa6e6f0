// internal/workers/scoring/send-score-report/report.go
package sendscorereport

import (
	"fmt"
	"strings"

	"proposal-workers/internal/models"
)

// renderReport builds the plain-text report email for a decision summary.
func renderReport(input *Input, summary *models.GoNoGoSummary) (subject, body string) {
	name := input.ProposalName
	if name == "" {
		name = input.ProposalID
	}

	subject = fmt.Sprintf("Proposal Score Report: %s - %s", name, summary.Recommendation)

	var b strings.Builder
	fmt.Fprintf(&b, "Proposal: %s\n", name)
	fmt.Fprintf(&b, "Generated: %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04 UTC"))

	if summary.OverallScore != nil {
		fmt.Fprintf(&b, "Overall score: %d/100", *summary.OverallScore)
		if summary.Confidence != nil {
			fmt.Fprintf(&b, " (%s confidence)", *summary.Confidence)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Overall score: not yet calculated\n")
	}
	fmt.Fprintf(&b, "Trend: %s\n", summary.Trend)
	fmt.Fprintf(&b, "Readiness: %s\n", summary.ReadinessLevel)
	fmt.Fprintf(&b, "Recommendation: %s\n", summary.Recommendation)

	writeSection(&b, "Key strengths", summary.KeyStrengths)
	writeSection(&b, "Key risks", summary.KeyRisks)
	writeSection(&b, "Next steps", summary.NextSteps)

	return subject, b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
