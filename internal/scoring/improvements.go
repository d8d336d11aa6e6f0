// internal/scoring/improvements.go
package scoring

import (
	"math"
	"sort"

	"proposal-workers/internal/models"
)

// remediation is the static per-factor guidance catalogue, keyed by score
// band. Data, not AI output, so improvement lists are reproducible.
type remediation struct {
	Action  string
	Details string
}

type scoreBand int

const (
	bandCritical scoreBand = iota // < 40
	bandWeak                      // 40-70
	bandSolid                     // 70-90
	bandPolish                    // 90-100
)

func bandFor(raw float64) scoreBand {
	switch {
	case raw < 40:
		return bandCritical
	case raw < 70:
		return bandWeak
	case raw < 90:
		return bandSolid
	default:
		return bandPolish
	}
}

var remediationCatalogue = map[models.FactorType]map[scoreBand]remediation{
	models.FactorCompleteness: {
		bandCritical: {"Draft all missing required sections", "Most required sections are absent; build the full proposal skeleton before refining content"},
		bandWeak:     {"Complete missing required sections", "One or more required sections are missing or empty; add substantive drafts"},
		bandSolid:    {"Fill remaining content gaps", "Replace placeholder text and expand thin sections to target word counts"},
		bandPolish:   {"Verify attachments and references", "Confirm every referenced attachment and exhibit is present and current"},
	},
	models.FactorTechnicalDepth: {
		bandCritical: {"Rebuild the technical approach", "Content is generic; rewrite around specific methodologies, tools, and standards"},
		bandWeak:     {"Add specific methodologies", "Replace generic statements with named frameworks, tools, and step-by-step processes"},
		bandSolid:    {"Deepen technical justification", "Explain why each chosen approach fits this requirement; quantify targets and metrics"},
		bandPolish:   {"Tighten technical discriminators", "Sharpen the handful of details that separate this approach from competitors"},
	},
	models.FactorSectionLCompliance: {
		bandCritical: {"Build a compliance matrix", "Map every Section L instruction to a proposal location before anything else"},
		bandWeak:     {"Close compliance gaps", "Several instructions are unaddressed; work through the compliance matrix item by item"},
		bandSolid:    {"Verify format requirements", "Confirm page limits, fonts, margins, and required certifications"},
		bandPolish:   {"Final compliance sweep", "Re-verify the matrix against the latest amendment before submission"},
	},
	models.FactorSectionMAlignment: {
		bandCritical: {"Restructure around evaluation criteria", "Reorganize content so each Section M factor is explicitly and visibly addressed"},
		bandWeak:     {"Align content with evaluation criteria", "Strengthen sections that evaluators will score directly; surface discriminators"},
		bandSolid:    {"Amplify win themes", "Weave win themes through every volume, not just the summary"},
		bandPolish:   {"Mirror evaluation language", "Echo Section M terminology in headings so evaluators find each factor instantly"},
	},
	models.FactorSOWCoverage: {
		bandCritical: {"Map the Statement of Work", "Most SOW tasks are uncovered; build a task-to-section traceability matrix"},
		bandWeak:     {"Cover remaining SOW tasks", "Address every SOW task and deliverable somewhere substantive in the proposal"},
		bandSolid:    {"Strengthen SOW traceability", "Make task-to-section mapping explicit so coverage is effortless to verify"},
		bandPolish:   {"Verify SOW edge items", "Confirm optional tasks and CLIN-level details are addressed"},
	},
	models.FactorPPMapping: {
		bandCritical: {"Document relevant past performance", "Add contracts with scope, value, period, and outcomes"},
		bandWeak:     {"Quantify past performance outcomes", "Add contract values, ratings, and measurable results for each citation"},
		bandSolid:    {"Draw explicit parallels", "Connect each cited contract directly to the current requirement"},
		bandPolish:   {"Lead with the strongest citation", "Reorder citations so the most relevant contract comes first"},
	},
}

// RankImprovements derives the prioritized improvement list from a score
// snapshot. Fully deterministic: gain descending, then weight descending,
// then factor name ascending.
func RankImprovements(score *models.ProposalScore) []models.ScoreImprovement {
	var improvements []models.ScoreImprovement

	for _, f := range score.Factors {
		if f.RawScore >= 100 {
			continue
		}
		gain := int(math.Round((100 - f.RawScore) * f.FactorWeight))
		if f.RawScore < 50 && gain < 1 {
			gain = 1
		}

		guidance := remediationCatalogue[f.FactorType][bandFor(f.RawScore)]
		improvements = append(improvements, models.ScoreImprovement{
			Factor:        f.FactorType,
			CurrentScore:  f.RawScore,
			PotentialGain: gain,
			Action:        guidance.Action,
			Details:       guidance.Details,
		})
	}

	sort.SliceStable(improvements, func(i, j int) bool {
		a, b := improvements[i], improvements[j]
		if a.PotentialGain != b.PotentialGain {
			return a.PotentialGain > b.PotentialGain
		}
		wa := factorWeight(score, a.Factor)
		wb := factorWeight(score, b.Factor)
		if wa != wb {
			return wa > wb
		}
		return a.Factor < b.Factor
	})

	for i := range improvements {
		improvements[i].Priority = i + 1
	}
	return improvements
}

func factorWeight(score *models.ProposalScore, ft models.FactorType) float64 {
	if f := score.Factor(ft); f != nil {
		return f.FactorWeight
	}
	return 0
}
