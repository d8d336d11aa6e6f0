// internal/scoring/readiness/criteria.go
package readiness

import (
	"fmt"
	"strings"

	"proposal-workers/internal/models"
)

// checkInput is everything a criterion may inspect: current content, the
// latest committed score (nil when never scored), and the latest indicators
// of earlier gates (for prerequisite criteria).
type checkInput struct {
	content *models.ProposalContent
	score   *models.ProposalScore
	prior   map[models.TeamType]*models.ReadinessIndicator
}

// criterion is one named gating check. Hard criteria produce blockers when
// unmet; soft ones produce warnings. Weight is the criterion's share of the
// team's readiness score.
type criterion struct {
	name        string
	description string
	category    string
	weight      float64
	hard        bool
	check       func(in checkInput) (met bool, detail string)
}

var requiredDraftSections = []string{
	"executive summary",
	"technical approach",
	"management approach",
	"past performance",
}

// teamCriteria fixes the gating table per color team. Categories follow the
// review-process vocabulary: content, compliance, and prerequisite failures
// are hard stops; structure, strategy, visuals, pricing, quality, and
// administrative shortfalls are advisories.
var teamCriteria = map[models.TeamType][]criterion{
	models.TeamPink: {
		{
			name:        "outline_complete",
			description: "All sections have outlines",
			category:    "structure",
			weight:      0.4,
			check: func(in checkInput) (bool, string) {
				if len(in.content.Sections) == 0 {
					return false, "no sections exist yet"
				}
				for _, s := range in.content.Sections {
					if strings.TrimSpace(s.Content) == "" {
						return false, fmt.Sprintf("section %q has no content", s.Title)
					}
				}
				return true, ""
			},
		},
		{
			name:        "win_themes_defined",
			description: "Win themes documented",
			category:    "strategy",
			weight:      0.3,
			check: func(in checkInput) (bool, string) {
				body := strings.ToLower(bodyText(in.content))
				if strings.Contains(body, "win theme") || strings.Contains(body, "discriminator") {
					return true, ""
				}
				return false, "no win themes or discriminators found in any section"
			},
		},
		{
			name:        "compliance_matrix_started",
			description: "Compliance matrix initiated",
			category:    "compliance",
			weight:      0.3,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				if strings.TrimSpace(in.content.SectionLExcerpt) == "" {
					return false, "Section L instructions not attached"
				}
				if !strings.Contains(strings.ToLower(bodyText(in.content)), "compliance") {
					return false, "no compliance tracking referenced in the proposal"
				}
				return true, ""
			},
		},
	},
	models.TeamRed: {
		{
			name:        "all_sections_drafted",
			description: "All sections have full drafts",
			category:    "content",
			weight:      0.35,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				for _, required := range requiredDraftSections {
					s := findSection(in.content, required)
					if s == nil {
						return false, fmt.Sprintf("required section %q is missing", required)
					}
					if s.WordCount < 200 {
						return false, fmt.Sprintf("section %q is a stub (%d words)", s.Title, s.WordCount)
					}
				}
				return true, ""
			},
		},
		{
			name:        "compliance_checked",
			description: "Compliance checklist reviewed",
			category:    "compliance",
			weight:      0.3,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				raw, ok := factorRaw(in.score, models.FactorSectionLCompliance)
				if !ok {
					return false, "no score on file to verify compliance"
				}
				if raw < 70 {
					return false, fmt.Sprintf("Section L compliance score %.0f is below 70", raw)
				}
				return true, ""
			},
		},
		{
			name:        "graphics_placed",
			description: "Key graphics included",
			category:    "visuals",
			weight:      0.15,
			check: func(in checkInput) (bool, string) {
				body := strings.ToLower(bodyText(in.content))
				if strings.Contains(body, "figure") || strings.Contains(body, "exhibit") {
					return true, ""
				}
				return false, "no figures or exhibits referenced"
			},
		},
		{
			name:        "past_performance_included",
			description: "Past performance examples documented",
			category:    "content",
			weight:      0.2,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				if findSection(in.content, "past performance") == nil {
					return false, "past performance section is missing"
				}
				return true, ""
			},
		},
	},
	models.TeamGold: {
		{
			name:        "all_sections_final",
			description: "All sections marked final",
			category:    "content",
			weight:      0.3,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				for _, required := range requiredDraftSections {
					s := findSection(in.content, required)
					if s == nil || s.WordCount < 300 {
						return false, fmt.Sprintf("section %q is not at final depth", required)
					}
				}
				return true, ""
			},
		},
		{
			name:        "compliance_complete",
			description: "100% compliance verified",
			category:    "compliance",
			weight:      0.3,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				raw, ok := factorRaw(in.score, models.FactorSectionLCompliance)
				if !ok {
					return false, "no score on file to verify compliance"
				}
				if raw < 90 {
					return false, fmt.Sprintf("Section L compliance score %.0f is below 90", raw)
				}
				return true, ""
			},
		},
		{
			name:        "pricing_complete",
			description: "Pricing volume complete",
			category:    "pricing",
			weight:      0.2,
			check: func(in checkInput) (bool, string) {
				if findSection(in.content, "pricing") != nil || findSection(in.content, "cost") != nil {
					return true, ""
				}
				return false, "no pricing or cost volume found"
			},
		},
		{
			name:        "all_reviews_addressed",
			description: "All review comments addressed",
			category:    "quality",
			weight:      0.2,
			check: func(in checkInput) (bool, string) {
				if in.score == nil {
					return false, "no score on file"
				}
				if in.score.OverallScore < 70 {
					return false, fmt.Sprintf("overall score %d indicates unresolved review findings", in.score.OverallScore)
				}
				return true, ""
			},
		},
	},
	models.TeamSubmission: {
		{
			name:        "all_gold_criteria",
			description: "All Gold Team criteria met",
			category:    "prerequisite",
			weight:      0.4,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				gold, ok := in.prior[models.TeamGold]
				if !ok {
					return false, "gold team review has not been checked"
				}
				if len(gold.Blockers) > 0 {
					return false, fmt.Sprintf("gold team has %d outstanding blockers", len(gold.Blockers))
				}
				if gold.Level == models.ReadinessNotReady {
					return false, "gold team verdict is not_ready"
				}
				return true, ""
			},
		},
		{
			name:        "format_verified",
			description: "Format requirements verified",
			category:    "compliance",
			weight:      0.25,
			hard:        true,
			check: func(in checkInput) (bool, string) {
				raw, ok := factorRaw(in.score, models.FactorSectionLCompliance)
				if !ok {
					return false, "no score on file to verify format compliance"
				}
				if raw < 90 {
					return false, fmt.Sprintf("Section L compliance score %.0f is below 90", raw)
				}
				return true, ""
			},
		},
		{
			name:        "signatures_obtained",
			description: "Required signatures obtained",
			category:    "administrative",
			weight:      0.15,
			check: func(in checkInput) (bool, string) {
				body := strings.ToLower(bodyText(in.content))
				if strings.Contains(body, "signature") || strings.Contains(body, "signed") {
					return true, ""
				}
				return false, "no signature pages referenced"
			},
		},
		{
			name:        "submission_package_ready",
			description: "Submission package assembled",
			category:    "administrative",
			weight:      0.2,
			check: func(in checkInput) (bool, string) {
				if in.score == nil {
					return false, "no score on file"
				}
				for _, required := range requiredDraftSections {
					if findSection(in.content, required) == nil {
						return false, fmt.Sprintf("package is missing %q", required)
					}
				}
				return true, ""
			},
		},
	},
}

func findSection(content *models.ProposalContent, titleFragment string) *models.ProposalSection {
	for i := range content.Sections {
		s := &content.Sections[i]
		if strings.Contains(strings.ToLower(s.Title), titleFragment) && strings.TrimSpace(s.Content) != "" {
			return s
		}
	}
	return nil
}

func bodyText(content *models.ProposalContent) string {
	var b strings.Builder
	for _, s := range content.Sections {
		b.WriteString(s.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func factorRaw(score *models.ProposalScore, ft models.FactorType) (float64, bool) {
	if score == nil {
		return 0, false
	}
	f := score.Factor(ft)
	if f == nil {
		return 0, false
	}
	return f.RawScore, true
}
