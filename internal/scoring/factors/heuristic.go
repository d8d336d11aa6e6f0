// internal/scoring/factors/heuristic.go
package factors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"proposal-workers/internal/models"
)

// FloorScore is the score every heuristic rule bottoms out at when there is
// nothing useful to analyze. A raw score sitting exactly on the floor is a
// signal the evaluation had no real evidence, which the confidence policy
// reads.
const FloorScore = 50.0

// IsFloorScore reports whether a raw score equals a heuristic floor.
func IsFloorScore(score float64) bool {
	return score == FloorScore
}

// HeuristicEvaluator is the deterministic fallback path: required-section
// presence, length thresholds, keyword checks. Never errors, so the engine
// degrades instead of failing closed.
type HeuristicEvaluator struct{}

func NewHeuristicEvaluator() *HeuristicEvaluator {
	return &HeuristicEvaluator{}
}

var requiredSections = []string{
	"executive summary",
	"technical approach",
	"management approach",
	"past performance",
}

var vaguePhrases = []string{
	"best practices",
	"industry standard",
	"as needed",
	"as appropriate",
	"state-of-the-art",
	"cutting-edge",
	"world-class",
}

var specificityMarkers = []string{
	"methodology", "framework", "iso", "nist", "cmmi", "pmbok", "itil",
	"agile", "sla", "milestone", "deliverable", "far ", "dfar",
}

func (e *HeuristicEvaluator) Evaluate(_ context.Context, factor models.FactorType, content *models.ProposalContent, org *models.OrgProfile) (*Result, error) {
	if content == nil || !content.HasContent() {
		return &Result{
			RawScore: FloorScore,
			Evidence: "No proposal content available for analysis",
			Improvements: []models.Suggestion{
				{Action: "Provide proposal content", Details: "Submit proposal sections for scoring", Priority: "high"},
			},
		}, nil
	}

	switch factor {
	case models.FactorCompleteness:
		return e.scoreCompleteness(content), nil
	case models.FactorTechnicalDepth:
		return e.scoreTechnicalDepth(content), nil
	case models.FactorSectionLCompliance:
		return e.scoreCompliance(content), nil
	case models.FactorSectionMAlignment:
		return e.scoreAlignment(content, content.SectionMExcerpt, "evaluation criteria"), nil
	case models.FactorSOWCoverage:
		return e.scoreAlignment(content, content.SOWExcerpt, "statement of work"), nil
	case models.FactorPPMapping:
		return e.scorePastPerformance(content, org), nil
	default:
		return &Result{
			RawScore: FloorScore,
			Evidence: fmt.Sprintf("No heuristic rule for factor %s", factor),
		}, nil
	}
}

func (e *HeuristicEvaluator) scoreCompleteness(content *models.ProposalContent) *Result {
	var present, missing []string
	for _, required := range requiredSections {
		if sectionWithContent(content, required) != nil {
			present = append(present, required)
		} else {
			missing = append(missing, required)
		}
	}

	score := float64(len(present)) / float64(len(requiredSections)) * 100

	var improvements []models.Suggestion
	for _, m := range missing {
		improvements = append(improvements, models.Suggestion{
			Action:   "Add " + titleCase(m),
			Details:  "This required section is missing",
			Priority: "high",
		})
	}

	return &Result{
		RawScore:     score,
		Evidence:     fmt.Sprintf("Found %d of %d required sections", len(present), len(requiredSections)),
		Improvements: improvements,
	}
}

func (e *HeuristicEvaluator) scoreTechnicalDepth(content *models.ProposalContent) *Result {
	tech := sectionWithContent(content, "technical")
	if tech == nil {
		return &Result{
			RawScore: FloorScore,
			Evidence: "No technical section found",
			Improvements: []models.Suggestion{
				{Action: "Add Technical Approach", Details: "Technical volume is missing entirely", Priority: "high"},
			},
		}
	}

	lower := strings.ToLower(tech.Content)
	score := 60.0

	if tech.WordCount >= 800 {
		score += 10
	} else if tech.WordCount < 300 {
		score -= 15
	}

	specifics := 0
	for _, marker := range specificityMarkers {
		if strings.Contains(lower, marker) {
			specifics++
		}
	}
	score += float64(min(specifics, 6)) * 5

	vague := 0
	for _, phrase := range vaguePhrases {
		vague += strings.Count(lower, phrase)
	}
	score -= float64(min(vague, 5)) * 4

	score = clampScore(score)

	var improvements []models.Suggestion
	if specifics < 3 {
		improvements = append(improvements, models.Suggestion{
			Action:   "Add specific methodologies",
			Details:  "Replace generic statements with named tools, frameworks, and standards",
			Priority: "medium",
		})
	}
	if vague > 0 {
		improvements = append(improvements, models.Suggestion{
			Action:   "Remove vague language",
			Details:  fmt.Sprintf("Found %d vague phrases; state concrete approaches instead", vague),
			Priority: "medium",
		})
	}

	return &Result{
		RawScore: score,
		Evidence: fmt.Sprintf("Technical section has %d words, %d specificity markers, %d vague phrases",
			tech.WordCount, specifics, vague),
		Improvements: improvements,
	}
}

func (e *HeuristicEvaluator) scoreCompliance(content *models.ProposalContent) *Result {
	if strings.TrimSpace(content.SectionLExcerpt) == "" {
		return &Result{
			RawScore: FloorScore,
			Evidence: "No Section L instructions on file to check compliance against",
			Improvements: []models.Suggestion{
				{Action: "Attach Section L instructions", Details: "Compliance cannot be checked without the solicitation instructions", Priority: "high"},
			},
		}
	}

	score := 60.0
	var notes []string

	structured := 0
	for _, s := range content.Sections {
		if strings.Contains(s.Content, "##") || strings.Contains(s.Content, "1.") {
			structured++
		}
	}
	if len(content.Sections) > 0 && structured == len(content.Sections) {
		score += 15
		notes = append(notes, "all sections use structured headings")
	}

	lowerAll := strings.ToLower(allText(content))
	if strings.Contains(lowerAll, strings.ToLower(content.SolicitationNum)) && content.SolicitationNum != "" {
		score += 10
		notes = append(notes, "solicitation number referenced")
	}
	if strings.Contains(lowerAll, "certification") || strings.Contains(lowerAll, "representation") {
		score += 10
		notes = append(notes, "certifications/representations referenced")
	}

	score = clampScore(score)

	var improvements []models.Suggestion
	if score < 80 {
		improvements = append(improvements, models.Suggestion{
			Action:   "Verify page limits",
			Details:  "Confirm all sections are within specified page limits",
			Priority: "high",
		})
	}

	evidence := "Structural compliance checks applied"
	if len(notes) > 0 {
		evidence = "Compliance signals: " + strings.Join(notes, "; ")
	}
	return &Result{RawScore: score, Evidence: evidence, Improvements: improvements}
}

// scoreAlignment measures term overlap between a solicitation excerpt and the
// proposal body. Shared for Section M alignment and SOW coverage.
func (e *HeuristicEvaluator) scoreAlignment(content *models.ProposalContent, excerpt, label string) *Result {
	if strings.TrimSpace(excerpt) == "" {
		return &Result{
			RawScore: FloorScore,
			Evidence: fmt.Sprintf("No %s on file to align against", label),
			Improvements: []models.Suggestion{
				{Action: "Attach " + label, Details: "Alignment cannot be measured without the source text", Priority: "high"},
			},
		}
	}

	terms := significantTerms(excerpt)
	if len(terms) == 0 {
		return &Result{
			RawScore: FloorScore,
			Evidence: fmt.Sprintf("The %s excerpt contains no checkable terms", label),
		}
	}

	body := strings.ToLower(allText(content))
	covered := 0
	for _, term := range terms {
		if strings.Contains(body, term) {
			covered++
		}
	}

	score := clampScore(float64(covered) / float64(len(terms)) * 100)

	var improvements []models.Suggestion
	if score < 70 {
		improvements = append(improvements, models.Suggestion{
			Action:   "Align content with " + label,
			Details:  "Reorganize content to explicitly address each element of the " + label,
			Priority: "high",
		})
	}

	return &Result{
		RawScore:     score,
		Evidence:     fmt.Sprintf("Proposal addresses %d of %d key terms from the %s", covered, len(terms), label),
		Improvements: improvements,
	}
}

func (e *HeuristicEvaluator) scorePastPerformance(content *models.ProposalContent, org *models.OrgProfile) *Result {
	pp := sectionWithContent(content, "past performance")
	if pp == nil {
		return &Result{
			RawScore: FloorScore,
			Evidence: "No past performance section found",
			Improvements: []models.Suggestion{
				{Action: "Add Past Performance", Details: "Document relevant contracts with quantified outcomes", Priority: "high"},
			},
		}
	}

	score := 60.0
	lower := strings.ToLower(pp.Content)
	if strings.Contains(lower, "$") || strings.Contains(lower, "contract") {
		score += 10
	}
	if strings.Contains(lower, "%") {
		score += 10
	}
	if org != nil && org.PastAwards > 0 {
		score += float64(min(org.PastAwards, 4)) * 5
	}

	score = clampScore(score)

	var improvements []models.Suggestion
	if score < 80 {
		improvements = append(improvements, models.Suggestion{
			Action:   "Quantify past performance outcomes",
			Details:  "Add contract values, ratings, and measurable results for each cited contract",
			Priority: "medium",
		})
	}

	return &Result{
		RawScore:     score,
		Evidence:     fmt.Sprintf("Past performance section present with %d words", pp.WordCount),
		Improvements: improvements,
	}
}

func sectionWithContent(content *models.ProposalContent, titleFragment string) *models.ProposalSection {
	for i := range content.Sections {
		s := &content.Sections[i]
		if strings.Contains(strings.ToLower(s.Title), titleFragment) && strings.TrimSpace(s.Content) != "" {
			return s
		}
	}
	return nil
}

func allText(content *models.ProposalContent) string {
	var b strings.Builder
	for _, s := range content.Sections {
		b.WriteString(s.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// significantTerms extracts the distinct long words of an excerpt, capped so
// overlap stays cheap to compute.
func significantTerms(text string) []string {
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:()[]\"'")
		if len(word) < 6 {
			continue
		}
		seen[word] = struct{}{}
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) > 40 {
		terms = terms[:40]
	}
	return terms
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
