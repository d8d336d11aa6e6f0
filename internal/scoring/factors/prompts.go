// internal/scoring/factors/prompts.go
package factors

import (
	"fmt"
	"strings"

	"proposal-workers/internal/models"
)

// PromptTemplate pairs a fixed rubric system prompt with a user prompt
// builder that folds in the proposal under evaluation.
type PromptTemplate struct {
	Name         string
	Category     string
	SystemPrompt string
	BuildUser    func(content *models.ProposalContent, org *models.OrgProfile) string
}

const scoreResponseSchema = `Provide your response as JSON with:
{
    "score": <0-100>,
    "evidence": "<brief summary of what you found>",
    "improvements": [
        {"action": "<specific action>", "details": "<explanation>", "priority": "high|medium|low"}
    ]
}`

var completenessScorer = PromptTemplate{
	Name:     "completeness_scorer",
	Category: "scoring",
	SystemPrompt: `You are evaluating proposal completeness for government contract proposals.

Score from 0-100 based on:
- All expected sections present (Executive Summary, Technical, Management, etc.)
- Each section has substantive content (not placeholder text)
- Word counts are appropriate for section type
- No obvious gaps or "TBD" markers
- Required attachments referenced

` + scoreResponseSchema + `

Be objective. Missing sections = major deductions. Placeholder text = significant deductions.`,
	BuildUser: func(content *models.ProposalContent, org *models.OrgProfile) string {
		return fmt.Sprintf(`Evaluate completeness of this proposal:

Title: %s

Sections:
%s

Expected sections for this proposal type:
- Executive Summary
- Technical Approach
- Management Approach
- Past Performance
- Staffing Plan
- Quality Control
- Cost/Price Volume (if applicable)

Evaluate and score the completeness.`, content.Title, sectionsSummary(content))
	},
}

var technicalDepthScorer = PromptTemplate{
	Name:     "technical_depth_scorer",
	Category: "scoring",
	SystemPrompt: `You are evaluating technical depth and specificity in proposal content.

Score from 0-100 based on:
- Specific technical approaches (not generic statements)
- Concrete methodologies and processes
- Relevant technical details that show understanding
- Appropriate use of technical terminology
- Clear connection between approach and requirements

Deduct points for:
- Vague language ("best practices", "industry standard", "as needed")
- Generic boilerplate that could apply to any proposal
- Lack of specifics about tools, technologies, or methods

` + scoreResponseSchema + `

Focus on substance over length. Specific details matter more than word count.`,
	BuildUser: func(content *models.ProposalContent, org *models.OrgProfile) string {
		return fmt.Sprintf(`Evaluate technical depth of this proposal content:

%s

Requirements context:
%s

Offeror context:
%s

Evaluate the technical depth and specificity.`, sectionsText(content), content.SOWExcerpt, BuildOrgContext(org))
	},
}

var complianceScorer = PromptTemplate{
	Name:     "compliance_scorer",
	Category: "scoring",
	SystemPrompt: `You are evaluating Section L (instructions) compliance for proposals.

Score from 0-100 based on:
- Format requirements met (page limits, margins, fonts)
- All required elements addressed
- Proper organization as specified
- Required certifications/representations included
- Submission requirements understood

` + scoreResponseSchema + `

Non-compliance can result in proposal rejection, so this is critical.`,
	BuildUser: func(content *models.ProposalContent, org *models.OrgProfile) string {
		return fmt.Sprintf(`Evaluate Section L compliance for this proposal:

Instructions (Section L):
%s

Proposal structure:
%s

Check compliance with all instructions.`, content.SectionLExcerpt, sectionsSummary(content))
	},
}

var sectionMScorer = PromptTemplate{
	Name:     "section_m_scorer",
	Category: "scoring",
	SystemPrompt: `You are evaluating proposal alignment with Section M (evaluation criteria).

Score from 0-100 based on:
- Each evaluation factor explicitly addressed
- Content organized to highlight evaluation criteria
- Discriminators clearly presented
- Win themes aligned with evaluation priorities
- Relative emphasis matches factor weights

` + scoreResponseSchema + `

Strong proposals make it easy for evaluators to find what they're looking for.`,
	BuildUser: func(content *models.ProposalContent, org *models.OrgProfile) string {
		return fmt.Sprintf(`Evaluate alignment with evaluation criteria:

Evaluation Criteria (Section M):
%s

Proposal content:
%s

Assess how well the proposal addresses each evaluation factor.`, content.SectionMExcerpt, sectionsText(content))
	},
}

var sowCoverageScorer = PromptTemplate{
	Name:     "sow_coverage_scorer",
	Category: "scoring",
	SystemPrompt: `You are evaluating how completely a proposal covers the Statement of Work.

Score from 0-100 based on:
- Every SOW task and deliverable addressed somewhere in the proposal
- Coverage is substantive, not a restated requirement
- Task-to-section traceability is evident
- No SOW elements silently skipped

` + scoreResponseSchema + `

Uncovered SOW tasks are the single largest deduction.`,
	BuildUser: func(content *models.ProposalContent, org *models.OrgProfile) string {
		return fmt.Sprintf(`Evaluate SOW coverage for this proposal:

Statement of Work:
%s

Proposal content:
%s

Identify covered and uncovered SOW elements, then score coverage.`, content.SOWExcerpt, sectionsText(content))
	},
}

var ppMappingScorer = PromptTemplate{
	Name:     "pp_mapping_scorer",
	Category: "scoring",
	SystemPrompt: `You are evaluating how well a proposal maps past performance to the current requirement.

Score from 0-100 based on:
- Each cited contract drawn into explicit parallel with the current scope
- Quantified outcomes (budget, schedule, quality metrics)
- Ratings and references included where available
- Most relevant work presented first

` + scoreResponseSchema + `

Relevance beats volume: one well-mapped contract outscores five unmapped ones.`,
	BuildUser: func(content *models.ProposalContent, org *models.OrgProfile) string {
		return fmt.Sprintf(`Evaluate past-performance mapping for this proposal:

Proposal content:
%s

Offeror context:
%s

Assess how directly past work is mapped onto the current requirement.`, sectionsText(content), BuildOrgContext(org))
	},
}

// goNoGoAnalyzer is registered for future AI-assisted summaries; the decision
// table itself stays deterministic.
var goNoGoAnalyzer = PromptTemplate{
	Name:     "go_nogo_analyzer",
	Category: "scoring",
	SystemPrompt: `Generate a go/no-go recommendation summary for proposal submission.

Consider:
- Overall score and factor breakdown
- Readiness indicators
- Blockers and risks
- Time remaining before deadline

Provide your response as JSON with:
{
    "recommendation": "Proceed|Proceed with caution|Do not proceed",
    "key_strengths": ["<strength>"],
    "key_risks": ["<risk>"],
    "next_steps": ["<action item>"],
    "summary": "<2-3 sentence executive summary>"
}

Be decisive but balanced. Executives need clear guidance.`,
	BuildUser: func(content *models.ProposalContent, org *models.OrgProfile) string {
		return fmt.Sprintf("Generate go/no-go recommendation for proposal %q.", content.Title)
	},
}

// factorTemplates maps each scoring factor to its rubric template.
var factorTemplates = map[models.FactorType]PromptTemplate{
	models.FactorCompleteness:       completenessScorer,
	models.FactorTechnicalDepth:     technicalDepthScorer,
	models.FactorSectionLCompliance: complianceScorer,
	models.FactorSectionMAlignment:  sectionMScorer,
	models.FactorSOWCoverage:        sowCoverageScorer,
	models.FactorPPMapping:          ppMappingScorer,
}

// Templates is the full registry by template name.
var Templates = map[string]PromptTemplate{
	completenessScorer.Name:   completenessScorer,
	technicalDepthScorer.Name: technicalDepthScorer,
	complianceScorer.Name:     complianceScorer,
	sectionMScorer.Name:       sectionMScorer,
	sowCoverageScorer.Name:    sowCoverageScorer,
	ppMappingScorer.Name:      ppMappingScorer,
	goNoGoAnalyzer.Name:       goNoGoAnalyzer,
}

// TemplateFor returns the rubric template for a factor.
func TemplateFor(factor models.FactorType) (PromptTemplate, bool) {
	tpl, ok := factorTemplates[factor]
	return tpl, ok
}

// BuildOrgContext renders the organization capability block folded into AI
// prompts so scoring reflects the actual offeror.
func BuildOrgContext(org *models.OrgProfile) string {
	if org == nil {
		return "Organization: unknown"
	}
	parts := []string{fmt.Sprintf("Organization: %s", org.Name)}
	if len(org.NAICSCodes) > 0 {
		parts = append(parts, fmt.Sprintf("NAICS: %s", strings.Join(org.NAICSCodes, ", ")))
	}
	if len(org.Certifications) > 0 {
		parts = append(parts, fmt.Sprintf("Certifications: %s", strings.Join(org.Certifications, ", ")))
	}
	if len(org.CoreCapabilities) > 0 {
		caps := org.CoreCapabilities
		if len(caps) > 10 {
			caps = caps[:10]
		}
		parts = append(parts, "Key Capabilities:\n- "+strings.Join(caps, "\n- "))
	}
	if org.PastAwards > 0 {
		parts = append(parts, fmt.Sprintf("Past Awards: %d", org.PastAwards))
	}
	return strings.Join(parts, "\n")
}

func sectionsSummary(content *models.ProposalContent) string {
	if len(content.Sections) == 0 {
		return "(no sections)"
	}
	var b strings.Builder
	for _, s := range content.Sections {
		fmt.Fprintf(&b, "- %s (%d words)\n", s.Title, s.WordCount)
	}
	return b.String()
}

func sectionsText(content *models.ProposalContent) string {
	if len(content.Sections) == 0 {
		return "(no content)"
	}
	var b strings.Builder
	for _, s := range content.Sections {
		fmt.Fprintf(&b, "## %s\n%s\n\n", s.Title, s.Content)
	}
	return b.String()
}
