// internal/models/proposal.go
package models

import (
	"strings"
	"time"
)

// ProposalStatus is the proposal's lifecycle stage.
type ProposalStatus string

const (
	StatusDraft     ProposalStatus = "draft"
	StatusInReview  ProposalStatus = "in_review"
	StatusSubmitted ProposalStatus = "submitted"
	StatusAwarded   ProposalStatus = "awarded"
	StatusLost      ProposalStatus = "lost"
)

// stageRank orders the lifecycle. Awarded and lost are both terminal
// outcomes of a submitted proposal and rank together.
var stageRank = map[ProposalStatus]int{
	StatusDraft:     0,
	StatusInReview:  1,
	StatusSubmitted: 2,
	StatusAwarded:   3,
	StatusLost:      3,
}

// StatusesAtOrAfter returns the status-equivalent comparison group for
// benchmarking: every status whose stage is at least s's, so a submitted
// proposal is only compared against proposals that also reached submission.
// An unknown status ranks as draft and compares against everything.
func StatusesAtOrAfter(s ProposalStatus) []ProposalStatus {
	rank := stageRank[s]
	group := make([]ProposalStatus, 0, len(stageRank))
	for _, st := range []ProposalStatus{StatusDraft, StatusInReview, StatusSubmitted, StatusAwarded, StatusLost} {
		if stageRank[st] >= rank {
			group = append(group, st)
		}
	}
	return group
}

// ProposalSection is one authored chunk of the proposal volume.
type ProposalSection struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordCount int       `json:"wordCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProposalContent is the scoring engine's read model of a proposal: the
// authored sections plus the solicitation context the rubric needs.
type ProposalContent struct {
	ProposalID       string            `json:"proposalId"`
	OrganizationID   string            `json:"organizationId"`
	Title            string            `json:"title"`
	Status           ProposalStatus    `json:"status"`
	SolicitationNum  string            `json:"solicitationNumber"`
	Agency           string            `json:"agency"`
	DueDate          *time.Time        `json:"dueDate"`
	Sections         []ProposalSection `json:"sections"`
	SectionLExcerpt  string            `json:"sectionLExcerpt"` // instructions to offerors
	SectionMExcerpt  string            `json:"sectionMExcerpt"` // evaluation criteria
	SOWExcerpt       string            `json:"sowExcerpt"`      // statement of work, may be empty
	RequiresPastPerf bool              `json:"requiresPastPerformance"`
}

// HasContent reports whether at least one section carries non-blank text.
func (p *ProposalContent) HasContent() bool {
	for _, s := range p.Sections {
		if strings.TrimSpace(s.Content) != "" {
			return true
		}
	}
	return false
}

// TotalWords sums section word counts.
func (p *ProposalContent) TotalWords() int {
	total := 0
	for _, s := range p.Sections {
		total += s.WordCount
	}
	return total
}

// ActiveWeights picks the factor set the solicitation calls for: SOW coverage
// when a statement of work is present, past-performance mapping when the
// solicitation requires it, otherwise the default four factors.
func (p *ProposalContent) ActiveWeights() map[FactorType]float64 {
	if strings.TrimSpace(p.SOWExcerpt) != "" {
		return SOWScoreWeights
	}
	if p.RequiresPastPerf {
		return PPScoreWeights
	}
	return DefaultScoreWeights
}

// OrgProfile is the organization context block handed to AI evaluation so
// scoring reflects the bidder's actual capabilities.
type OrgProfile struct {
	OrganizationID   string   `json:"organizationId"`
	Name             string   `json:"name"`
	NAICSCodes       []string `json:"naicsCodes"`
	Certifications   []string `json:"certifications"` // e.g. 8(a), WOSB, HUBZone
	CoreCapabilities []string `json:"coreCapabilities"`
	PastAwards       int      `json:"pastAwards"`
}
