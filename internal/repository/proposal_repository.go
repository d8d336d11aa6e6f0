// internal/repository/proposal_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"proposal-workers/internal/models"
)

// ProposalRepository is the scoring engine's read side of proposal data: the
// authored sections plus the solicitation context the rubric needs.
type ProposalRepository struct {
	db *sql.DB
}

func NewProposalRepository(db *sql.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// GetContent loads the full scoring read model, or sql.ErrNoRows when the
// proposal does not exist.
func (r *ProposalRepository) GetContent(ctx context.Context, proposalID string) (*models.ProposalContent, error) {
	content := &models.ProposalContent{}
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.organization_id, p.title, p.status, p.solicitation_number,
		       p.agency, p.due_date, p.section_l_excerpt, p.section_m_excerpt,
		       p.sow_excerpt, p.requires_past_performance
		FROM proposals p
		WHERE p.id = $1`, proposalID).Scan(
		&content.ProposalID, &content.OrganizationID, &content.Title,
		&content.Status, &content.SolicitationNum, &content.Agency, &content.DueDate,
		&content.SectionLExcerpt, &content.SectionMExcerpt,
		&content.SOWExcerpt, &content.RequiresPastPerf,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, content, word_count, updated_at
		FROM proposal_sections
		WHERE proposal_id = $1
		ORDER BY position`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("query proposal sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ProposalSection
		if err := rows.Scan(&s.ID, &s.Title, &s.Content, &s.WordCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan proposal section: %w", err)
		}
		content.Sections = append(content.Sections, s)
	}
	return content, rows.Err()
}

// GetStatus returns the proposal's lifecycle stage, or sql.ErrNoRows when
// the proposal does not exist.
func (r *ProposalRepository) GetStatus(ctx context.Context, proposalID string) (models.ProposalStatus, error) {
	var status models.ProposalStatus
	err := r.db.QueryRowContext(ctx, `
		SELECT status FROM proposals WHERE id = $1`, proposalID).Scan(&status)
	if err != nil {
		return "", err
	}
	return status, nil
}

// GetOrgProfile loads the organization capability profile used to ground AI
// evaluation, or sql.ErrNoRows when unknown.
func (r *ProposalRepository) GetOrgProfile(ctx context.Context, organizationID string) (*models.OrgProfile, error) {
	profile := &models.OrgProfile{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, naics_codes, certifications, core_capabilities, past_awards
		FROM organizations
		WHERE id = $1`, organizationID).Scan(
		&profile.OrganizationID, &profile.Name,
		pq.Array(&profile.NAICSCodes), pq.Array(&profile.Certifications),
		pq.Array(&profile.CoreCapabilities), &profile.PastAwards,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
