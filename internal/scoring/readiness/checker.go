// internal/scoring/readiness/checker.go

// Package readiness implements the stage-gated readiness state machine for
// color-team reviews.
package readiness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/models"
)

// ErrInvalidTeamType is returned for a team outside the review sequence.
var ErrInvalidTeamType = errors.New("unknown readiness team type")

// IndicatorStore persists readiness checks.
type IndicatorStore interface {
	SaveIndicator(ctx context.Context, ind *models.ReadinessIndicator) error
	LatestIndicator(ctx context.Context, proposalID string, team models.TeamType) (*models.ReadinessIndicator, error)
	LatestIndicators(ctx context.Context, proposalID string) (map[models.TeamType]*models.ReadinessIndicator, error)
}

// ContentProvider supplies the proposal content a check evaluates.
type ContentProvider interface {
	GetContent(ctx context.Context, proposalID string) (*models.ProposalContent, error)
}

// ScoreReader reads the latest committed score snapshot. Returns (nil, nil)
// when the proposal was never scored.
type ScoreReader interface {
	GetLatest(ctx context.Context, proposalID string) (*models.ProposalScore, error)
}

// DefaultThresholds is the per-team readiness score floor below which a
// blocker-free check still lands on needs_work.
var DefaultThresholds = map[models.TeamType]int{
	models.TeamPink:       60,
	models.TeamRed:        70,
	models.TeamGold:       80,
	models.TeamSubmission: 90,
}

// Checker evaluates team gating criteria and persists the verdict.
type Checker struct {
	store      IndicatorStore
	content    ContentProvider
	scores     ScoreReader
	thresholds map[models.TeamType]int
	log        logger.Logger
	now        func() time.Time
}

func NewChecker(store IndicatorStore, content ContentProvider, scores ScoreReader, thresholds map[models.TeamType]int, log logger.Logger) *Checker {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	return &Checker{
		store:      store,
		content:    content,
		scores:     scores,
		thresholds: thresholds,
		log:        log,
		now:        time.Now,
	}
}

// Check evaluates the team's criteria table and appends a new indicator.
// With force=false, a stored verdict newer than both the proposal content
// and the latest score is returned as-is.
func (c *Checker) Check(ctx context.Context, proposalID string, team models.TeamType, checkedBy string, force bool) (*models.ReadinessIndicator, error) {
	if !models.ValidTeamType(team) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeamType, team)
	}

	content, err := c.content.GetContent(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load proposal content: %w", err)
	}

	score, err := c.scores.GetLatest(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load latest score: %w", err)
	}

	if !force {
		if stored := c.storedVerdict(ctx, proposalID, team, content, score); stored != nil {
			return stored, nil
		}
	}

	prior, err := c.store.LatestIndicators(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load prior indicators: %w", err)
	}

	indicator := c.evaluate(proposalID, team, checkedBy, checkInput{
		content: content,
		score:   score,
		prior:   prior,
	})

	if err := c.store.SaveIndicator(ctx, indicator); err != nil {
		return nil, fmt.Errorf("persist readiness indicator: %w", err)
	}

	c.log.Info("readiness checked", map[string]interface{}{
		"proposalId":     proposalID,
		"teamType":       string(team),
		"readinessLevel": string(indicator.Level),
		"readinessScore": indicator.ReadinessScore,
		"blockers":       len(indicator.Blockers),
		"warnings":       len(indicator.Warnings),
	})
	return indicator, nil
}

// Level returns the current state for one gate: pending when never checked.
func (c *Checker) Level(ctx context.Context, proposalID string, team models.TeamType) (models.ReadinessLevel, error) {
	ind, err := c.store.LatestIndicator(ctx, proposalID, team)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ReadinessPending, nil
	}
	if err != nil {
		return "", err
	}
	return ind.Level, nil
}

// AllLatest returns the latest indicator of every gate that was ever checked.
func (c *Checker) AllLatest(ctx context.Context, proposalID string) (map[models.TeamType]*models.ReadinessIndicator, error) {
	return c.store.LatestIndicators(ctx, proposalID)
}

// storedVerdict returns a reusable prior check, or nil when one must be
// recomputed. A verdict is reusable when nothing it depends on moved since.
func (c *Checker) storedVerdict(ctx context.Context, proposalID string, team models.TeamType, content *models.ProposalContent, score *models.ProposalScore) *models.ReadinessIndicator {
	stored, err := c.store.LatestIndicator(ctx, proposalID, team)
	if err != nil {
		return nil
	}
	for _, s := range content.Sections {
		if s.UpdatedAt.After(stored.CheckedAt) {
			return nil
		}
	}
	if score != nil && score.ScoreDate.After(stored.CheckedAt) {
		return nil
	}
	return stored
}

func (c *Checker) evaluate(proposalID string, team models.TeamType, checkedBy string, in checkInput) *models.ReadinessIndicator {
	criteria := teamCriteria[team]

	var blockers []models.BlockerItem
	var warnings []models.WarningItem
	var totalWeight, metWeight float64

	for _, cr := range criteria {
		totalWeight += cr.weight
		met, detail := cr.check(in)
		if met {
			metWeight += cr.weight
			continue
		}
		if cr.hard {
			blockers = append(blockers, models.BlockerItem{
				Category:    cr.category,
				Description: cr.description + ": " + detail,
				Section:     sectionHint(detail),
			})
		} else {
			warnings = append(warnings, models.WarningItem{
				Category:       cr.category,
				Description:    cr.description + ": " + detail,
				Recommendation: "Complete: " + cr.description,
			})
		}
	}

	// Sub-weighted average over only this team's criteria, so distinct teams
	// can disagree on the same proposal.
	readinessScore := 0
	if totalWeight > 0 {
		readinessScore = int(math.Round(metWeight / totalWeight * 100))
	}

	level := models.ReadinessReady
	switch {
	case len(blockers) > 0:
		level = models.ReadinessNotReady
	case len(warnings) > 0 || readinessScore < c.thresholds[team]:
		level = models.ReadinessNeedsWork
	}

	return &models.ReadinessIndicator{
		ID:             uuid.New().String(),
		ProposalID:     proposalID,
		TeamType:       team,
		ReadinessScore: readinessScore,
		Level:          level,
		Blockers:       blockers,
		Warnings:       warnings,
		CheckedAt:      c.now().UTC(),
		CheckedBy:      checkedBy,
	}
}

// sectionHint pulls a quoted section name out of a check detail when one is
// present, so blockers point reviewers at the right place.
func sectionHint(detail string) string {
	start := -1
	for i, r := range detail {
		if r == '"' {
			if start == -1 {
				start = i + 1
			} else {
				return detail[start:i]
			}
		}
	}
	return ""
}
