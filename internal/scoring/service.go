// internal/scoring/service.go

// Package scoring implements the proposal scoring engine: weighted factor
// evaluation with AI and heuristic paths, snapshot aggregation, improvement
// ranking, and the per-proposal calculation coordinator.
package scoring

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/models"
	"proposal-workers/internal/scoring/factors"
	"proposal-workers/internal/scoring/keyedmutex"
)

var (
	// ErrNoContent means the proposal has nothing to score at all. The only
	// whole-calculation failure that reaches callers.
	ErrNoContent = errors.New("proposal has no content to score")

	// ErrCalculationInFlight is returned to non-waiting callers when another
	// calculation already holds the proposal's lock.
	ErrCalculationInFlight = errors.New("score calculation already in flight for proposal")
)

// ScoreStore is the persistence surface the engine needs.
type ScoreStore interface {
	SaveScore(ctx context.Context, score *models.ProposalScore) error
	LatestScore(ctx context.Context, proposalID string) (*models.ProposalScore, error)
	ScoreHistory(ctx context.Context, proposalID string, limit int) ([]models.ProposalScore, error)
}

// ScoreCacher fronts the store for latest-score reads. May be nil.
type ScoreCacher interface {
	Get(ctx context.Context, proposalID string) (*models.ProposalScore, error)
	Set(ctx context.Context, score *models.ProposalScore) error
	Invalidate(ctx context.Context, proposalID string) error
}

// ContentProvider supplies proposal content and organization context.
type ContentProvider interface {
	GetContent(ctx context.Context, proposalID string) (*models.ProposalContent, error)
	GetOrgProfile(ctx context.Context, organizationID string) (*models.OrgProfile, error)
}

// Options bound one Calculate call.
type Options struct {
	Force bool // recompute even when a snapshot exists
	Wait  bool // block on an in-flight calculation instead of failing fast
}

// Service is the score aggregator plus coordinator. At most one calculation
// runs per proposal at any time.
type Service struct {
	store     ScoreStore
	cache     ScoreCacher
	content   ContentProvider
	ai        factors.Evaluator
	heuristic factors.Evaluator

	locks         *keyedmutex.Arena
	factorTimeout time.Duration
	calcTimeout   time.Duration
	log           logger.Logger
	now           func() time.Time
}

func NewService(store ScoreStore, cache ScoreCacher, content ContentProvider, ai factors.Evaluator, factorTimeout, calcTimeout time.Duration, log logger.Logger) *Service {
	return &Service{
		store:         store,
		cache:         cache,
		content:       content,
		ai:            ai,
		heuristic:     factors.NewHeuristicEvaluator(),
		locks:         keyedmutex.New(),
		factorTimeout: factorTimeout,
		calcTimeout:   calcTimeout,
		log:           log,
		now:           time.Now,
	}
}

// Calculate returns the proposal's score, computing a new snapshot when
// forced or when none exists. Concurrent calls for the same proposal are
// single-flight: waiters receive the winner's snapshot.
func (s *Service) Calculate(ctx context.Context, proposalID, requestedBy string, opts Options) (*models.ProposalScore, error) {
	if !opts.Force {
		if score, err := s.GetLatest(ctx, proposalID); err == nil && score != nil {
			metrics.ScoreCalculations.WithLabelValues("cached").Inc()
			return score, nil
		}
	}

	release, err := s.lock(ctx, proposalID, opts.Wait)
	if err != nil {
		metrics.ScoreCalculations.WithLabelValues("conflict").Inc()
		return nil, err
	}
	defer release()

	// Another caller may have finished while this one waited on the lock.
	if !opts.Force {
		if score, err := s.GetLatest(ctx, proposalID); err == nil && score != nil {
			metrics.ScoreCalculations.WithLabelValues("cached").Inc()
			return score, nil
		}
	}

	start := s.now()
	score, err := s.compute(ctx, proposalID, requestedBy)
	if err != nil {
		metrics.ScoreCalculations.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.ScoreCalculations.WithLabelValues("computed").Inc()
	metrics.ScoreCalculationDuration.Observe(time.Since(start).Seconds())

	return score, nil
}

// GetLatest reads the newest snapshot, cache first. Returns (nil, nil) when
// the proposal was never scored.
func (s *Service) GetLatest(ctx context.Context, proposalID string) (*models.ProposalScore, error) {
	if s.cache != nil {
		if score, err := s.cache.Get(ctx, proposalID); err == nil && score != nil {
			return score, nil
		}
	}

	score, err := s.store.LatestScore(ctx, proposalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, score); err != nil {
			s.log.Warn("score cache backfill failed", map[string]interface{}{
				"proposalId": proposalID, "error": err.Error(),
			})
		}
	}
	return score, nil
}

// GetHistory returns recent snapshots newest first plus the trend label.
func (s *Service) GetHistory(ctx context.Context, proposalID string, limit int) ([]models.ProposalScore, models.ScoreTrend, error) {
	history, err := s.store.ScoreHistory(ctx, proposalID, limit)
	if err != nil {
		return nil, models.TrendStable, err
	}
	return history, models.Trend(history), nil
}

func (s *Service) lock(ctx context.Context, proposalID string, wait bool) (func(), error) {
	if wait {
		return s.locks.Acquire(ctx, proposalID)
	}
	release, ok := s.locks.TryAcquire(proposalID)
	if !ok {
		return nil, ErrCalculationInFlight
	}
	return release, nil
}

type factorOutcome struct {
	factor   models.FactorType
	weight   float64
	result   *factors.Result
	fellBack bool
}

func (s *Service) compute(ctx context.Context, proposalID, requestedBy string) (*models.ProposalScore, error) {
	ctx, cancel := context.WithTimeout(ctx, s.calcTimeout)
	defer cancel()

	content, err := s.content.GetContent(ctx, proposalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoContent
	}
	if err != nil {
		return nil, err
	}
	if !content.HasContent() {
		return nil, ErrNoContent
	}

	org, err := s.content.GetOrgProfile(ctx, content.OrganizationID)
	if err != nil {
		// Org context only enriches prompts; scoring proceeds without it.
		org = nil
	}

	weights := content.ActiveWeights()
	if err := models.ValidateWeights(weights); err != nil {
		return nil, err
	}

	outcomes := s.evaluateAll(ctx, weights, content, org)

	// Cancellation must not produce a partial snapshot.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	score := s.aggregate(proposalID, content.OrganizationID, requestedBy, outcomes)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, proposalID); err != nil {
			s.log.Warn("score cache invalidation failed", map[string]interface{}{
				"proposalId": proposalID, "error": err.Error(),
			})
		}
	}
	if err := s.store.SaveScore(ctx, score); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, score); err != nil {
			s.log.Warn("score cache set failed", map[string]interface{}{
				"proposalId": proposalID, "error": err.Error(),
			})
		}
	}

	s.log.Info("score calculated", map[string]interface{}{
		"proposalId":   proposalID,
		"overallScore": score.OverallScore,
		"confidence":   string(score.ConfidenceLevel),
		"factors":      len(score.Factors),
	})
	return score, nil
}

// evaluateAll fans out one goroutine per factor. AI error or timeout per
// factor degrades to the heuristic path rather than failing the calculation.
func (s *Service) evaluateAll(ctx context.Context, weights map[models.FactorType]float64, content *models.ProposalContent, org *models.OrgProfile) []factorOutcome {
	types := models.SortedFactorTypes(weights)
	outcomes := make([]factorOutcome, len(types))

	var wg sync.WaitGroup
	for i, factorType := range types {
		wg.Add(1)
		go func(i int, ft models.FactorType) {
			defer wg.Done()
			outcomes[i] = s.evaluateOne(ctx, ft, weights[ft], content, org)
		}(i, factorType)
	}
	wg.Wait()

	return outcomes
}

func (s *Service) evaluateOne(ctx context.Context, ft models.FactorType, weight float64, content *models.ProposalContent, org *models.OrgProfile) factorOutcome {
	factorCtx, cancel := context.WithTimeout(ctx, s.factorTimeout)
	defer cancel()

	if s.ai != nil {
		result, err := s.ai.Evaluate(factorCtx, ft, content, org)
		if err == nil {
			metrics.FactorEvaluations.WithLabelValues(string(ft), "ai").Inc()
			return factorOutcome{factor: ft, weight: weight, result: result}
		}
		s.log.Warn("ai factor evaluation fell back to heuristic", map[string]interface{}{
			"factorType": string(ft),
			"proposalId": content.ProposalID,
			"error":      err.Error(),
		})
	}

	// The heuristic path never errors and never blocks on IO.
	result, _ := s.heuristic.Evaluate(ctx, ft, content, org)
	metrics.FactorEvaluations.WithLabelValues(string(ft), "heuristic").Inc()
	return factorOutcome{factor: ft, weight: weight, result: result, fellBack: true}
}

func (s *Service) aggregate(proposalID, organizationID, requestedBy string, outcomes []factorOutcome) *models.ProposalScore {
	var weightedSum float64
	scoreFactors := make([]models.ScoreFactor, 0, len(outcomes))
	var modelUsed *string

	for _, o := range outcomes {
		raw := math.Round(o.result.RawScore*10) / 10
		weighted := raw * o.weight
		weightedSum += weighted

		scoreFactors = append(scoreFactors, models.ScoreFactor{
			ID:                     uuid.New().String(),
			FactorType:             o.factor,
			FactorWeight:           o.weight,
			RawScore:               raw,
			WeightedScore:          weighted,
			EvidenceSummary:        o.result.Evidence,
			ImprovementSuggestions: o.result.Improvements,
		})
		if o.result.ModelUsed != "" && modelUsed == nil {
			m := o.result.ModelUsed
			modelUsed = &m
		}
	}

	overall := int(math.Round(weightedSum))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	return &models.ProposalScore{
		ID:              uuid.New().String(),
		ProposalID:      proposalID,
		OrganizationID:  organizationID,
		ScoreDate:       s.now().UTC(),
		OverallScore:    overall,
		ConfidenceLevel: confidenceFor(outcomes),
		AIModelUsed:     modelUsed,
		CreatedBy:       requestedBy,
		Factors:         scoreFactors,
	}
}

// confidenceFor is the whole confidence policy in one place so it stays easy
// to tune.
func confidenceFor(outcomes []factorOutcome) models.ConfidenceLevel {
	fallbacks := 0
	floorHit := false
	emptyEvidence := false
	for _, o := range outcomes {
		if o.fellBack {
			fallbacks++
		}
		if factors.IsFloorScore(o.result.RawScore) {
			floorHit = true
		}
		if o.result.Evidence == "" {
			emptyEvidence = true
		}
	}

	switch {
	case fallbacks*2 > len(outcomes) || floorHit:
		return models.ConfidenceLow
	case fallbacks > 0 || emptyEvidence:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceHigh
	}
}
