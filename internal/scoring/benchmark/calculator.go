// internal/scoring/benchmark/calculator.go

// Package benchmark positions a proposal's latest score against the latest
// scores of its organizational peers.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/models"
)

// ErrNotScored means the proposal has no snapshot to benchmark.
var ErrNotScored = errors.New("proposal has no score to benchmark")

// MinPopulation is the default peer count below which percentile and average
// are withheld rather than reported with false precision.
const MinPopulation = 3

// ScoreReader supplies this proposal's latest snapshot and the peer
// population of latest scores in the same organization at the given
// lifecycle stages.
type ScoreReader interface {
	GetLatest(ctx context.Context, proposalID string) (*models.ProposalScore, error)
	LatestScoresForOrg(ctx context.Context, organizationID string, statuses []models.ProposalStatus) (map[string]int, error)
}

// StatusReader supplies the proposal's lifecycle stage, which fixes the
// status-equivalent comparison group.
type StatusReader interface {
	GetStatus(ctx context.Context, proposalID string) (models.ProposalStatus, error)
}

// BenchmarkStore appends benchmark rows for trend display.
type BenchmarkStore interface {
	SaveBenchmark(ctx context.Context, b *models.Benchmark) error
}

// Calculator computes organizational percentile benchmarks.
type Calculator struct {
	scores        ScoreReader
	statuses      StatusReader
	store         BenchmarkStore
	minPopulation int
	log           logger.Logger
	now           func() time.Time
}

func NewCalculator(scores ScoreReader, statuses StatusReader, store BenchmarkStore, minPopulation int, log logger.Logger) *Calculator {
	if minPopulation <= 0 {
		minPopulation = MinPopulation
	}
	return &Calculator{
		scores:        scores,
		statuses:      statuses,
		store:         store,
		minPopulation: minPopulation,
		log:           log,
		now:           time.Now,
	}
}

// Calculate benchmarks the proposal against the latest scores of every other
// proposal in its organization that reached at least the same lifecycle
// stage. A small population yields nil percentile and average, not an error.
func (c *Calculator) Calculate(ctx context.Context, proposalID string) (*models.Benchmark, error) {
	score, err := c.scores.GetLatest(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load latest score: %w", err)
	}
	if score == nil {
		return nil, ErrNotScored
	}

	status, err := c.statuses.GetStatus(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load proposal status: %w", err)
	}

	population, err := c.scores.LatestScoresForOrg(ctx, score.OrganizationID, models.StatusesAtOrAfter(status))
	if err != nil {
		return nil, fmt.Errorf("load org score population: %w", err)
	}
	// The proposal never competes against itself.
	delete(population, proposalID)

	factorScores := make(map[models.FactorType]float64, len(score.Factors))
	for _, f := range score.Factors {
		factorScores[f.FactorType] = f.RawScore
	}

	b := &models.Benchmark{
		ID:             uuid.New().String(),
		ProposalID:     proposalID,
		OrganizationID: score.OrganizationID,
		BenchmarkDate:  c.now().UTC(),
		OverallScore:   score.OverallScore,
		FactorScores:   factorScores,
		PopulationSize: len(population),
	}

	if len(population) >= c.minPopulation {
		percentile := Percentile(score.OverallScore, population)
		avg := mean(population)
		b.OrgPercentile = &percentile
		b.OrgAvgAtStage = &avg
	}

	if err := c.store.SaveBenchmark(ctx, b); err != nil {
		return nil, fmt.Errorf("persist benchmark: %w", err)
	}

	c.log.Info("benchmark calculated", map[string]interface{}{
		"proposalId":     proposalID,
		"populationSize": b.PopulationSize,
		"hasPercentile":  b.OrgPercentile != nil,
	})
	return b, nil
}

// Percentile is the midpoint percentile rank of score within the population:
// (below + 0.5*equal) / total * 100, rounded to the nearest integer. The
// midpoint tie handling is exact so results reproduce bit for bit.
func Percentile(score int, population map[string]int) int {
	if len(population) == 0 {
		return 0
	}
	below, equal := 0, 0
	for _, peer := range population {
		switch {
		case peer < score:
			below++
		case peer == score:
			equal++
		}
	}
	rank := (float64(below) + 0.5*float64(equal)) / float64(len(population)) * 100
	return int(math.Round(rank))
}

func mean(population map[string]int) float64 {
	sum := 0
	for _, peer := range population {
		sum += peer
	}
	return float64(sum) / float64(len(population))
}
