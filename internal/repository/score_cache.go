// internal/repository/score_cache.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"proposal-workers/internal/models"
)

// ScoreCache keeps the latest score snapshot per proposal in Redis so score
// reads and go/no-go assembly skip the database on the hot path. Writes go
// through SaveScore first; the cache is invalidated-then-set, never the
// source of truth.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{client: client, ttl: ttl}
}

func scoreKey(proposalID string) string {
	return fmt.Sprintf("score:latest:%s", proposalID)
}

// Get returns the cached latest snapshot, or (nil, nil) on a miss. Cache
// errors degrade to a miss; the caller falls back to the database.
func (c *ScoreCache) Get(ctx context.Context, proposalID string) (*models.ProposalScore, error) {
	data, err := c.client.Get(ctx, scoreKey(proposalID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("score cache get: %w", err)
	}

	var score models.ProposalScore
	if err := json.Unmarshal(data, &score); err != nil {
		// A corrupt entry is as good as a miss.
		c.client.Del(ctx, scoreKey(proposalID))
		return nil, nil
	}
	return &score, nil
}

// Set stores the snapshot with the configured TTL.
func (c *ScoreCache) Set(ctx context.Context, score *models.ProposalScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("score cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, scoreKey(score.ProposalID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("score cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot, typically right before a new one is
// persisted.
func (c *ScoreCache) Invalidate(ctx context.Context, proposalID string) error {
	if err := c.client.Del(ctx, scoreKey(proposalID)).Err(); err != nil {
		return fmt.Errorf("score cache invalidate: %w", err)
	}
	return nil
}
