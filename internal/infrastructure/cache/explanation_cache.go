package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const explanationPrefix = "match:explanation:"

// ExplanationCache stores match explanations in Redis. A nil client turns every
// call into a miss so the service runs without Redis.
type ExplanationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExplanationCache(client *redis.Client, ttl time.Duration) *ExplanationCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ExplanationCache{client: client, ttl: ttl}
}

func explanationKey(matchID int64) string {
	return fmt.Sprintf("%s%d", explanationPrefix, matchID)
}

func (c *ExplanationCache) GetExplanation(ctx context.Context, matchID int64) (string, bool, error) {
	if c == nil || c.client == nil {
		return "", false, nil
	}
	text, err := c.client.Get(ctx, explanationKey(matchID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get explanation: %w", err)
	}
	return text, true, nil
}

func (c *ExplanationCache) SetExplanation(ctx context.Context, matchID int64, text string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, explanationKey(matchID), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set explanation: %w", err)
	}
	return nil
}
