package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/didim/welfare-matcher/internal/models"
)

// AnalysisCache stores AI-derived analyses by assessment fingerprint.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*models.Analysis, error)
	Set(ctx context.Context, key string, a models.Analysis) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "analysis:"}
}

// Get returns nil without error on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.Analysis, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var a models.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &a, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, a models.Analysis) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// AssessmentKey fingerprints an assessment by its canonical JSON encoding.
func AssessmentKey(a models.Assessment) (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
