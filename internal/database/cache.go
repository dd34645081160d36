package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

// Cache key constants
const (
	QueryHitsTotalKey = "search:queries:total"
	QueryHitsDailyKey = "search:queries:daily:%s"
)

// dailyHitsRetention bounds how long per-day counters are kept.
const dailyHitsRetention = 30 * 24 * time.Hour

// Cache records search query hits in redis. It never stores search results:
// every search recomputes its matches.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
	now    func() time.Time
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeQuery lower-cases a query and collapses its whitespace so that
// equivalent queries share a counter.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// RecordQueryHit increments the all-time and today's counters for query.
func (c *Cache) RecordQueryHit(ctx context.Context, query string) error {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil
	}

	dailyKey := dailyKey(c.now())

	pipe := c.client.TxPipeline()
	pipe.ZIncrBy(ctx, QueryHitsTotalKey, 1, normalized)
	pipe.ZIncrBy(ctx, dailyKey, 1, normalized)
	pipe.Expire(ctx, dailyKey, dailyHitsRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record query hit: %w", err)
	}
	return nil
}

// TopQueries returns the most frequent queries of all time, most frequent first.
func (c *Cache) TopQueries(ctx context.Context, limit int) ([]models.PopularQuery, error) {
	return c.topQueries(ctx, QueryHitsTotalKey, limit)
}

// TopQueriesToday returns the most frequent queries of the current UTC day.
func (c *Cache) TopQueriesToday(ctx context.Context, limit int) ([]models.PopularQuery, error) {
	return c.topQueries(ctx, dailyKey(c.now()), limit)
}

func (c *Cache) topQueries(ctx context.Context, key string, limit int) ([]models.PopularQuery, error) {
	if limit <= 0 {
		return []models.PopularQuery{}, nil
	}

	entries, err := c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read popular queries: %w", err)
	}

	queries := make([]models.PopularQuery, 0, len(entries))
	for _, z := range entries {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		queries = append(queries, models.PopularQuery{QueryText: member, Hits: int64(z.Score)})
	}
	return queries, nil
}

// ClearQueryHits removes the all-time and every daily counter.
func (c *Cache) ClearQueryHits(ctx context.Context) error {
	keys := []string{QueryHitsTotalKey}
	iter := c.client.Scan(ctx, 0, fmt.Sprintf(QueryHitsDailyKey, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to list query hit keys: %w", err)
	}
	return c.client.Del(ctx, keys...).Err()
}

func dailyKey(day time.Time) string {
	return fmt.Sprintf(QueryHitsDailyKey, day.UTC().Format("2006-01-02"))
}
