package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewCache(client, logrus.New())
	c.now = func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }
	return c, mr
}

func TestCache_RecordAndTopQueries(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, q := range []string{"Pricing", "pricing ", "test", "PRICING", "test", "home"} {
		require.NoError(t, c.RecordQueryHit(ctx, q))
	}

	top, err := c.TopQueries(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.PopularQuery{
		{QueryText: "pricing", Hits: 3},
		{QueryText: "test", Hits: 2},
	}, top)

	daily := "search:queries:daily:2024-03-09"
	assert.True(t, mr.Exists(daily))
	assert.Equal(t, dailyHitsRetention, mr.TTL(daily))
}

func TestCache_IgnoresBlankQueries(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, c.RecordQueryHit(context.Background(), "   "))
	assert.False(t, mr.Exists(QueryHitsTotalKey))
}

func TestCache_TopQueriesEdgeCases(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	top, err := c.TopQueries(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, top)

	top, err = c.TopQueries(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestCache_TopQueriesToday(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.now = func() time.Time { return time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC) }
	for _, q := range []string{"old", "old", "old", "pricing"} {
		require.NoError(t, c.RecordQueryHit(ctx, q))
	}
	c.now = func() time.Time { return time.Date(2024, 3, 9, 1, 0, 0, 0, time.UTC) }
	for _, q := range []string{"pricing", "test", "test"} {
		require.NoError(t, c.RecordQueryHit(ctx, q))
	}

	today, err := c.TopQueriesToday(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []models.PopularQuery{
		{QueryText: "test", Hits: 2},
		{QueryText: "pricing", Hits: 1},
	}, today)

	allTime, err := c.TopQueries(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.PopularQuery{{QueryText: "old", Hits: 3}}, allTime)
}

func TestCache_ClearQueryHits(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.RecordQueryHit(ctx, "test"))
	c.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, c.RecordQueryHit(ctx, "test"))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.ClearQueryHits(ctx))
	assert.False(t, mr.Exists(QueryHitsTotalKey))
	assert.False(t, mr.Exists("search:queries:daily:2024-03-09"))
	assert.False(t, mr.Exists("search:queries:daily:2024-03-10"))
	assert.True(t, mr.Exists("unrelated"))

	mr.Close()
	assert.Error(t, c.ClearQueryHits(ctx))
}
