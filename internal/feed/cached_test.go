package feed_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobsearch-bot/internal/db"
	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/feed"
	"jobmate/jobsearch-bot/internal/logging"
	"jobmate/jobsearch-bot/internal/model"
)

type countingFetcher struct {
	calls int
	page  model.JobPage
	err   error
}

func (f *countingFetcher) FetchPage(context.Context, model.QueryParams) (model.JobPage, error) {
	f.calls++
	return f.page, f.err
}

func samplePage() model.JobPage {
	return model.JobPage{Total: 1, Listings: []model.Listing{{Title: "ML Engineer", Company: "Acme", URL: "http://x"}}}
}

func TestCachedClient_FallsThroughWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	next := &countingFetcher{page: samplePage()}
	c := feed.NewCachedClient(next, rdb, time.Minute, logging.NewNop())

	params := model.DefaultQueryParams("ml", "kyiv")
	for i := 0; i < 2; i++ {
		page, err := c.FetchPage(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, samplePage(), page)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedClient_Integration(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL must be set to run this test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	params := model.DefaultQueryParams("cache-test-"+t.Name(), "nowhere")
	defer rdb.Del(ctx, feed.CacheKey(params))

	failing := &countingFetcher{err: apperrors.Unreachable("down", nil)}
	_, err = feed.NewCachedClient(failing, rdb, time.Minute, logging.NewNop()).FetchPage(ctx, params)
	require.Error(t, err)
	n, err := rdb.Exists(ctx, feed.CacheKey(params)).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "failures must not be cached")

	next := &countingFetcher{page: samplePage()}
	c := feed.NewCachedClient(next, rdb, time.Minute, logging.NewNop())
	for i := 0; i < 3; i++ {
		page, err := c.FetchPage(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, samplePage(), page)
	}
	assert.Equal(t, 1, next.calls)
}
