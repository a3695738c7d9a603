package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/jobsearch-bot/internal/logging"
	"jobmate/jobsearch-bot/internal/model"
)

const cacheKeyPrefix = "feed:page:"

// Fetcher is anything that returns one feed page per call.
type Fetcher interface {
	FetchPage(ctx context.Context, params model.QueryParams) (model.JobPage, error)
}

// CachedClient serves repeated page requests from Redis. Cache failures
// fall through to the wrapped Fetcher; only successful pages are stored.
type CachedClient struct {
	next   Fetcher
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedClient wraps next with a Redis cache-aside layer.
func NewCachedClient(next Fetcher, rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedClient {
	return &CachedClient{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

type cachedPage struct {
	Listings []model.Listing `json:"listings"`
	Total    int             `json:"total"`
}

func (c *CachedClient) FetchPage(ctx context.Context, params model.QueryParams) (model.JobPage, error) {
	key := CacheKey(params)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cp cachedPage
		if err := json.Unmarshal(raw, &cp); err == nil {
			c.logger.Debug("feed cache hit", "key", key)
			return model.JobPage{Listings: cp.Listings, Total: cp.Total}, nil
		}
		c.logger.Warn("feed cache entry unreadable", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("feed cache get failed", "key", key, "err", err)
	}

	page, err := c.next.FetchPage(ctx, params)
	if err != nil {
		return page, err
	}

	data, err := json.Marshal(cachedPage{Listings: page.Listings, Total: page.Total})
	if err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("feed cache set failed", "key", key, "err", err)
		}
	}

	return page, nil
}

// CacheKey is deterministic for identical params: url.Values.Encode sorts
// by key.
func CacheKey(params model.QueryParams) string {
	return cacheKeyPrefix + EncodeQuery(params).Encode()
}
