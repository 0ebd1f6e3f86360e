package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"enatega_storefront/internal/model"
)

const (
	// ReviewSummaryPrefix is the key prefix for cached rating histograms
	ReviewSummaryPrefix = "reviews:summary:"

	// DefaultReviewSummaryTTL bounds how stale a histogram may get if an invalidation is lost
	DefaultReviewSummaryTTL = 10 * time.Minute
)

// ReviewSummaryCache stores computed rating histograms per restaurant.
type ReviewSummaryCache interface {
	// Get returns the cached summary. found=false on a miss.
	Get(ctx context.Context, restaurantID int64) (summary *model.ReviewSummary, found bool, err error)

	// Set stores a summary with the cache TTL.
	Set(ctx context.Context, summary *model.ReviewSummary) error

	// Invalidate drops the cached summary of a restaurant.
	Invalidate(ctx context.Context, restaurantID int64) error
}

// RedisReviewSummaryCache implements ReviewSummaryCache with JSON string values.
type RedisReviewSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewReviewSummaryCache creates a ReviewSummaryCache backed by Redis.
// A non-positive ttl falls back to DefaultReviewSummaryTTL.
func NewReviewSummaryCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) ReviewSummaryCache {
	if ttl <= 0 {
		ttl = DefaultReviewSummaryTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisReviewSummaryCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "ReviewSummaryCache"),
	}
}

func summaryKey(restaurantID int64) string {
	return fmt.Sprintf("%s%d", ReviewSummaryPrefix, restaurantID)
}

// Get reads and decodes the cached summary.
func (c *RedisReviewSummaryCache) Get(ctx context.Context, restaurantID int64) (*model.ReviewSummary, bool, error) {
	key := summaryKey(restaurantID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("summary miss", "restaurant", restaurantID)
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("get summary failed", "restaurant", restaurantID, "err", err)
		return nil, false, fmt.Errorf("get review summary: %w", err)
	}

	var summary model.ReviewSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next Set.
		c.logger.Warn("summary decode failed", "restaurant", restaurantID, "err", err)
		return nil, false, nil
	}

	c.logger.Debug("summary hit", "restaurant", restaurantID, "total", summary.Total)
	return &summary, true, nil
}

// Set encodes and stores a summary.
func (c *RedisReviewSummaryCache) Set(ctx context.Context, summary *model.ReviewSummary) error {
	startTime := time.Now()

	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode review summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(summary.RestaurantID), raw, c.ttl).Err(); err != nil {
		c.logger.Error("set summary failed", "restaurant", summary.RestaurantID, "err", err)
		return fmt.Errorf("set review summary: %w", err)
	}

	c.logger.Debug("set summary ok", "restaurant", summary.RestaurantID, "duration", time.Since(startTime))
	return nil
}

// Invalidate deletes the summary key.
func (c *RedisReviewSummaryCache) Invalidate(ctx context.Context, restaurantID int64) error {
	removed, err := c.client.Del(ctx, summaryKey(restaurantID)).Result()
	if err != nil {
		c.logger.Error("invalidate summary failed", "restaurant", restaurantID, "err", err)
		return fmt.Errorf("invalidate review summary: %w", err)
	}

	c.logger.Debug("invalidate summary ok", "restaurant", restaurantID, "removed", removed)
	return nil
}
