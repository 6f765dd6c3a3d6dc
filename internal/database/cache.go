package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned by the Get methods when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the Redis-backed read cache for dashboard stats, QA analytics and
// health snapshots.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	DashboardStatsKey    = "dashboard:stats"
	GlobalQaAnalyticsKey = "qa:analytics:global"
	UserQaAnalyticsKey   = "qa:analytics:user:%d"
	SystemHealthKey      = "system:health"
)

func (c *Cache) set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding unreadable cache entry")
		return ErrCacheMiss
	}
	return nil
}

func (c *Cache) CacheDashboardStats(ctx context.Context, stats *models.DashboardStats, expiration time.Duration) error {
	return c.set(ctx, DashboardStatsKey, stats, expiration)
}

func (c *Cache) GetCachedDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.get(ctx, DashboardStatsKey, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Cache) InvalidateDashboardStats(ctx context.Context) error {
	return c.client.Del(ctx, DashboardStatsKey).Err()
}

// AnalyticsKey returns the cache key for a user's QA analytics, or the
// global key when userID is nil.
func AnalyticsKey(userID *uint) string {
	if userID == nil {
		return GlobalQaAnalyticsKey
	}
	return fmt.Sprintf(UserQaAnalyticsKey, *userID)
}

func (c *Cache) CacheAnalytics(ctx context.Context, key string, analytics *models.AnalyticsDTO, expiration time.Duration) error {
	return c.set(ctx, key, analytics, expiration)
}

func (c *Cache) GetCachedAnalytics(ctx context.Context, key string) (*models.AnalyticsDTO, error) {
	var analytics models.AnalyticsDTO
	if err := c.get(ctx, key, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// InvalidateAnalytics drops the global entry and the entry of userID.
func (c *Cache) InvalidateAnalytics(ctx context.Context, userID uint) error {
	return c.client.Del(ctx, GlobalQaAnalyticsKey, AnalyticsKey(&userID)).Err()
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	return c.set(ctx, SystemHealthKey, health, expiration)
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	if err := c.get(ctx, SystemHealthKey, &health); err != nil {
		return nil, err
	}
	return health, nil
}
