// Package cache holds the Redis-backed stats cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/fishlog/internal/domain"
)

const statsKeyPrefix = "fishlog:stats:"

// RedisStats caches computed domain.Stats as JSON. Each owner has a version
// counter; entries are keyed by owner and version.
type RedisStats struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStats constructs a RedisStats cache. Entries expire after ttl.
func NewRedisStats(client redis.UniversalClient, ttl time.Duration) *RedisStats {
	return &RedisStats{client: client, ttl: ttl}
}

// Connect parses a redis:// URL, opens a client and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache.Connect: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache.Connect: ping: %w", err)
	}
	return client, nil
}

// Get returns the owner's current version and the stats cached under it. A
// missing key is a miss, not an error; an owner never invalidated is at
// version 0.
func (c *RedisStats) Get(ctx context.Context, ownerID int64) (domain.Stats, int64, bool, error) {
	version, err := c.client.Get(ctx, versionKey(ownerID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.Stats{}, 0, false, fmt.Errorf("cache.RedisStats.Get: version: %w", err)
	}

	raw, err := c.client.Get(ctx, statsKey(ownerID, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Stats{}, version, false, nil
	}
	if err != nil {
		return domain.Stats{}, 0, false, fmt.Errorf("cache.RedisStats.Get: %w", err)
	}

	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return domain.Stats{}, 0, false, fmt.Errorf("cache.RedisStats.Get: decode: %w", err)
	}
	if stats.RecentReports == nil {
		stats.RecentReports = []domain.Trip{}
	}
	return stats, version, true, nil
}

// Set stores stats under version with the configured TTL. If the owner has
// been invalidated since version was read, the entry lands on a key Get no
// longer reads and simply expires.
func (c *RedisStats) Set(ctx context.Context, ownerID, version int64, stats domain.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("cache.RedisStats.Set: encode: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(ownerID, version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache.RedisStats.Set: %w", err)
	}
	return nil
}

// Invalidate advances the owner's version, orphaning every entry stored
// under an earlier one.
func (c *RedisStats) Invalidate(ctx context.Context, ownerID int64) error {
	if err := c.client.Incr(ctx, versionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("cache.RedisStats.Invalidate: %w", err)
	}
	return nil
}

func versionKey(ownerID int64) string {
	return statsKeyPrefix + strconv.FormatInt(ownerID, 10) + ":version"
}

func statsKey(ownerID, version int64) string {
	return statsKeyPrefix + strconv.FormatInt(ownerID, 10) + ":v" + strconv.FormatInt(version, 10)
}
