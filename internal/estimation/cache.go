package estimation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic_queue/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// StatsCache holds recently computed doctor stats. Implementations swallow their own errors.
type StatsCache interface {
	Get(ctx context.Context, doctorID uint) (Stats, bool)
	Set(ctx context.Context, doctorID uint, s Stats)
	Invalidate(ctx context.Context, doctorID uint)
}

type noopCache struct{}

func (noopCache) Get(context.Context, uint) (Stats, bool) { return Stats{}, false }
func (noopCache) Set(context.Context, uint, Stats)        {}
func (noopCache) Invalidate(context.Context, uint)        {}

type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl, log: log.WithComponent("stats_cache")}
}

func StatsKey(doctorID uint) string {
	return fmt.Sprintf("doctor_stats:%d", doctorID)
}

func (c *RedisStatsCache) Get(ctx context.Context, doctorID uint) (Stats, bool) {
	raw, err := c.client.Get(ctx, StatsKey(doctorID)).Result()
	if errors.Is(err, redis.Nil) {
		return Stats{}, false
	}
	if err != nil {
		c.log.WithError(err).Warn("read cached stats")
		return Stats{}, false
	}

	var s Stats
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		c.log.WithError(err).Warn("decode cached stats")
		return Stats{}, false
	}
	return s, true
}

func (c *RedisStatsCache) Set(ctx context.Context, doctorID uint, s Stats) {
	if c.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, StatsKey(doctorID), string(payload), c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("write cached stats")
	}
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, doctorID uint) {
	if err := c.client.Del(ctx, StatsKey(doctorID)).Err(); err != nil {
		c.log.WithError(err).Warn("invalidate cached stats")
	}
}
