package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/pkg/metrics"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	// Prefix namespaces keys, usually the schema name.
	Prefix string
}

var _ TileCache = (*RedisCache)(nil)

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "tile"
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (c *RedisCache) keyFor(k tiling.TileIndex) string {
	return fmt.Sprintf("%s:%d:%d:%d", c.prefix, k.Level, k.Col, k.Row)
}

func (c *RedisCache) Find(ctx context.Context, k tiling.TileIndex) ([]byte, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RedisOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, c.keyFor(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		metrics.RedisErrors.WithLabelValues("get").Inc()
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}

	return data, true, nil
}

func (c *RedisCache) Add(ctx context.Context, k tiling.TileIndex, v []byte) error {
	start := time.Now()
	defer func() {
		metrics.RedisOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	if err := c.client.Set(ctx, c.keyFor(k), v, c.ttl).Err(); err != nil {
		metrics.RedisErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// RecordPoolStats publishes the client pool counters to the redis_pool_stats gauge.
func (c *RedisCache) RecordPoolStats() {
	s := c.client.PoolStats()
	metrics.RedisPoolStats.WithLabelValues("hits").Set(float64(s.Hits))
	metrics.RedisPoolStats.WithLabelValues("misses").Set(float64(s.Misses))
	metrics.RedisPoolStats.WithLabelValues("timeouts").Set(float64(s.Timeouts))
	metrics.RedisPoolStats.WithLabelValues("total_conns").Set(float64(s.TotalConns))
	metrics.RedisPoolStats.WithLabelValues("idle_conns").Set(float64(s.IdleConns))
	metrics.RedisPoolStats.WithLabelValues("stale_conns").Set(float64(s.StaleConns))
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
