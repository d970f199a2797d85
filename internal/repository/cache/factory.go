package cache

import (
	"fmt"
	"io"
	"strings"

	"github.com/jaennil/brutile/pkg/config"
	"github.com/jaennil/brutile/pkg/logger"
)

const (
	DriverMap        = "map"
	DriverLRU        = "lru"
	DriverFilesystem = "filesystem"
	DriverSQLite     = "sqlite"
	DriverRedis      = "redis"
)

// New builds the cache selected by cfg.Cache.Driver. The returned closer
// releases the backing store and is never nil.
func New(cfg *config.Config, l logger.Logger) (TileCache, io.Closer, error) {
	var (
		c      TileCache
		closer io.Closer = nopCloser{}
	)

	switch strings.ToLower(cfg.Cache.Driver) {
	case DriverMap:
		c = NewMapCache()
	case DriverLRU:
		lc, err := NewLRUCache(cfg.Cache.Size)
		if err != nil {
			return nil, nil, err
		}
		c = lc
	case DriverFilesystem:
		c = NewFilesystemCache(cfg.Cache.Dir, cfg.Schema.Format)
	case DriverSQLite:
		sc, err := NewSQLiteCache(cfg.SQLite.Path, l)
		if err != nil {
			return nil, nil, err
		}
		c, closer = sc, sc
	case DriverRedis:
		rc, err := NewRedisCache(RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
			Prefix:   cfg.Schema.Name,
		})
		if err != nil {
			return nil, nil, err
		}
		c, closer = rc, rc
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}

	if cfg.Cache.MemorySize > 0 {
		mem, err := NewLRUCache(cfg.Cache.MemorySize)
		if err != nil {
			closer.Close()
			return nil, nil, err
		}
		c = NewTieredCache(mem, c, l)
	}

	l.Info("tile cache initialized", "driver", cfg.Cache.Driver, "memory_size", cfg.Cache.MemorySize)

	return c, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
