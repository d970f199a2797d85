package cache

import (
	"context"

	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/pkg/logger"
)

// TieredCache reads the memory tier first and falls back to the persistent
// one, promoting hits. Writes go to both.
type TieredCache struct {
	memory     TileCache
	persistent TileCache
	logger     logger.Logger
}

var _ TileCache = (*TieredCache)(nil)

func NewTieredCache(memory, persistent TileCache, l logger.Logger) *TieredCache {
	return &TieredCache{
		memory:     memory,
		persistent: persistent,
		logger:     l,
	}
}

func (c *TieredCache) Find(ctx context.Context, k tiling.TileIndex) ([]byte, bool, error) {
	data, ok, err := c.memory.Find(ctx, k)
	if err != nil {
		c.logger.Warn("memory tier find failed", "tile", k, "error", err)
	}
	if ok {
		return data, true, nil
	}

	data, ok, err = c.persistent.Find(ctx, k)
	if err != nil || !ok {
		return nil, false, err
	}

	if err := c.memory.Add(ctx, k, data); err != nil {
		c.logger.Warn("memory tier promote failed", "tile", k, "error", err)
	}
	return data, true, nil
}

func (c *TieredCache) Add(ctx context.Context, k tiling.TileIndex, v []byte) error {
	if err := c.persistent.Add(ctx, k, v); err != nil {
		return err
	}
	if err := c.memory.Add(ctx, k, v); err != nil {
		c.logger.Warn("memory tier add failed", "tile", k, "error", err)
	}
	return nil
}
