package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jaennil/brutile/internal/tiling"
)

// LRUCache is a bounded in-memory cache evicting the least recently used tile.
type LRUCache struct {
	lru *lru.Cache[tiling.TileIndex, []byte]
}

var _ TileCache = (*LRUCache)(nil)

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[tiling.TileIndex, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &LRUCache{lru: c}, nil
}

func (c *LRUCache) Find(_ context.Context, k tiling.TileIndex) ([]byte, bool, error) {
	v, ok := c.lru.Get(k)
	return v, ok, nil
}

func (c *LRUCache) Add(_ context.Context, k tiling.TileIndex, v []byte) error {
	c.lru.Add(k, v)
	return nil
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}
