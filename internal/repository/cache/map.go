package cache

import (
	"context"
	"sync"

	"github.com/jaennil/brutile/internal/tiling"
)

type MapCache struct {
	m *TypedSyncMap
}

type TypedSyncMap struct {
	m sync.Map
}

func (c *TypedSyncMap) Load(k tiling.TileIndex) ([]byte, bool) {
	v, exists := c.m.Load(k)
	if !exists {
		return nil, false
	}
	return v.([]byte), exists
}

func (c *TypedSyncMap) Store(k tiling.TileIndex, v []byte) {
	c.m.Store(k, v)
}

func NewMapCache() *MapCache {
	return &MapCache{
		m: &TypedSyncMap{},
	}
}

var _ TileCache = (*MapCache)(nil)

func (c *MapCache) Find(_ context.Context, k tiling.TileIndex) ([]byte, bool, error) {
	v, exists := c.m.Load(k)
	return v, exists, nil
}

func (c *MapCache) Add(_ context.Context, k tiling.TileIndex, v []byte) error {
	c.m.Store(k, v)
	return nil
}
