// Package cache holds persistent tile stores keyed by tile index.
package cache

import (
	"context"

	"github.com/jaennil/brutile/internal/tiling"
)

// TileCache stores opaque tile bytes. Implementations are safe for
// concurrent use. A miss is (nil, false, nil).
type TileCache interface {
	Find(ctx context.Context, index tiling.TileIndex) ([]byte, bool, error)
	Add(ctx context.Context, index tiling.TileIndex, data []byte) error
}
