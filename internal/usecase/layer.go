package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/pkg/logger"
	"github.com/jaennil/brutile/pkg/metrics"
)

type TileFetcher interface {
	FetchTile(ctx context.Context, info tiling.TileInfo) ([]byte, error)
}

// TileResult is one finished fetch. Exactly one of Data and Err is set.
type TileResult struct {
	Generation uint64
	Info       tiling.TileInfo
	Data       []byte
	Err        error
}

// Update describes a dispatched viewport. Done is closed once every tile of
// the generation was fetched, skipped or dropped.
type Update struct {
	Generation uint64
	Level      int
	Tiles      []tiling.TileInfo
	Done       <-chan struct{}
}

// Layer fetches the tiles of the current viewport through a bounded pool.
// Every UpdateData starts a new generation; results of older generations
// are not delivered. onResult may be called from several goroutines at once
// and must not call UpdateData.
type Layer struct {
	tiles    TileFetcher
	schema   *tiling.Schema
	workers  int
	onResult func(TileResult)
	logger   logger.Logger

	mu         sync.RWMutex
	generation atomic.Uint64
}

func NewLayer(tiles TileFetcher, schema *tiling.Schema, workers int, onResult func(TileResult), l logger.Logger) *Layer {
	return &Layer{
		tiles:    tiles,
		schema:   schema,
		workers:  max(workers, 1),
		onResult: onResult,
		logger:   l,
	}
}

// Generation returns the generation of the latest UpdateData call.
func (l *Layer) Generation() uint64 {
	return l.generation.Load()
}

// UpdateData resolves the tiles of extent at the level nearest to resolution
// and starts fetching them. It returns without waiting for the fetches.
func (l *Layer) UpdateData(ctx context.Context, extent tiling.Extent, resolution float64) (Update, error) {
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return Update{}, fmt.Errorf("invalid resolution %v", resolution)
	}

	level := l.schema.NearestLevel(resolution)
	tiles, err := l.schema.TilesInView(extent, level)
	if err != nil {
		return Update{}, err
	}

	l.mu.Lock()
	gen := l.generation.Add(1)
	l.mu.Unlock()

	metrics.LayerUpdates.Inc()
	l.logger.Debug("layer update", "generation", gen, "level", level, "tiles", len(tiles), "extent", extent)

	done := make(chan struct{})
	go l.run(ctx, gen, tiles, done)

	return Update{
		Generation: gen,
		Level:      level,
		Tiles:      tiles,
		Done:       done,
	}, nil
}

func (l *Layer) run(ctx context.Context, gen uint64, tiles []tiling.TileInfo, done chan<- struct{}) {
	defer close(done)

	var g errgroup.Group
	g.SetLimit(l.workers)

	for i, info := range tiles {
		if l.generation.Load() != gen {
			skipped := len(tiles) - i
			metrics.LayerSuperseded.WithLabelValues("queued").Add(float64(skipped))
			l.logger.Debug("layer generation superseded", "generation", gen, "skipped", skipped)
			break
		}

		g.Go(func() error {
			if l.generation.Load() != gen {
				metrics.LayerSuperseded.WithLabelValues("queued").Inc()
				return nil
			}

			data, err := l.tiles.FetchTile(ctx, info)
			l.deliver(TileResult{
				Generation: gen,
				Info:       info,
				Data:       data,
				Err:        err,
			})
			return nil
		})
	}

	_ = g.Wait()
}

func (l *Layer) deliver(r TileResult) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.generation.Load() != r.Generation {
		metrics.LayerSuperseded.WithLabelValues("fetched").Inc()
		return
	}
	l.onResult(r)
}
