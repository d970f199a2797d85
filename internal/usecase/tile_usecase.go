package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jaennil/brutile/internal/repository/cache"
	"github.com/jaennil/brutile/internal/request"
	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/internal/transport"
	"github.com/jaennil/brutile/pkg/logger"
	"github.com/jaennil/brutile/pkg/metrics"
	"github.com/jaennil/brutile/pkg/telemetry"
)

var ErrOutsideSchema = errors.New("tile outside schema extent")

// Source tells where the bytes of a tile came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceUpstream Source = "upstream"
	// SourceShared marks bytes taken from a fetch started by another caller.
	SourceShared Source = "shared"
)

type Tile struct {
	Index  tiling.TileIndex
	Data   []byte
	Source Source
}

// TileUseCase is the cache-aside retrieval pipeline: cache, then upstream,
// then cache again on success.
type TileUseCase struct {
	schema    *tiling.Schema
	request   request.Request
	cache     cache.TileCache
	transport transport.Transport
	logger    logger.Logger

	inflight singleflight.Group
}

func NewTileUseCase(
	schema *tiling.Schema,
	req request.Request,
	c cache.TileCache,
	t transport.Transport,
	l logger.Logger,
) *TileUseCase {
	return &TileUseCase{
		schema:    schema,
		request:   req,
		cache:     c,
		transport: t,
		logger:    l,
	}
}

func (uc *TileUseCase) Schema() *tiling.Schema {
	return uc.schema
}

// FetchTile returns the bytes of one tile.
func (uc *TileUseCase) FetchTile(ctx context.Context, info tiling.TileInfo) ([]byte, error) {
	t, err := uc.GetTile(ctx, info.Index)
	if err != nil {
		return nil, err
	}
	return t.Data, nil
}

// GetTile is FetchTile reporting the source of the bytes. Concurrent misses
// for one index share a single upstream fetch. That fetch is not cancelled
// with the caller, so it can still populate the cache.
func (uc *TileUseCase) GetTile(ctx context.Context, index tiling.TileIndex) (*Tile, error) {
	metrics.TilesRequests.Inc()

	ctx, span := telemetry.Tracer().Start(ctx, "TileUseCase.GetTile",
		trace.WithAttributes(
			attribute.Int("tile.level", index.Level),
			attribute.Int("tile.col", index.Col),
			attribute.Int("tile.row", index.Row),
		),
	)
	defer span.End()

	t, err := uc.getTile(ctx, index)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, ErrOutsideSchema) {
			metrics.TilesFetchErrors.WithLabelValues(ErrorKind(err)).Inc()
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("tile.source", string(t.Source)))
	return t, nil
}

func (uc *TileUseCase) getTile(ctx context.Context, index tiling.TileIndex) (*Tile, error) {
	if !uc.schema.Contains(index) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideSchema, index)
	}
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Index: index, Kind: ErrCancelled, Err: err}
	}

	data, ok, err := uc.cache.Find(ctx, index)
	if err != nil {
		metrics.TilesCacheErrors.WithLabelValues("find").Inc()
		uc.logger.Warn("cache find failed, treating as miss", "tile", index, "error", err)
	}
	if ok {
		metrics.TilesCacheHits.Inc()
		uc.logger.Debug("cache hit", "tile", index, "size", len(data))
		return &Tile{Index: index, Data: data, Source: SourceCache}, nil
	}
	metrics.TilesCacheMisses.Inc()

	// owner is only set when this call runs the fetch. singleflight sends the
	// result after fn returns, so reading it after the receive is safe.
	var owner bool
	detached := context.WithoutCancel(ctx)
	ch := uc.inflight.DoChan(index.String(), func() (any, error) {
		owner = true
		return uc.fetchUpstream(detached, index)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		source := SourceUpstream
		if !owner {
			metrics.TilesUpstreamShared.Inc()
			source = SourceShared
		}
		return &Tile{Index: index, Data: res.Val.([]byte), Source: source}, nil
	case <-ctx.Done():
		uc.logger.Debug("tile fetch abandoned by caller", "tile", index, "error", ctx.Err())
		return nil, &FetchError{Index: index, Kind: ErrCancelled, Err: ctx.Err()}
	}
}

func (uc *TileUseCase) fetchUpstream(ctx context.Context, index tiling.TileIndex) ([]byte, error) {
	locator := uc.request.Locator(index)
	uc.logger.Debug("fetching from upstream", "tile", index, "url", locator)

	metrics.TilesUpstreamRequests.Inc()
	start := time.Now()
	resp, err := uc.transport.Fetch(ctx, locator)
	metrics.TilesUpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		uc.logger.Warn("upstream fetch failed", "tile", index, "url", locator, "error", err)
		return nil, &FetchError{Index: index, Locator: locator, Kind: ErrTransport, Err: err}
	}

	if err := checkFormat(uc.schema.Format(), resp.Data); err != nil {
		uc.logger.Warn("upstream returned unexpected format", "tile", index, "url", locator,
			"content_type", resp.ContentType, "error", err)
		return nil, &FetchError{Index: index, Locator: locator, Kind: ErrUnexpectedFormat, Err: err}
	}

	if err := uc.cache.Add(ctx, index, resp.Data); err != nil {
		metrics.TilesCacheErrors.WithLabelValues("add").Inc()
		uc.logger.Warn("failed to store tile in cache", "tile", index, "error", err)
	} else {
		metrics.CacheStores.Inc()
	}

	uc.logger.Info("fetched tile from upstream", "tile", index, "size", len(resp.Data))
	return resp.Data, nil
}
