package handler

import (
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jaennil/brutile/internal/infrastructure/http/v1/dto"
	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/internal/usecase"
)

// Tiles lists the tiles covering bbox at level, or at the level nearest to
// resolution.
func (h *Handler) Tiles(c *gin.Context) {
	var q dto.TilesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	extent, ok := h.parseBBox(c, q.BBox)
	if !ok {
		return
	}
	if q.Level == nil && q.Resolution == nil {
		h.RespondWithJSON(c, http.StatusBadRequest, "level or resolution is required", nil)
		return
	}

	schema := h.tileUseCase.Schema()
	var level int
	if q.Level != nil {
		level = *q.Level
	} else {
		level = schema.NearestLevel(*q.Resolution)
	}

	infos, err := schema.TilesInView(extent, level)
	if err != nil {
		h.respondSchemaError(c, err)
		return
	}

	tiles := make([]dto.Tile, 0, len(infos))
	for _, info := range infos {
		tiles = append(tiles, dto.NewTile(info))
	}

	h.RespondWithJSON(c, http.StatusOK, "tiles in view", dto.TilesResponse{
		Level: level,
		Count: len(tiles),
		Tiles: tiles,
	})
}

// Extent returns the grid aligned extent of the tiles covering bbox.
func (h *Handler) Extent(c *gin.Context) {
	var q dto.ExtentQuery
	if !h.bindQuery(c, &q) {
		return
	}
	extent, ok := h.parseBBox(c, q.BBox)
	if !ok {
		return
	}

	e, err := h.tileUseCase.Schema().ExtentOfTilesInView(extent, *q.Level)
	if err != nil {
		h.respondSchemaError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "extent of tiles in view", dto.ExtentResponse{
		Level:  *q.Level,
		Extent: e,
	})
}

// View fetches every tile of a viewport through a layer and reports the
// outcome of each.
func (h *Handler) View(c *gin.Context) {
	l := loggerFrom(c)

	var q dto.ViewQuery
	if !h.bindQuery(c, &q) {
		return
	}
	extent, ok := h.parseBBox(c, q.BBox)
	if !ok {
		return
	}

	var (
		mu    sync.Mutex
		tiles []dto.ViewTile
	)
	onResult := func(r usecase.TileResult) {
		t := dto.ViewTile{Tile: dto.NewTile(r.Info), Status: "ok", Size: len(r.Data)}
		if r.Err != nil {
			t.Status = usecase.ErrorKind(r.Err)
			t.Error = r.Err.Error()
		}
		mu.Lock()
		tiles = append(tiles, t)
		mu.Unlock()
	}

	ctx := c.Request.Context()
	layer := usecase.NewLayer(h.tileUseCase, h.tileUseCase.Schema(), h.layerWorkers, onResult, l)
	update, err := layer.UpdateData(ctx, extent, q.Resolution)
	if err != nil {
		h.respondSchemaError(c, err)
		return
	}

	select {
	case <-update.Done:
	case <-ctx.Done():
		h.RespondWithError(c, http.StatusRequestTimeout, ErrRequestCancelled)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Col != tiles[j].Col {
			return tiles[i].Col < tiles[j].Col
		}
		return tiles[i].Row < tiles[j].Row
	})

	l.Info("view fetched", "level", update.Level, "tiles", len(tiles))

	h.RespondWithJSON(c, http.StatusOK, "view fetched", dto.ViewResponse{
		Level: update.Level,
		Count: len(tiles),
		Tiles: tiles,
	})
}

func (h *Handler) Schema(c *gin.Context) {
	h.RespondWithJSON(c, http.StatusOK, "tile schema", dto.NewSchemaResponse(h.tileUseCase.Schema()))
}

func (h *Handler) respondSchemaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tiling.ErrLevelOutOfRange):
		h.RespondWithError(c, http.StatusBadRequest, ErrLevelOutOfRange)
	case errors.Is(err, tiling.ErrTooManyTiles):
		loggerFrom(c).Warn("view rejected", "query", c.Request.URL.RawQuery, "error", err)
		h.RespondWithJSON(c, http.StatusBadRequest, ErrTooManyTiles.Error(), err.Error())
	default:
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
	}
}

func (h *Handler) bindQuery(c *gin.Context, q any) bool {
	l := loggerFrom(c)

	if err := c.ShouldBindQuery(q); err != nil {
		l.Warn("failed to bind query", "query", c.Request.URL.RawQuery, "error", err)
		h.RespondWithError(c, http.StatusBadRequest, ErrInvalidQuery)
		return false
	}
	if err := h.validate.Struct(q); err != nil {
		l.Warn("query validation failed", "query", c.Request.URL.RawQuery, "error", err)
		h.RespondWithJSON(c, http.StatusBadRequest, ErrInvalidQuery.Error(), err.Error())
		return false
	}
	return true
}

func (h *Handler) parseBBox(c *gin.Context, bbox string) (tiling.Extent, bool) {
	e, err := tiling.ParseExtent(bbox)
	if err != nil {
		loggerFrom(c).Warn("invalid bbox", "bbox", bbox, "error", err)
		h.RespondWithError(c, http.StatusBadRequest, ErrInvalidBBox)
		return tiling.Extent{}, false
	}
	return e, true
}
