package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/internal/usecase"
	"github.com/jaennil/brutile/pkg/telemetry"
)

func (h *Handler) Tile(c *gin.Context) {
	l := loggerFrom(c)

	strX := c.Param("x")
	strY := c.Param("y")
	strZ := c.Param("z")

	x, err := strconv.Atoi(strX)
	if err != nil {
		l.Warn("invalid x parameter", "x", strX, "error", err)
		h.RespondWithJSON(c, http.StatusBadRequest, "x should be integer", nil)
		return
	}

	y, err := strconv.Atoi(strY)
	if err != nil {
		l.Warn("invalid y parameter", "y", strY, "error", err)
		h.RespondWithJSON(c, http.StatusBadRequest, "y should be integer", nil)
		return
	}

	z, err := strconv.Atoi(strZ)
	if err != nil {
		l.Warn("invalid z parameter", "z", strZ, "error", err)
		h.RespondWithJSON(c, http.StatusBadRequest, "z should be integer", nil)
		return
	}

	index := tiling.TileIndex{Col: x, Row: y, Level: z}
	l.Debug("tile request", "tile", index)

	tile, err := h.tileUseCase.GetTile(c.Request.Context(), index)
	if err != nil {
		code, respErr := tileErrorStatus(err)
		if code >= 500 {
			l.Error("failed to get tile", "tile", index, "error", err)
		} else {
			l.Info("tile not served", "tile", index, "error", err)
		}
		h.RespondWithError(c, code, respErr)
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(tile.Data))
	c.Header("ETag", etag)
	c.Header(telemetry.TileSourceHeader, string(tile.Source))
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, usecase.MIMEType(h.tileUseCase.Schema().Format()), tile.Data)
}

func tileErrorStatus(err error) (int, error) {
	switch {
	case errors.Is(err, usecase.ErrOutsideSchema):
		return http.StatusNotFound, ErrTileNotFound
	case errors.Is(err, usecase.ErrCancelled):
		return http.StatusRequestTimeout, ErrRequestCancelled
	case errors.Is(err, usecase.ErrUnexpectedFormat):
		return http.StatusBadGateway, ErrUpstreamFormat
	case errors.Is(err, usecase.ErrTransport):
		return http.StatusBadGateway, ErrUpstreamFailed
	default:
		return http.StatusInternalServerError, errors.New(internalServerErrorText)
	}
}
