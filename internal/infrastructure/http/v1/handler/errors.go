package handler

import "errors"

var (
	ErrInvalidBBox      = errors.New("bbox should be minx,miny,maxx,maxy")
	ErrInvalidQuery     = errors.New("invalid query parameters")
	ErrTileNotFound     = errors.New("tile is outside the schema extent")
	ErrUpstreamFailed   = errors.New("failed to fetch tile from upstream")
	ErrUpstreamFormat   = errors.New("upstream returned an unexpected tile format")
	ErrRequestCancelled = errors.New("tile request was cancelled")
	ErrLevelOutOfRange  = errors.New("level is out of range")
	ErrTooManyTiles     = errors.New("view covers too many tiles, zoom in or shrink the bbox")
)
