package dto

import "github.com/jaennil/brutile/internal/tiling"

// TilesQuery needs one of Level and Resolution; Level wins when both are set.
type TilesQuery struct {
	BBox       string   `form:"bbox" validate:"required"`
	Level      *int     `form:"level" validate:"omitempty,min=0"`
	Resolution *float64 `form:"resolution" validate:"omitempty,gt=0"`
}

type ExtentQuery struct {
	BBox  string `form:"bbox" validate:"required"`
	Level *int   `form:"level" validate:"required,min=0"`
}

type ViewQuery struct {
	BBox       string  `form:"bbox" validate:"required"`
	Resolution float64 `form:"resolution" validate:"required,gt=0"`
}

type Tile struct {
	Level  int           `json:"level"`
	Col    int           `json:"col"`
	Row    int           `json:"row"`
	Extent tiling.Extent `json:"extent"`
}

func NewTile(info tiling.TileInfo) Tile {
	return Tile{
		Level:  info.Index.Level,
		Col:    info.Index.Col,
		Row:    info.Index.Row,
		Extent: info.Extent,
	}
}

type TilesResponse struct {
	Level int    `json:"level"`
	Count int    `json:"count"`
	Tiles []Tile `json:"tiles"`
}

type ExtentResponse struct {
	Level  int           `json:"level"`
	Extent tiling.Extent `json:"extent"`
}

type ViewTile struct {
	Tile
	Status string `json:"status"`
	Size   int    `json:"size,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ViewResponse struct {
	Level int        `json:"level"`
	Count int        `json:"count"`
	Tiles []ViewTile `json:"tiles"`
}

type SchemaResponse struct {
	Name        string        `json:"name"`
	SRS         string        `json:"srs"`
	Extent      tiling.Extent `json:"extent"`
	OriginX     float64       `json:"origin_x"`
	OriginY     float64       `json:"origin_y"`
	TileWidth   int           `json:"tile_width"`
	TileHeight  int           `json:"tile_height"`
	Format      string        `json:"format"`
	Axis        string        `json:"axis"`
	Resolutions []float64     `json:"resolutions"`
	MaxTiles    int           `json:"max_tiles"`
}

func NewSchemaResponse(s *tiling.Schema) SchemaResponse {
	ox, oy := s.Origin()
	return SchemaResponse{
		Name:        s.Name(),
		SRS:         s.SRS(),
		Extent:      s.Extent(),
		OriginX:     ox,
		OriginY:     oy,
		TileWidth:   s.TileWidth(),
		TileHeight:  s.TileHeight(),
		Format:      s.Format(),
		Axis:        s.Axis().String(),
		Resolutions: s.Resolutions(),
		MaxTiles:    s.MaxTiles(),
	}
}
