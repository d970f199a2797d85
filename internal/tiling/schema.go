package tiling

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrLevelOutOfRange = errors.New("level out of range")
	ErrTooManyTiles    = errors.New("too many tiles in view")
)

// DefaultMaxTiles caps TilesInView when SchemaConfig.MaxTiles is zero.
const DefaultMaxTiles = 1 << 16

// MinOverlapRatio is the share of a tile's area that must fall inside the
// schema extent for the tile to be returned by TilesInView. Edge tiles below
// it come from rounding at grid boundaries and are usually not served.
const MinOverlapRatio = 0.001

type SchemaConfig struct {
	Name        string
	SRS         string
	Extent      Extent
	OriginX     float64
	OriginY     float64
	TileWidth   int
	TileHeight  int
	Format      string
	Resolutions []float64
	Axis        AxisDirection
	// MaxTiles caps the number of tiles a single TilesInView call may
	// enumerate. Zero means DefaultMaxTiles.
	MaxTiles    int
}

// Schema is a validated, immutable tile grid definition.
type Schema struct {
	name        string
	srs         string
	extent      Extent
	originX     float64
	originY     float64
	tileWidth   int
	tileHeight  int
	format      string
	resolutions []float64
	direction   AxisDirection
	axis        axis
	maxTiles    int
}

// NewSchema validates cfg and builds a schema. A validation failure is
// returned as *ValidationError.
func NewSchema(cfg SchemaConfig) (*Schema, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ax, err := newAxis(cfg.Axis)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", cfg.Name, err)
	}

	return &Schema{
		name:        cfg.Name,
		srs:         cfg.SRS,
		extent:      cfg.Extent,
		originX:     cfg.OriginX,
		originY:     cfg.OriginY,
		tileWidth:   cfg.TileWidth,
		tileHeight:  cfg.TileHeight,
		format:      cfg.Format,
		resolutions: slices.Clone(cfg.Resolutions),
		direction:   cfg.Axis,
		axis:        ax,
		maxTiles:    cfg.MaxTiles,
	}, nil
}

func (s *Schema) Config() SchemaConfig {
	return SchemaConfig{
		Name:        s.name,
		SRS:         s.srs,
		Extent:      s.extent,
		OriginX:     s.originX,
		OriginY:     s.originY,
		TileWidth:   s.tileWidth,
		TileHeight:  s.tileHeight,
		Format:      s.format,
		Resolutions: slices.Clone(s.resolutions),
		Axis:        s.direction,
		MaxTiles:    s.maxTiles,
	}
}

// Validate re-checks the schema. Schemas built by NewSchema are always valid.
func (s *Schema) Validate() error {
	return s.Config().validate()
}

func (s *Schema) Name() string           { return s.name }
func (s *Schema) SRS() string            { return s.srs }
func (s *Schema) Extent() Extent         { return s.extent }
func (s *Schema) Origin() (x, y float64) { return s.originX, s.originY }
func (s *Schema) TileWidth() int         { return s.tileWidth }
func (s *Schema) TileHeight() int        { return s.tileHeight }
func (s *Schema) Format() string         { return s.format }
func (s *Schema) Axis() AxisDirection    { return s.direction }
func (s *Schema) Levels() int            { return len(s.resolutions) }
func (s *Schema) Resolutions() []float64 { return slices.Clone(s.resolutions) }

// MaxTiles is the largest range TilesInView enumerates.
func (s *Schema) MaxTiles() int {
	if s.maxTiles == 0 {
		return DefaultMaxTiles
	}
	return s.maxTiles
}

func (s *Schema) Resolution(level int) float64 {
	return s.resolutions[level]
}

func (s *Schema) checkLevel(level int) error {
	if level < 0 || level >= len(s.resolutions) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrLevelOutOfRange, level, len(s.resolutions))
	}
	return nil
}

// tileWorldSize returns the world width and height of one tile.
func (s *Schema) tileWorldSize(level int) (float64, float64) {
	r := s.resolutions[level]
	return r * float64(s.tileWidth), r * float64(s.tileHeight)
}

// rowCount is the number of rows from the origin up to the top of the extent.
func (s *Schema) rowCount(level int) int {
	_, th := s.tileWorldSize(level)
	return int(math.Ceil((s.extent.MaxY - s.originY) / th))
}

// NearestLevel returns the level whose resolution is closest to resolution.
// Ties go to the lowest level.
func (s *Schema) NearestLevel(resolution float64) int {
	return NearestLevel(s.resolutions, resolution)
}

func NearestLevel(resolutions []float64, resolution float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, r := range resolutions {
		if d := math.Abs(r - resolution); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// WorldToTile returns the range of tiles covering extent at level.
func (s *Schema) WorldToTile(extent Extent, level int) (TileRange, error) {
	if err := s.checkLevel(level); err != nil {
		return TileRange{}, err
	}
	return s.axis.worldToTile(extent, level, s), nil
}

// TileToWorld returns the world extent covered by r at level.
func (s *Schema) TileToWorld(r TileRange, level int) (Extent, error) {
	if err := s.checkLevel(level); err != nil {
		return Extent{}, err
	}
	return s.axis.tileToWorld(r, level, s), nil
}

// TileExtent returns the world footprint of a single tile.
func (s *Schema) TileExtent(index TileIndex) (Extent, error) {
	return s.TileToWorld(SingleTile(index.Col, index.Row), index.Level)
}

// ExtentOfTilesInView returns the grid aligned extent of the tiles covering
// extent at level, without enumerating them.
func (s *Schema) ExtentOfTilesInView(extent Extent, level int) (Extent, error) {
	r, err := s.WorldToTile(extent, level)
	if err != nil {
		return Extent{}, err
	}
	return s.axis.tileToWorld(r, level, s), nil
}

// TilesInViewAtResolution resolves the nearest level first.
func (s *Schema) TilesInViewAtResolution(extent Extent, resolution float64) ([]TileInfo, error) {
	return s.TilesInView(extent, s.NearestLevel(resolution))
}

// TilesInView returns the tiles covering extent at level that overlap the
// schema extent by more than MinOverlapRatio of their own area. A view
// covering more than MaxTiles tiles of the schema fails with ErrTooManyTiles.
func (s *Schema) TilesInView(extent Extent, level int) ([]TileInfo, error) {
	r, err := s.WorldToTile(extent, level)
	if err != nil {
		return nil, err
	}
	// Tiles outside the range covering the schema extent cannot pass the
	// overlap filter.
	r = r.Intersect(s.axis.worldToTile(s.extent, level, s))
	if limit := s.MaxTiles(); r.Exceeds(limit) {
		return nil, fmt.Errorf("%w: %d cols x %d rows at level %d, limit %d",
			ErrTooManyTiles, r.Cols(), r.Rows(), level, limit)
	}

	infos := make([]TileInfo, 0, r.Count())
	for col := r.FirstCol; col < r.LastCol; col++ {
		for row := r.FirstRow; row < r.LastRow; row++ {
			info := TileInfo{
				Index:  TileIndex{Col: col, Row: row, Level: level},
				Extent: s.axis.tileToWorld(SingleTile(col, row), level, s),
			}
			if s.withinExtent(info.Extent) {
				infos = append(infos, info)
			}
		}
	}
	return infos, nil
}

// Contains reports whether the tile at index would be returned by TilesInView
// for a view covering it.
func (s *Schema) Contains(index TileIndex) bool {
	e, err := s.TileExtent(index)
	if err != nil {
		return false
	}
	return s.withinExtent(e)
}

func (s *Schema) withinExtent(tile Extent) bool {
	if !tile.Intersects(s.extent) {
		return false
	}
	return tile.Intersect(s.extent).Area()/tile.Area() > MinOverlapRatio
}
