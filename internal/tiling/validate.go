package tiling

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidSchema = errors.New("invalid tile schema")

// Schema fields in the order they are validated.
const (
	FieldSRS         = "srs"
	FieldExtent      = "extent"
	FieldOriginX     = "origin_x"
	FieldOriginY     = "origin_y"
	FieldResolutions = "resolutions"
	FieldTileWidth   = "tile_width"
	FieldTileHeight  = "tile_height"
	FieldFormat      = "format"
	FieldMaxTiles    = "max_tiles"
)

type Violation struct {
	Field   string
	Message string
}

// ValidationError lists every violated field of a schema configuration in
// validation order. The first entry is the one a caller should fix first.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidSchema, e.Schema, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSchema
}

// Field returns the first violated field.
func (e *ValidationError) Field() string {
	if len(e.Violations) == 0 {
		return ""
	}
	return e.Violations[0].Field
}

func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func (c SchemaConfig) validate() error {
	var vs []Violation
	add := func(field, format string, args ...any) {
		vs = append(vs, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.SRS) == "" {
		add(FieldSRS, "srs is not set")
	}
	if c.Extent.IsZero() {
		add(FieldExtent, "extent is not set")
	} else if c.Extent.Degenerate() {
		add(FieldExtent, "extent %v has no area", c.Extent)
	}
	if !finite(c.OriginX) {
		add(FieldOriginX, "origin x is %v, perhaps it was not initialized", c.OriginX)
	}
	if !finite(c.OriginY) {
		add(FieldOriginY, "origin y is %v, perhaps it was not initialized", c.OriginY)
	}
	if len(c.Resolutions) == 0 {
		add(FieldResolutions, "no resolutions were added")
	}
	for i, r := range c.Resolutions {
		if !finite(r) || r <= 0 {
			add(FieldResolutions, "resolution at level %d is %v, want a positive number", i, r)
			break
		}
	}
	if c.TileWidth <= 0 {
		add(FieldTileWidth, "tile width is %d", c.TileWidth)
	}
	if c.TileHeight <= 0 {
		add(FieldTileHeight, "tile height is %d", c.TileHeight)
	}
	if strings.TrimSpace(c.Format) == "" {
		add(FieldFormat, "format is not set")
	}
	if c.MaxTiles < 0 {
		add(FieldMaxTiles, "max tiles is %d, want zero for the default or a positive number", c.MaxTiles)
	}

	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Schema: c.Name, Violations: vs}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
