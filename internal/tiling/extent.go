// Package tiling maps world extents onto a multi-resolution tile grid.
package tiling

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Extent is an axis-aligned rectangle in world coordinates.
type Extent struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// NewExtent returns an extent with min and max ordered on both axes.
func NewExtent(x1, y1, x2, y2 float64) Extent {
	return Extent{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// ParseExtent parses "minx,miny,maxx,maxy".
func ParseExtent(s string) (Extent, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Extent{}, fmt.Errorf("extent %q: want 4 comma separated values, got %d", s, len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Extent{}, fmt.Errorf("extent %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Extent{}, fmt.Errorf("extent %q: value %d is not finite", s, i)
		}
		v[i] = f
	}

	return NewExtent(v[0], v[1], v[2], v[3]), nil
}

func (e Extent) Width() float64  { return e.MaxX - e.MinX }
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// Area is zero for degenerate extents, including the result of Intersect on
// disjoint inputs.
func (e Extent) Area() float64 {
	w, h := e.Width(), e.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func (e Extent) IsZero() bool {
	return e == Extent{}
}

// Degenerate reports whether the extent has no positive area.
func (e Extent) Degenerate() bool {
	return !(e.MaxX > e.MinX && e.MaxY > e.MinY)
}

// Intersects reports whether both extents overlap with positive width and
// height. Touching edges do not count.
func (e Extent) Intersects(o Extent) bool {
	return e.MinX < o.MaxX && o.MinX < e.MaxX &&
		e.MinY < o.MaxY && o.MinY < e.MaxY
}

// Intersect returns the overlap of both extents. Check Intersects first or
// rely on Area returning zero for the degenerate result.
func (e Extent) Intersect(o Extent) Extent {
	return Extent{
		MinX: math.Max(e.MinX, o.MinX),
		MinY: math.Max(e.MinY, o.MinY),
		MaxX: math.Min(e.MaxX, o.MaxX),
		MaxY: math.Min(e.MaxY, o.MaxY),
	}
}

func (e Extent) Contains(o Extent) bool {
	return e.MinX <= o.MinX && e.MinY <= o.MinY &&
		e.MaxX >= o.MaxX && e.MaxY >= o.MaxY
}

func (e Extent) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", e.MinX, e.MinY, e.MaxX, e.MaxY)
}
