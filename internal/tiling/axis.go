package tiling

import (
	"fmt"
	"math"
	"strings"
)

// AxisDirection is the row numbering convention of a schema.
type AxisDirection int

const (
	// Normal numbers rows upward: row index grows with Y.
	Normal AxisDirection = iota
	// InvertedY numbers rows downward: row index grows as Y decreases.
	InvertedY
)

func (d AxisDirection) String() string {
	switch d {
	case Normal:
		return "normal"
	case InvertedY:
		return "inverted_y"
	default:
		return fmt.Sprintf("AxisDirection(%d)", int(d))
	}
}

// ParseAxisDirection accepts "normal" and "inverted_y" (also "invertedy", "inverted").
func ParseAxisDirection(s string) (AxisDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return Normal, nil
	case "inverted_y", "invertedy", "inverted":
		return InvertedY, nil
	default:
		return Normal, fmt.Errorf("unknown axis direction %q", s)
	}
}

func (d *AxisDirection) UnmarshalText(b []byte) error {
	v, err := ParseAxisDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d AxisDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// axis converts between world extents and tile ranges. The schema picks one
// implementation at construction time and keeps it.
type axis interface {
	worldToTile(e Extent, level int, s *Schema) TileRange
	tileToWorld(r TileRange, level int, s *Schema) Extent
}

func newAxis(d AxisDirection) (axis, error) {
	switch d {
	case Normal:
		return normalAxis{}, nil
	case InvertedY:
		return invertedYAxis{}, nil
	default:
		return nil, fmt.Errorf("no axis for direction %v", d)
	}
}

type normalAxis struct{}

func (normalAxis) worldToTile(e Extent, level int, s *Schema) TileRange {
	tw, th := s.tileWorldSize(level)
	return TileRange{
		FirstCol: int(math.Floor((e.MinX - s.originX) / tw)),
		FirstRow: int(math.Floor((e.MinY - s.originY) / th)),
		LastCol:  int(math.Ceil((e.MaxX - s.originX) / tw)),
		LastRow:  int(math.Ceil((e.MaxY - s.originY) / th)),
	}
}

func (normalAxis) tileToWorld(r TileRange, level int, s *Schema) Extent {
	tw, th := s.tileWorldSize(level)
	return Extent{
		MinX: float64(r.FirstCol)*tw + s.originX,
		MinY: float64(r.FirstRow)*th + s.originY,
		MaxX: float64(r.LastCol)*tw + s.originX,
		MaxY: float64(r.LastRow)*th + s.originY,
	}
}

// invertedYAxis mirrors normal rows around the number of rows between the
// origin and the top of the schema extent. For a top-left origin that count
// is zero and row 0 is the first row below the origin.
type invertedYAxis struct{}

func (invertedYAxis) worldToTile(e Extent, level int, s *Schema) TileRange {
	r := normalAxis{}.worldToTile(e, level, s)
	return mirrorRows(r, s.rowCount(level))
}

func (invertedYAxis) tileToWorld(r TileRange, level int, s *Schema) Extent {
	return normalAxis{}.tileToWorld(mirrorRows(r, s.rowCount(level)), level, s)
}

// mirrorRows maps rows [a,b) to [n-b, n-a). It is its own inverse.
func mirrorRows(r TileRange, n int) TileRange {
	r.FirstRow, r.LastRow = n-r.LastRow, n-r.FirstRow
	return r
}
