package tiling

import "fmt"

// TileIndex identifies one cell of the grid. It is also the cache key.
type TileIndex struct {
	Col   int `json:"col"`
	Row   int `json:"row"`
	Level int `json:"level"`
}

func (i TileIndex) String() string {
	return fmt.Sprintf("%d/%d/%d", i.Level, i.Col, i.Row)
}

// TileRange is a rectangular span of tiles at one level. First is inclusive,
// Last is exclusive on both axes.
type TileRange struct {
	FirstCol int `json:"first_col"`
	FirstRow int `json:"first_row"`
	LastCol  int `json:"last_col"`
	LastRow  int `json:"last_row"`
}

// SingleTile returns the range holding exactly the tile at col, row.
func SingleTile(col, row int) TileRange {
	return TileRange{FirstCol: col, FirstRow: row, LastCol: col + 1, LastRow: row + 1}
}

func (r TileRange) Cols() int {
	return max(r.LastCol-r.FirstCol, 0)
}

func (r TileRange) Rows() int {
	return max(r.LastRow-r.FirstRow, 0)
}

func (r TileRange) Count() int {
	return r.Cols() * r.Rows()
}

// Exceeds reports whether the range holds more than limit tiles. Unlike
// Count it does not overflow for very deep levels.
func (r TileRange) Exceeds(limit int) bool {
	cols, rows := r.Cols(), r.Rows()
	if cols == 0 || rows == 0 {
		return false
	}
	return cols > limit || rows > limit/cols
}

// Intersect returns the tiles present in both ranges.
func (r TileRange) Intersect(o TileRange) TileRange {
	return TileRange{
		FirstCol: max(r.FirstCol, o.FirstCol),
		FirstRow: max(r.FirstRow, o.FirstRow),
		LastCol:  min(r.LastCol, o.LastCol),
		LastRow:  min(r.LastRow, o.LastRow),
	}
}

func (r TileRange) Empty() bool {
	return r.Count() == 0
}

// TileInfo pairs a tile index with its world footprint.
type TileInfo struct {
	Index  TileIndex `json:"index"`
	Extent Extent    `json:"extent"`
}
