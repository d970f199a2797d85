package tiling

import "math"

const (
	webMercatorHalfWorld     = 20037508.342789244
	webMercatorTopResolution = 156543.03392804097
)

// PowerOfTwoResolutions returns levels resolutions, each half the previous one.
func PowerOfTwoResolutions(top float64, levels int) []float64 {
	out := make([]float64, levels)
	for z := range levels {
		out[z] = top / math.Exp2(float64(z))
	}
	return out
}

// WebMercator is the EPSG:3857 global grid used by OSM style XYZ services:
// 256px tiles, origin top left, row 0 at the top.
func WebMercator(levels int) SchemaConfig {
	return SchemaConfig{
		Name:        "webmercator",
		SRS:         "EPSG:3857",
		Extent:      Extent{MinX: -webMercatorHalfWorld, MinY: -webMercatorHalfWorld, MaxX: webMercatorHalfWorld, MaxY: webMercatorHalfWorld},
		OriginX:     -webMercatorHalfWorld,
		OriginY:     webMercatorHalfWorld,
		TileWidth:   256,
		TileHeight:  256,
		Format:      "png",
		Resolutions: PowerOfTwoResolutions(webMercatorTopResolution, levels),
		Axis:        InvertedY,
	}
}
