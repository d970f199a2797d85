package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jaennil/brutile/internal/tiling"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.HTTP.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.HTTP.Server.Port)
	}
	if cfg.Cache.Driver != "sqlite" {
		t.Errorf("Cache.Driver = %q, want sqlite", cfg.Cache.Driver)
	}

	sc, err := cfg.Schema.SchemaConfig()
	if err != nil {
		t.Fatalf("SchemaConfig failed: %v", err)
	}
	want := tiling.WebMercator(19)
	want.Name = "web-mercator"
	want.MaxTiles = 4096
	if diff := cmp.Diff(want, sc); diff != "" {
		t.Errorf("SchemaConfig mismatch (-want +got):\n%s", diff)
	}
	if _, err := tiling.NewSchema(sc); err != nil {
		t.Errorf("default schema is invalid: %v", err)
	}
}

func TestSchemaFromEnv(t *testing.T) {
	t.Setenv("SCHEMA_NAME", "local")
	t.Setenv("SCHEMA_SRS", "EPSG:28992")
	t.Setenv("SCHEMA_EXTENT", "0,0,1000,500")
	t.Setenv("SCHEMA_AXIS", "normal")
	t.Setenv("SCHEMA_RESOLUTIONS", "4,2,1")
	t.Setenv("SCHEMA_TILE_HEIGHT", "128")
	t.Setenv("UPSTREAM_SUBDOMAINS", "a,b")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, cfg.Upstream.Subdomains); diff != "" {
		t.Errorf("Subdomains mismatch (-want +got):\n%s", diff)
	}

	sc, err := cfg.Schema.SchemaConfig()
	if err != nil {
		t.Fatalf("SchemaConfig failed: %v", err)
	}
	want := tiling.SchemaConfig{
		Name:        "local",
		SRS:         "EPSG:28992",
		Extent:      tiling.Extent{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 500},
		OriginX:     0,
		OriginY:     0,
		TileWidth:   256,
		TileHeight:  128,
		Format:      "png",
		Resolutions: []float64{4, 2, 1},
		Axis:        tiling.Normal,
		MaxTiles:    4096,
	}
	if diff := cmp.Diff(want, sc); diff != "" {
		t.Errorf("SchemaConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaOriginOverride(t *testing.T) {
	t.Setenv("SCHEMA_EXTENT", "0,0,1000,500")
	t.Setenv("SCHEMA_ORIGIN_X", "-10")
	t.Setenv("SCHEMA_LEVELS", "3")
	t.Setenv("SCHEMA_TOP_RESOLUTION", "8")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sc, err := cfg.Schema.SchemaConfig()
	if err != nil {
		t.Fatalf("SchemaConfig failed: %v", err)
	}

	if sc.OriginX != -10 {
		t.Errorf("OriginX = %v, want -10", sc.OriginX)
	}
	if sc.OriginY != 500 {
		t.Errorf("OriginY = %v, want 500 for inverted axis", sc.OriginY)
	}
	if diff := cmp.Diff([]float64{8, 4, 2}, sc.Resolutions); diff != "" {
		t.Errorf("Resolutions mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaNormalAxisOnDefaultExtent(t *testing.T) {
	t.Setenv("SCHEMA_AXIS", "normal")
	t.Setenv("SCHEMA_LEVELS", "3")
	t.Setenv("SCHEMA_MAX_TILES", "100")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sc, err := cfg.Schema.SchemaConfig()
	if err != nil {
		t.Fatalf("SchemaConfig failed: %v", err)
	}
	base := tiling.WebMercator(3)
	if sc.OriginX != base.Extent.MinX || sc.OriginY != base.Extent.MinY {
		t.Errorf("origin = (%v, %v), want bottom left (%v, %v)",
			sc.OriginX, sc.OriginY, base.Extent.MinX, base.Extent.MinY)
	}
	if sc.MaxTiles != 100 {
		t.Errorf("MaxTiles = %d, want 100", sc.MaxTiles)
	}

	s, err := tiling.NewSchema(sc)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}
	for _, idx := range []tiling.TileIndex{
		{Col: 0, Row: 0, Level: 0},
		{Col: 0, Row: 0, Level: 2},
		{Col: 3, Row: 3, Level: 2},
	} {
		if !s.Contains(idx) {
			t.Errorf("Contains(%v) = false", idx)
		}
	}
	if s.Contains(tiling.TileIndex{Col: 0, Row: -1, Level: 2}) {
		t.Errorf("Contains(row -1) = true")
	}
}

func TestSchemaBadExtent(t *testing.T) {
	t.Setenv("SCHEMA_EXTENT", "0,0,1000")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := cfg.Schema.SchemaConfig(); err == nil {
		t.Errorf("expected error for bad extent")
	}
}

func TestBadAxis(t *testing.T) {
	t.Setenv("SCHEMA_AXIS", "sideways")

	if _, err := New(); err == nil {
		t.Errorf("expected error for unknown axis")
	}
}
