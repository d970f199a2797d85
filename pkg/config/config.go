package config

import (
	"log"
	"math"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jaennil/brutile/internal/tiling"
)

type (
	Config struct {
		HTTP      HTTP      `envPrefix:"HTTP_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		Redis     Redis     `envPrefix:"REDIS_"`
		Cache     Cache     `envPrefix:"CACHE_"`
		SQLite    SQLite    `envPrefix:"SQLITE_"`
		Upstream  Upstream  `envPrefix:"UPSTREAM_"`
		Schema    Schema    `envPrefix:"SCHEMA_"`
		Layer     Layer     `envPrefix:"LAYER_"`
	}

	HTTP struct {
		Server Server `envPrefix:"SERVER_"`
	}

	Server struct {
		Port              string        `env:"PORT" envDefault:"8080"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Logger struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"json"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"brutile"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"otel-collector.observability.svc.cluster.local:4317"`
	}

	Redis struct {
		Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		TTL      time.Duration `env:"TTL" envDefault:"24h"`
	}

	// Cache picks the persistent tile store. Driver is one of map, lru,
	// filesystem, sqlite, redis. MemorySize > 0 puts an lru tier in front.
	Cache struct {
		Driver     string `env:"DRIVER" envDefault:"sqlite"`
		Dir        string `env:"DIR" envDefault:"tiles"`
		Size       int    `env:"SIZE" envDefault:"4096"`
		MemorySize int    `env:"MEMORY_SIZE" envDefault:"0"`
	}

	SQLite struct {
		Path string `env:"PATH" envDefault:"file:cache.db?cache=shared"`
	}

	Upstream struct {
		Kind       string        `env:"KIND" envDefault:"xyz"`
		BaseURL    string        `env:"BASE_URL" envDefault:"https://tile.openstreetmap.org"`
		Template   string        `env:"TEMPLATE"`
		Layer      string        `env:"LAYER"`
		Ext        string        `env:"EXT" envDefault:"png"`
		Subdomains []string      `env:"SUBDOMAINS" envSeparator:","`
		UserAgent  string        `env:"USER_AGENT" envDefault:"brutile/1.0 (https://github.com/jaennil/brutile)"`
		Referer    string        `env:"REFERER"`
		Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s"`
	}

	// Schema describes the tile grid. Leaving Resolutions empty generates a
	// power of two ladder from TopResolution with Levels entries. An unset
	// extent falls back to the web mercator grid. An unset origin is the
	// extent corner row 0 starts from: top left for inverted_y, bottom left
	// for normal. MaxTiles caps the tiles one view may enumerate.
	Schema struct {
		Name          string               `env:"NAME" envDefault:"web-mercator"`
		SRS           string               `env:"SRS" envDefault:"EPSG:3857"`
		Extent        string               `env:"EXTENT"`
		OriginX       float64              `env:"ORIGIN_X" envDefault:"NaN"`
		OriginY       float64              `env:"ORIGIN_Y" envDefault:"NaN"`
		TileWidth     int                  `env:"TILE_WIDTH" envDefault:"256"`
		TileHeight    int                  `env:"TILE_HEIGHT" envDefault:"256"`
		Format        string               `env:"FORMAT" envDefault:"png"`
		Axis          tiling.AxisDirection `env:"AXIS" envDefault:"inverted_y"`
		Resolutions   []float64            `env:"RESOLUTIONS" envSeparator:","`
		TopResolution float64              `env:"TOP_RESOLUTION" envDefault:"156543.03392804097"`
		Levels        int                  `env:"LEVELS" envDefault:"19"`
		MaxTiles      int                  `env:"MAX_TILES" envDefault:"4096"`
	}

	Layer struct {
		Workers int `env:"WORKERS" envDefault:"8"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SchemaConfig resolves the env settings into a tiling.SchemaConfig. The
// result is not validated; tiling.NewSchema does that.
func (s Schema) SchemaConfig() (tiling.SchemaConfig, error) {
	base := tiling.WebMercator(s.Levels)

	extent := base.Extent
	if s.Extent != "" {
		e, err := tiling.ParseExtent(s.Extent)
		if err != nil {
			return tiling.SchemaConfig{}, err
		}
		extent = e
	}

	cfg := tiling.SchemaConfig{
		Name:        s.Name,
		SRS:         s.SRS,
		Extent:      extent,
		OriginX:     extent.MinX,
		OriginY:     extent.MinY,
		TileWidth:   s.TileWidth,
		TileHeight:  s.TileHeight,
		Format:      s.Format,
		Axis:        s.Axis,
		Resolutions: s.Resolutions,
		MaxTiles:    s.MaxTiles,
	}
	if s.Axis == tiling.InvertedY {
		cfg.OriginY = extent.MaxY
	}
	if !math.IsNaN(s.OriginX) {
		cfg.OriginX = s.OriginX
	}
	if !math.IsNaN(s.OriginY) {
		cfg.OriginY = s.OriginY
	}
	if len(cfg.Resolutions) == 0 {
		cfg.Resolutions = tiling.PowerOfTwoResolutions(s.TopResolution, s.Levels)
	}

	return cfg, nil
}
