package app

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	v1 "github.com/jaennil/brutile/internal/infrastructure/http/v1"
	"github.com/jaennil/brutile/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/brutile/internal/repository/cache"
	"github.com/jaennil/brutile/internal/request"
	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/internal/transport"
	"github.com/jaennil/brutile/internal/usecase"
	"github.com/jaennil/brutile/pkg/config"
	"github.com/jaennil/brutile/pkg/http_server"
	"github.com/jaennil/brutile/pkg/logger"
	"github.com/jaennil/brutile/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l, err := logger.NewZapLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer l.Sync()

	l.Info("app config",
		"port", cfg.HTTP.Server.Port,
		"cache", cfg.Cache.Driver,
		"upstream", cfg.Upstream.BaseURL,
		"upstream_kind", cfg.Upstream.Kind,
		"layer_workers", cfg.Layer.Workers,
		"telemetry", cfg.Telemetry.Enabled,
	)

	ctx := logger.WithLogger(context.Background(), l)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
		l.Info("telemetry initialized", "service", cfg.Telemetry.ServiceName)
	}

	schemaCfg, err := cfg.Schema.SchemaConfig()
	if err != nil {
		l.Fatal("failed to read schema config", "error", err)
	}
	schema, err := tiling.NewSchema(schemaCfg)
	if err != nil {
		l.Fatal("invalid tile schema", "error", err)
	}
	l.Info("tile schema loaded", "name", schema.Name(), "srs", schema.SRS(), "levels", schema.Levels(),
		"axis", schema.Axis(), "max_tiles", schema.MaxTiles())

	req, err := request.New(
		cfg.Upstream.Kind,
		cfg.Upstream.BaseURL,
		cfg.Upstream.Template,
		cfg.Upstream.Layer,
		cfg.Upstream.Ext,
		cfg.Upstream.Subdomains...,
	)
	if err != nil {
		l.Fatal("invalid upstream request config", "error", err)
	}

	tileCache, closer, err := cache.New(cfg, l)
	if err != nil {
		l.Fatal("failed to initialize tile cache", "error", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			l.Error("failed to close tile cache", "error", err)
		}
	}()

	stopStats := make(chan struct{})
	defer close(stopStats)
	if rs, ok := closer.(poolStatsRecorder); ok {
		go recordPoolStats(rs, stopStats)
	}

	tr := transport.NewHTTPTransport(
		transport.WithClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		transport.WithUserAgent(cfg.Upstream.UserAgent),
		transport.WithHeader("Referer", cfg.Upstream.Referer),
	)

	tileUseCase := usecase.NewTileUseCase(schema, req, tileCache, tr, l)

	h := handler.NewHandler(validator.New(), tileUseCase, cfg.Layer.Workers)
	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName)

	httpServer := http_server.NewServer(ctx, cfg.HTTP.Server, router)

	stop, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	l.Info("starting http server...", "address", httpServer.Addr())
	if err := httpServer.Run(stop); err != nil {
		l.Error("http server stopped with error", "error", err)
	} else {
		l.Info("http server shutdown completed")
	}

	l.Info("application shutdown completed")
}

type poolStatsRecorder interface {
	RecordPoolStats()
}

func recordPoolStats(r poolStatsRecorder, stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RecordPoolStats()
		case <-stop:
			return
		}
	}
}
