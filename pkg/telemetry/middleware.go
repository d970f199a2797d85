package telemetry

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TileSourceHeader is set by the tile handler to cache, upstream or shared.
const TileSourceHeader = "X-Tile-Source"

// GinMiddleware starts a server span per request. Probes and scrapes are not
// traced. Tile requests carry their z/x/y and where the bytes came from.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasSuffix(path, "/healthz") || path == "/metrics" {
			c.Next()
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.HTTPRequestMethodKey.String(c.Request.Method),
				semconv.HTTPRoute(route),
				semconv.URLPath(path),
				semconv.ClientAddress(c.ClientIP()),
			),
		)
		defer span.End()
		span.SetAttributes(tileAttributes(c)...)

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			semconv.HTTPResponseStatusCode(status),
			attribute.Int("http.response.size", c.Writer.Size()),
		)
		if src := c.Writer.Header().Get(TileSourceHeader); src != "" {
			span.SetAttributes(attribute.String("tile.source", src))
		}

		if status >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
			if err := c.Errors.Last(); err != nil {
				span.RecordError(err)
			}
		}
	}
}

func tileAttributes(c *gin.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, p := range []struct{ param, key string }{
		{"z", "tile.level"},
		{"x", "tile.col"},
		{"y", "tile.row"},
	} {
		if v, err := strconv.Atoi(c.Param(p.param)); err == nil {
			attrs = append(attrs, attribute.Int(p.key, v))
		}
	}
	return attrs
}
