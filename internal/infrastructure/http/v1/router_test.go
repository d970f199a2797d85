package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaennil/brutile/internal/infrastructure/http/v1/dto"
	"github.com/jaennil/brutile/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/brutile/internal/repository/cache"
	"github.com/jaennil/brutile/internal/request"
	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/internal/transport"
	"github.com/jaennil/brutile/internal/usecase"
	"github.com/jaennil/brutile/pkg/logger"
)

var pngTile = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x01\x00\x00\x00\x01\x00")

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	calls  atomic.Int32
}

func testSchemaConfig() tiling.SchemaConfig {
	return tiling.SchemaConfig{
		Name:        "test",
		SRS:         "EPSG:3857",
		Extent:      tiling.Extent{MinX: 0, MinY: 0, MaxX: 1024, MaxY: 1024},
		TileWidth:   256,
		TileHeight:  256,
		Format:      "png",
		Resolutions: []float64{4, 2, 1},
		Axis:        tiling.Normal,
	}
}

func newTestServer(t *testing.T, fetch transport.Func) *testServer {
	return newTestServerWithSchema(t, fetch, testSchemaConfig())
}

func newTestServerWithSchema(t *testing.T, fetch transport.Func, cfg tiling.SchemaConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	schema, err := tiling.NewSchema(cfg)
	require.NoError(t, err)

	ts := &testServer{}
	counted := transport.Func(func(ctx context.Context, locator string) (*transport.Response, error) {
		ts.calls.Add(1)
		return fetch(ctx, locator)
	})

	l := logger.NewNop()
	uc := usecase.NewTileUseCase(schema, request.NewXYZRequest("http://upstream", "png"), cache.NewMapCache(), counted, l)
	h := handler.NewHandler(validator.New(), uc, 4)
	ts.router = NewRouter(h, l, false, "test")
	return ts
}

func okFetch(context.Context, string) (*transport.Response, error) {
	return &transport.Response{Data: pngTile, ContentType: "image/png"}, nil
}

func (ts *testServer) get(t *testing.T, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, okFetch)

	w := ts.get(t, "/api/v1/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestTile(t *testing.T) {
	var locator string
	ts := newTestServer(t, func(_ context.Context, l string) (*transport.Response, error) {
		locator = l
		return &transport.Response{Data: pngTile}, nil
	})

	w := ts.get(t, "/api/v1/tile/2/3/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "upstream", w.Header().Get("X-Tile-Source"))
	assert.Equal(t, pngTile, w.Body.Bytes())
	assert.Equal(t, "http://upstream/2/3/1.png", locator)

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = ts.get(t, "/api/v1/tile/2/3/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cache", w.Header().Get("X-Tile-Source"))
	assert.Equal(t, etag, w.Header().Get("ETag"))

	w = ts.get(t, "/api/v1/tile/2/3/1", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())

	assert.EqualValues(t, 1, ts.calls.Load())
}

func TestTileErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		fetch    transport.Func
		wantCode int
		wantMsg  string
	}{
		{
			name:     "non integer",
			path:     "/api/v1/tile/2/a/1",
			fetch:    okFetch,
			wantCode: http.StatusBadRequest,
			wantMsg:  "x should be integer",
		},
		{
			name:     "outside schema",
			path:     "/api/v1/tile/2/4/0",
			fetch:    okFetch,
			wantCode: http.StatusNotFound,
			wantMsg:  handler.ErrTileNotFound.Error(),
		},
		{
			name:     "level out of range",
			path:     "/api/v1/tile/7/0/0",
			fetch:    okFetch,
			wantCode: http.StatusNotFound,
			wantMsg:  handler.ErrTileNotFound.Error(),
		},
		{
			name: "upstream down",
			path: "/api/v1/tile/0/0/0",
			fetch: func(_ context.Context, l string) (*transport.Response, error) {
				return nil, &transport.StatusError{Locator: l, StatusCode: http.StatusServiceUnavailable}
			},
			wantCode: http.StatusBadGateway,
			wantMsg:  handler.ErrUpstreamFailed.Error(),
		},
		{
			name: "wrong format",
			path: "/api/v1/tile/0/0/0",
			fetch: func(context.Context, string) (*transport.Response, error) {
				return &transport.Response{Data: []byte("<html>blocked</html>")}, nil
			},
			wantCode: http.StatusBadGateway,
			wantMsg:  handler.ErrUpstreamFormat.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.fetch)

			w := ts.get(t, tt.path)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decode(t, w, nil)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestTileCancelledByClient(t *testing.T) {
	ts := newTestServer(t, okFetch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tile/0/0/0", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Zero(t, ts.calls.Load())
}

func TestTiles(t *testing.T) {
	ts := newTestServer(t, okFetch)

	var data dto.TilesResponse
	w := ts.get(t, "/api/v1/tiles?bbox=0,0,1024,1024&level=2")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)
	assert.Equal(t, 2, data.Level)
	assert.Equal(t, 16, data.Count)
	assert.Len(t, data.Tiles, 16)

	w = ts.get(t, "/api/v1/tiles?bbox=0,0,1024,1024&resolution=3.5")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)
	assert.Equal(t, 0, data.Level)
	require.Len(t, data.Tiles, 1)
	assert.Equal(t, tiling.Extent{MinX: 0, MinY: 0, MaxX: 1024, MaxY: 1024}, data.Tiles[0].Extent)

	w = ts.get(t, "/api/v1/tiles?bbox=0,0,1024,1024&level=0")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)
	assert.Equal(t, 0, data.Level)
	assert.Equal(t, 1, data.Count)
}

func TestTilesBadRequest(t *testing.T) {
	ts := newTestServer(t, okFetch)

	for _, path := range []string{
		"/api/v1/tiles?bbox=0,0,1024,1024",
		"/api/v1/tiles?level=1",
		"/api/v1/tiles?bbox=0,0,1024&level=1",
		"/api/v1/tiles?bbox=0,0,1024,1024&level=-1",
		"/api/v1/tiles?bbox=0,0,1024,1024&level=3",
		"/api/v1/tiles?bbox=0,0,1024,1024&resolution=0",
		"/api/v1/tiles?bbox=0,0,1024,1024&level=abc",
	} {
		w := ts.get(t, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestExtent(t *testing.T) {
	ts := newTestServer(t, okFetch)

	var data dto.ExtentResponse
	w := ts.get(t, "/api/v1/extent?bbox=10,10,300,300&level=2")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)
	assert.Equal(t, tiling.Extent{MinX: 0, MinY: 0, MaxX: 512, MaxY: 512}, data.Extent)

	w = ts.get(t, "/api/v1/extent?bbox=10,10,300,300")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestView(t *testing.T) {
	ts := newTestServer(t, okFetch)

	var data dto.ViewResponse
	w := ts.get(t, "/api/v1/view?bbox=0,0,512,512&resolution=1")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)

	assert.Equal(t, 2, data.Level)
	require.Equal(t, 4, data.Count)
	for _, tile := range data.Tiles {
		assert.Equal(t, "ok", tile.Status)
		assert.Equal(t, len(pngTile), tile.Size)
	}
	assert.Equal(t, 0, data.Tiles[0].Col)
	assert.Equal(t, 0, data.Tiles[0].Row)
	assert.EqualValues(t, 4, ts.calls.Load())
}

func TestViewReportsFailures(t *testing.T) {
	ts := newTestServer(t, func(context.Context, string) (*transport.Response, error) {
		return nil, errors.New("connection refused")
	})

	var data dto.ViewResponse
	w := ts.get(t, "/api/v1/view?bbox=0,0,1024,1024&resolution=4")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)

	require.Len(t, data.Tiles, 1)
	assert.Equal(t, "transport", data.Tiles[0].Status)
	assert.Contains(t, data.Tiles[0].Error, "connection refused")
}

func TestTooManyTiles(t *testing.T) {
	cfg := testSchemaConfig()
	cfg.MaxTiles = 8
	ts := newTestServerWithSchema(t, okFetch, cfg)

	for _, path := range []string{
		"/api/v1/tiles?bbox=0,0,1024,1024&level=2",
		"/api/v1/tiles?bbox=0,0,1024,1024&resolution=1",
		"/api/v1/view?bbox=0,0,1024,1024&resolution=1",
	} {
		w := ts.get(t, path)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		resp := decode(t, w, nil)
		assert.False(t, resp.Success, path)
		assert.Equal(t, handler.ErrTooManyTiles.Error(), resp.Message, path)
	}
	assert.Zero(t, ts.calls.Load())

	w := ts.get(t, "/api/v1/tiles?bbox=0,0,1024,1024&level=1")
	assert.Equal(t, http.StatusOK, w.Code)

	var data dto.ViewResponse
	w = ts.get(t, "/api/v1/view?bbox=0,0,512,512&resolution=1")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)
	assert.Equal(t, 4, data.Count)
}

func TestSchema(t *testing.T) {
	ts := newTestServer(t, okFetch)

	var data dto.SchemaResponse
	w := ts.get(t, "/api/v1/schema")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)

	assert.Equal(t, "test", data.Name)
	assert.Equal(t, "normal", data.Axis)
	assert.Equal(t, []float64{4, 2, 1}, data.Resolutions)
	assert.Equal(t, tiling.DefaultMaxTiles, data.MaxTiles)
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, okFetch)

	ts.get(t, "/api/v1/tile/0/0/0")
	w := ts.get(t, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tiles_requests_total")
}
