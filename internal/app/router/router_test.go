package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stock_compare/internal/feature/chart/renderer"
	charthandler "stock_compare/internal/feature/chart/transport/handler"
	chartusecase "stock_compare/internal/feature/chart/usecase"
	"stock_compare/internal/feature/prices/domain/entity"
	priceshandler "stock_compare/internal/feature/prices/transport/handler"
	symbolentity "stock_compare/internal/feature/symbollist/domain/entity"
	symbollisthandler "stock_compare/internal/feature/symbollist/transport/handler"
	"stock_compare/internal/platform/http/handler"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubSymbols struct{}

func (stubSymbols) ListActiveSymbols(ctx context.Context) ([]symbolentity.Symbol, error) {
	return []symbolentity.Symbol{{Code: "AAPL", Name: "Apple Inc."}}, nil
}

func (stubSymbols) SearchSymbols(ctx context.Context, query string, limit int) ([]symbolentity.Symbol, error) {
	return nil, nil
}

type stubFetch struct{}

func (stubFetch) FetchSeries(ctx context.Context, symbols []string, start, end civil.Date) ([]entity.RawSeries, error) {
	out := make([]entity.RawSeries, len(symbols))
	for i, s := range symbols {
		out[i] = entity.RawSeries{Symbol: s, Points: []entity.RawPoint{}}
	}
	return out, nil
}

func newTestRouter(origins []string) *gin.Engine {
	fetch := stubFetch{}
	return NewRouter(Handlers{
		Health: handler.NewHealthHandler(),
		Symbol: symbollisthandler.NewSymbolHandler(stubSymbols{}),
		Series: priceshandler.NewSeriesHandler(fetch),
		Chart:  charthandler.NewChartHandler(chartusecase.NewChartUsecase(fetch, nil), renderer.Config{}, nil),
	}, origins)
}

func TestNewRouter_Routes(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/healthz", http.StatusOK},
		{http.MethodGet, "/symbols", http.StatusOK},
		{http.MethodGet, "/symbols/search?q=AA", http.StatusOK},
		{http.MethodGet, "/series?symbols=AAPL&start=2024-01-02&end=2024-01-05", http.StatusOK},
		{http.MethodGet, "/chart/datasets?symbols=AAPL&start=2024-01-02&end=2024-01-05", http.StatusOK},
		{http.MethodGet, "/chart/datasets?symbols=AAPL&start=bad&end=2024-01-05", http.StatusBadRequest},
		{http.MethodGet, "/candles/AAPL", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestNewRouter_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{name: "all origins when unset", origins: nil, origin: "http://localhost:5173", want: "*"},
		{name: "listed origin echoed", origins: []string{"http://localhost:5173"}, origin: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "unlisted origin rejected", origins: []string{"http://localhost:5173"}, origin: "http://evil.example", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(tt.origins)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
