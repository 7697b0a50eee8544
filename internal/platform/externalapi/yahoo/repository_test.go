package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMarket(t *testing.T, handler http.HandlerFunc) *YahooMarket {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewYahooMarket(Config{BaseURL: server.URL, UserAgent: "test-agent"}, server.Client())
}

var (
	testStart = civil.Date{Year: 2024, Month: 1, Day: 2}
	testEnd   = civil.Date{Year: 2024, Month: 1, Day: 4}
)

func TestYahooMarket_GetDailyCloses_Success(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/USDJPY=X", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1704153600", r.URL.Query().Get("period1"))
		assert.Equal(t, "1704412800", r.URL.Query().Get("period2"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		// 2024-01-02/03/04 09:30 America/New_York
		_, _ = w.Write([]byte(`{"chart": {"result": [{
			"meta": {"currency": "JPY", "symbol": "USDJPY=X", "exchangeTimezoneName": "America/New_York"},
			"timestamp": [1704205800, 1704292200, 1704378600],
			"indicators": {"quote": [{"close": [150.0, null, 149.0]}]}
		}], "error": null}}`))
	})

	points, err := market.GetDailyCloses(context.Background(), "USDJPY=X", testStart, testEnd)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2024-01-02", points[0].Date)
	require.NotNil(t, points[0].Price)
	assert.Equal(t, 150.0, *points[0].Price)
	assert.Equal(t, "2024-01-03", points[1].Date)
	assert.Nil(t, points[1].Price, "null close is an absent price")
	assert.Equal(t, "2024-01-04", points[2].Date)
	assert.Equal(t, 149.0, *points[2].Price)
}

func TestYahooMarket_GetDailyCloses_APIError(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`))
	})

	_, err := market.GetDailyCloses(context.Background(), "NOPE", testStart, testEnd)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "symbol may be delisted"))
}

func TestYahooMarket_GetDailyCloses_HTTPError(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := market.GetDailyCloses(context.Background(), "AAPL", testStart, testEnd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yahoo http 429")
}

func TestYahooMarket_GetDailyCloses_EmptyResult(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
	})

	points, err := market.GetDailyCloses(context.Background(), "AAPL", testStart, testEnd)
	require.NoError(t, err)
	assert.Empty(t, points)
}
