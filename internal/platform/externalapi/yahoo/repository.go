package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"stock_compare/internal/feature/prices/domain/entity"
	"stock_compare/internal/feature/prices/usecase"
	"stock_compare/internal/platform/externalapi/yahoo/dto"
)

// YahooMarket implements MarketRepository using the Yahoo Finance chart API.
type YahooMarket struct {
	cfg    Config
	client *http.Client
}

var _ usecase.MarketRepository = (*YahooMarket)(nil)

// NewYahooMarket creates a new Yahoo Finance market client.
func NewYahooMarket(cfg Config, client *http.Client) *YahooMarket {
	return &YahooMarket{cfg: cfg, client: client}
}

// GetDailyCloses fetches daily closes in [start, end], oldest first.
// Bar timestamps are mapped to calendar days in the exchange's timezone so
// that a session opening at 09:30 New York time stays on its own date.
func (y *YahooMarket) GetDailyCloses(ctx context.Context, symbol string, start, end civil.Date) ([]entity.RawPoint, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", strconv.FormatInt(start.In(time.UTC).Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.AddDays(1).In(time.UTC).Unix(), 10))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if y.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", y.cfg.UserAgent)
	}

	res, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	var body dto.ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return []entity.RawPoint{}, nil
	}

	result := body.Chart.Result[0]
	loc := time.UTC
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			slog.Debug("unknown exchange timezone, using UTC", "timezone", tz, "error", err)
		}
	}

	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	byDay := make(map[civil.Date]*float64, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		d := civil.DateOf(time.Unix(ts, 0).In(loc))
		var price *float64
		if i < len(closes) && closes[i] != nil && !math.IsNaN(*closes[i]) {
			v := *closes[i]
			price = &v
		}
		// Yahoo may append a live bar for the current day; keep the last one seen.
		if prev, ok := byDay[d]; ok && price == nil {
			price = prev
		}
		byDay[d] = price
	}

	days := make([]civil.Date, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]entity.RawPoint, 0, len(days))
	for _, d := range days {
		points = append(points, entity.RawPoint{Date: d.String(), Price: byDay[d]})
	}
	return points, nil
}
