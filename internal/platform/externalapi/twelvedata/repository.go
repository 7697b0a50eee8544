package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"stock_compare/internal/feature/prices/domain/entity"
	"stock_compare/internal/feature/prices/usecase"
	"stock_compare/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataMarket はTwelve Data外部APIから日次終値を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetDailyCloses はTwelve Data APIから [start, end] の日足終値を取得し、
// 日付昇順の entity.RawPoint のスライスとして返します。
// 終値が空文字の日は価格なし（nil）として扱います。
func (t *TwelveDataMarket) GetDailyCloses(ctx context.Context, symbol string, start, end civil.Date) ([]entity.RawPoint, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("start_date", start.String())
	// end_date は排他的に扱われるため1日進める
	q.Set("end_date", end.AddDays(1).String())
	q.Set("order", "ASC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLを生成
	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		// 期間内にデータがない場合もエラーとして返されるため、空の系列として扱う
		if body.Code == http.StatusBadRequest && strings.Contains(body.Message, "No data is available") {
			return []entity.RawPoint{}, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	points := make([]entity.RawPoint, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース（日付部分のみ使用）
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		p := entity.RawPoint{Date: civil.DateOf(tm).String()}

		// 終値をパース（空文字は価格なし）
		if v.Close != "" {
			c, err := strconv.ParseFloat(v.Close, 64)
			if err != nil {
				return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
			}
			p.Price = &c
		}
		points = append(points, p)
	}
	return points, nil
}
