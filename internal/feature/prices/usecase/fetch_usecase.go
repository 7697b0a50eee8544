// Package usecase は上流プロバイダーから日次終値を取得するユースケースを実装します。
package usecase

import (
	"context"
	"log/slog"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/errgroup"

	"stock_compare/internal/feature/prices/domain/entity"
)

const (
	// DefaultConcurrency は同時に実行する上流リクエスト数のデフォルト値です。
	DefaultConcurrency = 4
	// MaxSymbols は1回のリクエストで扱える銘柄数の上限です。
	MaxSymbols = 20
)

// MarketRepository は日次終値を取得する外部APIの抽象です。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetDailyCloses(ctx context.Context, symbol string, start, end civil.Date) ([]entity.RawPoint, error)
}

// RateLimiter は上流APIの呼び出し頻度を制限します。
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// FetchUsecase は銘柄ごとの時系列を並行して取得します。
type FetchUsecase struct {
	market      MarketRepository
	rateLimiter RateLimiter
	concurrency int
}

// NewFetchUsecase は新しい FetchUsecase を作成します。
// concurrency が0以下の場合は DefaultConcurrency を使用します。
func NewFetchUsecase(market MarketRepository, rateLimiter RateLimiter, concurrency int) *FetchUsecase {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &FetchUsecase{market: market, rateLimiter: rateLimiter, concurrency: concurrency}
}

// FetchSeries は symbols と同じ順序で銘柄ごとに1本の RawSeries を返します。
// 銘柄単位の取得失敗は空の系列に縮退させ、エラーとしては返しません。
// コンテキストのキャンセルのみエラーとして返します。
func (u *FetchUsecase) FetchSeries(ctx context.Context, symbols []string, start, end civil.Date) ([]entity.RawSeries, error) {
	out := make([]entity.RawSeries, len(symbols))
	for i, s := range symbols {
		out[i] = entity.RawSeries{Symbol: s, Points: []entity.RawPoint{}}
	}
	if len(symbols) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, s := range symbols {
		g.Go(func() error {
			if u.rateLimiter != nil {
				if err := u.rateLimiter.Wait(gctx); err != nil {
					return err
				}
			}
			points, err := u.market.GetDailyCloses(gctx, s, start, end)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// 1銘柄の失敗で全体を止めず、その銘柄は「データなし」として扱う
				slog.Warn("failed to fetch daily closes", "symbol", s, "start", start.String(), "end", end.String(), "error", err)
				return nil
			}
			if points != nil {
				out[i].Points = points
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
