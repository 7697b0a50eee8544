package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"

	"stock_compare/internal/feature/chart/domain/entity"
	prices "stock_compare/internal/feature/prices/domain/entity"
)

// MaxSymbols は1つのチャートに表示できる銘柄数の上限です。
const MaxSymbols = 20

// SeriesFetcher は銘柄ごとの日次終値を取得します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, symbols []string, start, end civil.Date) ([]prices.RawSeries, error)
}

// SymbolInfo は銘柄マスタから得られる描画用の属性です。
type SymbolInfo struct {
	Passthrough bool
	Currency    string
}

// SymbolCatalog は銘柄コードから描画属性を引きます。未登録のコードは結果に含めません。
type SymbolCatalog interface {
	Lookup(ctx context.Context, codes []string) (map[string]SymbolInfo, error)
}

// Selection は画面の選択状態（銘柄・期間・生値表示する銘柄）です。
type Selection struct {
	Symbols []string
	Window  entity.DateWindow
	// Passthrough は生値のまま別軸に描画する銘柄です。nil の場合は銘柄マスタの設定を使います。
	Passthrough []string
}

// Datasets はチャートに渡す正規化済みデータセットです。
type Datasets struct {
	Window entity.DateWindow
	Series []entity.NormalizedSeries
}

// Empty reports whether nothing would be plotted.
func (d Datasets) Empty() bool {
	return !entity.HasData(d.Series)
}

// ChartUsecase は価格取得と正規化をまとめ、チャート用データセットを構築します。
type ChartUsecase struct {
	fetcher SeriesFetcher
	catalog SymbolCatalog
}

// NewChartUsecase は新しい ChartUsecase を作成します。catalog は nil でも構いません。
func NewChartUsecase(fetcher SeriesFetcher, catalog SymbolCatalog) *ChartUsecase {
	return &ChartUsecase{fetcher: fetcher, catalog: catalog}
}

// BuildDatasets は選択状態から正規化済みデータセットを構築します。
// 銘柄が空の場合は空のデータセットを返し、エラーにはしません。
func (u *ChartUsecase) BuildDatasets(ctx context.Context, sel Selection) (Datasets, error) {
	if err := sel.Window.Validate(); err != nil {
		return Datasets{}, err
	}
	symbols := cleanSymbols(sel.Symbols)
	if len(symbols) > MaxSymbols {
		return Datasets{}, fmt.Errorf("%w: %d > %d", ErrTooManySymbols, len(symbols), MaxSymbols)
	}
	out := Datasets{Window: sel.Window, Series: []entity.NormalizedSeries{}}
	if len(symbols) == 0 {
		return out, nil
	}

	specs := u.seriesSpecs(ctx, symbols, sel.Passthrough)

	raw, err := u.fetcher.FetchSeries(ctx, symbols, sel.Window.Start, sel.Window.End)
	if err != nil {
		return Datasets{}, err
	}

	series, err := Normalize(specs, raw, sel.Window)
	if err != nil {
		return Datasets{}, err
	}
	out.Series = series
	return out, nil
}

// seriesSpecs は銘柄ごとの描画方法を決定します。
// 銘柄マスタの参照に失敗しても描画は続行します（単位表示と自動判定のみ失われる）。
func (u *ChartUsecase) seriesSpecs(ctx context.Context, symbols, passthrough []string) []entity.SeriesSpec {
	var info map[string]SymbolInfo
	if u.catalog != nil {
		m, err := u.catalog.Lookup(ctx, symbols)
		if err != nil {
			slog.Warn("symbol catalog lookup failed", "symbols", symbols, "error", err)
		} else {
			info = m
		}
	}

	var explicit map[string]struct{}
	if passthrough != nil {
		explicit = make(map[string]struct{}, len(passthrough))
		for _, s := range cleanSymbols(passthrough) {
			explicit[s] = struct{}{}
		}
	}

	specs := make([]entity.SeriesSpec, 0, len(symbols))
	for _, s := range symbols {
		si := info[s]
		spec := entity.SeriesSpec{Symbol: s, Unit: si.Currency}
		if explicit != nil {
			_, spec.Passthrough = explicit[s]
		} else {
			spec.Passthrough = si.Passthrough
		}
		specs = append(specs, spec)
	}
	return specs
}

// cleanSymbols は空白を除去し、空の要素を取り除きます。重複は許容します。
func cleanSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
