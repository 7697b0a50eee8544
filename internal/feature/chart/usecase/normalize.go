// Package usecase は価格系列の整列・正規化とチャート用データセットの構築を実装します。
package usecase

import (
	"fmt"
	"math"
	"sort"

	"cloud.google.com/go/civil"

	"stock_compare/internal/feature/chart/domain/entity"
	prices "stock_compare/internal/feature/prices/domain/entity"
)

// Normalize は銘柄ごとの生系列を表示期間で絞り込み、基準値からの変化率に変換します。
//
// specs[i] が raw[i] の描画方法を表します。Passthrough の系列は価格をそのまま返し、
// それ以外は最初の期間内価格を基準に (price - baseline) / baseline * 100 を計算します。
// 基準値が0の場合は値を nil とし、NaN や Inf を返すことはありません。
//
// 入力は変更せず、同じ入力に対して常に同じ結果を返します。
func Normalize(specs []entity.SeriesSpec, raw []prices.RawSeries, window entity.DateWindow) ([]entity.NormalizedSeries, error) {
	if len(specs) != len(raw) {
		return nil, fmt.Errorf("%w: %d symbols, %d series", ErrShapeMismatch, len(specs), len(raw))
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	out := make([]entity.NormalizedSeries, 0, len(specs))
	for i, spec := range specs {
		s, err := normalizeOne(spec, raw[i], window)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", spec.Symbol, err)
		}
		out = append(out, s)
	}
	return out, nil
}

type datedPrice struct {
	date  civil.Date
	price float64
}

func normalizeOne(spec entity.SeriesSpec, raw prices.RawSeries, window entity.DateWindow) (entity.NormalizedSeries, error) {
	series := entity.NormalizedSeries{
		Symbol:      spec.Symbol,
		Passthrough: spec.Passthrough,
		Unit:        spec.Unit,
		Points:      []entity.NormalizedPoint{},
	}

	seen := make(map[civil.Date]struct{}, len(raw.Points))
	kept := make([]datedPrice, 0, len(raw.Points))
	for _, p := range raw.Points {
		d, err := civil.ParseDate(p.Date)
		if err != nil {
			return series, fmt.Errorf("%w: %q", ErrMalformedDate, p.Date)
		}
		if _, dup := seen[d]; dup {
			return series, fmt.Errorf("%w: %s", ErrDuplicateDate, d)
		}
		seen[d] = struct{}{}

		if !window.Contains(d) || p.Price == nil {
			continue
		}
		v := *p.Price
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		kept = append(kept, datedPrice{date: d, price: v})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].date.Before(kept[j].date) })

	if len(kept) == 0 {
		return series, nil
	}
	baseline := kept[0].price
	series.Baseline = &baseline

	for _, k := range kept {
		pt := entity.NormalizedPoint{
			Date:      k.date,
			Timestamp: entity.Timestamp(k.date),
			RawValue:  k.price,
		}
		switch {
		case spec.Passthrough:
			v := k.price
			pt.Value = &v
		case baseline != 0:
			// 非正規化数の基準値では結果が溢れるため、その点は値なしとする
			if v := (k.price - baseline) / baseline * 100; !math.IsInf(v, 0) && !math.IsNaN(v) {
				pt.Value = &v
			}
		}
		series.Points = append(series.Points, pt)
	}
	return series, nil
}
