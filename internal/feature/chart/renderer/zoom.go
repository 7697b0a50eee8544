package renderer

import (
	"errors"
	"math"
	"time"

	"stock_compare/internal/feature/chart/domain/entity"
)

// ErrInvalidRange is returned for a zoom request whose max precedes its min
// or whose factor is not positive.
var ErrInvalidRange = errors.New("invalid zoom range")

// MinSpan is the narrowest view of the time axis.
const MinSpan = entity.Day

// ViewRange is the visible part of the time axis.
type ViewRange struct {
	Min time.Time
	Max time.Time
}

// Span returns the visible duration.
func (v ViewRange) Span() time.Duration {
	return v.Max.Sub(v.Min)
}

// FullView returns the view covering the whole window.
func FullView(w entity.DateWindow) ViewRange {
	return ViewRange{Min: w.Min(), Max: w.Max()}
}

// minSpanFor is one day, or the whole window when the window is shorter.
func minSpanFor(w entity.DateWindow) time.Duration {
	if s := w.Span(); s < MinSpan {
		return s
	}
	return MinSpan
}

// ClampView fits v inside the window: the span is raised to the minimum and
// capped at the window span, then the range is shifted back inside the bounds.
func ClampView(v ViewRange, w entity.DateWindow) ViewRange {
	lo, hi := w.Min(), w.Max()
	span := v.Span()
	if minSpan := minSpanFor(w); span < minSpan {
		span = minSpan
	}
	if span >= hi.Sub(lo) {
		return ViewRange{Min: lo, Max: hi}
	}

	start := v.Min
	if start.Before(lo) {
		start = lo
	}
	if end := start.Add(span); end.After(hi) {
		start = hi.Add(-span)
	}
	return ViewRange{Min: start, Max: start.Add(span)}
}

// ZoomTo returns the clamped view for an explicit [min, max] request.
func ZoomTo(min, max time.Time, w entity.DateWindow) (ViewRange, error) {
	if max.Before(min) {
		return ViewRange{}, ErrInvalidRange
	}
	return ClampView(ViewRange{Min: min, Max: max}, w), nil
}

// ZoomBy scales the current view around center. factor > 1 zooms in.
// The center keeps its relative position within the view.
func ZoomBy(v ViewRange, factor float64, center time.Time, w entity.DateWindow) (ViewRange, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return ViewRange{}, ErrInvalidRange
	}
	span := v.Span()
	if span <= 0 {
		return ClampView(v, w), nil
	}
	if center.Before(v.Min) {
		center = v.Min
	}
	if center.After(v.Max) {
		center = v.Max
	}
	ratio := float64(center.Sub(v.Min)) / float64(span)
	// time.Duration へ変換する前にウィンドウ幅で頭打ちにする
	newSpan := w.Span()
	if f := float64(span) / factor; f < float64(newSpan) {
		newSpan = time.Duration(f)
	}
	if minSpan := minSpanFor(w); newSpan < minSpan {
		newSpan = minSpan
	}
	start := center.Add(-time.Duration(ratio * float64(newSpan)))
	return ClampView(ViewRange{Min: start, Max: start.Add(newSpan)}, w), nil
}

// Pan shifts the view by delta, stopping at the window bounds. The span is kept.
func Pan(v ViewRange, delta time.Duration, w entity.DateWindow) ViewRange {
	limit := w.Span()
	delta = max(-limit, min(delta, limit))
	return ClampView(ViewRange{Min: v.Min.Add(delta), Max: v.Max.Add(delta)}, w)
}
