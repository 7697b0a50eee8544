package entity

import (
	"time"

	"cloud.google.com/go/civil"
)

// SeriesSpec describes how one requested symbol is plotted.
type SeriesSpec struct {
	Symbol      string
	Passthrough bool   // plot raw prices on the raw axis, without percent transform
	Unit        string // ISO currency code used as the tooltip prefix for passthrough series
}

// NormalizedPoint is one plotted point.
type NormalizedPoint struct {
	Date      civil.Date
	Timestamp time.Time
	Value     *float64 // percent change, or the raw price for passthrough series; nil when undefined
	RawValue  float64  // original close, kept for the tooltip
}

// NormalizedSeries is the window-filtered, transformed series for one symbol.
type NormalizedSeries struct {
	Symbol      string
	Passthrough bool
	Unit        string
	Baseline    *float64 // first in-window price; nil when the series is empty
	Points      []NormalizedPoint
}

// PlottedLen returns the number of points that carry a value.
func (s NormalizedSeries) PlottedLen() int {
	n := 0
	for _, p := range s.Points {
		if p.Value != nil {
			n++
		}
	}
	return n
}

// HasData reports whether any series has at least one plotted point.
func HasData(series []NormalizedSeries) bool {
	for _, s := range series {
		if s.PlottedLen() > 0 {
			return true
		}
	}
	return false
}
