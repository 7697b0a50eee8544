// Package entity defines the domain models for the prices feature.
package entity

// RawPoint is one daily close as reported by the upstream provider.
type RawPoint struct {
	Date  string   // Calendar day in ISO form (e.g., "2024-01-02")
	Price *float64 // Closing price; nil when there was no trade or quote that day
}

// RawSeries is the date-ordered list of closes for one symbol.
// Dates are unique within a series; two series may cover different dates.
type RawSeries struct {
	Symbol string
	Points []RawPoint
}

// Present reports whether the point carries a price.
func (p RawPoint) Present() bool {
	return p.Price != nil
}

// Price returns a pointer to v, for building RawPoints inline.
func Price(v float64) *float64 {
	return &v
}
