package renderer

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"stock_compare/internal/feature/chart/domain/entity"
)

// DefaultHoverTolerance is how far from a point the pointer may be for the
// point to count as hovered. Half a day picks the nearest daily close.
const DefaultHoverTolerance = 12 * time.Hour

// Tooltip is the hover box content for one timestamp.
type Tooltip struct {
	Title string        `json:"title"`
	Items []TooltipItem `json:"items"`
}

// TooltipItem is one series line in the tooltip. Percent and Multiplier are
// empty for passthrough series.
type TooltipItem struct {
	Symbol     string `json:"symbol"`
	Color      string `json:"color"`
	Percent    string `json:"percent,omitempty"`
	Multiplier string `json:"multiplier,omitempty"`
	Price      string `json:"price"`
	Text       string `json:"text"`
}

// BuildTooltip collects, for every series with a plotted point within
// tolerance of at, the formatted values at that point. Series without such a
// point are left out.
func BuildTooltip(series []entity.NormalizedSeries, at time.Time, tolerance time.Duration) Tooltip {
	tt := Tooltip{Title: civil.DateOf(at.UTC()).String(), Items: []TooltipItem{}}
	for i, s := range series {
		p, ok := nearestPlotted(s, at, tolerance)
		if !ok {
			continue
		}
		tt.Items = append(tt.Items, formatItem(s, p, SeriesColor(i)))
	}
	return tt
}

func nearestPlotted(s entity.NormalizedSeries, at time.Time, tolerance time.Duration) (entity.NormalizedPoint, bool) {
	var (
		best     entity.NormalizedPoint
		bestDist time.Duration = -1
	)
	for _, p := range s.Points {
		if p.Value == nil {
			continue
		}
		d := p.Timestamp.Sub(at)
		if d < 0 {
			d = -d
		}
		if d > tolerance {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist >= 0
}

func formatItem(s entity.NormalizedSeries, p entity.NormalizedPoint, color string) TooltipItem {
	item := TooltipItem{Symbol: s.Symbol, Color: color}
	if s.Passthrough {
		item.Price = unitPrefix(s.Unit) + fixed2(p.RawValue)
		item.Text = s.Symbol + ": " + item.Price
		return item
	}

	item.Percent = signedPercent(*p.Value)
	if s.Baseline != nil && *s.Baseline != 0 {
		item.Multiplier = fixed2(p.RawValue/(*s.Baseline)) + "x"
	}
	item.Price = fixed2(p.RawValue)
	item.Text = s.Symbol + ": " + item.Percent
	if item.Multiplier != "" {
		item.Text += " (" + item.Multiplier + ")"
	}
	item.Text += " " + item.Price
	return item
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func signedPercent(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// unitPrefix returns the currency symbol for an ISO code, e.g. "¥" for JPY.
// Unknown codes are shown as the code itself.
func unitPrefix(code string) string {
	if code == "" {
		return ""
	}
	if c := money.GetCurrency(code); c != nil && c.Grapheme != "" {
		return c.Grapheme
	}
	return code + " "
}
