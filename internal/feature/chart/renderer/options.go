package renderer

import (
	"stock_compare/internal/feature/chart/domain/entity"
)

// Axis ids used by datasets to pick their value axis.
const (
	AxisPercent = "percent"
	AxisRaw     = "raw"
)

// Options is the option descriptor of the chart instance. Times are Unix
// milliseconds.
type Options struct {
	Animation bool           `json:"animation"`
	Height    int            `json:"height"`
	Palette   Palette        `json:"palette"`
	Scales    Scales         `json:"scales"`
	Legend    Legend         `json:"legend"`
	Tooltip   TooltipOptions `json:"tooltip"`
	Zoom      ZoomOptions    `json:"zoom"`
}

type Scales struct {
	X       TimeAxis   `json:"x"`
	Percent *ValueAxis `json:"percent,omitempty"`
	Raw     *ValueAxis `json:"raw,omitempty"`
}

type TimeAxis struct {
	Type      string `json:"type"`
	Unit      string `json:"unit"`
	Min       int64  `json:"min"`
	Max       int64  `json:"max"`
	TickColor string `json:"tickColor"`
	GridColor string `json:"gridColor"`
}

type ValueAxis struct {
	Position     string `json:"position"`
	Title        string `json:"title"`
	TickPrefix   string `json:"tickPrefix,omitempty"`
	TickSuffix   string `json:"tickSuffix,omitempty"`
	TickColor    string `json:"tickColor"`
	GridColor    string `json:"gridColor"`
	DrawGridArea bool   `json:"drawGridArea"`
}

type Legend struct {
	Display bool          `json:"display"`
	Color   string        `json:"color"`
	Entries []LegendEntry `json:"entries"`
}

type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type TooltipOptions struct {
	Enabled    bool   `json:"enabled"`
	Mode       string `json:"mode"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Border     string `json:"border"`
}

// ZoomOptions configures the pan/zoom gesture plugin. Limits mirror the
// server-side clamp so the painter never requests an out-of-bounds view.
type ZoomOptions struct {
	LimitMin   int64  `json:"limitMin"`
	LimitMax   int64  `json:"limitMax"`
	MinRangeMs int64  `json:"minRangeMs"`
	PanEnabled bool   `json:"panEnabled"`
	WheelZoom  bool   `json:"wheelZoom"`
	PinchZoom  bool   `json:"pinchZoom"`
	Mode       string `json:"mode"`
}

// Dataset is one plotted line.
type Dataset struct {
	Label    string      `json:"label"`
	AxisID   string      `json:"axisId"`
	Color    string      `json:"color"`
	SpanGaps bool        `json:"spanGaps"`
	Points   []DataPoint `json:"points"`
}

type DataPoint struct {
	X int64   `json:"x"`
	Y float64 `json:"y"`
}

// BuildOptions derives the option descriptor from the chart state and the
// current view. Animation is always off.
func BuildOptions(state entity.ChartState, view ViewRange) Options {
	pal := PaletteFor(state.Theme)

	var hasPercent, hasRaw bool
	legend := Legend{Display: true, Color: pal.Text, Entries: make([]LegendEntry, 0, len(state.Datasets))}
	for i, s := range state.Datasets {
		if s.Passthrough {
			hasRaw = true
		} else {
			hasPercent = true
		}
		legend.Entries = append(legend.Entries, LegendEntry{Label: s.Symbol, Color: SeriesColor(i)})
	}

	opts := Options{
		Animation: false,
		Height:    state.ContainerHeightPx,
		Palette:   pal,
		Scales: Scales{
			X: TimeAxis{
				Type:      "time",
				Unit:      "day",
				Min:       view.Min.UnixMilli(),
				Max:       view.Max.UnixMilli(),
				TickColor: pal.Text,
				GridColor: pal.Grid,
			},
		},
		Legend: legend,
		Tooltip: TooltipOptions{
			Enabled:    state.TooltipEnabled,
			Mode:       "index",
			Background: pal.TooltipBackground,
			Text:       pal.TooltipText,
			Border:     pal.TooltipBorder,
		},
		Zoom: ZoomOptions{
			LimitMin:   state.ZoomWindow.Min().UnixMilli(),
			LimitMax:   state.ZoomWindow.Max().UnixMilli(),
			MinRangeMs: minSpanFor(state.ZoomWindow).Milliseconds(),
			PanEnabled: true,
			WheelZoom:  true,
			PinchZoom:  true,
			Mode:       "x",
		},
	}

	if hasPercent {
		opts.Scales.Percent = &ValueAxis{
			Position:     "left",
			Title:        "Change (%)",
			TickSuffix:   "%",
			TickColor:    pal.Text,
			GridColor:    pal.Grid,
			DrawGridArea: true,
		}
	}
	if hasRaw {
		opts.Scales.Raw = &ValueAxis{
			Position:   "right",
			Title:      rawAxisTitle(state.Datasets),
			TickPrefix: rawAxisPrefix(state.Datasets),
			TickColor:  pal.Text,
			GridColor:  pal.Grid,
			// Only the primary axis draws grid lines when both are shown.
			DrawGridArea: !hasPercent,
		}
	}
	return opts
}

// BuildDatasets converts normalized series to line datasets. Points without
// a value are omitted and the line spans across them.
func BuildDatasets(series []entity.NormalizedSeries) []Dataset {
	out := make([]Dataset, 0, len(series))
	for i, s := range series {
		ds := Dataset{
			Label:    s.Symbol,
			AxisID:   AxisPercent,
			Color:    SeriesColor(i),
			SpanGaps: true,
			Points:   make([]DataPoint, 0, len(s.Points)),
		}
		if s.Passthrough {
			ds.AxisID = AxisRaw
		}
		for _, p := range s.Points {
			if p.Value == nil {
				continue
			}
			ds.Points = append(ds.Points, DataPoint{X: p.Timestamp.UnixMilli(), Y: *p.Value})
		}
		out = append(out, ds)
	}
	return out
}

func rawAxisTitle(series []entity.NormalizedSeries) string {
	for _, s := range series {
		if s.Passthrough {
			if s.Unit != "" {
				return s.Symbol + " (" + s.Unit + ")"
			}
			return s.Symbol
		}
	}
	return ""
}

func rawAxisPrefix(series []entity.NormalizedSeries) string {
	for _, s := range series {
		if s.Passthrough {
			return unitPrefix(s.Unit)
		}
	}
	return ""
}
