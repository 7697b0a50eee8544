package renderer

import "stock_compare/internal/feature/chart/domain/entity"

// Palette holds the theme-dependent colours of the chart chrome.
type Palette struct {
	Text              string `json:"text"`
	Grid              string `json:"grid"`
	TooltipBackground string `json:"tooltipBackground"`
	TooltipText       string `json:"tooltipText"`
	TooltipBorder     string `json:"tooltipBorder"`
}

var (
	lightPalette = Palette{
		Text:              "#1f2937",
		Grid:              "rgba(0, 0, 0, 0.1)",
		TooltipBackground: "rgba(255, 255, 255, 0.95)",
		TooltipText:       "#111827",
		TooltipBorder:     "#d1d5db",
	}
	darkPalette = Palette{
		Text:              "#e5e7eb",
		Grid:              "rgba(255, 255, 255, 0.1)",
		TooltipBackground: "rgba(17, 24, 39, 0.95)",
		TooltipText:       "#f9fafb",
		TooltipBorder:     "#4b5563",
	}
)

// seriesColors is cycled by dataset index.
var seriesColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#d97706", "#7c3aed",
	"#0891b2", "#db2777", "#65a30d", "#ea580c", "#4f46e5",
}

// PaletteFor returns the chrome colours for a theme.
func PaletteFor(t entity.Theme) Palette {
	if t == entity.ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// SeriesColor returns the line colour of the i-th dataset.
func SeriesColor(i int) string {
	return seriesColors[i%len(seriesColors)]
}
