package entity

// Theme is the colour scheme of the chart.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeOf maps an OS dark-mode preference to a Theme.
func ThemeOf(dark bool) Theme {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// ChartState is everything the renderer reconciles into the chart instance.
type ChartState struct {
	Datasets          []NormalizedSeries
	Theme             Theme
	TooltipEnabled    bool
	ContainerHeightPx int
	ZoomWindow        DateWindow
}
