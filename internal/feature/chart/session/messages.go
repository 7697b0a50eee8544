package session

import (
	"math"
	"time"

	"stock_compare/internal/feature/chart/renderer"
)

// Client message types.
const (
	MsgSelect    = "select"
	MsgResize    = "resize"
	MsgTheme     = "theme"
	MsgZoom      = "zoom"
	MsgZoomBy    = "zoomBy"
	MsgPan       = "pan"
	MsgResetZoom = "resetZoom"
	MsgHover     = "hover"
	MsgRedraw    = "redraw"
)

// FrameError reports a rejected message or a failed fetch to the client.
const FrameError renderer.FrameKind = "error"

// ClientMessage is one event sent by the browser. Times are Unix milliseconds.
type ClientMessage struct {
	Type string `json:"type"`

	// select
	Symbols     []string `json:"symbols,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	Passthrough []string `json:"passthrough,omitempty"` // null uses the catalog flags
	ShowTooltip *bool    `json:"showTooltip,omitempty"` // default true

	// resize / theme
	ViewportHeight int  `json:"viewportHeight,omitempty"`
	Dark           bool `json:"dark,omitempty"`

	// zoom / zoomBy / pan / hover
	Min     int64   `json:"min,omitempty"`
	Max     int64   `json:"max,omitempty"`
	Factor  float64 `json:"factor,omitempty"`
	Center  int64   `json:"center,omitempty"`
	DeltaMs int64   `json:"deltaMs,omitempty"`
	Ts      int64   `json:"ts,omitempty"`
}

// gesture converts a pointer message to a renderer gesture.
func (m ClientMessage) gesture() (renderer.Gesture, bool) {
	switch m.Type {
	case MsgZoom:
		return renderer.Gesture{Kind: renderer.GestureZoom, Min: time.UnixMilli(m.Min).UTC(), Max: time.UnixMilli(m.Max).UTC()}, true
	case MsgZoomBy:
		return renderer.Gesture{Kind: renderer.GestureZoomBy, Factor: m.Factor, Center: time.UnixMilli(m.Center).UTC()}, true
	case MsgPan:
		return renderer.Gesture{Kind: renderer.GesturePan, Delta: panDelta(m.DeltaMs)}, true
	case MsgResetZoom:
		return renderer.Gesture{Kind: renderer.GestureResetZoom}, true
	case MsgHover:
		return renderer.Gesture{Kind: renderer.GestureHover, At: time.UnixMilli(m.Ts).UTC()}, true
	default:
		return renderer.Gesture{}, false
	}
}

func errorFrame(msg string) renderer.Frame {
	return renderer.Frame{Kind: FrameError, Message: msg}
}

// panDelta converts milliseconds to a Duration, saturating instead of overflowing.
func panDelta(ms int64) time.Duration {
	const limit = math.MaxInt64 / int64(time.Millisecond)
	return time.Duration(max(-limit, min(ms, limit))) * time.Millisecond
}
