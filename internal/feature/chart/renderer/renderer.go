// Package renderer keeps one long-lived chart instance in sync with the
// chart state of a mounted dashboard. Frames describing the instance are
// pushed to a Sink and painted verbatim by the browser.
//
// A Renderer is not safe for concurrent use. Its owner drives it from a
// single goroutine, including the listener callbacks of its Environment.
package renderer

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"stock_compare/internal/feature/chart/domain/entity"
)

var (
	ErrDisposed   = errors.New("renderer disposed")
	ErrNotMounted = errors.New("renderer not mounted")
	ErrNotReady   = errors.New("chart instance not created")
)

const (
	DefaultHeightRatio  = 0.6
	DefaultEmptyMessage = "No data for the selected symbols and dates."
)

// Phase is the lifecycle state of a Renderer.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReady
	PhaseDisposed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Config holds presentation constants. Zero values select the defaults.
type Config struct {
	HeightRatio    float64
	EmptyMessage   string
	HoverTolerance time.Duration
}

// Inputs are the data-driven parts of the chart state.
type Inputs struct {
	Datasets       []entity.NormalizedSeries
	Window         entity.DateWindow
	TooltipEnabled bool
}

// GestureKind identifies a pointer interaction on the chart.
type GestureKind string

const (
	GestureZoom      GestureKind = "zoom"
	GestureZoomBy    GestureKind = "zoomBy"
	GesturePan       GestureKind = "pan"
	GestureResetZoom GestureKind = "resetZoom"
	GestureHover     GestureKind = "hover"
)

// Gesture is one pan, zoom or hover event. Only the fields of its kind are set.
type Gesture struct {
	Kind   GestureKind
	Min    time.Time
	Max    time.Time
	Factor float64
	Center time.Time
	Delta  time.Duration
	At     time.Time
}

// Environment is the host the chart is mounted in. Every On* call registers a
// listener and returns the function that deregisters it.
type Environment interface {
	ViewportHeight() int
	Dark() bool
	OnResize(func(viewportHeight int)) (release func())
	OnThemeChange(func(dark bool)) (release func())
	OnGesture(func(Gesture) error) (release func())
}

// Renderer owns the chart instance of one mounted dashboard.
type Renderer struct {
	sink Sink
	env  Environment
	cfg  Config

	phase   Phase
	mounted bool
	scope   Scope

	viewportHeight int
	dark           bool
	inputs         Inputs
	hasInputs      bool

	state    entity.ChartState
	instance *Instance
	view     ViewRange
	zoomed   bool
	empty    bool
	seq      int
}

// New creates an unmounted renderer.
func New(sink Sink, env Environment, cfg Config) *Renderer {
	if cfg.HeightRatio <= 0 {
		cfg.HeightRatio = DefaultHeightRatio
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = DefaultEmptyMessage
	}
	if cfg.HoverTolerance <= 0 {
		cfg.HoverTolerance = DefaultHoverTolerance
	}
	return &Renderer{sink: sink, env: env, cfg: cfg}
}

// DeriveState computes the chart state from the inputs and the environment.
func DeriveState(in Inputs, viewportHeight int, dark bool, heightRatio float64) entity.ChartState {
	if heightRatio <= 0 {
		heightRatio = DefaultHeightRatio
	}
	return entity.ChartState{
		Datasets:          in.Datasets,
		Theme:             entity.ThemeOf(dark),
		TooltipEnabled:    in.TooltipEnabled,
		ContainerHeightPx: int(math.Round(float64(viewportHeight) * heightRatio)),
		ZoomWindow:        in.Window,
	}
}

// Mount registers the resize, theme and gesture listeners. It may be called
// once; the listeners are released by Dispose.
func (r *Renderer) Mount() error {
	if r.phase == PhaseDisposed {
		return ErrDisposed
	}
	if r.mounted {
		return nil
	}
	r.mounted = true
	r.viewportHeight = r.env.ViewportHeight()
	r.dark = r.env.Dark()

	r.scope.Acquire(r.env.OnResize(r.handleResize))
	r.scope.Acquire(r.env.OnThemeChange(r.handleTheme))
	r.scope.Acquire(r.env.OnGesture(r.handleGesture))
	return nil
}

// Apply reconciles new inputs into the chart. The first non-empty apply
// creates the instance; later applies update it in place.
func (r *Renderer) Apply(in Inputs) error {
	if r.phase == PhaseDisposed {
		return ErrDisposed
	}
	if !r.mounted {
		return ErrNotMounted
	}
	if err := in.Window.Validate(); err != nil {
		return err
	}
	windowChanged := !r.hasInputs || r.inputs.Window != in.Window
	r.inputs = in
	r.hasInputs = true

	switch {
	case !r.zoomed || r.instance == nil:
		r.view = FullView(in.Window)
	case windowChanged:
		r.view = ClampView(r.view, in.Window)
	}
	return r.reconcile()
}

// ForceRedraw re-sends the current frame.
func (r *Renderer) ForceRedraw() error {
	if r.phase == PhaseDisposed {
		return ErrDisposed
	}
	if r.empty {
		return r.sendEmpty()
	}
	if r.instance == nil {
		return ErrNotReady
	}
	return r.instance.redraw()
}

// ZoomTo shows [min, max], clamped to the window.
func (r *Renderer) ZoomTo(min, max time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := ZoomTo(min, max, r.state.ZoomWindow)
	if err != nil {
		return err
	}
	return r.setView(v)
}

// ZoomBy scales the view around center. factor > 1 zooms in.
func (r *Renderer) ZoomBy(factor float64, center time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := ZoomBy(r.view, factor, center, r.state.ZoomWindow)
	if err != nil {
		return err
	}
	return r.setView(v)
}

// Pan shifts the view by delta, stopping at the window bounds.
func (r *Renderer) Pan(delta time.Duration) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.setView(Pan(r.view, delta, r.state.ZoomWindow))
}

// ResetZoom shows the whole window again.
func (r *Renderer) ResetZoom() error {
	if err := r.ready(); err != nil {
		return err
	}
	if err := r.setView(FullView(r.state.ZoomWindow)); err != nil {
		return err
	}
	r.zoomed = false
	return nil
}

// Hover sends the tooltip for the timestamp under the pointer. Nothing is
// sent when tooltips are disabled or the empty state is shown.
func (r *Renderer) Hover(at time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	if !r.state.TooltipEnabled || r.empty {
		return nil
	}
	tt := BuildTooltip(r.state.Datasets, at, r.cfg.HoverTolerance)
	return r.send(Frame{Kind: FrameTooltip, InstanceID: r.instance.ID(), Tooltip: &tt})
}

// Dispose releases the listeners and the instance. It is idempotent.
func (r *Renderer) Dispose() {
	if r.phase == PhaseDisposed {
		return
	}
	r.phase = PhaseDisposed
	r.scope.Close()
	r.instance = nil
}

func (r *Renderer) Phase() Phase {
	return r.phase
}

// State returns the last reconciled chart state.
func (r *Renderer) State() entity.ChartState {
	return r.state
}

func (r *Renderer) View() ViewRange {
	return r.view
}

// InstanceID returns the id of the chart instance, or "" before it exists.
func (r *Renderer) InstanceID() string {
	if r.instance == nil {
		return ""
	}
	return r.instance.ID()
}

func (r *Renderer) reconcile() error {
	r.state = DeriveState(r.inputs, r.viewportHeight, r.dark, r.cfg.HeightRatio)

	// 空状態の判定はインスタンスの生成・更新より前に行う
	if !entity.HasData(r.state.Datasets) {
		r.empty = true
		return r.sendEmpty()
	}
	r.empty = false

	if r.instance == nil {
		r.instance = newInstance(r.send)
		r.phase = PhaseReady
	}
	return r.instance.update(BuildOptions(r.state, r.view), BuildDatasets(r.state.Datasets))
}

func (r *Renderer) setView(v ViewRange) error {
	r.view = v
	r.zoomed = true
	if r.empty {
		return nil
	}
	return r.instance.update(BuildOptions(r.state, r.view), r.instance.datasets)
}

func (r *Renderer) ready() error {
	switch {
	case r.phase == PhaseDisposed:
		return ErrDisposed
	case r.instance == nil:
		return ErrNotReady
	}
	return nil
}

func (r *Renderer) sendEmpty() error {
	return r.send(Frame{Kind: FrameEmpty, InstanceID: r.InstanceID(), Message: r.cfg.EmptyMessage})
}

func (r *Renderer) send(f Frame) error {
	r.seq++
	f.Seq = r.seq
	return r.sink.Send(f)
}

func (r *Renderer) handleResize(viewportHeight int) {
	if r.phase == PhaseDisposed || viewportHeight == r.viewportHeight {
		return
	}
	r.viewportHeight = viewportHeight
	r.refresh()
}

func (r *Renderer) handleTheme(dark bool) {
	if r.phase == PhaseDisposed || dark == r.dark {
		return
	}
	r.dark = dark
	r.refresh()
}

// refresh re-applies environment changes to an existing chart. Before the
// first apply there is nothing to redraw; the values are picked up later.
func (r *Renderer) refresh() {
	if !r.hasInputs {
		return
	}
	if err := r.reconcile(); err != nil {
		slog.Warn("failed to refresh chart", "instance", r.InstanceID(), "error", err)
	}
}

func (r *Renderer) handleGesture(g Gesture) error {
	switch g.Kind {
	case GestureZoom:
		return r.ZoomTo(g.Min, g.Max)
	case GestureZoomBy:
		return r.ZoomBy(g.Factor, g.Center)
	case GesturePan:
		return r.Pan(g.Delta)
	case GestureResetZoom:
		return r.ResetZoom()
	case GestureHover:
		return r.Hover(g.At)
	default:
		return errors.New("unknown gesture: " + string(g.Kind))
	}
}
