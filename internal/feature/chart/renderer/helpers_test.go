package renderer_test

import (
	"time"

	"cloud.google.com/go/civil"

	"stock_compare/internal/feature/chart/domain/entity"
	"stock_compare/internal/feature/chart/renderer"
)

// recordingSink はRendererが送信したフレームを記録するSinkです。
type recordingSink struct {
	frames []renderer.Frame
	err    error
}

func (s *recordingSink) Send(f renderer.Frame) error {
	s.frames = append(s.frames, f)
	return s.err
}

func (s *recordingSink) last() renderer.Frame {
	return s.frames[len(s.frames)-1]
}

// fakeEnv は登録・解除されたリスナーを数えるEnvironmentです。
type fakeEnv struct {
	height int
	dark   bool

	resize  map[int]func(int)
	theme   map[int]func(bool)
	gesture map[int]func(renderer.Gesture) error

	nextID     int
	registered int
	released   int
}

func newFakeEnv(height int, dark bool) *fakeEnv {
	return &fakeEnv{
		height:  height,
		dark:    dark,
		resize:  map[int]func(int){},
		theme:   map[int]func(bool){},
		gesture: map[int]func(renderer.Gesture) error{},
	}
}

func (e *fakeEnv) ViewportHeight() int { return e.height }
func (e *fakeEnv) Dark() bool          { return e.dark }

func (e *fakeEnv) OnResize(fn func(int)) func() {
	id := e.register()
	e.resize[id] = fn
	return func() { e.released++; delete(e.resize, id) }
}

func (e *fakeEnv) OnThemeChange(fn func(bool)) func() {
	id := e.register()
	e.theme[id] = fn
	return func() { e.released++; delete(e.theme, id) }
}

func (e *fakeEnv) OnGesture(fn func(renderer.Gesture) error) func() {
	id := e.register()
	e.gesture[id] = fn
	return func() { e.released++; delete(e.gesture, id) }
}

func (e *fakeEnv) register() int {
	e.nextID++
	e.registered++
	return e.nextID
}

func (e *fakeEnv) fireResize(h int) {
	e.height = h
	for _, fn := range e.resize {
		fn(h)
	}
}

func (e *fakeEnv) fireTheme(dark bool) {
	e.dark = dark
	for _, fn := range e.theme {
		fn(dark)
	}
}

func (e *fakeEnv) fireGesture(g renderer.Gesture) error {
	for _, fn := range e.gesture {
		if err := fn(g); err != nil {
			return err
		}
	}
	return nil
}

var (
	jan2   = civil.Date{Year: 2024, Month: 1, Day: 2}
	window = entity.DateWindow{Start: jan2, End: jan2.AddDays(9)}
)

func ts(d civil.Date) time.Time {
	return entity.Timestamp(d)
}

// mkSeries は jan2 から1日ずつの終値で正規化済み系列を組み立てます。
func mkSeries(symbol string, passthrough bool, unit string, raws ...float64) entity.NormalizedSeries {
	s := entity.NormalizedSeries{Symbol: symbol, Passthrough: passthrough, Unit: unit, Points: []entity.NormalizedPoint{}}
	if len(raws) == 0 {
		return s
	}
	base := raws[0]
	s.Baseline = &base
	for i, raw := range raws {
		v := raw
		if !passthrough {
			v = (raw - base) / base * 100
		}
		d := jan2.AddDays(i)
		s.Points = append(s.Points, entity.NormalizedPoint{Date: d, Timestamp: ts(d), Value: &v, RawValue: raw})
	}
	return s
}
