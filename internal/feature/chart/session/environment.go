package session

import "stock_compare/internal/feature/chart/renderer"

// environment is the browser side of a session as seen by the renderer:
// viewport and theme values pushed by the client, and the listeners
// registered on them.
type environment struct {
	height int
	dark   bool

	nextID  int
	resize  map[int]func(int)
	theme   map[int]func(bool)
	gesture map[int]func(renderer.Gesture) error
}

var _ renderer.Environment = (*environment)(nil)

func newEnvironment(height int, dark bool) *environment {
	return &environment{
		height:  height,
		dark:    dark,
		resize:  map[int]func(int){},
		theme:   map[int]func(bool){},
		gesture: map[int]func(renderer.Gesture) error{},
	}
}

func (e *environment) ViewportHeight() int { return e.height }
func (e *environment) Dark() bool          { return e.dark }

func (e *environment) OnResize(fn func(int)) func() {
	e.nextID++
	id := e.nextID
	e.resize[id] = fn
	return func() { delete(e.resize, id) }
}

func (e *environment) OnThemeChange(fn func(bool)) func() {
	e.nextID++
	id := e.nextID
	e.theme[id] = fn
	return func() { delete(e.theme, id) }
}

func (e *environment) OnGesture(fn func(renderer.Gesture) error) func() {
	e.nextID++
	id := e.nextID
	e.gesture[id] = fn
	return func() { delete(e.gesture, id) }
}

func (e *environment) setHeight(h int) {
	e.height = h
	for _, fn := range e.resize {
		fn(h)
	}
}

func (e *environment) setDark(dark bool) {
	e.dark = dark
	for _, fn := range e.theme {
		fn(dark)
	}
}

func (e *environment) dispatch(g renderer.Gesture) error {
	for _, fn := range e.gesture {
		if err := fn(g); err != nil {
			return err
		}
	}
	return nil
}

// listeners returns the number of registered listeners.
func (e *environment) listeners() int {
	return len(e.resize) + len(e.theme) + len(e.gesture)
}
