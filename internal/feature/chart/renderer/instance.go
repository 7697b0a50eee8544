package renderer

import "github.com/google/uuid"

// Instance is the long-lived chart model bound to one mounted dashboard.
// It is created once and then only mutated: its id never changes.
type Instance struct {
	id       string
	options  Options
	datasets []Dataset
	out      func(Frame) error
}

func newInstance(out func(Frame) error) *Instance {
	return &Instance{id: uuid.NewString(), out: out}
}

// ID returns the identifier the painter keys its canvas on.
func (i *Instance) ID() string {
	return i.id
}

// update replaces the descriptors and redraws.
func (i *Instance) update(options Options, datasets []Dataset) error {
	i.options = options
	i.datasets = datasets
	return i.redraw()
}

// redraw re-sends the current descriptors. Animation is always off so a
// refresh never replays the entrance animation.
func (i *Instance) redraw() error {
	opts := i.options
	opts.Animation = false
	return i.out(Frame{
		Kind:       FrameChart,
		InstanceID: i.id,
		Options:    &opts,
		Datasets:   i.datasets,
	})
}
