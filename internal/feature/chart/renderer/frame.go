package renderer

// FrameKind identifies what the browser painter should do with a frame.
type FrameKind string

const (
	FrameChart   FrameKind = "chart"
	FrameEmpty   FrameKind = "empty"
	FrameTooltip FrameKind = "tooltip"
)

// Frame is one instruction for the painter. A chart frame always carries the
// full option and dataset descriptors of the instance.
type Frame struct {
	Kind       FrameKind `json:"kind"`
	InstanceID string    `json:"id,omitempty"`
	Seq        int       `json:"seq"`
	Options    *Options  `json:"options,omitempty"`
	Datasets   []Dataset `json:"datasets,omitempty"`
	Message    string    `json:"message,omitempty"`
	Tooltip    *Tooltip  `json:"tooltip,omitempty"`
}

// Sink receives frames. Implementations need not be safe for concurrent use:
// the renderer only calls Send from its owner's goroutine.
type Sink interface {
	Send(Frame) error
}
