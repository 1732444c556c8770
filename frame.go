package lasca

import "fmt"

// Frame is one raw 8-bit grayscale image, row-major, no padding. A frame is
// borrowed by the pipeline for the duration of a single tick.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// check reports whether f matches the configured geometry.
func (f Frame) check(cfg Config) error {
	if f.Width != cfg.Width || f.Height != cfg.Height || len(f.Pix) != cfg.Pixels() {
		return fmt.Errorf("%w: got %dx%d (%d bytes), want %dx%d",
			ErrFrameSize, f.Width, f.Height, len(f.Pix), cfg.Width, cfg.Height)
	}
	return nil
}

// FrameSource supplies frames on demand.
//
// Next returns ErrEndOfStream (possibly wrapped) when the stream is
// exhausted. Rewind restarts the stream from its first frame.
type FrameSource interface {
	Next() (Frame, error)
	Rewind() error
}

// DisplayConsumer receives the validity mask after every successful tick.
// The mask slice is only valid for the duration of the call.
type DisplayConsumer interface {
	Display(mask []uint8, width, height int, table *ColorTable) error
}

// DisplayFunc adapts a function to DisplayConsumer.
type DisplayFunc func(mask []uint8, width, height int, table *ColorTable) error

// Display calls f.
func (f DisplayFunc) Display(mask []uint8, width, height int, table *ColorTable) error {
	return f(mask, width, height, table)
}
