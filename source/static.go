package source

import "github.com/gogpu/lasca"

// Static repeats one frame. With a positive Count it ends the stream after
// Count frames; otherwise it never ends.
type Static struct {
	Frame lasca.Frame
	Count int

	served int
}

// NewConstant returns a Static source of a width×height frame filled with v.
func NewConstant(width, height int, v uint8, count int) *Static {
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = v
	}
	return &Static{Frame: lasca.Frame{Width: width, Height: height, Pix: pix}, Count: count}
}

// Next returns the frame.
func (s *Static) Next() (lasca.Frame, error) {
	if s.Count > 0 && s.served >= s.Count {
		return lasca.Frame{}, lasca.ErrEndOfStream
	}
	s.served++
	return s.Frame, nil
}

// Rewind restarts the count.
func (s *Static) Rewind() error {
	s.served = 0
	return nil
}
