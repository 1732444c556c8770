package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/lasca"
)

// Raw reads concatenated width×height 8-bit frames with no header. A
// trailing partial frame is treated as end of stream.
type Raw struct {
	r      io.ReadSeeker
	closer io.Closer
	width  int
	height int
	buf    []uint8
	frames int
}

// OpenRaw opens a raw frame file.
func OpenRaw(path string, width, height int) (*Raw, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("source: invalid frame size %dx%d", width, height)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open raw file: %w", err)
	}
	r := NewRaw(f, width, height)
	r.closer = f
	return r, nil
}

// NewRaw reads frames from r.
func NewRaw(r io.ReadSeeker, width, height int) *Raw {
	return &Raw{r: r, width: width, height: height, buf: make([]uint8, width*height)}
}

// Next reads the next frame.
func (s *Raw) Next() (lasca.Frame, error) {
	_, err := io.ReadFull(s.r, s.buf)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return lasca.Frame{}, fmt.Errorf("source: raw frame %d: %w", s.frames, lasca.ErrEndOfStream)
	case err != nil:
		return lasca.Frame{}, fmt.Errorf("source: raw frame %d: %w", s.frames, err)
	}
	s.frames++
	return lasca.Frame{Width: s.width, Height: s.height, Pix: s.buf}, nil
}

// Rewind seeks back to the first frame.
func (s *Raw) Rewind() error {
	if _, err := s.r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("source: rewind raw file: %w", err)
	}
	s.frames = 0
	return nil
}

// Close closes the underlying file when the source was opened by OpenRaw.
func (s *Raw) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
