package lasca

import (
	"fmt"
	"testing"
)

// sliceSource replays a fixed list of frames.
type sliceSource struct {
	width, height int
	frames        [][]uint8
	pos           int
	rewinds       int
}

func (s *sliceSource) Next() (Frame, error) {
	if s.pos >= len(s.frames) {
		return Frame{}, fmt.Errorf("slice source: %w", ErrEndOfStream)
	}
	f := Frame{Width: s.width, Height: s.height, Pix: s.frames[s.pos]}
	s.pos++
	return f, nil
}

func (s *sliceSource) Rewind() error {
	s.pos = 0
	s.rewinds++
	return nil
}

func constantFrame(w, h int, v uint8) []uint8 {
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = v
	}
	return pix
}

// endlessSource returns the same frame on every call and never ends.
type endlessSource struct {
	frame   Frame
	calls   int
	rewinds int
}

func endlessFrames(w, h int, v uint8) *endlessSource {
	return &endlessSource{frame: Frame{Width: w, Height: h, Pix: constantFrame(w, h, v)}}
}

func (s *endlessSource) Next() (Frame, error) {
	s.calls++
	return s.frame, nil
}

func (s *endlessSource) Rewind() error {
	s.rewinds++
	return nil
}

// noiseFrames builds n frames of deterministic pseudo-random pixels.
func noiseFrames(w, h, n int) [][]uint8 {
	state := uint32(2463534242)
	out := make([][]uint8, n)
	for f := range out {
		pix := make([]uint8, w*h)
		for i := range pix {
			state ^= state << 13
			state ^= state >> 17
			state ^= state << 5
			pix[i] = uint8(state)
		}
		out[f] = pix
	}
	return out
}

func newTestPipeline(t *testing.T, cfg Config, src FrameSource, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithBackendName(BackendSoftware), WithWorkers(2)}, opts...)
	p, err := New(cfg, src, nil, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func assertBorderZero(t *testing.T, mask []uint8, w, h int) {
	t.Helper()
	for y := range h {
		for x := range w {
			if (x == 0 || y == 0 || x == w-1 || y == h-1) && mask[y*w+x] != 0 {
				t.Fatalf("border pixel (%d,%d) = %d, want 0", x, y, mask[y*w+x])
			}
		}
	}
}
