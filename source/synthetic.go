package source

import (
	"math"

	"github.com/valyala/fastrand"

	"github.com/gogpu/lasca"
)

// SyntheticConfig describes a simulated speckle recording.
type SyntheticConfig struct {
	Width  int
	Height int

	// Frames is the stream length. Zero or less never ends.
	Frames int

	// Mean is the mean speckle intensity in gray levels.
	Mean float64

	// FlowX, FlowY and FlowRadius place a disc in which the speckle pattern
	// decorrelates every frame. Outside the disc the pattern is static.
	FlowX, FlowY, FlowRadius int

	// Seed makes the stream reproducible. Rewind replays the same frames.
	Seed uint32
}

// DefaultSyntheticConfig returns a width×height stream with a centered flow
// disc of a quarter of the smaller dimension.
func DefaultSyntheticConfig(width, height int) SyntheticConfig {
	return SyntheticConfig{
		Width:      width,
		Height:     height,
		Frames:     200,
		Mean:       80,
		FlowX:      width / 2,
		FlowY:      height / 2,
		FlowRadius: min(width, height) / 4,
		Seed:       1,
	}
}

// Synthetic generates fully developed speckle: intensities follow an
// exponential distribution around Mean, saturated to 8 bits.
type Synthetic struct {
	cfg    SyntheticConfig
	rng    fastrand.RNG
	static []uint8
	flow   []bool
	buf    []uint8
	served int
}

// NewSynthetic creates a generator for cfg.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	n := cfg.Width * cfg.Height
	s := &Synthetic{
		cfg:    cfg,
		static: make([]uint8, n),
		flow:   make([]bool, n),
		buf:    make([]uint8, n),
	}
	r2 := cfg.FlowRadius * cfg.FlowRadius
	for y := range cfg.Height {
		for x := range cfg.Width {
			dx, dy := x-cfg.FlowX, y-cfg.FlowY
			s.flow[y*cfg.Width+x] = cfg.FlowRadius > 0 && dx*dx+dy*dy <= r2
		}
	}
	s.reseed()
	return s
}

func (s *Synthetic) reseed() {
	s.rng.Seed(s.cfg.Seed)
	for i := range s.static {
		s.static[i] = s.speckle()
	}
	s.served = 0
}

// speckle draws one exponentially distributed intensity.
func (s *Synthetic) speckle() uint8 {
	const scale = 1 << 24
	u := (float64(s.rng.Uint32n(scale)) + 1) / scale
	v := -s.cfg.Mean * math.Log(u)
	return uint8(min(math.Round(v), 255))
}

// IsFlow reports whether pixel (x, y) lies inside the flow disc.
func (s *Synthetic) IsFlow(x, y int) bool { return s.flow[y*s.cfg.Width+x] }

// Next returns the next frame.
func (s *Synthetic) Next() (lasca.Frame, error) {
	if s.cfg.Frames > 0 && s.served >= s.cfg.Frames {
		return lasca.Frame{}, lasca.ErrEndOfStream
	}
	for i := range s.buf {
		if s.flow[i] {
			s.buf[i] = s.speckle()
		} else {
			s.buf[i] = s.static[i]
		}
	}
	s.served++
	return lasca.Frame{Width: s.cfg.Width, Height: s.cfg.Height, Pix: s.buf}, nil
}

// Rewind restarts the stream; the replay is identical to the first pass.
func (s *Synthetic) Rewind() error {
	s.reseed()
	return nil
}
