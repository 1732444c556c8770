package lasca

import (
	"fmt"
	"math"
)

// Default filter constants.
const (
	DefaultAlpha        = 0.93
	DefaultBeta         = 0.75
	DefaultContrastGain = 2600
)

// Config holds the session constants of a pipeline. Geometry and filter
// parameters never change after New.
type Config struct {
	// Width and Height are the frame dimensions in pixels. Both must be at
	// least 3 so that the frame has an interior.
	Width  int
	Height int

	// Alpha is the decay of the fast accumulator pair and Beta the decay of
	// the slow pair. 0 passes the input through, 1 freezes the state.
	Alpha float32
	Beta  float32

	// ContrastGain scales variance/mean² before it is rounded into the mask.
	ContrastGain float32

	// InteriorTemporal restores the border-untouched temporal dispatch: the
	// temporal stage updates only the interior region and the one-pixel
	// border ring of all four accumulators stays at zero for the session,
	// so blurred means next to the border include those zeros.
	//
	// By default the temporal stage covers the whole frame. It reads no
	// neighbours, so the border ring then holds real intensities. The
	// spatial stage and the mask always use the interior region.
	InteriorTemporal bool
}

// DefaultConfig returns a Config for width×height frames with the default
// filter constants.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:        width,
		Height:       height,
		Alpha:        DefaultAlpha,
		Beta:         DefaultBeta,
		ContrastGain: DefaultContrastGain,
	}
}

// Validate reports whether the config can be used to build a pipeline.
// All failures wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Width < 3 || c.Height < 3 {
		return fmt.Errorf("%w: frame %dx%d smaller than 3x3", ErrInvalidConfig, c.Width, c.Height)
	}
	if !unit(c.Alpha) {
		return fmt.Errorf("%w: alpha %v outside [0,1]", ErrInvalidConfig, c.Alpha)
	}
	if !unit(c.Beta) {
		return fmt.Errorf("%w: beta %v outside [0,1]", ErrInvalidConfig, c.Beta)
	}
	g := float64(c.ContrastGain)
	if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
		return fmt.Errorf("%w: contrast gain %v", ErrInvalidConfig, c.ContrastGain)
	}
	return nil
}

// Pixels returns Width*Height.
func (c Config) Pixels() int { return c.Width * c.Height }

func unit(v float32) bool { return v >= 0 && v <= 1 }
