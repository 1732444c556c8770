// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "github.com/gogpu/lasca/internal/pingpong"

// Pair is an intensity accumulator together with its squared-intensity
// counterpart. Both slices cover all pixels of the frame.
type Pair struct {
	Intensity []float32
	Squared   []float32
}

// NewPair allocates a zeroed pair for n pixels.
func NewPair(n int) Pair {
	return Pair{Intensity: make([]float32, n), Squared: make([]float32, n)}
}

func (p Pair) zero() {
	clear(p.Intensity)
	clear(p.Squared)
}

// Buffers is the host-memory working set of the pipeline.
//
// Fast is the alpha-stage accumulator pair. Slots holds the slow pair and
// the blur pair; which is which is decided by the registry index and
// flipped once per frame.
type Buffers struct {
	Width  int
	Height int

	Fast  Pair
	Slots pingpong.Registry[Pair]

	// Mask is the validity mask. Border pixels are never written.
	Mask []uint8
}

// BytesPerPixel is the host memory footprint of one pixel of the working
// set: six float32 accumulators plus the mask byte.
const BytesPerPixel = 6*4 + 1

// WorkingSetBytes returns the number of bytes NewBuffers allocates for a
// width×height frame.
func WorkingSetBytes(width, height int) uint64 {
	return uint64(width) * uint64(height) * BytesPerPixel
}

// NewBuffers allocates a zeroed working set.
func NewBuffers(width, height int) *Buffers {
	n := width * height
	return &Buffers{
		Width:  width,
		Height: height,
		Fast:   NewPair(n),
		Slots:  pingpong.New(NewPair(n), NewPair(n)),
		Mask:   make([]uint8, n),
	}
}

// Reset zero-fills every accumulator, including both ping-pong slots. The
// mask and the slot roles are left alone.
func (b *Buffers) Reset() {
	b.Fast.zero()
	b.Slots.Each(func(_ int, p Pair) { p.zero() })
}

// Len returns the number of pixels.
func (b *Buffers) Len() int { return b.Width * b.Height }
