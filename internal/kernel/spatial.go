// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "math"

// Spatial averages the slow pair over each pixel's 3×3 neighbourhood into
// the blur pair and writes the validity mask, for the linear indices
// [lo, hi) ∩ r. It mirrors spatial.wgsl.
//
// r must be an interior region: neighbour offsets are ±1 and ±width, which
// are only in bounds away from the border ring. Spatial reads slow and
// writes blur and mask only, so bands may run concurrently.
func Spatial(p Params, r Region, lo, hi int, slow, blur Pair, mask []uint8) {
	w := r.Width
	lo, hi = r.Clip(lo, hi)
	for i := lo; i < hi; i++ {
		if x := i % w; x == 0 || x == w-1 {
			continue
		}
		mean := box9(slow.Intensity, i, w)
		sqMean := box9(slow.Squared, i, w)
		blur.Intensity[i] = mean
		blur.Squared[i] = sqMean
		mask[i] = Contrast(mean, sqMean, p.ContrastGain)
	}
}

// box9 returns the unweighted mean of v over the 3×3 block centred on i.
func box9(v []float32, i, w int) float32 {
	above := v[i-w-1] + v[i-w] + v[i-w+1]
	row := v[i-1] + v[i] + v[i+1]
	below := v[i+w-1] + v[i+w] + v[i+w+1]
	return (above + row + below) / 9
}

// Contrast maps a blurred mean and blurred squared mean to a mask value.
// Means outside [MinMean, MaxMean] give 0; otherwise the normalised
// variance gain·(sqMean-mean²)/mean² is rounded and saturated to a byte.
func Contrast(mean, sqMean, gain float32) uint8 {
	if mean < MinMean || mean > MaxMean {
		return 0
	}
	m2 := mean * mean
	return SaturateRound(gain * (sqMean - m2) / m2)
}

// SaturateRound converts v to a byte, rounding half to even and clamping
// to [0, 255]. NaN maps to 0.
func SaturateRound(v float32) uint8 {
	switch {
	case !(v >= 0): // also catches NaN
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.RoundToEven(float64(v)))
}
