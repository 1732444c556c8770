// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

// Exposure limits applied to the blurred mean intensity. Pixels outside
// [MinMean, MaxMean] are too dark or saturated to yield a usable contrast.
const (
	MinMean = 5
	MaxMean = 250
)

// Params are the filter constants shared by both stages. The complements
// are stored rather than recomputed per pixel so that the CPU and GPU
// kernels multiply by bit-identical factors.
type Params struct {
	Alpha         float32
	OneMinusAlpha float32
	Beta          float32
	OneMinusBeta  float32
	ContrastGain  float32
}

// NewParams derives the complements from the two decay factors.
func NewParams(alpha, beta, gain float32) Params {
	return Params{
		Alpha:         alpha,
		OneMinusAlpha: 1 - alpha,
		Beta:          beta,
		OneMinusBeta:  1 - beta,
		ContrastGain:  gain,
	}
}
