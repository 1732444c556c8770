// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
)

//go:embed shaders/temporal.wgsl
var shaderTemporal string

//go:embed shaders/spatial.wgsl
var shaderSpatial string

// Stage identifies one of the two compute stages.
type Stage int

const (
	// StageTemporal folds the frame into the fast and slow accumulators.
	// Input: params, frame. Output: fast pair, slow slot.
	StageTemporal Stage = iota

	// StageSpatial blurs the slow slot and computes the contrast mask.
	// Input: params, slow slot. Output: blur slot, mask.
	StageSpatial

	// StageCount is the number of stages.
	StageCount
)

// String returns the stage name used in labels and logs.
func (s Stage) String() string {
	switch s {
	case StageTemporal:
		return "temporal"
	case StageSpatial:
		return "spatial"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// source returns the embedded WGSL of the stage.
func (s Stage) source() string {
	switch s {
	case StageTemporal:
		return shaderTemporal
	case StageSpatial:
		return shaderSpatial
	default:
		return ""
	}
}
