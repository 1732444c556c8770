// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/lasca/internal/kernel"
)

// paramsSize is the byte size of the WGSL Params uniform:
// five u32 fields, five f32 fields and two u32 pad fields.
const paramsSize = 12 * 4

// stageParams is the host mirror of the Params struct declared in both
// shaders. Field order must match the WGSL declaration.
type stageParams struct {
	Width    uint32
	Height   uint32
	Offset   uint32
	Count    uint32
	Interior uint32
	kernel.Params
}

func newStageParams(width, height int, r kernel.Region, p kernel.Params) stageParams {
	sp := stageParams{
		Width:  uint32(width),  //nolint:gosec // validated frame size
		Height: uint32(height), //nolint:gosec // validated frame size
		Offset: uint32(r.Offset),
		Count:  uint32(max(r.Count, 0)),
		Params: p,
	}
	if r.Interior {
		sp.Interior = 1
	}
	return sp
}

// toBytes serializes the params in little-endian uniform layout.
func (p stageParams) toBytes() []byte {
	buf := make([]byte, paramsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.Width)
	le.PutUint32(buf[4:8], p.Height)
	le.PutUint32(buf[8:12], p.Offset)
	le.PutUint32(buf[12:16], p.Count)
	le.PutUint32(buf[16:20], p.Interior)
	le.PutUint32(buf[20:24], math.Float32bits(p.Alpha))
	le.PutUint32(buf[24:28], math.Float32bits(p.OneMinusAlpha))
	le.PutUint32(buf[28:32], math.Float32bits(p.Beta))
	le.PutUint32(buf[32:36], math.Float32bits(p.OneMinusBeta))
	le.PutUint32(buf[36:40], math.Float32bits(p.ContrastGain))
	// 40:48 padding
	return buf
}

// workgroups returns the dispatch grid for count invocations. Grids wider
// than the per-dimension limit are folded into Y; the shaders recover the
// linear index from num_workgroups.
func workgroups(count uint32) (x, y uint32) {
	if count == 0 {
		return 0, 0
	}
	groups := (count + wgSize - 1) / wgSize
	if groups <= maxWorkgroupsPerDim {
		return groups, 1
	}
	y = (groups + maxWorkgroupsPerDim - 1) / maxWorkgroupsPerDim
	x = (groups + y - 1) / y
	return x, y
}
