// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

// Temporal runs the two cascaded first-order IIR filters over the linear
// indices [lo, hi) ∩ r. It mirrors temporal.wgsl.
//
// For each pixel the fast pair is updated from the raw frame with alpha and
// the slow pair is then updated from the new fast values with beta:
//
//	I  = (1-α)·x  + α·I
//	S  = (1-α)·x² + α·S
//	sI = (1-β)·I  + β·sI
//	sS = (1-β)·S  + β·sS
//
// Each index is read and written by exactly one call, so disjoint [lo, hi)
// bands may run concurrently.
func Temporal(p Params, r Region, lo, hi int, frame []uint8, fast, slow Pair) {
	lo, hi = r.Clip(lo, hi)
	for i := lo; i < hi; i++ {
		if r.Interior {
			if x := i % r.Width; x == 0 || x == r.Width-1 {
				continue
			}
		}
		raw := float32(frame[i])
		sq := raw * raw

		in := p.OneMinusAlpha*raw + p.Alpha*fast.Intensity[i]
		sqIn := p.OneMinusAlpha*sq + p.Alpha*fast.Squared[i]
		fast.Intensity[i] = in
		fast.Squared[i] = sqIn

		slow.Intensity[i] = p.OneMinusBeta*in + p.Beta*slow.Intensity[i]
		slow.Squared[i] = p.OneMinusBeta*sqIn + p.Beta*slow.Squared[i]
	}
}
