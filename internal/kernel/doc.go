// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kernel is the CPU reference implementation of the two LASCA
// compute stages.
//
// Every function here mirrors one WGSL entry point in internal/gpu/shaders
// statement for statement, so the software backend and the wgpu backend
// produce the same accumulator values for the same input.
//
// Stage overview:
//
//	frame ──► Temporal ──► fast pair (I, S) ──► slow pair (sI, sS)
//	                                               │
//	                                               ▼
//	                                  Spatial (3×3 box, contrast)
//	                                               │
//	                              blur pair (bI, bS) + validity mask
//
// The blur pair becomes the slow pair of the next frame through the
// ping-pong registry in Buffers.Slots.
package kernel
