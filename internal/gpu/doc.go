// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu runs the temporal and spatial LASCA stages as WGSL compute
// shaders through gogpu/wgpu's HAL.
//
// The package mirrors internal/kernel: each shader computes exactly the
// per-pixel function of its CPU counterpart, over the same named region,
// with the same float32 constants. Backend implements lasca.Backend and is
// registered by the public gpu package.
//
// Every stage is submitted as its own command buffer with its own fence.
// The fence is the stage's completion event; the spatial stage is queued
// after the temporal stage on the same queue and its event chains the
// temporal one. The mask copy to the staging buffer is recorded into the
// spatial command buffer, so readback only waits and maps.
package gpu
