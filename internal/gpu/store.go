// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lasca/internal/pingpong"
)

const (
	// wgSize matches WG_SIZE in both shaders.
	wgSize = 256

	// maxWorkgroupsPerDim is the WebGPU default maxComputeWorkgroupsPerDimension.
	maxWorkgroupsPerDim = 65535

	// fenceTimeout bounds every wait on a submitted stage.
	fenceTimeout = 5 * time.Second
)

// bufferPair is the device counterpart of kernel.Pair.
type bufferPair struct {
	Intensity hal.Buffer
	Squared   hal.Buffer
}

// Store owns every device buffer of a pipeline. All buffers are created in
// NewStore and destroyed together in Destroy.
type Store struct {
	device hal.Device
	queue  hal.Queue

	width  int
	height int

	// TemporalParams and SpatialParams are the per-stage uniforms. They are
	// written once at allocation.
	TemporalParams hal.Buffer
	SpatialParams  hal.Buffer

	// Frame holds the packed input frame, four pixels per u32.
	Frame hal.Buffer

	// Fast is the alpha-stage accumulator pair.
	Fast bufferPair

	// Slots holds the slow and blur pairs.
	Slots pingpong.Registry[bufferPair]

	// Mask holds one u32 per pixel. Border words are zeroed at allocation
	// and never written by the shaders.
	Mask hal.Buffer

	// Staging is the MapRead buffer used for every readback.
	Staging hal.Buffer

	// ColorTable holds the 256 display colors packed as 0x00BBGGRR.
	ColorTable hal.Buffer

	frameBytes []byte
}

// pixels returns width*height.
func (s *Store) pixels() int { return s.width * s.height }

// floatBytes is the byte size of a per-pixel f32 or u32 buffer.
func (s *Store) floatBytes() uint64 { return uint64(s.pixels()) * 4 }

// NewStore creates all buffers for a width×height pipeline and uploads the
// constant uniforms and color table. Accumulators and mask start at zero.
func NewStore(device hal.Device, queue hal.Queue, width, height int, temporal, spatial stageParams, colors [256][3]uint8) (*Store, error) {
	s := &Store{
		device:     device,
		queue:      queue,
		width:      width,
		height:     height,
		frameBytes: make([]byte, (width*height+3)/4*4),
	}

	perPixel := s.floatBytes()
	storageZero := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	uniformCPU := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	storageCPU := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	staging := gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst

	var slotA, slotB bufferPair
	type bufSpec struct {
		target   *hal.Buffer
		label    string
		size     uint64
		usage    gputypes.BufferUsage
		zeroInit bool
	}
	specs := []bufSpec{
		{&s.TemporalParams, "lasca_temporal_params", paramsSize, uniformCPU, false},
		{&s.SpatialParams, "lasca_spatial_params", paramsSize, uniformCPU, false},
		{&s.Frame, "lasca_frame", uint64(len(s.frameBytes)), storageCPU, false},
		{&s.Fast.Intensity, "lasca_intensity", perPixel, storageZero, true},
		{&s.Fast.Squared, "lasca_squared", perPixel, storageZero, true},
		{&slotA.Intensity, "lasca_slot0_intensity", perPixel, storageZero, true},
		{&slotA.Squared, "lasca_slot0_squared", perPixel, storageZero, true},
		{&slotB.Intensity, "lasca_slot1_intensity", perPixel, storageZero, true},
		{&slotB.Squared, "lasca_slot1_squared", perPixel, storageZero, true},
		{&s.Mask, "lasca_mask", perPixel, storageZero, true},
		{&s.Staging, "lasca_staging", perPixel, staging, false},
		{&s.ColorTable, "lasca_color_table", 256 * 4, storageCPU, false},
	}

	for _, spec := range specs {
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: spec.label,
			Size:  spec.size,
			Usage: spec.usage,
		})
		if err != nil {
			s.Slots = pingpong.New(slotA, slotB)
			s.Destroy()
			return nil, fmt.Errorf("create %s buffer: %w", spec.label, err)
		}
		*spec.target = buf
		if spec.zeroInit {
			queue.WriteBuffer(buf, 0, make([]byte, spec.size))
		}
	}
	s.Slots = pingpong.New(slotA, slotB)

	queue.WriteBuffer(s.TemporalParams, 0, temporal.toBytes())
	queue.WriteBuffer(s.SpatialParams, 0, spatial.toBytes())
	queue.WriteBuffer(s.ColorTable, 0, packColorTable(colors))

	slogger().Debug("lasca gpu: buffers allocated",
		"size", fmt.Sprintf("%dx%d", width, height),
		"per_pixel_bytes", perPixel,
		"buffers", len(specs))
	return s, nil
}

// accumulators lists the six accumulator buffers.
func (s *Store) accumulators() []hal.Buffer {
	out := []hal.Buffer{s.Fast.Intensity, s.Fast.Squared}
	s.Slots.Each(func(_ int, p bufferPair) {
		out = append(out, p.Intensity, p.Squared)
	})
	return out
}

// Reset zero-fills all accumulators.
func (s *Store) Reset() {
	zeros := make([]byte, s.floatBytes())
	for _, b := range s.accumulators() {
		s.queue.WriteBuffer(b, 0, zeros)
	}
}

// UploadFrame packs pix four pixels per word and writes it to Frame.
func (s *Store) UploadFrame(pix []uint8) {
	n := copy(s.frameBytes, pix)
	clear(s.frameBytes[n:])
	s.queue.WriteBuffer(s.Frame, 0, s.frameBytes)
}

// readFloats copies src to the staging buffer and decodes it as f32.
func (s *Store) readFloats(src hal.Buffer) ([]float32, error) {
	raw, err := s.readback(src)
	if err != nil {
		return nil, err
	}
	out := make([]float32, s.pixels())
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

// readback copies src into the staging buffer in its own submission and
// maps it.
func (s *Store) readback(src hal.Buffer) ([]byte, error) {
	size := s.floatBytes()
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "lasca_readback"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("lasca_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(src, s.Staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)
	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	ok, err := s.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("GPU timeout after %v", fenceTimeout)
	}

	raw := make([]byte, size)
	if err := s.queue.ReadBuffer(s.Staging, 0, raw); err != nil {
		return nil, fmt.Errorf("read staging buffer: %w", err)
	}
	return raw, nil
}

// readMask maps the staging buffer, which the spatial command buffer has
// already filled, and narrows the u32 mask words into dst.
func (s *Store) readMask(dst []uint8) error {
	if len(dst) != s.pixels() {
		return fmt.Errorf("mask destination holds %d bytes, want %d", len(dst), s.pixels())
	}
	raw := make([]byte, s.floatBytes())
	if err := s.queue.ReadBuffer(s.Staging, 0, raw); err != nil {
		return fmt.Errorf("read staging buffer: %w", err)
	}
	narrowMask(dst, raw)
	return nil
}

// Destroy releases every buffer. It is safe on a partially built store.
func (s *Store) Destroy() {
	if s == nil || s.device == nil {
		return
	}
	destroy := func(b hal.Buffer) {
		if b != nil {
			s.device.DestroyBuffer(b)
		}
	}
	destroy(s.TemporalParams)
	destroy(s.SpatialParams)
	destroy(s.Frame)
	destroy(s.Mask)
	destroy(s.Staging)
	destroy(s.ColorTable)
	for _, b := range s.accumulators() {
		destroy(b)
	}
	*s = Store{}
}

// narrowMask keeps the low byte of every little-endian u32 word.
func narrowMask(dst []uint8, words []byte) {
	for i := range dst {
		dst[i] = words[4*i]
	}
}

// packColorTable packs RGB triples as little-endian 0x00BBGGRR words.
func packColorTable(colors [256][3]uint8) []byte {
	out := make([]byte, 256*4)
	for i, c := range colors {
		out[4*i], out[4*i+1], out[4*i+2] = c[0], c[1], c[2]
	}
	return out
}
