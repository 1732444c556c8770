// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lasca"
	"github.com/gogpu/lasca/internal/kernel"
)

// Backend implements lasca.Backend on a wgpu HAL device.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string

	dispatcher *Dispatcher
	store      *Store

	temporal kernel.Region
	spatial  kernel.Region

	// pending is the last submitted event; Reset, Snapshot and Close drain
	// it before touching buffers.
	pending lasca.Event

	externalDevice bool // true when the device is shared; Close does not destroy it
}

// Interface compliance check.
var _ lasca.Backend = (*Backend)(nil)

// NewBackendWithDevice creates a backend on an existing device and queue.
// The device is not destroyed by Close.
func NewBackendWithDevice(device hal.Device, queue hal.Queue) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, errors.New("lasca gpu: nil device or queue")
	}
	return &Backend{device: device, queue: queue, adapter: "external", externalDevice: true}, nil
}

// Name returns "wgpu".
func (b *Backend) Name() string { return lasca.BackendWGPU }

// Adapter returns the name of the adapter in use.
func (b *Backend) Adapter() string { return b.adapter }

// SetLogger sets the logger for the GPU backend and its internal packages.
// Called by lasca.SetLogger to propagate logging configuration.
func (b *Backend) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Allocate compiles the shaders, creates every buffer and the per-slot bind
// groups.
func (b *Backend) Allocate(cfg lasca.Config, table *lasca.ColorTable) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return &lasca.AllocationError{Resource: "device", Err: lasca.ErrClosed}
	}
	if err := cfg.Validate(); err != nil {
		return &lasca.AllocationError{Resource: "config", Err: err}
	}
	b.releaseLocked()

	b.spatial = kernel.InteriorRegion(cfg.Width, cfg.Height)
	b.temporal = kernel.FullRegion(cfg.Width, cfg.Height)
	if cfg.InteriorTemporal {
		b.temporal = b.spatial
	}
	params := kernel.NewParams(cfg.Alpha, cfg.Beta, cfg.ContrastGain)

	var colors [256][3]uint8
	if table != nil {
		colors = *table
	}

	d := NewDispatcher(b.device)
	if err := d.Init(); err != nil {
		return &lasca.AllocationError{Resource: "pipeline", Err: err}
	}
	s, err := NewStore(b.device, b.queue, cfg.Width, cfg.Height,
		newStageParams(cfg.Width, cfg.Height, b.temporal, params),
		newStageParams(cfg.Width, cfg.Height, b.spatial, params),
		colors)
	if err != nil {
		d.Close()
		return &lasca.AllocationError{Resource: "buffers", Err: err}
	}
	if err := d.Bind(s); err != nil {
		d.Close()
		s.Destroy()
		return &lasca.AllocationError{Resource: "bind groups", Err: err}
	}
	b.dispatcher, b.store = d, s

	slogger().Info("lasca gpu: backend allocated",
		"adapter", b.adapter,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"temporal", b.temporal.String(),
		"spatial", b.spatial.String())
	return nil
}

// Reset zero-fills all accumulators.
func (b *Backend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return lasca.ErrClosed
	}
	if err := b.drainLocked(); err != nil {
		return err
	}
	b.store.Reset()
	return nil
}

// DispatchTemporal uploads frame and submits the temporal stage.
func (b *Backend) DispatchTemporal(frame lasca.Frame) (lasca.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return nil, lasca.ErrClosed
	}
	if len(frame.Pix) != b.store.pixels() {
		return nil, fmt.Errorf("%w: %d bytes for %d pixels", lasca.ErrFrameSize, len(frame.Pix), b.store.pixels())
	}

	b.store.UploadFrame(frame.Pix)
	ev, err := b.submit(StageTemporal, uint32(b.temporal.Count), nil, false) //nolint:gosec // region fits the frame
	if err != nil {
		return nil, err
	}
	b.pending = ev
	return ev, nil
}

// DispatchSpatial submits the spatial stage behind after. Events of this
// backend are ordered by the queue; foreign events are waited on first.
func (b *Backend) DispatchSpatial(after lasca.Event) (lasca.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return nil, lasca.ErrClosed
	}
	if _, ours := after.(*fenceEvent); after != nil && !ours {
		if err := after.Wait(); err != nil {
			return nil, fmt.Errorf("waiting for temporal stage: %w", err)
		}
		after = nil
	}

	ev, err := b.submit(StageSpatial, uint32(max(b.spatial.Count, 0)), after, true) //nolint:gosec // region fits the frame
	if err != nil {
		return nil, err
	}
	b.pending = ev
	return ev, nil
}

// ReadMask waits for after and narrows the staged mask into dst.
func (b *Backend) ReadMask(dst []uint8, after lasca.Event) error {
	if after != nil {
		if err := after.Wait(); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return lasca.ErrClosed
	}
	return b.store.readMask(dst)
}

// Swap exchanges the slow and blur roles.
func (b *Backend) Swap() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store != nil {
		b.store.Slots.Swap()
	}
}

// Snapshot reads back all six accumulators.
func (b *Backend) Snapshot() (*lasca.Accumulators, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return nil, lasca.ErrClosed
	}
	if err := b.drainLocked(); err != nil {
		return nil, err
	}

	s := b.store
	slow, blurred := s.Slots.Blur(), s.Slots.Slow()
	bufs := []hal.Buffer{
		s.Fast.Intensity, s.Fast.Squared,
		slow.Intensity, slow.Squared,
		blurred.Intensity, blurred.Squared,
	}
	vals := make([][]float32, len(bufs))
	for i, buf := range bufs {
		v, err := s.readFloats(buf)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		vals[i] = v
	}
	return &lasca.Accumulators{
		Width:                   s.width,
		Height:                  s.height,
		Intensity:               vals[0],
		SquaredIntensity:        vals[1],
		SlowIntensity:           vals[2],
		SlowSquaredIntensity:    vals[3],
		BlurredIntensity:        vals[4],
		BlurredSquaredIntensity: vals[5],
	}, nil
}

// Close releases all GPU resources. The device is destroyed only if the
// backend created it.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.drainLocked()
	b.releaseLocked()

	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	return err
}

func (b *Backend) drainLocked() error {
	if b.pending == nil {
		return nil
	}
	err := b.pending.Wait()
	b.pending = nil
	return err
}

func (b *Backend) releaseLocked() {
	if b.dispatcher != nil {
		b.dispatcher.Close()
		b.dispatcher = nil
	}
	if b.store != nil {
		b.store.Destroy()
		b.store = nil
	}
}

// submit records stage into its own command buffer and submits it with a
// fresh fence. withReadback appends the mask copy into the staging buffer.
func (b *Backend) submit(stage Stage, count uint32, after lasca.Event, withReadback bool) (*fenceEvent, error) {
	label := "lasca_" + stage.String()
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	b.dispatcher.Encode(encoder, stage, b.store.Slots.Current(), count)
	if withReadback {
		encoder.CopyBufferToBuffer(b.store.Mask, b.store.Staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: b.store.floatBytes()},
		})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	fence, err := b.device.CreateFence()
	if err != nil {
		b.device.FreeCommandBuffer(cmdBuf)
		return nil, fmt.Errorf("create fence: %w", err)
	}
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		b.device.FreeCommandBuffer(cmdBuf)
		b.device.DestroyFence(fence)
		return nil, fmt.Errorf("submit: %w", err)
	}

	slogger().Debug("lasca gpu: stage submitted",
		"stage", stage.String(),
		"slot", b.store.Slots.Current(),
		"invocations", count)
	return &fenceEvent{device: b.device, fence: fence, cmdBuf: cmdBuf, stage: stage, after: after}, nil
}

// fenceEvent completes when its fence reaches 1. It chains the event the
// stage was queued behind, so waiting on the last event drains the tick.
type fenceEvent struct {
	device hal.Device
	fence  hal.Fence
	cmdBuf hal.CommandBuffer
	stage  Stage
	after  lasca.Event

	once sync.Once
	err  error
}

// Wait blocks until the stage completes and frees its fence and command
// buffer. Subsequent calls return the first result.
func (e *fenceEvent) Wait() error {
	e.once.Do(func() {
		var afterErr error
		if e.after != nil {
			afterErr = e.after.Wait()
		}
		ok, err := e.device.Wait(e.fence, 1, fenceTimeout)
		switch {
		case err != nil:
			e.err = fmt.Errorf("%s: wait for GPU: %w", e.stage, err)
		case !ok:
			e.err = fmt.Errorf("%s: GPU timeout after %v", e.stage, fenceTimeout)
		}
		e.err = errors.Join(afterErr, e.err)
		e.device.FreeCommandBuffer(e.cmdBuf)
		e.device.DestroyFence(e.fence)
	})
	return e.err
}
