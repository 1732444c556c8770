// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/lasca"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newNoopBackend(t *testing.T) *Backend {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	b, err := NewBackendWithDevice(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

type repeatSource struct{ frame lasca.Frame }

func (s repeatSource) Next() (lasca.Frame, error) { return s.frame, nil }
func (s repeatSource) Rewind() error              { return nil }

func TestBackendAllocateAndClose(t *testing.T) {
	b := newNoopBackend(t)
	if err := b.Allocate(lasca.DefaultConfig(64, 48), lasca.TurboColorTable()); err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if b.store == nil || b.dispatcher == nil {
		t.Fatal("Allocate left store or dispatcher nil")
	}
	for stage := range b.dispatcher.bindGroups {
		for k, bg := range b.dispatcher.bindGroups[stage] {
			if bg == nil {
				t.Errorf("bind group %s slot %d not created", Stage(stage), k)
			}
		}
	}
	if b.temporal.Interior || !b.spatial.Interior {
		t.Errorf("regions = %s / %s, want full temporal and interior spatial", b.temporal, b.spatial)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := b.DispatchTemporal(lasca.Frame{}); !errors.Is(err, lasca.ErrClosed) {
		t.Errorf("DispatchTemporal after Close = %v, want ErrClosed", err)
	}
}

func TestBackendInteriorTemporal(t *testing.T) {
	b := newNoopBackend(t)
	defer b.Close()
	cfg := lasca.DefaultConfig(16, 16)
	cfg.InteriorTemporal = true
	if err := b.Allocate(cfg, nil); err != nil {
		t.Fatal(err)
	}
	if b.temporal != b.spatial {
		t.Errorf("temporal region %s, want %s", b.temporal, b.spatial)
	}
}

func TestBackendAllocateRejectsInvalidConfig(t *testing.T) {
	b := newNoopBackend(t)
	defer b.Close()
	err := b.Allocate(lasca.DefaultConfig(2, 2), nil)
	var ae *lasca.AllocationError
	if !errors.As(err, &ae) || !errors.Is(err, lasca.ErrInvalidConfig) {
		t.Errorf("Allocate(2x2) = %v, want AllocationError wrapping ErrInvalidConfig", err)
	}
}

func TestBackendPipelineTicks(t *testing.T) {
	const w, h = 32, 24
	b := newNoopBackend(t)
	src := repeatSource{frame: lasca.Frame{Width: w, Height: h, Pix: make([]uint8, w*h)}}

	p, err := lasca.New(lasca.DefaultConfig(w, h), src, nil, lasca.WithBackend(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	if p.BackendName() != lasca.BackendWGPU {
		t.Errorf("BackendName() = %q", p.BackendName())
	}
	for i := range 3 {
		if _, err := p.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if got := b.store.Slots.Current(); got != (i+1)%2 {
			t.Errorf("after tick %d slot = %d, want %d", i, got, (i+1)%2)
		}
	}
	mask, err := p.Mask()
	if err != nil {
		t.Fatalf("Mask() error = %v", err)
	}
	if len(mask) != w*h {
		t.Errorf("len(mask) = %d, want %d", len(mask), w*h)
	}
	acc, err := p.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(acc.BlurredIntensity) != w*h {
		t.Errorf("snapshot length = %d", len(acc.BlurredIntensity))
	}
	if err := p.Reset(); err != nil {
		t.Errorf("Reset() error = %v", err)
	}
}

func TestBackendFrameSizeMismatch(t *testing.T) {
	b := newNoopBackend(t)
	defer b.Close()
	if err := b.Allocate(lasca.DefaultConfig(8, 8), nil); err != nil {
		t.Fatal(err)
	}
	_, err := b.DispatchTemporal(lasca.Frame{Width: 8, Height: 7, Pix: make([]uint8, 56)})
	if !errors.Is(err, lasca.ErrFrameSize) {
		t.Errorf("DispatchTemporal = %v, want ErrFrameSize", err)
	}
}

func TestBackendSpatialWaitsForeignEvent(t *testing.T) {
	b := newNoopBackend(t)
	defer b.Close()
	if err := b.Allocate(lasca.DefaultConfig(8, 8), nil); err != nil {
		t.Fatal(err)
	}
	want := errors.New("upstream failed")
	if _, err := b.DispatchSpatial(lasca.Completed(want)); !errors.Is(err, want) {
		t.Errorf("DispatchSpatial = %v, want upstream error", err)
	}
}

func TestNewBackendWithNilDevice(t *testing.T) {
	if _, err := NewBackendWithDevice(nil, nil); err == nil {
		t.Error("expected error for nil device")
	}
}

func TestNewBackendFromProviderRejectsPlainValue(t *testing.T) {
	if _, err := NewBackendFromProvider(struct{}{}); err == nil {
		t.Error("expected error for provider without HAL accessors")
	}
}

type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestNewBackendFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	b, err := NewBackendFromProvider(halProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewBackendFromProvider() error = %v", err)
	}
	if !b.externalDevice || b.Adapter() != "shared" {
		t.Errorf("backend externalDevice=%v adapter=%q", b.externalDevice, b.Adapter())
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}
