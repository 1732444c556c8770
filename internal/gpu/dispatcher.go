// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// dispatcher.go compiles the two LASCA shaders, owns their pipelines and the
// per-slot bind groups, and records one compute pass per stage.

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Dispatcher holds the compiled compute pipelines and the bind groups that
// tie them to a Store.
//
// Bind groups are created once per ping-pong slot: bindGroups[stage][k]
// binds slot k as the slow pair and, for the spatial stage, slot 1-k as
// the blur pair. Swapping roles is then a change of index, never a rebind.
type Dispatcher struct {
	device hal.Device

	pipelines       [StageCount]hal.ComputePipeline
	pipelineLayouts [StageCount]hal.PipelineLayout
	bgLayouts       [StageCount]hal.BindGroupLayout
	shaderModules   [StageCount]hal.ShaderModule

	bindGroups [StageCount][2]hal.BindGroup

	initialized bool
}

// NewDispatcher creates a dispatcher for device. Init must be called before
// use.
func NewDispatcher(device hal.Device) *Dispatcher {
	return &Dispatcher{device: device}
}

// stageBindGroupLayoutEntries returns the layout entries for a stage. They
// match the @group(0) @binding(N) declarations of the WGSL sources.
func stageBindGroupLayoutEntries(stage Stage) []gputypes.BindGroupLayoutEntry {
	paramsUniform := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	switch stage {
	case StageTemporal:
		// @binding(0) uniform params
		// @binding(1) storage(read) frame
		// @binding(2..3) storage(read_write) intensity, squared
		// @binding(4..5) storage(read_write) slow_intensity, slow_squared
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1),
			storageRW(2), storageRW(3), storageRW(4), storageRW(5),
		}

	case StageSpatial:
		// @binding(0) uniform params
		// @binding(1..2) storage(read) slow_intensity, slow_squared
		// @binding(3..4) storage(read_write) blur_intensity, blur_squared
		// @binding(5) storage(read_write) mask
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1), storageRO(2),
			storageRW(3), storageRW(4), storageRW(5),
		}

	default:
		return nil
	}
}

// stageBindGroupEntries returns the bind group entries of a stage with slot
// k in the slow role.
func stageBindGroupEntries(stage Stage, s *Store, k int) []gputypes.BindGroupEntry {
	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}
	slow, blur := s.Slots.At(k), s.Slots.At(k+1)

	switch stage {
	case StageTemporal:
		return []gputypes.BindGroupEntry{
			entry(0, s.TemporalParams),
			entry(1, s.Frame),
			entry(2, s.Fast.Intensity),
			entry(3, s.Fast.Squared),
			entry(4, slow.Intensity),
			entry(5, slow.Squared),
		}

	case StageSpatial:
		return []gputypes.BindGroupEntry{
			entry(0, s.SpatialParams),
			entry(1, slow.Intensity),
			entry(2, slow.Squared),
			entry(3, blur.Intensity),
			entry(4, blur.Squared),
			entry(5, s.Mask),
		}

	default:
		return nil
	}
}

// Init compiles both shaders and creates their pipelines. Calling Init on
// an initialized dispatcher is a no-op.
func (d *Dispatcher) Init() error {
	if d.initialized {
		return nil
	}

	for i := Stage(0); i < StageCount; i++ {
		label := "lasca_" + i.String()

		module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{WGSL: i.source()},
		})
		if err != nil {
			d.destroyPartialInit(i)
			return fmt.Errorf("create shader module for %s: %w", i, err)
		}
		d.shaderModules[i] = module

		entries := stageBindGroupLayoutEntries(i)
		bgLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   label + "_bgl",
			Entries: entries,
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("create bind group layout for %s: %w", i, err)
		}
		d.bgLayouts[i] = bgLayout

		pipelineLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            label + "_pl",
			BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("create pipeline layout for %s: %w", i, err)
		}
		d.pipelineLayouts[i] = pipelineLayout

		pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  label,
			Layout: pipelineLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: "main",
			},
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("create compute pipeline for %s: %w", i, err)
		}
		d.pipelines[i] = pipeline

		slogger().Debug("lasca gpu: pipeline created",
			"stage", i.String(),
			"bindings", len(entries),
			"shader_bytes", len(i.source()))
	}

	d.initialized = true
	return nil
}

// Bind creates the per-slot bind groups for s. Existing bind groups are
// released first.
func (d *Dispatcher) Bind(s *Store) error {
	if !d.initialized {
		return fmt.Errorf("dispatcher not initialized")
	}
	d.unbind()
	for stage := Stage(0); stage < StageCount; stage++ {
		for k := range 2 {
			bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
				Label:   fmt.Sprintf("lasca_%s_slot%d_bg", stage, k),
				Layout:  d.bgLayouts[stage],
				Entries: stageBindGroupEntries(stage, s, k),
			})
			if err != nil {
				d.unbind()
				return fmt.Errorf("create bind group for %s slot %d: %w", stage, k, err)
			}
			d.bindGroups[stage][k] = bg
		}
	}
	return nil
}

// Encode records one compute pass of stage over count invocations, with
// slot k in the slow role, into encoder.
func (d *Dispatcher) Encode(encoder hal.CommandEncoder, stage Stage, k int, count uint32) {
	x, y := workgroups(count)
	if x == 0 {
		return
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: "lasca_" + stage.String(),
	})
	pass.SetPipeline(d.pipelines[stage])
	pass.SetBindGroup(0, d.bindGroups[stage][k&1], nil)
	pass.Dispatch(x, y, 1)
	pass.End()
}

func (d *Dispatcher) unbind() {
	for stage := range d.bindGroups {
		for k, bg := range d.bindGroups[stage] {
			if bg != nil {
				d.device.DestroyBindGroup(bg)
				d.bindGroups[stage][k] = nil
			}
		}
	}
}

// destroyPartialInit cleans up resources for stages [0, upTo) after a
// failed Init.
func (d *Dispatcher) destroyPartialInit(upTo Stage) {
	for j := Stage(0); j < upTo; j++ {
		if d.pipelines[j] != nil {
			d.device.DestroyComputePipeline(d.pipelines[j])
			d.pipelines[j] = nil
		}
		if d.pipelineLayouts[j] != nil {
			d.device.DestroyPipelineLayout(d.pipelineLayouts[j])
			d.pipelineLayouts[j] = nil
		}
		if d.bgLayouts[j] != nil {
			d.device.DestroyBindGroupLayout(d.bgLayouts[j])
			d.bgLayouts[j] = nil
		}
		if d.shaderModules[j] != nil {
			d.device.DestroyShaderModule(d.shaderModules[j])
			d.shaderModules[j] = nil
		}
	}
}

// Close releases bind groups, pipelines and shader modules.
func (d *Dispatcher) Close() {
	d.unbind()
	d.destroyPartialInit(StageCount)
	d.initialized = false
}
