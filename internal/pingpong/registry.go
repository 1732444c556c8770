// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pingpong implements the two-slot buffer registry that turns the
// spatial stage's output into next frame's recursive filter state.
//
// Stages never address a slot by name. They ask the registry for the
// current slow slot or the current blur target, and the orchestrator flips
// the roles with Swap once a frame has been fully produced.
package pingpong

// Registry holds two interchangeable values and an index selecting which
// of them currently plays the "slow" role. The other slot is the scratch
// target the spatial stage writes into.
//
// The zero value is usable: both slots hold the zero value of T and slot 0
// is the slow slot.
type Registry[T any] struct {
	slots   [2]T
	current int
}

// New returns a registry with a as the initial slow slot and b as the
// initial blur target.
func New[T any](a, b T) Registry[T] {
	return Registry[T]{slots: [2]T{a, b}}
}

// Slow returns the slot the temporal stage reads and updates this frame.
func (r *Registry[T]) Slow() T { return r.slots[r.current] }

// Blur returns the slot the spatial stage writes this frame.
func (r *Registry[T]) Blur() T { return r.slots[1-r.current] }

// Swap exchanges the roles of the two slots. It touches only the index.
func (r *Registry[T]) Swap() { r.current ^= 1 }

// Current returns the index of the slow slot (0 or 1).
func (r *Registry[T]) Current() int { return r.current }

// At returns the slot stored at index i regardless of its role.
func (r *Registry[T]) At(i int) T { return r.slots[i&1] }

// Each calls fn for both slots in index order.
func (r *Registry[T]) Each(fn func(index int, v T)) {
	fn(0, r.slots[0])
	fn(1, r.slots[1])
}
